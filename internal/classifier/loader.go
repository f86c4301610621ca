package classifier

import (
	"fmt"
	"time"

	ort "github.com/yalue/onnxruntime_go"

	"tumord/internal/common/fsutil"
)

// Defaults applied when corresponding LoadConfig fields are unset.
const (
	defaultQueueDepth   = 32
	defaultQueueWait    = 10 * time.Second
	defaultInferTimeout = 30 * time.Second
)

// LoadConfig carries everything needed to construct a model handle.
type LoadConfig struct {
	// ModelPath is the filesystem path of the ONNX artifact.
	ModelPath string
	// Architecture is the declared backbone identifier, e.g. "efficientnet_b0".
	Architecture string
	// Labels is the ordered output vocabulary the artifact was trained on.
	Labels []string
	// LibraryPath optionally points at the onnxruntime shared library.
	LibraryPath string

	InferTimeout time.Duration
	QueueDepth   int
	QueueWait    time.Duration
}

// Load reads the artifact, reconstructs the session around it and verifies the
// model agrees with the declared architecture and label vocabulary. It runs
// exactly once per worker process, before any request is accepted; every error
// it can return is fatal and the caller must exit nonzero without serving.
func Load(cfg LoadConfig) (*Handle, error) {
	if len(cfg.Labels) == 0 {
		return nil, fmt.Errorf("label vocabulary must not be empty")
	}
	spec, err := SpecFor(cfg.Architecture)
	if err != nil {
		return nil, err
	}
	path, err := fsutil.ResolveFile(cfg.ModelPath)
	if err != nil {
		return nil, artifactNotFoundError{path: cfg.ModelPath}
	}

	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnx runtime: %w", err)
		}
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, artifactCorruptError{path: path, cause: err}
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, artifactCorruptError{path: path, cause: fmt.Errorf("graph declares no inputs or outputs")}
	}
	if err := checkInputShape(inputs[0].Dimensions, spec); err != nil {
		return nil, err
	}
	outDims := outputs[0].Dimensions
	if len(outDims) == 0 {
		return nil, artifactCorruptError{path: path, cause: fmt.Errorf("output has no dimensions")}
	}
	classes := int(outDims[len(outDims)-1])
	if classes != len(cfg.Labels) {
		return nil, dimensionMismatchError{want: len(cfg.Labels), got: classes}
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, int64(spec.Size), int64(spec.Size)))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(classes)))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	sess, err := ort.NewAdvancedSession(path,
		[]string{inputs[0].Name}, []string{outputs[0].Name},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, artifactCorruptError{path: path, cause: err}
	}

	h := &Handle{
		arch:       cfg.Architecture,
		path:       path,
		labels:     append([]string(nil), cfg.Labels...),
		spec:       spec,
		sess:       sess,
		inputData:  inputTensor.GetData(),
		outputData: outputTensor.GetData(),
		cleanup: func() {
			inputTensor.Destroy()
			outputTensor.Destroy()
		},
		started: time.Now(),
	}
	applyRuntimeDefaults(h, cfg)
	return h, nil
}

// checkInputShape verifies the artifact expects a 1x3xSxS tensor for the
// declared architecture. Dynamic (-1) dimensions are accepted.
func checkInputShape(dims ort.Shape, spec TensorSpec) error {
	if len(dims) != 4 {
		return fmt.Errorf("model input has rank %d, expected NCHW", len(dims))
	}
	if dims[1] != 3 && dims[1] != -1 {
		return fmt.Errorf("model input has %d channels, expected 3", dims[1])
	}
	s := int64(spec.Size)
	for _, d := range dims[2:] {
		if d != s && d != -1 {
			return fmt.Errorf("model input resolution %d does not match architecture's %d", d, s)
		}
	}
	return nil
}

func applyRuntimeDefaults(h *Handle, cfg LoadConfig) {
	depth := cfg.QueueDepth
	if depth <= 0 {
		depth = defaultQueueDepth
	}
	wait := cfg.QueueWait
	if wait <= 0 {
		wait = defaultQueueWait
	}
	timeout := cfg.InferTimeout
	if timeout <= 0 {
		timeout = defaultInferTimeout
	}
	h.queueCh = make(chan struct{}, depth)
	h.inflightCh = make(chan struct{}, 1)
	h.maxWait = wait
	h.timeout = timeout
}
