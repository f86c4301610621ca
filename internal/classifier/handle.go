package classifier

import (
	"sync"
	"sync/atomic"
	"time"
)

// forwardPass is the minimal session surface the handle needs. Satisfied by
// *ort.AdvancedSession; tests substitute a fake.
type forwardPass interface {
	Run() error
	Destroy() error
}

// Handle is the in-memory, inference-ready model: the bound ONNX session, the
// fixed input/output tensor buffers and the ordered label vocabulary.
// Immutable after Load; exactly one Handle exists per worker process and it is
// never swapped or reloaded.
type Handle struct {
	arch   string
	path   string
	labels []string
	spec   TensorSpec

	sess       forwardPass
	inputData  []float32
	outputData []float32
	cleanup    func()

	// runMu serializes the forward pass with Close. The tensor buffers are
	// shared with the session, so exactly one inference may touch them at a
	// time; the admission gate enforces that for requests.
	runMu  sync.Mutex
	closed bool

	queueCh    chan struct{}
	inflightCh chan struct{}
	maxWait    time.Duration
	timeout    time.Duration

	predictions atomic.Uint64
	started     time.Time
}

// Architecture returns the declared architecture identifier.
func (h *Handle) Architecture() string { return h.arch }

// Path returns the absolute artifact path the handle was loaded from.
func (h *Handle) Path() string { return h.path }

// Spec returns the input tensor contract.
func (h *Handle) Spec() TensorSpec { return h.spec }

// Labels returns a copy of the ordered label vocabulary.
func (h *Handle) Labels() []string {
	return append([]string(nil), h.labels...)
}

// PredictionsTotal returns the number of successful predictions since load.
func (h *Handle) PredictionsTotal() uint64 { return h.predictions.Load() }

// Uptime returns the time elapsed since the handle finished loading.
func (h *Handle) Uptime() time.Duration { return time.Since(h.started) }

// Close releases the session and tensor resources. The handle must not be
// used afterwards. Workers call this once, on shutdown.
func (h *Handle) Close() {
	h.runMu.Lock()
	defer h.runMu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	if h.sess != nil {
		_ = h.sess.Destroy()
	}
	if h.cleanup != nil {
		h.cleanup()
	}
}
