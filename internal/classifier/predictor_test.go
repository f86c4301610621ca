package classifier

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeSession implements forwardPass over the handle's shared buffers, the
// same way an ONNX session does: read inputData, write outputData.
type fakeSession struct {
	run   func(in, out []float32) error
	delay time.Duration
	in    []float32
	out   []float32
}

func (f *fakeSession) Run() error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.run(f.in, f.out)
}

func (f *fakeSession) Destroy() error { return nil }

var testLabels = []string{"glioma", "meningioma", "notumor", "pituitary"}

func newTestHandle(t *testing.T, run func(in, out []float32) error, delay time.Duration) *Handle {
	t.Helper()
	spec := TensorSpec{Size: 2, Mean: imagenetMean, Std: imagenetStd}
	h := &Handle{
		arch:       "efficientnet_b0",
		path:       "/fake/model.onnx",
		labels:     append([]string(nil), testLabels...),
		spec:       spec,
		inputData:  make([]float32, spec.Values()),
		outputData: make([]float32, len(testLabels)),
		started:    time.Now(),
	}
	h.sess = &fakeSession{run: run, delay: delay, in: h.inputData, out: h.outputData}
	applyRuntimeDefaults(h, LoadConfig{})
	t.Cleanup(h.Close)
	return h
}

// sumLogits derives deterministic logits from the input so tests can assert
// end-to-end determinism through the buffer copy.
func sumLogits(in, out []float32) error {
	var sum float32
	for _, v := range in {
		sum += v
	}
	for i := range out {
		out[i] = sum + float32(i)
	}
	return nil
}

func TestPredictDeterminism(t *testing.T) {
	h := newTestHandle(t, sumLogits, 0)
	tensor := make([]float32, h.Spec().Values())
	for i := range tensor {
		tensor[i] = float32(i) * 0.25
	}

	first, err := h.Predict(context.Background(), tensor)
	require.NoError(t, err)
	second, err := h.Predict(context.Background(), tensor)
	require.NoError(t, err)

	require.Equal(t, first.Label, second.Label)
	require.Equal(t, first.Confidence, second.Confidence)
	require.Equal(t, first.Probabilities, second.Probabilities)
}

func TestPredictLabelInvariant(t *testing.T) {
	h := newTestHandle(t, func(in, out []float32) error {
		out[0], out[1], out[2], out[3] = -1.2, 3.4, 0.1, -7.9
		return nil
	}, 0)

	pred, err := h.Predict(context.Background(), make([]float32, h.Spec().Values()))
	require.NoError(t, err)

	require.Contains(t, testLabels, pred.Label)
	require.Equal(t, "meningioma", pred.Label)
	require.GreaterOrEqual(t, pred.Confidence, float32(0))
	require.LessOrEqual(t, pred.Confidence, float32(1))
	require.Len(t, pred.Probabilities, len(testLabels))

	var sum float64
	for _, p := range pred.Probabilities {
		require.GreaterOrEqual(t, p, float32(0))
		sum += float64(p)
	}
	require.InDelta(t, 1.0, sum, 1e-5)
	require.Equal(t, pred.Probabilities[pred.Label], pred.Confidence)
}

func TestPredictRejectsWrongTensorSize(t *testing.T) {
	h := newTestHandle(t, sumLogits, 0)
	_, err := h.Predict(context.Background(), make([]float32, 7))
	require.Error(t, err)
	require.Contains(t, err.Error(), "model expects")
}

func TestPredictTimeout(t *testing.T) {
	h := newTestHandle(t, sumLogits, 200*time.Millisecond)
	h.timeout = 10 * time.Millisecond

	_, err := h.Predict(context.Background(), make([]float32, h.Spec().Values()))
	require.Error(t, err)
	require.True(t, IsInferenceTimeout(err), "err=%v", err)
}

func TestPredictBackpressure(t *testing.T) {
	h := newTestHandle(t, sumLogits, 300*time.Millisecond)
	h.queueCh = make(chan struct{}, 1)
	h.maxWait = 20 * time.Millisecond

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = h.Predict(context.Background(), make([]float32, h.Spec().Values()))
	}()
	time.Sleep(30 * time.Millisecond) // let the first request occupy the slot

	_, err := h.Predict(context.Background(), make([]float32, h.Spec().Values()))
	require.Error(t, err)
	require.True(t, IsTooBusy(err), "err=%v", err)
	wg.Wait()
}

func TestPredictCanceledContext(t *testing.T) {
	h := newTestHandle(t, sumLogits, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.Predict(ctx, make([]float32, h.Spec().Values()))
	require.ErrorIs(t, err, context.Canceled)
}

func TestPredictIsolation(t *testing.T) {
	// A request that makes the session fail must not affect the next one.
	h := newTestHandle(t, func(in, out []float32) error {
		if in[0] < 0 {
			return errors.New("runtime blew up")
		}
		return sumLogits(in, out)
	}, 0)

	bad := make([]float32, h.Spec().Values())
	bad[0] = -1
	_, err := h.Predict(context.Background(), bad)
	require.Error(t, err)
	require.False(t, IsTooBusy(err))

	good := make([]float32, h.Spec().Values())
	good[0] = 2
	pred, err := h.Predict(context.Background(), good)
	require.NoError(t, err)
	require.Contains(t, testLabels, pred.Label)
	require.EqualValues(t, 1, h.PredictionsTotal())
}

func TestWarmupNotCounted(t *testing.T) {
	h := newTestHandle(t, sumLogits, 0)
	require.NoError(t, h.Warmup(context.Background()))
	require.EqualValues(t, 0, h.PredictionsTotal())

	_, err := h.Predict(context.Background(), make([]float32, h.Spec().Values()))
	require.NoError(t, err)
	require.EqualValues(t, 1, h.PredictionsTotal())
}

func TestSoftmaxStability(t *testing.T) {
	probs := softmax([]float32{1000, 999, 998, 900})
	var sum float64
	for _, p := range probs {
		require.False(t, math.IsNaN(float64(p)))
		sum += float64(p)
	}
	require.InDelta(t, 1.0, sum, 1e-5)
	require.Greater(t, probs[0], probs[1])
}

func TestPredictAfterClose(t *testing.T) {
	h := newTestHandle(t, sumLogits, 0)
	h.Close()
	_, err := h.Predict(context.Background(), make([]float32, h.Spec().Values()))
	require.Error(t, err)
}
