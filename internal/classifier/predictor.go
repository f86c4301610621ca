package classifier

import (
	"context"
	"fmt"
	"math"
	"time"

	"tumord/pkg/types"
)

type runResult struct {
	logits []float32
	err    error
}

// Predict runs one forward pass over a preprocessed input tensor and returns
// the softmax distribution with the argmax label. One request, one inference
// call; no batching. Deterministic for a given tensor and handle.
//
// The forward pass is bounded by the configured timeout. A pass that exceeds
// it is reported as an error to this caller, but the pass itself is left to
// finish: the in-flight slot is only released when the session stops touching
// the tensor buffers, so later requests never observe a torn buffer.
func (h *Handle) Predict(ctx context.Context, tensor []float32) (types.Prediction, error) {
	if len(tensor) != h.spec.Values() {
		return types.Prediction{}, tensorSizeError{want: h.spec.Values(), got: len(tensor)}
	}

	release, err := h.beginInference(ctx)
	if err != nil {
		return types.Prediction{}, err
	}

	done := make(chan runResult, 1)
	go func() {
		defer release()
		h.runMu.Lock()
		defer h.runMu.Unlock()
		if h.closed {
			done <- runResult{err: fmt.Errorf("model handle is closed")}
			return
		}
		copy(h.inputData, tensor)
		if err := h.sess.Run(); err != nil {
			done <- runResult{err: fmt.Errorf("forward pass: %w", err)}
			return
		}
		logits := make([]float32, len(h.outputData))
		copy(logits, h.outputData)
		done <- runResult{logits: logits}
	}()

	timer := time.NewTimer(h.timeout)
	defer timer.Stop()
	select {
	case res := <-done:
		if res.err != nil {
			return types.Prediction{}, res.err
		}
		pred := h.postprocess(res.logits)
		h.predictions.Add(1)
		return pred, nil
	case <-ctx.Done():
		return types.Prediction{}, ctx.Err()
	case <-timer.C:
		return types.Prediction{}, inferenceTimeoutError{limit: h.timeout.String()}
	}
}

// Warmup exercises the session once with a zero tensor so the first client
// request does not pay cold-start cost.
func (h *Handle) Warmup(ctx context.Context) error {
	_, err := h.Predict(ctx, make([]float32, h.spec.Values()))
	if err != nil {
		return fmt.Errorf("warmup pass: %w", err)
	}
	// Warmup is not a served prediction.
	h.predictions.Add(^uint64(0))
	return nil
}

// postprocess turns raw logits into a normalized prediction.
func (h *Handle) postprocess(logits []float32) types.Prediction {
	probs := softmax(logits)
	maxIdx := 0
	for i, p := range probs {
		if p > probs[maxIdx] {
			maxIdx = i
		}
	}
	scores := make(map[string]float32, len(h.labels))
	for i, name := range h.labels {
		scores[name] = probs[i]
	}
	return types.Prediction{
		Label:         h.labels[maxIdx],
		Confidence:    probs[maxIdx],
		Probabilities: scores,
	}
}

// softmax computes a numerically stable softmax in float64 and narrows back.
func softmax(logits []float32) []float32 {
	maxLogit := float64(logits[0])
	for _, v := range logits[1:] {
		if float64(v) > maxLogit {
			maxLogit = float64(v)
		}
	}
	exps := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		exps[i] = math.Exp(float64(v) - maxLogit)
		sum += exps[i]
	}
	out := make([]float32, len(logits))
	for i := range exps {
		out[i] = float32(exps[i] / sum)
	}
	return out
}
