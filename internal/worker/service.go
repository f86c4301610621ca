// Package worker runs one serving process: it loads the model handle exactly
// once, binds the shared port and serves the classification pipeline until
// terminated. Every worker owns its own handle; nothing is shared across
// worker processes beyond the listening port.
package worker

import (
	"context"

	"tumord/internal/classifier"
	"tumord/internal/preprocess"
	"tumord/pkg/types"
)

// Service orchestrates preprocessing and the forward pass for one request.
// It implements httpapi.Service.
type Service struct {
	handle         *classifier.Handle
	workerID       string
	maxUploadBytes int64
}

// NewService wraps a loaded model handle.
func NewService(h *classifier.Handle, workerID string, maxUploadBytes int64) *Service {
	return &Service{handle: h, workerID: workerID, maxUploadBytes: maxUploadBytes}
}

// Ready reports whether the model handle is available. By construction the
// service only exists after a successful load, so this is the readiness gate
// the process manager polls.
func (s *Service) Ready() bool { return s.handle != nil }

// Labels returns the ordered label vocabulary.
func (s *Service) Labels() []string { return s.handle.Labels() }

// Classify turns validated image bytes into a prediction: preprocess to the
// handle's tensor contract, then one forward pass.
func (s *Service) Classify(ctx context.Context, image []byte) (types.Prediction, error) {
	tensor, err := preprocess.Image(image, s.handle.Spec())
	if err != nil {
		return types.Prediction{}, err
	}
	return s.handle.Predict(ctx, tensor)
}

// Status describes this worker for GET /status.
func (s *Service) Status() types.StatusResponse {
	h := s.handle
	return types.StatusResponse{
		Architecture:     h.Architecture(),
		ModelPath:        h.Path(),
		Labels:           h.Labels(),
		InputSize:        h.Spec().Size,
		Ready:            true,
		WorkerID:         s.workerID,
		UptimeSeconds:    int64(h.Uptime().Seconds()),
		PredictionsTotal: h.PredictionsTotal(),
		MaxUploadBytes:   s.maxUploadBytes,
	}
}
