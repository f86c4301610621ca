package types

// PredictionResponse is returned by POST /predict on success.
type PredictionResponse struct {
	// Original filename of the upload, when provided via multipart form.
	// example: scan_0142.jpg
	Filename string `json:"filename,omitempty" example:"scan_0142.jpg"`
	// Predicted class, one of the fixed label vocabulary.
	// example: glioma
	Prediction string `json:"prediction" example:"glioma"`
	// Probability of the predicted class, in [0,1].
	// example: 0.93
	Confidence float32 `json:"confidence" example:"0.93"`
	// Full probability distribution over the label vocabulary. Sums to 1.
	ConfidenceScores map[string]float32 `json:"confidence_scores"`
	// Request id assigned by the server, useful for correlating logs.
	// example: 9f1c2d3e
	RequestID string `json:"request_id,omitempty" example:"9f1c2d3e"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: image payload exceeds the 5 MiB limit
	Error string `json:"error" example:"image payload exceeds the 5 MiB limit"`
	// Machine-readable error kind for request rejections.
	// example: PayloadTooLarge
	Kind string `json:"kind,omitempty" example:"PayloadTooLarge"`
	// HTTP status code.
	// example: 413
	Code int `json:"code" example:"413"`
}

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	// example: healthy
	Status string `json:"status" example:"healthy"`
	// example: brain tumor classifier is active
	Message string `json:"message,omitempty" example:"brain tumor classifier is active"`
}

// LabelsResponse wraps the ordered label vocabulary returned by GET /labels.
type LabelsResponse struct {
	Labels []string `json:"labels"`
}

// StatusResponse is returned by GET /status and describes one worker.
type StatusResponse struct {
	// Architecture identifier of the loaded model.
	// example: efficientnet_b0
	Architecture string `json:"architecture" example:"efficientnet_b0"`
	// Path of the model artifact this worker loaded.
	// example: /srv/models/efficientnet_finetuned_final.onnx
	ModelPath string `json:"model_path" example:"/srv/models/efficientnet_finetuned_final.onnx"`
	// Ordered label vocabulary.
	Labels []string `json:"labels"`
	// Spatial input resolution fed to the network.
	// example: 224
	InputSize int `json:"input_size" example:"224"`
	// Whether the model handle finished loading.
	// example: true
	Ready bool `json:"ready" example:"true"`
	// Worker identifier (stable for the process lifetime).
	// example: 1a2b3c4d-0000-4000-8000-000000000000
	WorkerID string `json:"worker_id,omitempty"`
	// Uptime of this worker in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Total predictions served by this worker since boot.
	// example: 1204
	PredictionsTotal uint64 `json:"predictions_total" example:"1204"`
	// Maximum accepted upload size in bytes.
	// example: 5242880
	MaxUploadBytes int64 `json:"max_upload_bytes" example:"5242880"`
}
