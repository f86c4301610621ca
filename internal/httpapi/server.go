package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tumord/internal/telemetry"
	"tumord/internal/validate"
	"tumord/pkg/types"
)

// Service is the per-worker surface the HTTP layer serves. Implemented by the
// worker's classification pipeline; tests substitute a mock.
type Service interface {
	// Ready reports whether the model handle finished loading.
	Ready() bool
	// Labels returns the ordered label vocabulary.
	Labels() []string
	// Status describes this worker.
	Status() types.StatusResponse
	// Classify preprocesses validated image bytes and runs one forward pass.
	Classify(ctx context.Context, image []byte) (types.Prediction, error)
}

// NewMux builds the worker's HTTP handler.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/predict", predictHandler(svc))

	r.Get("/labels", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.LabelsResponse{Labels: svc.Labels()})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.HealthResponse{Status: "healthy", Message: "brain tumor classifier is active"})
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// predictHandler accepts one image per call, either as a multipart form with
// a "file" field or as a raw body with an image content type.
//
// @Summary      Classify a brain MRI image
// @Accept       mpfd
// @Produce      json
// @Param        file  formData  file  true  "image upload"
// @Success      200  {object}  types.PredictionResponse
// @Failure      400  {object}  types.ErrorResponse
// @Failure      413  {object}  types.ErrorResponse
// @Failure      415  {object}  types.ErrorResponse
// @Failure      429  {object}  types.ErrorResponse
// @Failure      500  {object}  types.ErrorResponse
// @Router       /predict [post]
func predictHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !svc.Ready() {
			writeJSONError(w, http.StatusServiceUnavailable, "", "model is not loaded yet, try again later")
			return
		}

		filename, payload, err := readUpload(w, r)
		if err != nil {
			respondError(w, r, err)
			return
		}

		start := time.Now()
		pred, err := svc.Classify(r.Context(), payload)
		if err != nil {
			// Client disconnected mid-request: nothing sensible to write.
			if r.Context().Err() != nil {
				return
			}
			respondError(w, r, err)
			return
		}
		observePrediction(pred.Label, time.Since(start))
		logRequest(r).
			Str("filename", filename).
			Str("label", pred.Label).
			Float32("confidence", pred.Confidence).
			Dur("dur", time.Since(start)).
			Msg("prediction served")

		writeJSON(w, types.PredictionResponse{
			Filename:         filename,
			Prediction:       pred.Label,
			Confidence:       pred.Confidence,
			ConfidenceScores: pred.Probabilities,
			RequestID:        middleware.GetReqID(r.Context()),
		})
	}
}

// readUpload extracts the image payload and runs the validation pipeline.
func readUpload(w http.ResponseWriter, r *http.Request) (filename string, payload []byte, err error) {
	ct := r.Header.Get("Content-Type")
	mt, _, _ := mime.ParseMediaType(ct)

	var (
		declaredType string
		declaredSize int64
		body         io.Reader
	)
	if strings.HasPrefix(mt, "multipart/") {
		// Bound the whole form: payload ceiling plus headroom for part
		// headers and boundaries.
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+(64<<10))
		file, header, ferr := r.FormFile("file")
		if ferr != nil {
			var mbe *http.MaxBytesError
			if errors.As(ferr, &mbe) {
				return "", nil, &validate.Error{
					Kind: validate.KindPayloadTooLarge,
					Msg:  "image payload exceeds the upload limit",
				}
			}
			return "", nil, &validate.Error{
				Kind: validate.KindMalformedImage,
				Msg:  "multipart form must include a 'file' field",
			}
		}
		defer file.Close()
		filename = header.Filename
		declaredType = header.Header.Get("Content-Type")
		declaredSize = header.Size
		body = file
	} else {
		declaredType = ct
		declaredSize = r.ContentLength
		body = r.Body
	}

	payload, err = validate.Upload(declaredType, declaredSize, body, maxUploadBytes)
	return filename, payload, err
}

// respondError maps a pipeline error onto the wire and the observability
// boundary: rejections count a metric, internal failures log with context and
// reach the error tracker without blocking the response.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind, msg := mapError(err)
	observeRejection(kind)
	if status >= http.StatusInternalServerError {
		logError(r).Err(err).Int("status", status).Msg("request failed")
		telemetry.CaptureError(err)
	} else {
		logRequest(r).Int("status", status).Str("kind", kind).Msg("request rejected")
	}
	writeJSONError(w, status, kind, msg)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "", "failed to encode response")
	}
}
