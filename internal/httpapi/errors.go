package httpapi

import (
	"encoding/json"
	"net/http"

	"tumord/internal/classifier"
	"tumord/internal/preprocess"
	"tumord/internal/validate"
	"tumord/pkg/types"
)

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Kind: kind, Code: status})
}

// mapError translates pipeline errors into an HTTP status, a machine-readable
// kind and a client-safe message. Internal errors always surface the same
// generic body; details stay in logs and the error tracker.
func mapError(err error) (status int, kind, msg string) {
	switch validate.KindOf(err) {
	case validate.KindUnsupportedMediaType:
		return http.StatusUnsupportedMediaType, string(validate.KindUnsupportedMediaType), err.Error()
	case validate.KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge, string(validate.KindPayloadTooLarge), err.Error()
	case validate.KindMalformedImage:
		return http.StatusBadRequest, string(validate.KindMalformedImage), err.Error()
	}
	if preprocess.IsMalformedImage(err) {
		return http.StatusBadRequest, string(validate.KindMalformedImage),
			"image processing failed, the file might be corrupted or not a valid image"
	}
	if classifier.IsTooBusy(err) {
		return http.StatusTooManyRequests, "TooBusy", err.Error()
	}
	return http.StatusInternalServerError, "",
		"an internal server error occurred processing your request"
}
