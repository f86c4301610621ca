package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"tumord/internal/classifier"
)

func TestPredict_TooBusyMaps429(t *testing.T) {
	svc := readyService()
	svc.classifyErr = classifier.ErrTooBusy()
	r := NewMux(svc)
	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewReader(jpegPayload(t)))
	req.Header.Set("Content-Type", "image/jpeg")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if er := decodeError(t, w); er.Kind != "TooBusy" {
		t.Fatalf("kind=%q", er.Kind)
	}
}

func TestSequentialIsolation(t *testing.T) {
	// A failed request must not poison the next one on the same mux.
	svc := readyService()
	r := NewMux(svc)

	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewReader([]byte("garbage")))
	req.Header.Set("Content-Type", "image/jpeg")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/predict", bytes.NewReader(jpegPayload(t)))
	req.Header.Set("Content-Type", "image/jpeg")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}
