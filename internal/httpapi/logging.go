package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// nopLogger backs the HTTP layer when no logger was installed.
var nopLogger = zerolog.Nop()

// logRequest starts an info-level record tagged with the request id and path.
func logRequest(r *http.Request) *zerolog.Event {
	return tagRequest(r, pick().Info())
}

// logError starts an error-level record tagged with the request id and path.
func logError(r *http.Request) *zerolog.Event {
	return tagRequest(r, pick().Error())
}

func pick() *zerolog.Logger {
	if zlog != nil {
		return zlog
	}
	return &nopLogger
}

func tagRequest(r *http.Request, e *zerolog.Event) *zerolog.Event {
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		e = e.Str("request_id", rid)
	}
	return e.Str("path", r.URL.Path)
}
