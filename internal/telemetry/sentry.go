package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry enables the external error tracker when a DSN is configured.
// Returns false (and no error) when the DSN is empty: tracking is optional
// and its absence only costs observability.
func InitSentry(dsn, release string) (bool, error) {
	if dsn == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          release,
		AttachStacktrace: true,
	})
	if err != nil {
		return false, fmt.Errorf("sentry init: %w", err)
	}
	return true, nil
}

// CaptureError reports a per-request internal failure. Emission is buffered
// by the SDK; request handling never blocks on it.
func CaptureError(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}

// CaptureFatal reports a startup failure and flushes with a short bound so
// the event leaves the process before the nonzero exit.
func CaptureFatal(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
	sentry.Flush(2 * time.Second)
}

// Flush drains buffered events on graceful shutdown.
func Flush() {
	sentry.Flush(2 * time.Second)
}
