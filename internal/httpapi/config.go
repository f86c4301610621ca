package httpapi

import "github.com/rs/zerolog"

// maxUploadBytes controls the maximum accepted image payload.
// Default matches the service's 5 MiB request ceiling.
var maxUploadBytes int64 = 5 << 20

// SetMaxUploadBytes configures the image payload ceiling.
func SetMaxUploadBytes(n int64) {
	if n <= 0 {
		maxUploadBytes = 5 << 20
		return
	}
	maxUploadBytes = n
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var corsEnabled bool

// SetCORSEnabled toggles permissive CORS for browser-based dashboards.
func SetCORSEnabled(enabled bool) { corsEnabled = enabled }

// zlog is an optional structured logger. If unset, the HTTP layer stays quiet
// apart from metrics.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }
