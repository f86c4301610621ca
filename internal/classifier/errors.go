package classifier

import "fmt"

// Load-time errors. Every one of these is fatal: a worker that cannot build a
// model handle must exit nonzero before binding its listener.

type artifactNotFoundError struct{ path string }

func (e artifactNotFoundError) Error() string { return "model artifact not found: " + e.path }

// IsArtifactNotFound reports whether err indicates a missing artifact file.
func IsArtifactNotFound(err error) bool {
	_, ok := err.(artifactNotFoundError)
	return ok
}

type artifactCorruptError struct {
	path  string
	cause error
}

func (e artifactCorruptError) Error() string {
	return fmt.Sprintf("model artifact unreadable or corrupt: %s: %v", e.path, e.cause)
}
func (e artifactCorruptError) Unwrap() error { return e.cause }

// IsArtifactCorrupt reports whether err indicates an unreadable artifact.
func IsArtifactCorrupt(err error) bool {
	_, ok := err.(artifactCorruptError)
	return ok
}

type unknownArchitectureError struct{ name string }

func (e unknownArchitectureError) Error() string { return "unknown architecture: " + e.name }

// IsUnknownArchitecture reports whether err indicates an unrecognized
// architecture identifier.
func IsUnknownArchitecture(err error) bool {
	_, ok := err.(unknownArchitectureError)
	return ok
}

type dimensionMismatchError struct {
	want, got int
}

func (e dimensionMismatchError) Error() string {
	return fmt.Sprintf("model output dimension %d does not match label count %d", e.got, e.want)
}

// IsDimensionMismatch reports whether err indicates the artifact's output
// layer disagrees with the configured label vocabulary.
func IsDimensionMismatch(err error) bool {
	_, ok := err.(dimensionMismatchError)
	return ok
}

// Request-time errors. These are per-request and never take the worker down.

// tooBusyError signals admission queue overflow/timeout for 429 mapping.
type tooBusyError struct{}

func (tooBusyError) Error() string { return "inference queue is full, try again later" }

// ErrTooBusy constructs a backpressure error.
func ErrTooBusy() error { return tooBusyError{} }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	_, ok := err.(tooBusyError)
	return ok
}

// inferenceTimeoutError signals a forward pass exceeding the configured bound.
type inferenceTimeoutError struct{ limit string }

func (e inferenceTimeoutError) Error() string { return "inference exceeded time limit " + e.limit }

// IsInferenceTimeout reports whether err indicates a hung forward pass.
func IsInferenceTimeout(err error) bool {
	_, ok := err.(inferenceTimeoutError)
	return ok
}

type tensorSizeError struct{ want, got int }

func (e tensorSizeError) Error() string {
	return fmt.Sprintf("tensor has %d values, model expects %d", e.got, e.want)
}
