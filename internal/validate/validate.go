// Package validate rejects malformed, oversized or mistyped uploads before
// they reach preprocessing. Each check returns a distinct kind so the HTTP
// layer can map rejections to precise status codes.
package validate

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"mime"
	"net/http"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Kind identifies a request-rejection category.
type Kind string

const (
	KindUnsupportedMediaType Kind = "UnsupportedMediaType"
	KindPayloadTooLarge      Kind = "PayloadTooLarge"
	KindMalformedImage       Kind = "MalformedImage"
)

// Error is a request rejection. It never indicates a server-side fault.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// KindOf extracts the rejection kind, or "" for non-rejection errors.
func KindOf(err error) Kind {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}

// acceptedTypes is the set of declared MIME types the service accepts,
// matching the formats the preprocessor can decode.
var acceptedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/bmp":  {},
	"image/gif":  {},
	"image/tiff": {},
	"image/webp": {},
}

// AcceptedTypes returns the supported MIME types, for error messages and docs.
func AcceptedTypes() []string {
	return []string{"image/jpeg", "image/png", "image/bmp", "image/gif", "image/tiff", "image/webp"}
}

// Upload runs the ordered validation pipeline over one uploaded image:
// declared content type, byte ceiling, then a structural decode check on the
// actual bytes. On success it returns the fully-read payload.
//
// declaredSize may be -1 when the transport did not state a length; the
// ceiling is still enforced while reading.
func Upload(contentType string, declaredSize int64, r io.Reader, maxBytes int64) ([]byte, error) {
	if err := checkMediaType(contentType); err != nil {
		return nil, err
	}
	if declaredSize > maxBytes {
		return nil, tooLarge(maxBytes)
	}

	// Read one byte past the ceiling so undeclared oversized bodies are
	// caught without buffering the excess.
	b, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(b)) > maxBytes {
		return nil, tooLarge(maxBytes)
	}

	if err := checkImageBytes(b); err != nil {
		return nil, err
	}
	return b, nil
}

func checkMediaType(contentType string) error {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(contentType))
	}
	if _, ok := acceptedTypes[mt]; !ok {
		return &Error{
			Kind: KindUnsupportedMediaType,
			Msg:  fmt.Sprintf("unsupported content type %q, accepted: %s", contentType, strings.Join(AcceptedTypes(), ", ")),
		}
	}
	return nil
}

func tooLarge(maxBytes int64) error {
	return &Error{
		Kind: KindPayloadTooLarge,
		Msg:  fmt.Sprintf("image payload exceeds the %d MiB limit", maxBytes>>20),
	}
}

// checkImageBytes verifies the payload is structurally an image, not merely
// named one: content sniffing plus an image header decode.
func checkImageBytes(b []byte) error {
	if sniffed := http.DetectContentType(b); !strings.HasPrefix(sniffed, "image/") {
		return &Error{
			Kind: KindMalformedImage,
			Msg:  fmt.Sprintf("payload is not an image (detected %s)", sniffed),
		}
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(b)); err != nil {
		return &Error{
			Kind: KindMalformedImage,
			Msg:  "image header is corrupt or in an unsupported format",
		}
	}
	return nil
}
