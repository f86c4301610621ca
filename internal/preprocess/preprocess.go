// Package preprocess converts uploaded image bytes into the fixed-shape
// float32 tensor the classifier was trained on.
package preprocess

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/nfnt/resize"

	"tumord/internal/classifier"
)

// malformedImageError marks bytes that do not decode as an image.
type malformedImageError struct{ cause error }

func (e malformedImageError) Error() string { return fmt.Sprintf("malformed image: %v", e.cause) }
func (e malformedImageError) Unwrap() error { return e.cause }

// IsMalformedImage reports whether err indicates undecodable image bytes.
func IsMalformedImage(err error) bool {
	_, ok := err.(malformedImageError)
	return ok
}

// Image decodes b, resizes it to the spec's resolution and returns a CHW
// float32 tensor normalized with the spec's per-channel constants.
//
// The resize is a direct SxS scale; aspect ratio is not preserved, matching
// the transform the artifact was trained with. Pure function: the same bytes
// always produce the same tensor.
func Image(b []byte, spec classifier.TensorSpec) ([]float32, error) {
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, malformedImageError{cause: err}
	}
	return Tensor(img, spec), nil
}

// Tensor converts an already-decoded image into the normalized CHW layout.
func Tensor(img image.Image, spec classifier.TensorSpec) []float32 {
	size := spec.Size
	resized := resize.Resize(uint(size), uint(size), img, resize.Lanczos3)

	plane := size * size
	out := make([]float32, 3*plane)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			// RGBA returns 16-bit channels; grayscale sources expand to
			// equal RGB, matching the training pipeline's RGB conversion.
			r, g, b, _ := resized.At(x, y).RGBA()
			i := y*size + x
			out[i] = (float32(r)/65535 - spec.Mean[0]) / spec.Std[0]
			out[plane+i] = (float32(g)/65535 - spec.Mean[1]) / spec.Std[1]
			out[2*plane+i] = (float32(b)/65535 - spec.Mean[2]) / spec.Std[2]
		}
	}
	return out
}
