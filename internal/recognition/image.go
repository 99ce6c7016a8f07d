package recognition

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// ErrInvalidImage is returned when image data cannot be decoded at all.
// A malformed enrollment photo is logged and excluded, never turned into
// a zero descriptor.
var ErrInvalidImage = errors.New("invalid image data")

const jpegQuality = 85

// PrepareImage decodes image data (JPEG, PNG or BMP), optionally crops it
// to a face region, downscales it so the longer edge fits maxEdge, and
// re-encodes as JPEG for the dlib pipeline.
func PrepareImage(data []byte, region *image.Rectangle, maxEdge int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	if region != nil {
		cropped := region.Intersect(img.Bounds())
		if cropped.Empty() {
			return nil, fmt.Errorf("%w: region %v outside image bounds %v", ErrInvalidImage, *region, img.Bounds())
		}
		sub, ok := img.(interface {
			SubImage(image.Rectangle) image.Image
		})
		if !ok {
			// Decoded formats without SubImage support get copied instead.
			dst := image.NewRGBA(cropped)
			draw.Copy(dst, cropped.Min, img, cropped, draw.Over, nil)
			img = dst
		} else {
			img = sub.SubImage(cropped)
		}
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if maxEdge <= 0 || (width <= maxEdge && height <= maxEdge) {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}
		return buf.Bytes(), nil
	}

	var newWidth, newHeight int
	if width > height {
		newWidth = maxEdge
		newHeight = int(float64(height) * float64(maxEdge) / float64(width))
	} else {
		newHeight = maxEdge
		newWidth = int(float64(width) * float64(maxEdge) / float64(height))
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}
	return buf.Bytes(), nil
}
