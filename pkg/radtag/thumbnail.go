package radtag

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// DefaultThumbnailSize bounds the longest edge of a generated thumbnail.
const DefaultThumbnailSize = 256

// RenderThumbnail decodes a PNG preview and scales it down so its longest
// edge is maxDim pixels, preserving aspect ratio. Images already within the
// bound are re-encoded unscaled.
func RenderThumbnail(preview []byte, maxDim int) ([]byte, error) {
	if maxDim <= 0 {
		maxDim = DefaultThumbnailSize
	}

	src, _, err := image.Decode(bytes.NewReader(preview))
	if err != nil {
		return nil, fmt.Errorf("decode preview: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("preview has empty bounds")
	}

	outW, outH := w, h
	if w > maxDim || h > maxDim {
		if w >= h {
			outW = maxDim
			outH = h * maxDim / w
		} else {
			outH = maxDim
			outW = w * maxDim / h
		}
		if outW < 1 {
			outW = 1
		}
		if outH < 1 {
			outH = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, outW, outH))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	return buf.Bytes(), nil
}
