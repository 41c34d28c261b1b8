package radtag

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestRenderThumbnail(t *testing.T) {
	tests := []struct {
		name   string
		srcW   int
		srcH   int
		maxDim int
		wantW  int
		wantH  int
	}{
		{"Landscape downscale", 800, 400, 256, 256, 128},
		{"Portrait downscale", 400, 800, 256, 128, 256},
		{"Square downscale", 512, 512, 256, 256, 256},
		{"Already small", 100, 50, 256, 100, 50},
		{"Zero maxDim uses default", 1024, 1024, 0, DefaultThumbnailSize, DefaultThumbnailSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := RenderThumbnail(encodePNG(t, tt.srcW, tt.srcH), tt.maxDim)
			if err != nil {
				t.Fatalf("RenderThumbnail() error = %v", err)
			}

			thumb, err := png.Decode(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("thumbnail does not decode as PNG: %v", err)
			}

			bounds := thumb.Bounds()
			if bounds.Dx() != tt.wantW || bounds.Dy() != tt.wantH {
				t.Errorf("thumbnail is %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestRenderThumbnailRejectsGarbage(t *testing.T) {
	if _, err := RenderThumbnail([]byte("not an image"), 256); err == nil {
		t.Error("RenderThumbnail() accepted non-image input")
	}
}
