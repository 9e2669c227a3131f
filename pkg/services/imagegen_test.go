package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/vmkteam/embedlog"
)

// gradientPNG encodes a horizontal gradient that passes the variance check.
func gradientPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x * 255 / w)
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// flatPNG encodes a single-color image that must fail the variance check.
func flatPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{128, 128, 128, 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"gradient passes", gradientPNG(t, 400, 400), false},
		{"not an image", []byte("definitely not a png"), true},
		{"too small", gradientPNG(t, 100, 100), true},
		{"flat fill rejected", flatPNG(t, 400, 400), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImage(tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateImage() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

type stubImageGen struct {
	data []byte
	err  error
}

func (g *stubImageGen) GenerateImage(context.Context, string, [][]byte) ([]byte, error) {
	return g.data, g.err
}

func TestGenerate(t *testing.T) {
	logger := embedlog.Logger{}

	t.Run("valid image returned as is", func(t *testing.T) {
		want := gradientPNG(t, 400, 400)
		s := NewImageService(&stubImageGen{data: want}, logger)

		got := s.Generate(context.Background(), "prompt", nil, "top", "bottom")
		if got.Fallback {
			t.Error("unexpected fallback")
		}
		if !bytes.Equal(got.PNG, want) {
			t.Error("returned image differs from generated one")
		}
	})

	t.Run("provider failure yields banner", func(t *testing.T) {
		s := NewImageService(&stubImageGen{err: errors.New("quota")}, logger)

		// Cancel right away so the retry schedule does not sleep.
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		got := s.Generate(ctx, "prompt", nil, "top", "bottom")
		if !got.Fallback {
			t.Fatal("expected fallback banner")
		}
		if err := checkBanner(got.PNG); err != nil {
			t.Errorf("fallback banner: %v", err)
		}
	})
}

func TestRenderBanner(t *testing.T) {
	data := RenderBanner("TOTAL 12345", "undo with /undo")
	if err := checkBanner(data); err != nil {
		t.Fatal(err)
	}
}

func checkBanner(data []byte) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if img.Bounds().Dx() != bannerWidth || img.Bounds().Dy() != bannerHeight {
		return errors.New("banner has wrong dimensions")
	}
	return nil
}
