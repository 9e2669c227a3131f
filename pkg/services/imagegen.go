package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"github.com/vmkteam/embedlog"
)

const (
	minImageSide = 200
	// Minimum luma variance: rejects flat fills and near-blank responses.
	minLumaVariance = 40.0
)

// retryDelays is the fixed retry schedule of the image path. The first
// attempt runs immediately.
var retryDelays = []time.Duration{0, 2 * time.Second, 5 * time.Second}

// GeneratedImage is the outcome of the image path. Fallback marks the locally
// rendered banner substituted after the provider gave up.
type GeneratedImage struct {
	PNG      []byte
	Fallback bool
}

// ImageService wraps an ImageGenerator with retries, validity checks and a
// local banner fallback.
type ImageService struct {
	gen    ImageGenerator
	logger embedlog.Logger
}

// NewImageService creates an image service. A nil generator is allowed and
// makes every Generate call return the local banner right away.
func NewImageService(gen ImageGenerator, logger embedlog.Logger) *ImageService {
	return &ImageService{gen: gen, logger: logger}
}

// Generate runs the retry schedule against the provider, validating every
// result. When all attempts fail it falls back to a locally rendered banner
// built from top and bottom, so the caller always gets an image.
func (s *ImageService) Generate(ctx context.Context, prompt string, refs [][]byte, top, bottom string) GeneratedImage {
	if s.gen == nil {
		return GeneratedImage{PNG: RenderBanner(top, bottom), Fallback: true}
	}

	for attempt, delay := range retryDelays {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return GeneratedImage{PNG: RenderBanner(top, bottom), Fallback: true}
			}
		}

		data, err := s.gen.GenerateImage(ctx, prompt, refs)
		if err != nil {
			s.logger.Print(ctx, "image generation attempt failed", "attempt", attempt+1, "err", err)
			continue
		}

		if err := ValidateImage(data); err != nil {
			s.logger.Print(ctx, "generated image rejected", "attempt", attempt+1, "err", err)
			continue
		}

		return GeneratedImage{PNG: data}
	}

	return GeneratedImage{PNG: RenderBanner(top, bottom), Fallback: true}
}

// ValidateImage decodes data and applies the validity heuristics: minimum
// dimensions and non-trivial pixel variance.
func ValidateImage(data []byte) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() < minImageSide || bounds.Dy() < minImageSide {
		return fmt.Errorf("image too small: %dx%d", bounds.Dx(), bounds.Dy())
	}

	if v := lumaVariance(img); v < minLumaVariance {
		return errors.New("image has near-constant pixels")
	}

	return nil
}

// lumaVariance samples the image on a coarse grid and returns the variance of
// the 0-255 luma channel.
func lumaVariance(img image.Image) float64 {
	bounds := img.Bounds()

	const grid = 32
	stepX := bounds.Dx() / grid
	stepY := bounds.Dy() / grid
	if stepX < 1 {
		stepX = 1
	}
	if stepY < 1 {
		stepY = 1
	}

	var sum, sumSq float64
	var n int
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r, g, b, _ := img.At(x, y).RGBA()
			luma := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257.0
			sum += luma
			sumSq += luma * luma
			n++
		}
	}

	if n == 0 {
		return 0
	}
	mean := sum / float64(n)

	return sumSq/float64(n) - mean*mean
}
