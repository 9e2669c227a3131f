package services

import (
	"context"

	"github.com/vmkteam/embedlog"
)

// SamplingParams are the sampling knobs passed to the text model.
type SamplingParams struct {
	Temperature float32
	TopP        float32
	TopK        int32
}

// TextGenerator produces free text from a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, params SamplingParams) (string, error)
}

// ImageGenerator produces raw image bytes from a prompt and optional
// reference images.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, refs [][]byte) ([]byte, error)
}

// MockTextGenerator is a canned TextGenerator for tests and local runs.
type MockTextGenerator struct {
	logger embedlog.Logger
	Reply  string
	Err    error
}

// NewMockTextGenerator creates a new mock text generator.
func NewMockTextGenerator(logger embedlog.Logger, reply string) *MockTextGenerator {
	return &MockTextGenerator{logger: logger, Reply: reply}
}

// GenerateText returns the canned reply.
func (m *MockTextGenerator) GenerateText(ctx context.Context, prompt string, params SamplingParams) (string, error) {
	m.logger.Print(ctx, "mock text generation", "prompt_len", len(prompt))
	return m.Reply, m.Err
}
