package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/vmkteam/embedlog"
	"google.golang.org/api/option"
)

// Gemini calls the Google generative API for both text and images.
type Gemini struct {
	client     *genai.Client
	textModel  string
	imageModel string
	logger     embedlog.Logger
}

// NewGemini creates a Gemini client. Model names are configurable; empty
// values fall back to current defaults.
func NewGemini(ctx context.Context, apiKey, textModel, imageModel string, logger embedlog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if textModel == "" {
		textModel = "gemini-2.5-flash"
	}
	if imageModel == "" {
		imageModel = "gemini-2.0-flash-preview-image-generation"
	}

	return &Gemini{
		client:     client,
		textModel:  textModel,
		imageModel: imageModel,
		logger:     logger,
	}, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// GenerateText asks the text model for a completion. An empty completion is
// reported as an error so callers fall back uniformly.
func (g *Gemini) GenerateText(ctx context.Context, prompt string, params SamplingParams) (string, error) {
	model := g.client.GenerativeModel(g.textModel)
	model.SetTemperature(params.Temperature)
	model.SetTopP(params.TopP)
	model.SetTopK(params.TopK)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini text call failed: %w", err)
	}

	text := firstText(resp)
	if text == "" {
		return "", errors.New("gemini returned empty text")
	}

	return text, nil
}

// GenerateImage asks the image model for a picture, passing reference images
// along with the prompt.
func (g *Gemini) GenerateImage(ctx context.Context, prompt string, refs [][]byte) ([]byte, error) {
	model := g.client.GenerativeModel(g.imageModel)

	parts := make([]genai.Part, 0, len(refs)+1)
	parts = append(parts, genai.Text(prompt))
	for _, ref := range refs {
		parts = append(parts, genai.ImageData("png", ref))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini image call failed: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
				return blob.Data, nil
			}
		}
	}

	return nil, errors.New("gemini returned no image data")
}

// firstText concatenates the text parts of the first candidate.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return strings.TrimSpace(sb.String())
}
