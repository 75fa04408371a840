package sandbox

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GenAI completes requests through the Gemini API.
type GenAI struct {
	client *genai.Client
}

// NewGenAI builds the live completer. apiKey must be non-empty.
func NewGenAI(ctx context.Context, apiKey string) (*GenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("sandbox: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	return &GenAI{client: client}, nil
}

// Complete implements Completer.
func (g *GenAI) Complete(ctx context.Context, req Request) (string, error) {
	temp := float32(req.Temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	text := req.Prompt
	if req.Input != "" {
		text += "\n\n" + req.Input
	}

	result, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(text), cfg)
	if err != nil {
		return "", err
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("sandbox: empty completion from model %s", req.Model)
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}
