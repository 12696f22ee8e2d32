// Package automation runs the guest-communication workflows through a remote
// text generator.
package automation

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

var ErrNotConfigured = errors.New("text generator not configured")

// Generator turns a prompt into text. One call per trigger, no retries.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}

	return resp.Text(), nil
}

// Unconfigured fails every call. Used when no API key is set so the
// workflows still answer with an error card.
type Unconfigured struct{}

func (Unconfigured) Generate(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
