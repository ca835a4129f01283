// Package googleai provides an ai.Generator backed by Google's hosted
// Gemini models. Unlike the openai package it connects through the vendor
// SDK, so only the API key and model name from the config are used.
package googleai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ainpal/lawgraph/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// Generator implements ai.Generator using the Gemini API.
type Generator struct {
	client llms.Model
	logger *slog.Logger
}

// NewGenerator creates a generator talking to the Gemini API.
// The config must carry an APIKey and a GenerativeModel.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(ctx context.Context, config *ai.Config) (ai.Generator, error) {
	if config.APIKey == "" {
		return nil, errors.New("googleai: APIKey is required")
	}
	if config.GenerativeModel == "" {
		return nil, errors.New("googleai: GenerativeModel is required")
	}

	client, err := googleai.New(ctx,
		googleai.WithAPIKey(config.APIKey),
		googleai.WithDefaultModel(config.GenerativeModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client: client,
		logger: slog.Default().With("component", "googleai-generator"),
	}, nil
}

// Generate sends the prompt to the model and returns its text response.
// Temperature is pinned to zero so answers stay grounded in the prompt.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	g.logger.Debug("generating completion", "prompt_length", len(prompt))

	response, err := llms.GenerateFromSinglePrompt(ctx, g.client, prompt, llms.WithTemperature(0.0))
	if err != nil {
		g.logger.Error("failed to generate completion", "err", err)
		return "", err
	}

	return strings.TrimSpace(response), nil
}
