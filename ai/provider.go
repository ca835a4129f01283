package ai

import "log/slog"

// compositeProvider assembles an AIProvider from independently constructed parts.
// It lets callers mix services from different backends, for example a local
// OpenAI-compatible embedder with a hosted Gemini generator.
type compositeProvider struct {
	embedder  Embedder
	generator Generator
	logger    *slog.Logger
}

// ProviderFromParts builds an AIProvider from an existing embedder and generator.
// Both parts must be non-nil.
func ProviderFromParts(embedder Embedder, generator Generator) AIProvider {
	return &compositeProvider{
		embedder:  embedder,
		generator: generator,
		logger:    slog.Default().With("component", "composite-provider"),
	}
}

// Embedder returns the text embedding service.
func (p *compositeProvider) Embedder() Embedder {
	return p.embedder
}

// Generator returns the text generation service.
func (p *compositeProvider) Generator() Generator {
	return p.generator
}

// Close releases resources held by the provider.
func (p *compositeProvider) Close() error {
	p.logger.Debug("closing composite provider")
	if c, ok := p.embedder.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			return err
		}
	}
	if c, ok := p.generator.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			return err
		}
	}
	return nil
}
