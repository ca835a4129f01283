package mock

import (
	"context"

	"github.com/ainpal/lawgraph/core"
)

// mockVectorDim is the dimensionality of generated embeddings.
// Small enough to keep tests fast, large enough that distinct chunk
// texts land on distinct directions.
const mockVectorDim = 384

// MockEmbedder is a test double for ai.Embedder.
// Without injected behavior it embeds text deterministically, so the
// same chunk or query text always maps to the same vector.
type MockEmbedder struct {
	// EmbedTextFunc overrides EmbedText when set.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc overrides EmbedTexts when set.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	callCount int
}

// NewMockEmbedder creates a mock embedder with deterministic defaults.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText embeds a single query or chunk text.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount++

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return embedDeterministic(text), nil
}

// EmbedTexts embeds a batch of chunk texts.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount++

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = embedDeterministic(text)
	}
	return vectors, nil
}

// CallCount returns the number of times any method was called.
func (m *MockEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *MockEmbedder) Reset() {
	m.callCount = 0
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// embedDeterministic maps text to a unit vector. The seed is the same
// content hash chunk IDs are derived from, so the mapping is stable
// across runs and processes.
func embedDeterministic(text string) []float32 {
	state := uint64(core.IDFromContent(text))

	vector := make([]float32, mockVectorDim)
	for i := range vector {
		// splitmix64 step
		state += 0x9e3779b97f4a7c15
		z := state
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		z ^= z >> 31

		// Components in [0, 1) keep dot products of any two generated
		// vectors non-negative, so similarity floors never hide hits.
		vector[i] = float32(z%1024) / 1024.0
	}

	return core.NormalizeVector(vector)
}
