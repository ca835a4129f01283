package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/ainpal/lawgraph/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDecider(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		d, err := NewDecider(mock.NewMockGenerator())
		require.NoError(t, err)
		assert.NotNil(t, d)
	})

	t.Run("nil generator", func(t *testing.T) {
		_, err := NewDecider(nil)
		assert.Equal(t, ErrGeneratorRequired, err)
	})
}

func TestDecide(t *testing.T) {
	ctx := context.Background()

	t.Run("relevant question is rewritten", func(t *testing.T) {
		gen := mock.NewMockGenerator()
		gen.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
			return `"punishment for stealing movable property"`, nil
		}
		d, err := NewDecider(gen)
		require.NoError(t, err)

		verdict, err := d.Decide(ctx, "What is the punishment for theft?")
		require.NoError(t, err)
		assert.True(t, verdict.Relevant)
		assert.Equal(t, "punishment for stealing movable property", verdict.Query)
	})

	t.Run("refusal sentinel anywhere in response", func(t *testing.T) {
		gen := mock.NewMockGenerator()
		gen.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
			return "Response: " + RefusalMessage, nil
		}
		d, err := NewDecider(gen)
		require.NoError(t, err)

		verdict, err := d.Decide(ctx, "What's a good pasta recipe?")
		require.NoError(t, err)
		assert.False(t, verdict.Relevant)
		// The original question is kept, not the model's response.
		assert.Equal(t, "What's a good pasta recipe?", verdict.Query)
	})

	t.Run("blank rewrite falls back to original", func(t *testing.T) {
		gen := mock.NewMockGenerator()
		gen.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
			return "  ", nil
		}
		d, err := NewDecider(gen)
		require.NoError(t, err)

		verdict, err := d.Decide(ctx, "What is theft?")
		require.NoError(t, err)
		assert.True(t, verdict.Relevant)
		assert.Equal(t, "What is theft?", verdict.Query)
	})

	t.Run("generator failure wraps classification error", func(t *testing.T) {
		gen := mock.NewMockGenerator()
		gen.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("model offline")
		}
		d, err := NewDecider(gen)
		require.NoError(t, err)

		_, err = d.Decide(ctx, "What is theft?")
		assert.ErrorIs(t, err, ErrClassificationFailed)
	})
}
