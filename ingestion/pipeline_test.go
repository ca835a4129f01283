package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ainpal/lawgraph/ai/mock"
	"github.com/ainpal/lawgraph/core"
	"github.com/ainpal/lawgraph/storage"
	"github.com/ainpal/lawgraph/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) storage.ChunkRepository {
	t.Helper()
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func TestNewPipeline(t *testing.T) {
	repo := newTestRepo(t)
	provider := mock.NewMockProvider()

	t.Run("valid", func(t *testing.T) {
		p, err := NewPipeline(repo, provider)
		require.NoError(t, err)
		defer p.Release()
		assert.NotNil(t, p)
	})

	t.Run("with options", func(t *testing.T) {
		p, err := NewPipeline(repo, provider, WithPoolSize(2), WithChunkSize(500), WithBatchSize(4))
		require.NoError(t, err)
		defer p.Release()
		assert.NotNil(t, p)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewPipeline(nil, provider)
		assert.Equal(t, ErrChunkRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(repo, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestIngestLaw(t *testing.T) {
	repo := newTestRepo(t)
	provider := mock.NewMockProvider()

	p, err := NewPipeline(repo, provider)
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()
	count, err := p.IngestLaw(ctx, testLaw())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	stored, err := repo.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	// Every stored chunk carries a unit-length vector.
	err = repo.IterateChunks(ctx, func(chunk *core.Chunk) error {
		require.NotEmpty(t, chunk.Vector)
		var magnitude float64
		for _, v := range chunk.Vector {
			magnitude += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(magnitude), 1e-4)
		return nil
	})
	require.NoError(t, err)
}

func TestIngestLawIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)

	p, err := NewPipeline(repo, mock.NewMockProvider())
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()
	_, err = p.IngestLaw(ctx, testLaw())
	require.NoError(t, err)
	_, err = p.IngestLaw(ctx, testLaw())
	require.NoError(t, err)

	stored, err := repo.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)
}

func TestIngestLawEmbedderFailure(t *testing.T) {
	repo := newTestRepo(t)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator())

	p, err := NewPipeline(repo, provider)
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()
	count, err := p.IngestLaw(ctx, testLaw())
	assert.Error(t, err)

	// Chunks are stored before embedding so a reindex can repair them.
	assert.Equal(t, 2, count)
	stored, err := repo.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)
}

func TestIngestLawWaitsForInFlightBatches(t *testing.T) {
	repo := newTestRepo(t)

	var p *Pipeline
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		// Close the pool mid-batch so the next submission fails while
		// this batch is still running.
		p.Release()
		time.Sleep(50 * time.Millisecond)
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = []float32{1, 0, 0}
		}
		return vectors, nil
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator())

	p, err := NewPipeline(repo, provider, WithPoolSize(1), WithBatchSize(1))
	require.NoError(t, err)

	ctx := context.Background()
	count, err := p.IngestLaw(ctx, testLaw())
	assert.Error(t, err)
	assert.Equal(t, 2, count)

	// The batch that was already running finished and wrote its vector
	// back before IngestLaw returned.
	embedded := 0
	err = repo.IterateChunks(ctx, func(chunk *core.Chunk) error {
		if len(chunk.Vector) > 0 {
			embedded++
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, embedded)
}

func TestIngestCorpus(t *testing.T) {
	repo := newTestRepo(t)

	p, err := NewPipeline(repo, mock.NewMockProvider())
	require.NoError(t, err)
	defer p.Release()

	dir := t.TempDir()
	writeLaw := func(name string, law *Law) {
		data, err := json.Marshal(law)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	writeLaw("penal_code.json", testLaw())
	writeLaw("contract_act.json", &Law{
		LawID: 26,
		Title: "The Contract Act, 1872",
		Sections: []Section{
			{Number: "2", Text: "Interpretation clause."},
		},
	})

	total, err := p.IngestCorpus(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestIngestCorpusMissingDir(t *testing.T) {
	repo := newTestRepo(t)

	p, err := NewPipeline(repo, mock.NewMockProvider())
	require.NoError(t, err)
	defer p.Release()

	_, err = p.IngestCorpus(context.Background(), "/does/not/exist")
	assert.Error(t, err)
}
