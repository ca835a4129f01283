package retrieval

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/ainpal/lawgraph/ai/mock"
	"github.com/ainpal/lawgraph/core"
	"github.com/ainpal/lawgraph/storage"
	"github.com/ainpal/lawgraph/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo is a storage.ChunkRepository with injectable search behavior.
type fakeRepo struct {
	findSimilarFunc   func(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ScoredChunk, error)
	keywordSearchFunc func(ctx context.Context, terms []string, score float32, limit int) ([]*core.ScoredChunk, error)
	expandForwardFunc func(ctx context.Context, id core.ID, minHops, maxHops, limit int) ([]*core.Chunk, error)

	keywordCalls int
}

var _ storage.ChunkRepository = (*fakeRepo)(nil)

func (f *fakeRepo) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ScoredChunk, error) {
	if f.findSimilarFunc != nil {
		return f.findSimilarFunc(ctx, vector, minSimilarity, limit)
	}
	return nil, nil
}

func (f *fakeRepo) KeywordSearch(ctx context.Context, terms []string, score float32, limit int) ([]*core.ScoredChunk, error) {
	f.keywordCalls++
	if f.keywordSearchFunc != nil {
		return f.keywordSearchFunc(ctx, terms, score, limit)
	}
	return nil, nil
}

func (f *fakeRepo) ExpandForward(ctx context.Context, id core.ID, minHops, maxHops, limit int) ([]*core.Chunk, error) {
	if f.expandForwardFunc != nil {
		return f.expandForwardFunc(ctx, id, minHops, maxHops, limit)
	}
	return nil, nil
}

func (f *fakeRepo) AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	return chunks, nil
}

func (f *fakeRepo) UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	return chunks, nil
}

func (f *fakeRepo) GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error) {
	return nil, storage.ErrNotFound
}

func (f *fakeRepo) GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error) {
	return nil, nil
}

func (f *fakeRepo) IterateChunks(ctx context.Context, fn func(*core.Chunk) error) error {
	return nil
}

func (f *fakeRepo) CountChunks(ctx context.Context) (int, error) { return 0, nil }

func (f *fakeRepo) Close() error { return nil }

func scored(id uint64, score float32, source core.Source) *core.ScoredChunk {
	return &core.ScoredChunk{
		Chunk:  &core.Chunk{Id: core.ID(id), Text: "chunk"},
		Score:  score,
		Source: source,
	}
}

func TestNewRetriever(t *testing.T) {
	repo := &fakeRepo{}
	embedder := mock.NewMockEmbedder()

	t.Run("valid configuration", func(t *testing.T) {
		r, err := NewRetriever(repo, embedder)
		require.NoError(t, err)
		assert.NotNil(t, r)
	})

	t.Run("with custom logger", func(t *testing.T) {
		r, err := NewRetriever(repo, embedder, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, r)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewRetriever(nil, embedder)
		assert.Equal(t, ErrChunkRepositoryRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewRetriever(repo, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})
}

func TestRetrieveMergesAndRanks(t *testing.T) {
	repo := &fakeRepo{
		findSimilarFunc: func(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ScoredChunk, error) {
			return []*core.ScoredChunk{
				scored(1, 0.9, core.SourceVector),
				scored(2, 0.3, core.SourceVector),
			}, nil
		},
		keywordSearchFunc: func(ctx context.Context, terms []string, score float32, limit int) ([]*core.ScoredChunk, error) {
			return []*core.ScoredChunk{
				scored(2, 0.5, core.SourceKeyword),
				scored(3, 0.5, core.SourceKeyword),
			}, nil
		},
	}

	r, err := NewRetriever(repo, mock.NewMockEmbedder())
	require.NoError(t, err)

	result, err := r.Retrieve(context.Background(), "punishment for theft")
	require.NoError(t, err)

	require.Len(t, result.Chunks, 3)
	assert.Equal(t, core.ID(1), result.Chunks[0].Chunk.Id)

	// Chunk 2 appears in both legs and keeps the higher keyword score.
	assert.Equal(t, core.ID(2), result.Chunks[1].Chunk.Id)
	assert.InDelta(t, 0.5, result.Chunks[1].Score, 1e-6)

	// Ties preserve insertion order, so the merged chunk 2 stays ahead of 3.
	assert.Equal(t, core.ID(3), result.Chunks[2].Chunk.Id)

	assert.Equal(t, 2, result.Diagnostics.VectorHits)
	assert.Equal(t, 2, result.Diagnostics.KeywordHits)
	assert.Equal(t, 3, result.Diagnostics.CombinedHits)
	assert.Equal(t, 3, result.Diagnostics.RetrievedChunks)
}

func TestRetrieveCombinedLimit(t *testing.T) {
	repo := &fakeRepo{
		findSimilarFunc: func(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ScoredChunk, error) {
			return []*core.ScoredChunk{
				scored(1, 0.9, core.SourceVector),
				scored(2, 0.8, core.SourceVector),
				scored(3, 0.7, core.SourceVector),
			}, nil
		},
	}

	r, err := NewRetriever(repo, mock.NewMockEmbedder(), WithCombinedLimit(2))
	require.NoError(t, err)

	result, err := r.Retrieve(context.Background(), "punishment for theft")
	require.NoError(t, err)

	require.Len(t, result.Chunks, 2)
	assert.Equal(t, core.ID(1), result.Chunks[0].Chunk.Id)
	assert.Equal(t, core.ID(2), result.Chunks[1].Chunk.Id)
	assert.Equal(t, 2, result.Diagnostics.CombinedHits)
}

func TestRetrieveSkipsKeywordSearchWithoutTerms(t *testing.T) {
	repo := &fakeRepo{}

	r, err := NewRetriever(repo, mock.NewMockEmbedder())
	require.NoError(t, err)

	// Every word is at or below the length cutoff.
	result, err := r.Retrieve(context.Background(), "how is it")
	require.NoError(t, err)

	assert.Zero(t, repo.keywordCalls)
	assert.Empty(t, result.Chunks)
	assert.Zero(t, result.Diagnostics.KeywordHits)
}

func TestRetrieveEmbedderError(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	r, err := NewRetriever(&fakeRepo{}, embedder)
	require.NoError(t, err)

	_, err = r.Retrieve(context.Background(), "punishment for theft")
	assert.Error(t, err)
}

func TestRetrieveStoreError(t *testing.T) {
	repo := &fakeRepo{
		findSimilarFunc: func(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ScoredChunk, error) {
			return nil, errors.New("store unavailable")
		},
	}

	r, err := NewRetriever(repo, mock.NewMockEmbedder())
	require.NoError(t, err)

	_, err = r.Retrieve(context.Background(), "punishment for theft")
	assert.Error(t, err)
}

// TestRetrieveExpansion runs against the real badger repository so the
// forward adjacency walk is exercised end to end.
func TestRetrieveExpansion(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		repo.Close()
		backend.Close()
	}()
	ctx := context.Background()

	queryVector := []float32{1, 0, 0}

	chunks := []*core.Chunk{
		{LawTitle: "The Penal Code, 1860", SectionNumber: "378", Text: "definition", ChunkIndex: 0, Vector: []float32{1, 0, 0}},
		{LawTitle: "The Penal Code, 1860", SectionNumber: "379", Text: "first consequence", ChunkIndex: 1, Vector: []float32{0.8, 0.1, 0}},
		{LawTitle: "The Penal Code, 1860", SectionNumber: "380", Text: "second consequence", ChunkIndex: 2},
		{LawTitle: "The Penal Code, 1860", SectionNumber: "381", Text: "third consequence", ChunkIndex: 3},
	}
	for i := range chunks {
		chunks[i].Id = core.IDFromContent(chunks[i].ContentKey())
	}
	for i := 0; i < len(chunks)-1; i++ {
		chunks[i].NextId = chunks[i+1].Id
	}
	_, err = repo.AddChunks(ctx, chunks...)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return queryVector, nil
	}

	r, err := NewRetriever(repo, embedder)
	require.NoError(t, err)

	result, err := r.Retrieve(ctx, "zz zz")
	require.NoError(t, err)

	// Two vector hits. The first seed pulls in the chunk two hops out
	// (its hop-one neighbor is itself ranked), the second seed pulls in
	// the one after that.
	require.Len(t, result.Chunks, 4)
	assert.Equal(t, chunks[0].Id, result.Chunks[0].Chunk.Id)
	assert.Equal(t, chunks[2].Id, result.Chunks[1].Chunk.Id)
	assert.Equal(t, chunks[1].Id, result.Chunks[2].Chunk.Id)
	assert.Equal(t, chunks[3].Id, result.Chunks[3].Chunk.Id)

	assert.Equal(t, core.SourceVector, result.Chunks[0].Source)
	assert.Equal(t, core.SourceExpansion, result.Chunks[1].Source)
	assert.InDelta(t, 0.4, result.Chunks[1].Score, 1e-6)
	assert.Equal(t, core.SourceExpansion, result.Chunks[3].Source)

	assert.Equal(t, 2, result.Diagnostics.VectorHits)
	assert.Equal(t, 2, result.Diagnostics.CombinedHits)
	assert.Equal(t, 4, result.Diagnostics.RetrievedChunks)
}

// monitorRecorder captures the callbacks during a retrieval pass.
type monitorRecorder struct {
	started     bool
	vectorHits  int
	keywordHits int
	mergedHits  int
	finished    bool
}

var _ RetrievalMonitor = (*monitorRecorder)(nil)

func (m *monitorRecorder) Start(_ string) { m.started = true }
func (m *monitorRecorder) AfterVectorSearch(hits []*core.ScoredChunk) {
	m.vectorHits = len(hits)
}
func (m *monitorRecorder) AfterKeywordSearch(_ []string, hits []*core.ScoredChunk) {
	m.keywordHits = len(hits)
}
func (m *monitorRecorder) AfterMerge(ranked []*core.ScoredChunk) {
	m.mergedHits = len(ranked)
}
func (m *monitorRecorder) AfterExpansion(_ core.ID, _ []*core.ScoredChunk) {}
func (m *monitorRecorder) Finish(_ *Result)                                { m.finished = true }

func TestRetrieveWithMonitor(t *testing.T) {
	repo := &fakeRepo{
		findSimilarFunc: func(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ScoredChunk, error) {
			return []*core.ScoredChunk{scored(1, 0.9, core.SourceVector)}, nil
		},
	}

	r, err := NewRetriever(repo, mock.NewMockEmbedder())
	require.NoError(t, err)

	recorder := &monitorRecorder{}
	_, err = r.RetrieveWithMonitor(context.Background(), "punishment for theft", recorder)
	require.NoError(t, err)

	assert.True(t, recorder.started)
	assert.Equal(t, 1, recorder.vectorHits)
	assert.Equal(t, 1, recorder.mergedHits)
	assert.True(t, recorder.finished)
}
