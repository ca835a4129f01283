package storage

import (
	"context"

	"github.com/ainpal/lawgraph/core"
)

// ChunkRepository provides operations over the legal chunk store.
// Implementations must be thread-safe and support concurrent access.
//
// The three query operations (FindSimilar, KeywordSearch, ExpandForward)
// form the retrieval contract: the retriever consumes them and never
// depends on the storage engine behind them.
type ChunkRepository interface {
	// FindSimilar finds chunks whose embedding is similar to the given vector.
	// Returns chunks with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first). Result ordering is
	// advisory; callers re-sort.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ScoredChunk, error)

	// KeywordSearch returns up to limit chunks whose lowercased text contains
	// at least one of the given lowercase terms. Every hit carries the fixed
	// score. An empty term list yields an empty result, not an error.
	KeywordSearch(ctx context.Context, terms []string, score float32, limit int) ([]*core.ScoredChunk, error)

	// ExpandForward returns chunks reachable from id along forward-adjacency
	// edges within [minHops, maxHops], at most limit, in hop order.
	// Returns ErrNotFound if the starting chunk doesn't exist.
	ExpandForward(ctx context.Context, id core.ID, minHops, maxHops, limit int) ([]*core.Chunk, error)

	// AddChunks adds one or more chunks to storage.
	// For chunks with ID=0, derives the content-based ID from ContentKey.
	// Sets InsertedAt timestamp.
	// Returns the chunks with IDs and timestamps populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// UpdateChunks updates existing chunks.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunks retrieves multiple chunks by their IDs.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error)

	// IterateChunks calls fn for every stored chunk. Iteration stops on the
	// first error from fn.
	IterateChunks(ctx context.Context, fn func(*core.Chunk) error) error

	// CountChunks returns the number of stored chunks.
	CountChunks(ctx context.Context) (int, error)

	// Close closes the repository and releases resources.
	Close() error
}
