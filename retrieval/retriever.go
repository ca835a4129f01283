package retrieval

import (
	"context"
	"log/slog"
	"sort"

	"github.com/ainpal/lawgraph/ai"
	"github.com/ainpal/lawgraph/core"
	"github.com/ainpal/lawgraph/storage"
)

// Default retrieval parameters. Vector and keyword search each contribute
// up to eight candidates, the merged list is capped at ten, and every
// ranked seed may pull in up to three of its following sections.
const (
	defaultVectorLimit   = 8
	defaultKeywordLimit  = 8
	defaultCombinedLimit = 10
	defaultKeywordScore  = 0.5
	defaultExpandMinHops = 1
	defaultExpandMaxHops = 2
	defaultExpandLimit   = 3
	defaultExpandScore   = 0.4
	defaultMinSimilarity = 0.0
)

// Diagnostics reports candidate counts at each retrieval stage.
type Diagnostics struct {
	// VectorHits is the number of candidates from vector similarity search.
	VectorHits int

	// KeywordHits is the number of candidates from keyword search.
	KeywordHits int

	// CombinedHits is the number of distinct candidates after merging and ranking.
	CombinedHits int

	// RetrievedChunks is the final count including adjacency expansions.
	RetrievedChunks int
}

// Result is the outcome of a retrieval pass: the ranked chunks plus
// stage-by-stage diagnostics.
type Result struct {
	Chunks      []*core.ScoredChunk
	Diagnostics Diagnostics
}

// Retriever combines vector similarity search, keyword search and
// forward adjacency expansion over a chunk repository.
type Retriever struct {
	chunks   storage.ChunkRepository
	embedder ai.Embedder
	logger   *slog.Logger

	vectorLimit   int
	keywordLimit  int
	combinedLimit int
	keywordScore  float32
	expandMinHops int
	expandMaxHops int
	expandLimit   int
	expandScore   float32
	minSimilarity float32
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithVectorLimit sets how many candidates vector search may contribute.
func WithVectorLimit(limit int) Option {
	return func(r *Retriever) error {
		r.vectorLimit = limit
		return nil
	}
}

// WithKeywordLimit sets how many candidates keyword search may contribute.
func WithKeywordLimit(limit int) Option {
	return func(r *Retriever) error {
		r.keywordLimit = limit
		return nil
	}
}

// WithCombinedLimit caps the merged candidate list.
func WithCombinedLimit(limit int) Option {
	return func(r *Retriever) error {
		r.combinedLimit = limit
		return nil
	}
}

// WithExpansionLimit caps how many following sections each seed may pull in.
// Zero disables expansion.
func WithExpansionLimit(limit int) Option {
	return func(r *Retriever) error {
		r.expandLimit = limit
		return nil
	}
}

// WithMinSimilarity sets the similarity threshold for vector search.
// Default is 0, accepting every embedded chunk up to the vector limit.
func WithMinSimilarity(min float32) Option {
	return func(r *Retriever) error {
		r.minSimilarity = min
		return nil
	}
}

// NewRetriever creates a new retriever over the given repository and embedder.
func NewRetriever(chunks storage.ChunkRepository, embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		chunks:        chunks,
		embedder:      embedder,
		logger:        slog.Default(),
		vectorLimit:   defaultVectorLimit,
		keywordLimit:  defaultKeywordLimit,
		combinedLimit: defaultCombinedLimit,
		keywordScore:  defaultKeywordScore,
		expandMinHops: defaultExpandMinHops,
		expandMaxHops: defaultExpandMaxHops,
		expandLimit:   defaultExpandLimit,
		expandScore:   defaultExpandScore,
		minSimilarity: defaultMinSimilarity,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve runs the hybrid search for the query.
func (r *Retriever) Retrieve(ctx context.Context, query string) (*Result, error) {
	return r.RetrieveWithMonitor(ctx, query, nil)
}

// RetrieveWithMonitor runs the hybrid search for the query with monitoring.
// The monitor receives callbacks at each stage of the retrieval process.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, query string, monitor RetrievalMonitor) (*Result, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	// 1. Vector similarity search
	embedding, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	vectorHits, err := r.chunks.FindSimilar(ctx, embedding, r.minSimilarity, r.vectorLimit)
	if err != nil {
		r.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}
	monitor.AfterVectorSearch(vectorHits)

	// 2. Keyword search. A query with no usable terms skips this leg entirely.
	var keywordHits []*core.ScoredChunk
	terms := extractKeywords(query)
	if len(terms) > 0 {
		keywordHits, err = r.chunks.KeywordSearch(ctx, terms, r.keywordScore, r.keywordLimit)
		if err != nil {
			r.logger.Error("error running keyword search", "terms", terms, "err", err)
			return nil, err
		}
	} else {
		r.logger.Debug("no keyword terms extracted, skipping keyword search", "query", query)
	}
	monitor.AfterKeywordSearch(terms, keywordHits)

	// 3. Merge both legs, deduplicating by chunk id and keeping the best score.
	ranked := mergeHits(vectorHits, keywordHits)
	if len(ranked) > r.combinedLimit {
		ranked = ranked[:r.combinedLimit]
	}
	monitor.AfterMerge(ranked)

	// 4. Pull in the sections following each ranked seed. Expansions are
	// placed directly after their seed and are never expanded themselves.
	final, err := r.expand(ctx, ranked, monitor)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Chunks: final,
		Diagnostics: Diagnostics{
			VectorHits:      len(vectorHits),
			KeywordHits:     len(keywordHits),
			CombinedHits:    len(ranked),
			RetrievedChunks: len(final),
		},
	}
	monitor.Finish(result)

	r.logger.Debug("retrieval complete",
		"vectorHits", result.Diagnostics.VectorHits,
		"keywordHits", result.Diagnostics.KeywordHits,
		"combinedHits", result.Diagnostics.CombinedHits,
		"retrievedChunks", result.Diagnostics.RetrievedChunks)

	return result, nil
}

// mergeHits combines both search legs into a single ranked list.
// Duplicates keep whichever score is higher. Ordering is stable, so
// equal scores stay in insertion order (vector hits before keyword hits).
func mergeHits(vectorHits, keywordHits []*core.ScoredChunk) []*core.ScoredChunk {
	index := make(map[core.ID]int, len(vectorHits)+len(keywordHits))
	merged := make([]*core.ScoredChunk, 0, len(vectorHits)+len(keywordHits))

	for _, hit := range append(append([]*core.ScoredChunk{}, vectorHits...), keywordHits...) {
		if pos, ok := index[hit.Chunk.Id]; ok {
			if hit.Score > merged[pos].Score {
				merged[pos].Score = hit.Score
				merged[pos].Source = hit.Source
			}
			continue
		}
		index[hit.Chunk.Id] = len(merged)
		merged = append(merged, &core.ScoredChunk{
			Chunk:  hit.Chunk,
			Score:  hit.Score,
			Source: hit.Source,
		})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	return merged
}

// expand walks the forward adjacency chain of every ranked seed.
func (r *Retriever) expand(ctx context.Context, ranked []*core.ScoredChunk, monitor RetrievalMonitor) ([]*core.ScoredChunk, error) {
	if r.expandLimit <= 0 {
		return ranked, nil
	}

	seen := make(map[core.ID]bool, len(ranked))
	for _, seed := range ranked {
		seen[seed.Chunk.Id] = true
	}

	final := make([]*core.ScoredChunk, 0, len(ranked))
	for _, seed := range ranked {
		final = append(final, seed)

		neighbors, err := r.chunks.ExpandForward(ctx, seed.Chunk.Id, r.expandMinHops, r.expandMaxHops, r.expandLimit)
		if err != nil {
			r.logger.Error("error expanding chunk neighborhood", "chunkId", seed.Chunk.Id, "err", err)
			return nil, err
		}

		added := make([]*core.ScoredChunk, 0, len(neighbors))
		for _, chunk := range neighbors {
			if seen[chunk.Id] {
				continue
			}
			seen[chunk.Id] = true
			added = append(added, &core.ScoredChunk{
				Chunk:  chunk,
				Score:  r.expandScore,
				Source: core.SourceExpansion,
			})
		}
		final = append(final, added...)
		monitor.AfterExpansion(seed.Chunk.Id, added)
	}
	return final, nil
}
