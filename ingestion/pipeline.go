// Copyright 2025 The AinPal Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/ainpal/lawgraph/ai"
	"github.com/ainpal/lawgraph/core"
	"github.com/ainpal/lawgraph/storage"
)

// defaultBatchSize is how many chunks are embedded per model call.
const defaultBatchSize = 16

// Pipeline ingests laws into the chunk store and embeds them.
// Embedding batches run concurrently on a worker pool.
type Pipeline struct {
	chunks    storage.ChunkRepository
	embedder  ai.Embedder
	pool      *ants.Pool
	chunkSize int
	batchSize int
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithChunkSize sets the maximum chunk length in characters.
func WithChunkSize(size int) Option {
	return func(p *Pipeline) error {
		p.chunkSize = size
		return nil
	}
}

// WithBatchSize sets how many chunks are embedded per model call.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(chunks storage.ChunkRepository, provider ai.AIProvider, opts ...Option) (*Pipeline, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		chunks:    chunks,
		embedder:  provider.Embedder(),
		pool:      pool,
		chunkSize: defaultChunkSize,
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// IngestLaw chunks the law, stores the chunks and embeds them.
// The chunks are written before embedding so a failed embedding run can
// be repaired later with a reindex pass.
func (p *Pipeline) IngestLaw(ctx context.Context, law *Law) (int, error) {
	chunks, err := BuildChunks(law, p.chunkSize)
	if err != nil {
		return 0, err
	}

	p.logger.Info("ingesting law", "title", law.Title, "chunks", len(chunks))

	added, err := p.chunks.AddChunks(ctx, chunks...)
	if err != nil {
		return 0, err
	}

	if err := p.embedChunks(ctx, added); err != nil {
		return len(added), err
	}
	return len(added), nil
}

// IngestCorpus ingests every law file in the directory.
// Returns the total number of chunks stored.
func (p *Pipeline) IngestCorpus(ctx context.Context, dir string) (int, error) {
	laws, err := LoadCorpusDir(dir)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, law := range laws {
		count, err := p.IngestLaw(ctx, law)
		total += count
		if err != nil {
			return total, fmt.Errorf("ingesting %q: %w", law.Title, err)
		}
	}
	return total, nil
}

// embedChunks embeds the chunks in batches on the worker pool and
// writes the vectors back. The first batch error wins.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []*core.Chunk) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for start := 0; start < len(chunks); start += p.batchSize {
		end := start + p.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			if err := p.embedBatch(ctx, batch); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			// Let in-flight batches finish before reporting; a batch
			// writing vectors after return would race the caller's Release.
			wg.Wait()
			return submitErr
		}
	}

	wg.Wait()
	return firstErr
}

func (p *Pipeline) embedBatch(ctx context.Context, batch []*core.Chunk) error {
	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Text
	}

	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		p.logger.Error("error generating embeddings", "batch", len(texts), "err", err)
		return err
	}
	if len(embeddings) != len(batch) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(batch), len(embeddings))
	}

	for i := range embeddings {
		batch[i].Vector = core.NormalizeVector(embeddings[i])
	}

	_, err = p.chunks.UpdateChunks(ctx, batch...)
	return err
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
