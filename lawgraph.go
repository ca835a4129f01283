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


// Package lawgraph is a question-answering assistant over Bangladeshi
// legislation. It combines a chunked law corpus with hybrid retrieval
// and a generative model to produce grounded, cited answers.
package lawgraph

import (
	"context"
	"io"
	"log/slog"

	"github.com/ainpal/lawgraph/ai"
	"github.com/ainpal/lawgraph/ai/openai"
	"github.com/ainpal/lawgraph/ingestion"
	"github.com/ainpal/lawgraph/pipeline"
	"github.com/ainpal/lawgraph/reindex"
	"github.com/ainpal/lawgraph/retrieval"
	"github.com/ainpal/lawgraph/session"
	"github.com/ainpal/lawgraph/storage"
	"github.com/ainpal/lawgraph/storage/badger"
)

// Assistant owns the chunk store, the AI services and the answer
// pipeline. It is the main entry point for embedding the library.
type Assistant struct {
	backend   *badger.Backend
	chunkRepo storage.ChunkRepository
	provider  ai.AIProvider
	sessions  *session.Store
	pipeline  *pipeline.Pipeline
	logger    *slog.Logger
}

// AssistantOption configures an Assistant.
type AssistantOption func(*assistantOptions)

type assistantOptions struct {
	aiConfig    *ai.Config
	provider    ai.AIProvider
	withDecider bool
	maxTurns    int
}

// WithAIConfig sets the AI service configuration.
// Ignored when WithProvider is also given.
func WithAIConfig(config *ai.Config) AssistantOption {
	return func(o *assistantOptions) {
		o.aiConfig = config
	}
}

// WithProvider supplies a fully constructed AI provider instead of the
// default OpenAI-compatible one.
func WithProvider(provider ai.AIProvider) AssistantOption {
	return func(o *assistantOptions) {
		o.provider = provider
	}
}

// WithoutDecider disables relevance classification. Every question goes
// straight to retrieval and nothing is ever refused.
func WithoutDecider() AssistantOption {
	return func(o *assistantOptions) {
		o.withDecider = false
	}
}

// WithMaxTurns caps the retained conversation history per session.
// Zero (the default) keeps the full history.
func WithMaxTurns(max int) AssistantOption {
	return func(o *assistantOptions) {
		o.maxTurns = max
	}
}

// Open creates an assistant over the chunk store at filePath.
func Open(filePath string, opts ...AssistantOption) (*Assistant, error) {
	// Apply options
	options := &assistantOptions{
		aiConfig:    ai.DefaultConfig(), // Default if not provided
		withDecider: true,
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	// Create chunk repository
	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			chunkRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	assistant, err := assemble(backend, chunkRepo, provider, options)
	if err != nil {
		provider.Close()
		chunkRepo.Close()
		backend.Close()
		return nil, err
	}
	return assistant, nil
}

// assemble wires the retriever, answerer, decider and session store
// into a pipeline.
func assemble(backend *badger.Backend, chunkRepo storage.ChunkRepository, provider ai.AIProvider, options *assistantOptions) (*Assistant, error) {
	retriever, err := retrieval.NewRetriever(chunkRepo, provider.Embedder())
	if err != nil {
		return nil, err
	}

	answerer, err := pipeline.NewAnswerer(provider.Generator())
	if err != nil {
		return nil, err
	}

	var sessionOpts []session.Option
	if options.maxTurns > 0 {
		sessionOpts = append(sessionOpts, session.WithMaxTurns(options.maxTurns))
	}
	sessions := session.New(sessionOpts...)

	var pipelineOpts []pipeline.Option
	if options.withDecider {
		decider, err := pipeline.NewDecider(provider.Generator())
		if err != nil {
			return nil, err
		}
		pipelineOpts = append(pipelineOpts, pipeline.WithDecider(decider))
	}

	p, err := pipeline.New(retriever, answerer, sessions, pipelineOpts...)
	if err != nil {
		return nil, err
	}

	return &Assistant{
		backend:   backend,
		chunkRepo: chunkRepo,
		provider:  provider,
		sessions:  sessions,
		pipeline:  p,
		logger:    slog.Default(),
	}, nil
}

// Ask answers one question within the given session.
// An empty sessionID uses the shared default session.
func (a *Assistant) Ask(ctx context.Context, query, sessionID string) (*pipeline.Response, error) {
	return a.pipeline.Ask(ctx, pipeline.Request{Query: query, SessionID: sessionID})
}

// ClearSession removes the session and its conversation history.
// Returns whether the session existed.
func (a *Assistant) ClearSession(sessionID string) bool {
	return a.sessions.Clear(sessionID)
}

// ChunkRepository exposes the underlying chunk store.
func (a *Assistant) ChunkRepository() storage.ChunkRepository {
	return a.chunkRepo
}

// NewIngestionPipeline creates an ingestion pipeline over the assistant's
// store and AI services.
func (a *Assistant) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(a.chunkRepo, a.provider, opts...)
}

// Ingest loads every law file in dir into the assistant's store and embeds
// the resulting chunks. Returns the number of chunks stored.
func (a *Assistant) Ingest(ctx context.Context, dir string) (int, error) {
	ing, err := a.NewIngestionPipeline()
	if err != nil {
		return 0, err
	}
	defer ing.Release()
	return ing.IngestCorpus(ctx, dir)
}

// NewReindexer creates a reindexer over the assistant's store and embedder.
func (a *Assistant) NewReindexer(config *reindex.Config, progress io.Writer) *reindex.Reindexer {
	return reindex.NewReindexer(a.chunkRepo, a.provider.Embedder(), config, progress)
}

func (a *Assistant) Close() error {
	// Close AI provider first
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}

	// Close repository
	if err := a.chunkRepo.Close(); err != nil {
		a.logger.Error("error closing chunk repository", "err", err)
		return err
	}

	// Close backend
	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
