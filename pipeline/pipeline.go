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


package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ainpal/lawgraph/retrieval"
	"github.com/ainpal/lawgraph/session"
)

// DefaultSessionID is used when a request carries no session identifier.
const DefaultSessionID = "default"

// Request is one question asked of the assistant.
type Request struct {
	// Query is the user's question. Required.
	Query string

	// SessionID selects the conversation history to use.
	// Empty falls back to DefaultSessionID.
	SessionID string
}

// Response is the assistant's answer together with retrieval diagnostics.
type Response struct {
	Answer      string
	Diagnostics retrieval.Diagnostics
}

// Pipeline orchestrates a question through classification, retrieval,
// answer generation and history recording.
type Pipeline struct {
	retriever *retrieval.Retriever
	answerer  *Answerer
	sessions  *session.Store
	decider   *Decider
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithDecider enables relevance classification and query rewriting.
// Without it every question goes straight to retrieval.
func WithDecider(decider *Decider) Option {
	return func(p *Pipeline) error {
		p.decider = decider
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

// New creates a pipeline from its collaborators.
func New(retriever *retrieval.Retriever, answerer *Answerer, sessions *session.Store, opts ...Option) (*Pipeline, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if answerer == nil {
		return nil, ErrAnswererRequired
	}
	if sessions == nil {
		return nil, ErrSessionStoreRequired
	}

	p := &Pipeline{
		retriever: retriever,
		answerer:  answerer,
		sessions:  sessions,
		logger:    slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Ask answers one question.
//
// When a decider is configured the question is first classified. An
// out-of-domain question short-circuits with the refusal answer, no
// retrieval happens and nothing is written to the session history.
// Otherwise retrieval runs on the rewritten query while the answer
// prompt keeps the original wording. The exchange is recorded only
// after generation succeeds, so a failed call leaves the history
// untouched.
func (p *Pipeline) Ask(ctx context.Context, req Request) (*Response, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrInvalidRequest
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	searchQuery := query
	if p.decider != nil {
		verdict, err := p.decider.Decide(ctx, query)
		if err != nil {
			return nil, err
		}
		if !verdict.Relevant {
			p.logger.Info("refusing out-of-domain question", "sessionId", sessionID)
			return &Response{Answer: RefusalMessage}, nil
		}
		searchQuery = verdict.Query
	}

	result, err := p.retriever.Retrieve(ctx, searchQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrievalFailed, err)
	}

	contextBlock := retrieval.BuildContext(result.Chunks)
	history := p.sessions.Render(sessionID)

	answer, err := p.answerer.Answer(ctx, query, contextBlock, history)
	if err != nil {
		return nil, err
	}

	p.sessions.AppendExchange(sessionID, query, answer)

	p.logger.Debug("question answered",
		"sessionId", sessionID,
		"retrievedChunks", result.Diagnostics.RetrievedChunks)

	return &Response{
		Answer:      answer,
		Diagnostics: result.Diagnostics,
	}, nil
}
