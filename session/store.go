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


package session

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ainpal/lawgraph/core"
)

// session holds the conversation turns of a single session.
// Its mutex serializes appends so an exchange lands as one unit.
type session struct {
	mu    sync.Mutex
	turns []core.Turn
}

// Store keeps per-session conversation history in memory.
// It is safe for concurrent use across sessions and within a session.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session

	// maxTurns caps the history per session. Zero means unbounded.
	maxTurns int
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithMaxTurns caps the number of retained turns per session.
// When the cap is exceeded the oldest exchange is dropped first.
// Zero (the default) keeps the full history.
func WithMaxTurns(max int) Option {
	return func(s *Store) {
		s.maxTurns = max
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// New creates an empty session store.
func New(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*session),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// get returns the session, creating it when absent.
func (s *Store) get(sessionID string) *session {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[sessionID]; ok {
		return sess
	}
	sess = &session{}
	s.sessions[sessionID] = sess
	return sess
}

// Turns returns a copy of the session's history, oldest first.
// An unknown session yields an empty slice.
func (s *Store) Turns(sessionID string) []core.Turn {
	sess := s.get(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	out := make([]core.Turn, len(sess.turns))
	copy(out, sess.turns)
	return out
}

// AppendExchange records one question and its answer as a single unit.
// Both turns carry the same timestamp and no reader can observe the
// question without the answer.
func (s *Store) AppendExchange(sessionID, question, answer string) {
	sess := s.get(sessionID)
	now := time.Now().UTC()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.turns = append(sess.turns,
		core.Turn{Role: core.RoleHuman, Text: question, Timestamp: now},
		core.Turn{Role: core.RoleAI, Text: answer, Timestamp: now},
	)

	if s.maxTurns > 0 {
		for len(sess.turns) > s.maxTurns {
			// Drop whole exchanges so the history never starts mid-answer.
			sess.turns = sess.turns[2:]
		}
	}
}

// Clear removes the session.
// Returns whether the session existed, even with an empty history.
func (s *Store) Clear(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[sessionID]
	if !ok {
		return false
	}

	delete(s.sessions, sessionID)
	s.logger.Debug("cleared session", "sessionId", sessionID)
	return true
}

// Render formats the session's history for inclusion in a prompt.
// Each turn becomes one line prefixed with the speaker.
// An empty history renders as an empty string.
func (s *Store) Render(sessionID string) string {
	turns := s.Turns(sessionID)
	if len(turns) == 0 {
		return ""
	}

	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		prefix := "Human"
		if turn.Role == core.RoleAI {
			prefix = "AI"
		}
		lines = append(lines, prefix+": "+turn.Text)
	}
	return strings.Join(lines, "\n")
}

// Len reports the number of turns recorded for the session.
func (s *Store) Len(sessionID string) int {
	sess := s.get(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return len(sess.turns)
}
