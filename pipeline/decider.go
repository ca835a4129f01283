package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ainpal/lawgraph/ai"
)

// RefusalMessage is the answer returned for questions outside the
// assistant's legal domain. The classifier model is instructed to emit
// this exact sentence, so it doubles as the detection marker.
const RefusalMessage = "This question is not related to Bangladeshi law."

const deciderPromptTemplate = `You are a law assistant for question-answering tasks on Bangladeshi legislature.
Determine if the following question is related to Bangladeshi law. If it is, rewrite the question to optimize it for semantic retrieval. If it is not, respond with "This question is not related to Bangladeshi law."

Question: %q

Response:`

// Verdict is the classifier's judgement on an incoming question.
type Verdict struct {
	// Relevant reports whether the question falls within Bangladeshi law.
	Relevant bool

	// Query is the retrieval-optimized rewrite of the question.
	// For irrelevant questions it carries the original text unchanged.
	Query string
}

// Decider classifies questions and rewrites relevant ones for retrieval.
type Decider struct {
	generator ai.Generator
	logger    *slog.Logger
}

// NewDecider creates a decider backed by the given generator.
func NewDecider(generator ai.Generator) (*Decider, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	return &Decider{
		generator: generator,
		logger:    slog.Default().With("component", "decider"),
	}, nil
}

// Decide asks the model whether the question concerns Bangladeshi law.
// Relevant questions come back rewritten for semantic retrieval.
func (d *Decider) Decide(ctx context.Context, query string) (*Verdict, error) {
	prompt := fmt.Sprintf(deciderPromptTemplate, query)

	response, err := d.generator.Generate(ctx, prompt)
	if err != nil {
		d.logger.Error("classifier call failed", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}

	if strings.Contains(response, RefusalMessage) {
		d.logger.Debug("question classified as out of domain")
		return &Verdict{Relevant: false, Query: query}, nil
	}

	rewritten := strings.Trim(strings.TrimSpace(response), `"`)
	if rewritten == "" {
		// A blank rewrite falls back to the original question.
		rewritten = query
	}

	d.logger.Debug("question rewritten for retrieval", "rewritten", rewritten)
	return &Verdict{Relevant: true, Query: rewritten}, nil
}
