package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ainpal/lawgraph/ai"
)

const answerPromptTemplate = `You are a law assistant for question-answering tasks on Bangladeshi legislature.
Use the following pieces of retrieved context to answer the question.
Don't start your answer with "Based on the retrieved context, ...". And if the question is a greeting or something irrelevant, answer accordingly.
If you don't know the answer, just say that you don't know. Don't say something like "The retrieved context is not enough to answer the question."

Chat history:
%s

Question: %q

Context: %q

Answer:`

// Answerer produces the final answer from the question, the retrieved
// context and the conversation so far.
type Answerer struct {
	generator ai.Generator
	logger    *slog.Logger
}

// NewAnswerer creates an answerer backed by the given generator.
func NewAnswerer(generator ai.Generator) (*Answerer, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	return &Answerer{
		generator: generator,
		logger:    slog.Default().With("component", "answerer"),
	}, nil
}

// Answer generates a grounded answer. The question is the user's
// original text, not the retrieval rewrite, so the model answers what
// was actually asked.
func (a *Answerer) Answer(ctx context.Context, question, contextBlock, history string) (string, error) {
	prompt := fmt.Sprintf(answerPromptTemplate, history, question, contextBlock)

	answer, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		a.logger.Error("answer generation failed", "err", err)
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	return answer, nil
}
