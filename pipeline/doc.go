// Package pipeline orchestrates question answering over the law corpus.
//
// A question flows through up to five stages: relevance classification
// (optional), hybrid retrieval, context assembly, answer generation and
// history recording. Classification uses the same generator as answering
// and rewrites in-domain questions for better retrieval recall; questions
// outside Bangladeshi law are refused without touching the corpus.
package pipeline
