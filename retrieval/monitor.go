package retrieval

import "github.com/ainpal/lawgraph/core"

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results during retrieval.
type RetrievalMonitor interface {
	Start(query string)
	AfterVectorSearch(hits []*core.ScoredChunk)
	AfterKeywordSearch(terms []string, hits []*core.ScoredChunk)
	AfterMerge(ranked []*core.ScoredChunk)
	AfterExpansion(seed core.ID, added []*core.ScoredChunk)
	Finish(result *Result)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                    {}
func (n *noopMonitor) AfterVectorSearch(_ []*core.ScoredChunk)           {}
func (n *noopMonitor) AfterKeywordSearch(_ []string, _ []*core.ScoredChunk) {}
func (n *noopMonitor) AfterMerge(_ []*core.ScoredChunk)                  {}
func (n *noopMonitor) AfterExpansion(_ core.ID, _ []*core.ScoredChunk)   {}
func (n *noopMonitor) Finish(_ *Result)                                  {}
