package retrieval

import (
	"fmt"
	"strings"

	"github.com/ainpal/lawgraph/core"
)

// BuildContext formats retrieved chunks into the context block handed to
// the answer prompt. Each chunk is cited with its law title and section
// number so the model can reference them in the answer.
func BuildContext(chunks []*core.ScoredChunk) string {
	if len(chunks) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(chunks))
	for _, sc := range chunks {
		blocks = append(blocks, fmt.Sprintf("\n\n[%s | Section %s]\n %s",
			sc.Chunk.LawTitle, sc.Chunk.SectionNumber, sc.Chunk.Text))
	}
	return strings.Join(blocks, "\n")
}
