package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLaw() *Law {
	return &Law{
		LawID: 11,
		Title: "The Penal Code, 1860",
		Sections: []Section{
			{Number: "378", Headline: "Theft", Text: "Whoever, intending to take dishonestly any movable property out of the possession of any person without that person's consent, moves that property in order to such taking, is said to commit theft."},
			{Number: "379", Headline: "Punishment for theft", Text: "Whoever commits theft shall be punished with imprisonment of either description for a term which may extend to three years, or with fine, or with both."},
		},
	}
}

func TestBuildChunks(t *testing.T) {
	chunks, err := BuildChunks(testLaw(), 0)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	// Indexes run sequentially across the law
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, 1, chunks[1].ChunkIndex)

	// Citation metadata is carried on every chunk
	assert.Equal(t, "The Penal Code, 1860", chunks[0].LawTitle)
	assert.Equal(t, "378", chunks[0].SectionNumber)
	assert.Equal(t, "379", chunks[1].SectionNumber)

	// The headline leads the chunk text
	assert.True(t, strings.HasPrefix(chunks[0].Text, "Theft\n"))

	// Chunks link forward in document order and the chain terminates
	assert.Equal(t, chunks[1].Id, chunks[0].NextId)
	assert.Zero(t, chunks[1].NextId)

	// IDs derive from content
	assert.NotZero(t, chunks[0].Id)
	assert.NotEqual(t, chunks[0].Id, chunks[1].Id)
}

func TestBuildChunksDeterministicIDs(t *testing.T) {
	first, err := BuildChunks(testLaw(), 0)
	require.NoError(t, err)
	second, err := BuildChunks(testLaw(), 0)
	require.NoError(t, err)

	for i := range first {
		assert.Equal(t, first[i].Id, second[i].Id)
	}
}

func TestBuildChunksSplitsLongSections(t *testing.T) {
	sentence := "This clause restates the obligation in slightly different words. "
	law := &Law{
		Title: "A Long Act",
		Sections: []Section{
			{Number: "1", Text: strings.Repeat(sentence, 30)},
		},
	}

	chunks, err := BuildChunks(law, 500)
	require.NoError(t, err)
	assert.Greater(t, len(chunks), 1)

	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Text), 500)
		assert.Equal(t, "1", chunk.SectionNumber)
		assert.Equal(t, i, chunk.ChunkIndex)
	}

	// The chain covers every chunk in order
	for i := 0; i < len(chunks)-1; i++ {
		assert.Equal(t, chunks[i+1].Id, chunks[i].NextId)
	}
}

func TestBuildChunksSkipsEmptySections(t *testing.T) {
	law := &Law{
		Title: "Sparse Act",
		Sections: []Section{
			{Number: "1", Text: "Something."},
			{Number: "2", Text: "   "},
			{Number: "3", Text: "Something else."},
		},
	}

	chunks, err := BuildChunks(law, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "1", chunks[0].SectionNumber)
	assert.Equal(t, "3", chunks[1].SectionNumber)
}

func TestBuildChunksEmptyLaw(t *testing.T) {
	law := &Law{Title: "Empty Act"}

	_, err := BuildChunks(law, 0)
	assert.ErrorIs(t, err, ErrEmptyLaw)
}

func TestSplitTextHardSplit(t *testing.T) {
	// No paragraph or sentence boundaries at all
	text := strings.Repeat("x", 250)

	pieces := splitText(text, 100)
	require.Len(t, pieces, 3)
	for _, piece := range pieces {
		assert.LessOrEqual(t, len(piece), 100)
	}
	assert.Equal(t, text, strings.Join(pieces, ""))
}
