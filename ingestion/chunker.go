package ingestion

import (
	"strings"

	"github.com/ainpal/lawgraph/core"
)

// defaultChunkSize is the maximum chunk length in characters.
// Sections shorter than this become a single chunk.
const defaultChunkSize = 1000

// BuildChunks splits a law into storage chunks.
//
// Each section is split at paragraph boundaries first, then at sentence
// boundaries when a paragraph alone exceeds the size limit. Chunk indexes
// run sequentially across the whole law and every chunk is linked to the
// one that follows it in document order, so retrieval can walk forward
// through the act.
func BuildChunks(law *Law, chunkSize int) ([]*core.Chunk, error) {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	chunks := make([]*core.Chunk, 0, len(law.Sections))
	index := 0
	for _, section := range law.Sections {
		text := strings.TrimSpace(section.Text)
		if text == "" {
			continue
		}
		if section.Headline != "" {
			text = section.Headline + "\n" + text
		}

		for _, piece := range splitText(text, chunkSize) {
			chunk := &core.Chunk{
				LawTitle:      law.Title,
				SectionNumber: section.Number,
				Text:          piece,
				ChunkIndex:    index,
			}
			chunk.Id = core.IDFromContent(chunk.ContentKey())
			chunks = append(chunks, chunk)
			index++
		}
	}

	if len(chunks) == 0 {
		return nil, ErrEmptyLaw
	}

	for i := 0; i < len(chunks)-1; i++ {
		chunks[i].NextId = chunks[i+1].Id
	}
	return chunks, nil
}

// splitText breaks text into pieces no longer than limit characters.
// It prefers paragraph boundaries, falls back to sentence boundaries,
// and hard-splits only when a single sentence exceeds the limit.
func splitText(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	pieces := make([]string, 0, len(text)/limit+1)
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			pieces = append(pieces, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		units := []string{paragraph}
		if len(paragraph) > limit {
			units = splitSentences(paragraph)
		}

		for _, unit := range units {
			for len(unit) > limit {
				// A single run without sentence breaks, cut it hard.
				flush()
				pieces = append(pieces, strings.TrimSpace(unit[:limit]))
				unit = strings.TrimSpace(unit[limit:])
			}
			if unit == "" {
				continue
			}
			if current.Len() > 0 && current.Len()+len(unit)+1 > limit {
				flush()
			}
			if current.Len() > 0 {
				current.WriteByte(' ')
			}
			current.WriteString(unit)
		}
	}
	flush()
	return pieces
}

// splitSentences splits on sentence-final periods followed by a space.
// Good enough for statute text, which is heavily clause-structured.
func splitSentences(text string) []string {
	parts := strings.SplitAfter(text, ". ")
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}
