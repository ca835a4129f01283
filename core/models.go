package core

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Chunk IDs are generated with content-based hashing so that reingesting
// the same corpus produces the same IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Role identifies the speaker of a conversation turn.
type Role int

const (
	// RoleHuman represents the asking user.
	RoleHuman Role = iota + 1
	// RoleAI represents the assistant.
	RoleAI
)

// Source identifies which retrieval signal produced a candidate.
type Source int

const (
	// SourceVector marks a hit from embedding similarity search.
	SourceVector Source = iota + 1
	// SourceKeyword marks a hit from lexical substring search.
	SourceKeyword
	// SourceExpansion marks a chunk pulled in via forward adjacency.
	SourceExpansion
)

func (s Source) String() string {
	switch s {
	case SourceVector:
		return "vector"
	case SourceKeyword:
		return "keyword"
	case SourceExpansion:
		return "expansion"
	default:
		return "unknown"
	}
}

// Chunk is the smallest retrievable unit of legal text.
// Chunks carry citation metadata and are linked to the following chunk of
// the same law in document order, forming a forward-adjacency chain.
type Chunk struct {
	Id            ID
	LawTitle      string
	SectionNumber string
	Text          string
	ChunkIndex    int       // position within the law, document order
	NextId        ID        // forward adjacency edge; 0 means last chunk of its law
	Vector        []float32 // embedding vector (populated by ingestion)
	InsertedAt    time.Time
	UpdatedAt     time.Time
}

// ContentKey returns the string the chunk's content-based ID is derived from.
// ChunkIndex is included so that repeated text within a law still yields
// distinct IDs.
func (c *Chunk) ContentKey() string {
	return fmt.Sprintf("(%s,%s,%d,%s)", c.LawTitle, c.SectionNumber, c.ChunkIndex, c.Text)
}

// ScoredChunk pairs a chunk with a relevance score and the signal that found it.
// Scores are only comparable within a single retrieval call.
type ScoredChunk struct {
	Chunk  *Chunk
	Score  float32
	Source Source
}

// Turn is a single entry in a session's conversation log.
type Turn struct {
	Role      Role
	Text      string
	Timestamp time.Time
}
