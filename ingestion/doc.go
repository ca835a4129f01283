// Package ingestion loads law corpus files into the chunk store.
//
// The Pipeline type manages the ingestion workflow:
//   - Parsing law JSON files into sections
//   - Chunking section text and linking chunks in document order
//   - Storing chunks and embedding them in concurrent batches
//
// Chunk identifiers derive from content, so ingesting the same corpus
// twice is idempotent.
package ingestion
