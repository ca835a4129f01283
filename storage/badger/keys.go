package badger

import (
	"github.com/ainpal/lawgraph/core"
	"github.com/ainpal/lawgraph/storage"
)

// Key prefixes for different data types
const (
	chunkRecordPrefix = "chkrec"
)

// makeChunkKey generates a key for a chunk by ID.
// The suffix is the serialized ID, so key and record agree on encoding.
func makeChunkKey(id core.ID) []byte {
	prefix := chunkRecordPrefix + ":"
	key := make([]byte, 0, len(prefix)+9)
	key = append(key, prefix...)
	return append(key, storage.MarshalID(id)...)
}

// chunkKeyID recovers the chunk ID from a record key.
func chunkKeyID(key []byte) (core.ID, error) {
	return storage.UnmarshalID(key[len(chunkRecordPrefix)+1:])
}
