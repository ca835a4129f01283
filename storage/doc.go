// Copyright 2025 The AinPal Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package storage defines the chunk store contract consumed by retrieval
// and ingestion, together with the serialization helpers backends share.
//
// The ChunkRepository interface exposes the three retrieval primitives
// (vector similarity, keyword substring match, forward-adjacency expansion)
// and the write operations the ingestion pipeline needs. Backends live in
// subpackages; see storage/badger for the embedded BadgerDB implementation.
package storage
