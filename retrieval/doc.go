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


// Package retrieval provides hybrid search over a corpus of law chunks.
//
// The Retriever type implements a multi-stage retrieval algorithm that combines:
//   - Semantic search using vector embeddings
//   - Keyword search over chunk texts
//   - Forward adjacency expansion along section order
//
// Candidates from both search legs are merged, deduplicated and ranked,
// then each ranked chunk pulls in the sections immediately following it
// so the assembled context keeps its statutory continuity.
package retrieval
