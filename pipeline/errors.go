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


package pipeline

import "errors"

var (
	// ErrInvalidRequest is returned when the request carries no query text.
	ErrInvalidRequest = errors.New("query text is required")

	// ErrClassificationFailed wraps failures of the relevance classifier.
	ErrClassificationFailed = errors.New("query classification failed")

	// ErrRetrievalFailed wraps failures of the retrieval stage.
	ErrRetrievalFailed = errors.New("retrieval failed")

	// ErrGenerationFailed wraps failures of the answer generation stage.
	ErrGenerationFailed = errors.New("answer generation failed")

	// ErrRetrieverRequired is returned when a retriever is not provided.
	ErrRetrieverRequired = errors.New("retriever required")

	// ErrAnswererRequired is returned when an answerer is not provided.
	ErrAnswererRequired = errors.New("answerer required")

	// ErrSessionStoreRequired is returned when a session store is not provided.
	ErrSessionStoreRequired = errors.New("session store required")

	// ErrGeneratorRequired is returned when a generator is not provided.
	ErrGeneratorRequired = errors.New("generator required")
)
