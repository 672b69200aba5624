// Copyright 2025 Poiesic Systems
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


package core

import "errors"

// Domain validation errors
var (
	// ErrMalformedTermBag indicates encoded term bag bytes whose length is not a multiple of 4.
	ErrMalformedTermBag = errors.New("malformed term bag")

	// ErrInvalidSpan indicates a span with a negative begin or an end before its begin.
	ErrInvalidSpan = errors.New("invalid span")

	// ErrSpanOutOfRange indicates a span that extends past the end of the document text.
	ErrSpanOutOfRange = errors.New("span out of range")

	// ErrInvalidRecord indicates a ConceptRecord failed validation.
	ErrInvalidRecord = errors.New("invalid concept record")

	// ErrEmptyCUI indicates a ConceptRecord without a concept identifier.
	ErrEmptyCUI = errors.New("concept identifier cannot be empty")
)
