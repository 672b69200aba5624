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

import (
	"fmt"
)

// ValidateSpan validates a span against a document of textLen bytes.
//
// Validation rules:
//   - Begin must not be negative
//   - End must not precede Begin
//   - End must not exceed textLen
func ValidateSpan(span Span, textLen int) error {
	if span.Begin < 0 || span.End < span.Begin {
		return fmt.Errorf("%w: [%d, %d)", ErrInvalidSpan, span.Begin, span.End)
	}
	if span.End > textLen {
		return fmt.Errorf("%w: [%d, %d) exceeds text length %d", ErrSpanOutOfRange, span.Begin, span.End, textLen)
	}
	return nil
}

// ValidateRecord validates a ConceptRecord before it is written to a dictionary.
//
// Validation rules:
//   - CUI must not be empty
//
// NOT validated (checked by the record layout when encoding):
//   - identifier widths
func ValidateRecord(record ConceptRecord) error {
	if record.CUI == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyCUI)
	}
	return nil
}
