package core

import (
	"encoding/binary"
	"strconv"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for emitted entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// TermID is the integer assigned to a string by a term store.
// Ids are stable within one store build only.
type TermID int32

// UnknownTermID denotes a string the term store does not contain.
const UnknownTermID TermID = -1

// ConceptRecord is one dictionary hit. It is produced only by dictionary
// lookups and is never modified after decoding.
type ConceptRecord struct {
	SUI      string // source unique identifier
	CUI      string // concept unique identifier
	TUI      string // type unique identifier
	SourceID int32  // resolved through the source registry
}

// DictionaryTerm marks a span for which at least one concept matched.
type DictionaryTerm struct {
	Span Span `json:"span"`
}

// Concept is a labeled concept occurrence emitted by the matcher.
type Concept struct {
	ID         ID      `json:"id"`
	Span       Span    `json:"span"`
	SUI        string  `json:"sui"`
	CUI        string  `json:"cui"`
	TUI        string  `json:"tui"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
}

// NewConcept builds a Concept for a record over span and assigns its content ID.
func NewConcept(span Span, record ConceptRecord, source string, confidence float64) Concept {
	return Concept{
		ID:         IDFromContent(conceptKey(span, record.CUI, source)),
		Span:       span,
		SUI:        record.SUI,
		CUI:        record.CUI,
		TUI:        record.TUI,
		Source:     source,
		Confidence: confidence,
	}
}

// conceptKey is the content hashed into a concept ID: "(begin,end,cui,source)".
func conceptKey(span Span, cui, source string) string {
	return "(" + strconv.Itoa(span.Begin) + "," + strconv.Itoa(span.End) + "," + cui + "," + source + ")"
}
