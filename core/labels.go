package core

import (
	"cmp"
	"slices"
	"sort"
)

// Span is a half-open [Begin, End) character offset pair into document text.
type Span struct {
	Begin int `json:"begin"`
	End   int `json:"end"`
}

// Len returns the number of characters covered.
func (s Span) Len() int {
	return s.End - s.Begin
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return s.Begin <= other.Begin && other.End <= s.End
}

// Covered returns the substring of text covered by s.
func (s Span) Covered(text string) string {
	return text[s.Begin:s.End]
}

// Location lets a bare Span be stored in a LabelIndex.
func (s Span) Location() Span {
	return s
}

// Label is anything anchored to a span of document text.
type Label interface {
	Location() Span
}

// PartOfSpeech is a Penn Treebank style tag.
type PartOfSpeech string

// Sentence is a sentence boundary.
type Sentence struct {
	Span
}

// TermToken is a token produced by upstream tokenization.
type TermToken struct {
	Span
	Text          string
	HasSpaceAfter bool
}

// PosTag is the part of speech assigned to a token span.
type PosTag struct {
	Span
	Tag PartOfSpeech
}

// NormForm is the normalized form of the token at its span.
type NormForm struct {
	Span
	Norm string
}

// Acronym is an expansion covering an acronym token. Text is the long form.
type Acronym struct {
	Span
	Text          string
	HasSpaceAfter bool
}

// LabelIndex is an immutable, span-ordered collection of labels.
// It is safe for concurrent reads.
type LabelIndex[T Label] struct {
	labels []T
}

// NewLabelIndex copies labels and orders them by (Begin, End). Labels with
// equal spans keep their input order.
func NewLabelIndex[T Label](labels ...T) *LabelIndex[T] {
	sorted := slices.Clone(labels)
	slices.SortStableFunc(sorted, func(a, b T) int {
		la, lb := a.Location(), b.Location()
		if c := cmp.Compare(la.Begin, lb.Begin); c != 0 {
			return c
		}
		return cmp.Compare(la.End, lb.End)
	})
	return &LabelIndex[T]{labels: sorted}
}

// Len returns the number of labels.
func (idx *LabelIndex[T]) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.labels)
}

// All returns the labels in span order. The slice must not be modified.
func (idx *LabelIndex[T]) All() []T {
	if idx == nil {
		return nil
	}
	return idx.labels
}

// Inside returns the labels whose spans are contained in span, in order.
func (idx *LabelIndex[T]) Inside(span Span) []T {
	if idx == nil {
		return nil
	}
	start := idx.lowerBound(span.Begin)
	var result []T
	for _, label := range idx.labels[start:] {
		loc := label.Location()
		if loc.Begin > span.End || (loc.Begin == span.End && loc.Len() > 0) {
			break
		}
		if span.Contains(loc) {
			result = append(result, label)
		}
	}
	return result
}

// FirstAt returns the first label whose span equals span exactly.
func (idx *LabelIndex[T]) FirstAt(span Span) (T, bool) {
	var zero T
	if idx == nil {
		return zero, false
	}
	for _, label := range idx.labels[idx.lowerBound(span.Begin):] {
		loc := label.Location()
		if loc.Begin != span.Begin {
			break
		}
		if loc.End == span.End {
			return label, true
		}
	}
	return zero, false
}

// lowerBound returns the index of the first label beginning at or after begin.
func (idx *LabelIndex[T]) lowerBound(begin int) int {
	return sort.Search(len(idx.labels), func(i int) bool {
		return idx.labels[i].Location().Begin >= begin
	})
}
