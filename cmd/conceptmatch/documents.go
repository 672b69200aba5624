package main

import (
	"github.com/poiesic/conceptmatch/annotate"
	"github.com/poiesic/conceptmatch/concepts"
	"github.com/poiesic/conceptmatch/core"
)

// inputDocument is one line of detect input.
type inputDocument struct {
	ID        string         `json:"id,omitempty"`
	Text      string         `json:"text"`
	Sentences []core.Span    `json:"sentences"`
	Tokens    []inputToken   `json:"tokens"`
	PosTags   []inputPosTag  `json:"posTags"`
	Norms     []inputNorm    `json:"norms"`
	Acronyms  []inputAcronym `json:"acronyms,omitempty"`
}

type inputToken struct {
	core.Span
	Text       string `json:"text"`
	SpaceAfter bool   `json:"spaceAfter"`
}

type inputPosTag struct {
	core.Span
	Tag string `json:"tag"`
}

type inputNorm struct {
	core.Span
	Norm string `json:"norm"`
}

type inputAcronym struct {
	core.Span
	Text       string `json:"text"`
	SpaceAfter bool   `json:"spaceAfter"`
}

// Document converts the wire form into label indexes.
func (in *inputDocument) Document() *concepts.Document {
	sentences := make([]core.Sentence, len(in.Sentences))
	for i, s := range in.Sentences {
		sentences[i] = core.Sentence{Span: s}
	}
	tokens := make([]core.TermToken, len(in.Tokens))
	for i, t := range in.Tokens {
		tokens[i] = core.TermToken{Span: t.Span, Text: t.Text, HasSpaceAfter: t.SpaceAfter}
	}
	tags := make([]core.PosTag, len(in.PosTags))
	for i, t := range in.PosTags {
		tags[i] = core.PosTag{Span: t.Span, Tag: core.PartOfSpeech(t.Tag)}
	}
	norms := make([]core.NormForm, len(in.Norms))
	for i, n := range in.Norms {
		norms[i] = core.NormForm{Span: n.Span, Norm: n.Norm}
	}
	acronyms := make([]core.Acronym, len(in.Acronyms))
	for i, a := range in.Acronyms {
		acronyms[i] = core.Acronym{Span: a.Span, Text: a.Text, HasSpaceAfter: a.SpaceAfter}
	}

	return &concepts.Document{
		Text:      in.Text,
		Sentences: core.NewLabelIndex(sentences...),
		Tokens:    core.NewLabelIndex(tokens...),
		PosTags:   core.NewLabelIndex(tags...),
		Norms:     core.NewLabelIndex(norms...),
		Acronyms:  core.NewLabelIndex(acronyms...),
	}
}

// outputDocument is one line of detect output. Line is the 1-based input
// line the document came from.
type outputDocument struct {
	ID       string                `json:"id,omitempty"`
	Line     int                   `json:"line"`
	Terms    []core.DictionaryTerm `json:"terms"`
	Concepts []core.Concept        `json:"concepts"`
	Error    string                `json:"error,omitempty"`
}

func newOutputDocument(id string, line int, result annotate.Result) outputDocument {
	out := outputDocument{
		ID:       id,
		Line:     line,
		Terms:    result.Terms,
		Concepts: result.Concepts,
	}
	if out.Terms == nil {
		out.Terms = []core.DictionaryTerm{}
	}
	if out.Concepts == nil {
		out.Concepts = []core.Concept{}
	}
	if result.Err != nil {
		out.Error = result.Err.Error()
	}
	return out
}
