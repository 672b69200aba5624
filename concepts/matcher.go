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


package concepts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/conceptmatch/core"
	"github.com/poiesic/conceptmatch/dictionary"
	"github.com/poiesic/conceptmatch/metrics"
	"github.com/poiesic/conceptmatch/storage"
)

// SpanSize is the largest number of tokens in a candidate span.
const SpanSize = 5

// Dictionary is the lookup surface the matcher needs.
// *dictionary.Dictionary implements it.
type Dictionary interface {
	ForPhrase(ctx context.Context, phrase string) ([]core.ConceptRecord, error)
	ForLowercasePhrase(ctx context.Context, phrase string) ([]core.ConceptRecord, error)
	ForNorms(ctx context.Context, bag core.TermBag) ([]core.ConceptRecord, error)
	ResolveSource(id int32) string
}

// TermLookup maps norm strings to term ids.
// *dictionary.TermStore implements it.
type TermLookup interface {
	Lookup(ctx context.Context, term string) (core.TermID, error)
}

var (
	_ Dictionary = (*dictionary.Dictionary)(nil)
	_ TermLookup = (*dictionary.TermStore)(nil)
)

// Matcher finds dictionary concepts in documents. It holds no per-document
// state, so one Matcher may serve any number of documents concurrently.
type Matcher struct {
	dict                  Dictionary
	terms                 TermLookup
	lowercaseSingleTokens bool
	metrics               *metrics.Metrics
	logger                *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// WithMetrics records lookups and matches in m. A nil m disables metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(matcher *Matcher) error {
		matcher.metrics = m
		return nil
	}
}

// WithLowercaseSingleTokens also tries the lowercase index for candidates of
// a single token. By default a single token must match exactly.
func WithLowercaseSingleTokens(enabled bool) Option {
	return func(m *Matcher) error {
		m.lowercaseSingleTokens = enabled
		return nil
	}
}

// NewMatcher creates a matcher over dict, using terms to encode norm bags.
func NewMatcher(dict Dictionary, terms TermLookup, opts ...Option) (*Matcher, error) {
	if dict == nil {
		return nil, ErrDictionaryRequired
	}
	if terms == nil {
		return nil, ErrTermLookupRequired
	}

	m := &Matcher{
		dict:   dict,
		terms:  terms,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	m.logger = m.logger.With("component", "matcher")
	return m, nil
}

// Match labels every concept found in doc into sink. Labels of one sentence
// are emitted in non-decreasing start order. A store failure or a canceled
// context stops matching; labels already emitted stay in the sink.
func (m *Matcher) Match(ctx context.Context, doc *Document, sink Sink) error {
	if doc == nil {
		return ErrDocumentRequired
	}
	if sink == nil {
		return ErrSinkRequired
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	terms := 0
	for _, sentence := range doc.Sentences.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := m.newPass(ctx, doc, sentence, sink)
		if err := p.run(); err != nil {
			return fmt.Errorf("sentence at %d: %w", sentence.Begin, err)
		}
		terms += p.terms
	}

	m.logger.Debug("document matched", "sentences", doc.Sentences.Len(), "terms", terms)
	return nil
}

// pass is the matching state of one sentence.
type pass struct {
	m    *Matcher
	ctx  context.Context
	doc  *Document
	sink Sink

	tokens []core.TermToken
	// edited is the sentence rebuilt from token text with acronyms expanded;
	// editedSpans[i] locates tokens[i] in it.
	edited      string
	editedSpans []core.Span

	terms int
}

func (m *Matcher) newPass(ctx context.Context, doc *Document, sentence core.Sentence, sink Sink) *pass {
	tokens := doc.Tokens.Inside(sentence.Span)

	var sb strings.Builder
	spans := make([]core.Span, 0, len(tokens))
	for _, token := range tokens {
		text, spaceAfter := token.Text, token.HasSpaceAfter
		if acronym, ok := doc.Acronyms.FirstAt(token.Span); ok {
			text, spaceAfter = acronym.Text, acronym.HasSpaceAfter
		}
		begin := sb.Len()
		sb.WriteString(text)
		spans = append(spans, core.Span{Begin: begin, End: sb.Len()})
		if spaceAfter {
			sb.WriteByte(' ')
		}
	}

	return &pass{
		m:           m,
		ctx:         ctx,
		doc:         doc,
		sink:        sink,
		tokens:      tokens,
		edited:      sb.String(),
		editedSpans: spans,
	}
}

func (p *pass) run() error {
	for from := range p.tokens {
		to := min(from+SpanSize, len(p.tokens))
		for last := from; last < to; last++ {
			if err := p.candidate(from, last); err != nil {
				return err
			}
		}
	}
	return nil
}

// candidate tries the tiers in order for tokens[from..last] and stops at the
// first that matches.
func (p *pass) candidate(from, last int) error {
	span := core.Span{Begin: p.tokens[from].Begin, End: p.tokens[last].End}
	oneToken := from == last

	if allTrivial(p.doc.PosTags.Inside(span)) {
		p.m.metrics.ObserveSkip()
		return nil
	}

	matched, err := p.phrase(span, span.Covered(p.doc.Text), oneToken, TierExact, TierLowercase)
	if matched || err != nil {
		return err
	}

	edited := p.edited[p.editedSpans[from].Begin:p.editedSpans[last].End]
	matched, err = p.phrase(span, edited, oneToken, TierEdited, TierEditedLowercase)
	if matched || err != nil {
		return err
	}

	if oneToken {
		return nil
	}
	_, err = p.norms(span)
	return err
}

// phrase looks phrase up in the exact index and then, unless the candidate is
// a single token, in the lowercase index.
func (p *pass) phrase(span core.Span, phrase string, oneToken bool, exact, lower Tier) (bool, error) {
	p.m.metrics.ObserveLookup(exact.String())
	records, err := p.m.dict.ForPhrase(p.ctx, phrase)
	if err != nil {
		return false, err
	}
	if records != nil {
		p.emit(span, records, exact)
		return true, nil
	}

	if oneToken && !p.m.lowercaseSingleTokens {
		return false, nil
	}

	p.m.metrics.ObserveLookup(lower.String())
	records, err = p.m.dict.ForLowercasePhrase(p.ctx, dictionary.Lowercase(phrase))
	if err != nil {
		return false, err
	}
	if records != nil {
		p.emit(span, records, lower)
		return true, nil
	}
	return false, nil
}

// norms looks up the bag of non-trivial norm forms inside span. A norm with
// no term id cannot be part of any stored bag, so the lookup is skipped.
func (p *pass) norms(span core.Span) (bool, error) {
	var bb core.TermBagBuilder
	for _, norm := range p.doc.Norms.Inside(span) {
		if tag, ok := p.doc.PosTags.FirstAt(norm.Span); ok && IsTrivial(tag.Tag) {
			continue
		}
		id, err := p.m.terms.Lookup(p.ctx, norm.Norm)
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		bb.Add(id)
	}

	p.m.metrics.ObserveLookup(TierNorms.String())
	records, err := p.m.dict.ForNorms(p.ctx, bb.Build())
	if err != nil {
		return false, err
	}
	if records != nil {
		p.emit(span, records, TierNorms)
		return true, nil
	}
	return false, nil
}

// emit adds one concept per record and then the dictionary term.
func (p *pass) emit(span core.Span, records []core.ConceptRecord, tier Tier) {
	confidence := tier.Confidence()
	for _, record := range records {
		source := p.m.dict.ResolveSource(record.SourceID)
		p.sink.AddConcept(core.NewConcept(span, record, source, confidence))
	}
	p.sink.AddTerm(core.DictionaryTerm{Span: span})
	p.terms++
	p.m.metrics.ObserveMatch(tier.String(), len(records))
}
