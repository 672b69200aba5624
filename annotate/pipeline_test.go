package annotate

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/conceptmatch/concepts"
	"github.com/poiesic/conceptmatch/core"
	"github.com/poiesic/conceptmatch/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMatcher labels the whole text of each document as one concept whose
// CUI is the text. Texts listed in failOn fail and "panic" panics.
type testMatcher struct {
	failOn  map[string]error
	delay   time.Duration
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (m *testMatcher) Match(ctx context.Context, doc *concepts.Document, sink concepts.Sink) error {
	n := m.active.Add(1)
	defer m.active.Add(-1)
	for {
		seen := m.maxSeen.Load()
		if n <= seen || m.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	time.Sleep(m.delay)

	if doc.Text == "panic" {
		panic("matcher exploded")
	}
	if err, ok := m.failOn[doc.Text]; ok {
		return err
	}
	span := core.Span{Begin: 0, End: len(doc.Text)}
	sink.AddConcept(core.Concept{Span: span, CUI: doc.Text, Confidence: 1})
	sink.AddTerm(core.DictionaryTerm{Span: span})
	return nil
}

func docs(texts ...string) []*concepts.Document {
	result := make([]*concepts.Document, len(texts))
	for i, text := range texts {
		result[i] = &concepts.Document{Text: text}
	}
	return result
}

func TestNewPipeline_RequiresMatcher(t *testing.T) {
	_, err := NewPipeline(nil)
	assert.ErrorIs(t, err, ErrMatcherRequired)
}

func TestNewPipeline_PoolSize(t *testing.T) {
	p, err := NewPipeline(&testMatcher{}, WithPoolSize(3))
	require.NoError(t, err)
	defer p.Release()
	assert.Equal(t, 3, p.PoolSize())

	p2, err := NewPipeline(&testMatcher{}, WithPoolSize(0))
	require.NoError(t, err)
	defer p2.Release()
	assert.Equal(t, 1, p2.PoolSize())
}

func TestProcess_InputOrder(t *testing.T) {
	p, err := NewPipeline(&testMatcher{}, WithPoolSize(4))
	require.NoError(t, err)
	defer p.Release()

	var texts []string
	for i := 0; i < 50; i++ {
		texts = append(texts, fmt.Sprintf("doc-%02d", i))
	}

	results := p.Process(context.Background(), docs(texts...)...)
	require.Len(t, results, len(texts))
	for i, result := range results {
		require.NoError(t, result.Err)
		assert.Equal(t, i, result.Index)
		require.Len(t, result.Concepts, 1)
		assert.Equal(t, texts[i], result.Concepts[0].CUI)
		assert.Len(t, result.Terms, 1)
	}
}

func TestProcess_BoundedConcurrency(t *testing.T) {
	m := &testMatcher{delay: 5 * time.Millisecond}
	p, err := NewPipeline(m, WithPoolSize(2))
	require.NoError(t, err)
	defer p.Release()

	results := p.Process(context.Background(), docs("a", "b", "c", "d", "e", "f")...)
	assert.Len(t, results, 6)
	assert.LessOrEqual(t, m.maxSeen.Load(), int32(2))
}

func TestProcess_PerDocumentErrors(t *testing.T) {
	errBroken := errors.New("broken store")
	p, err := NewPipeline(&testMatcher{failOn: map[string]error{"bad": errBroken}})
	require.NoError(t, err)
	defer p.Release()

	results := p.Process(context.Background(), docs("good", "bad", "panic", "fine")...)
	require.Len(t, results, 4)

	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, errBroken)
	assert.Empty(t, results[1].Concepts)
	assert.ErrorContains(t, results[2].Err, "panic")
	assert.NoError(t, results[3].Err)
	assert.Len(t, results[3].Concepts, 1)
}

func TestProcess_CanceledContext(t *testing.T) {
	p, err := NewPipeline(&testMatcher{})
	require.NoError(t, err)
	defer p.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, result := range p.Process(ctx, docs("a", "b")...) {
		assert.ErrorIs(t, result.Err, context.Canceled)
	}
}

func TestProcess_AfterRelease(t *testing.T) {
	p, err := NewPipeline(&testMatcher{})
	require.NoError(t, err)
	p.Release()

	results := p.Process(context.Background(), docs("a")...)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, ErrPipelineReleased)
}

func TestProcess_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	p, err := NewPipeline(&testMatcher{failOn: map[string]error{"bad": errors.New("x")}}, WithMetrics(m))
	require.NoError(t, err)
	defer p.Release()

	p.Process(context.Background(), docs("a", "b", "bad")...)

	count, err := testutil.GatherAndCount(reg, "conceptmatch_pipeline_documents_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per status")
}

func TestProcess_WithMatcher(t *testing.T) {
	dict := &stubDictionary{records: map[string][]core.ConceptRecord{
		"fever": {{SUI: "S1", CUI: "C1", TUI: "T184", SourceID: 1}},
	}}
	matcher, err := concepts.NewMatcher(dict, stubTerms{})
	require.NoError(t, err)

	p, err := NewPipeline(matcher, WithPoolSize(2))
	require.NoError(t, err)
	defer p.Release()

	doc := func(text string) *concepts.Document {
		span := core.Span{Begin: 0, End: len(text)}
		return &concepts.Document{
			Text:      text,
			Sentences: core.NewLabelIndex(core.Sentence{Span: span}),
			Tokens:    core.NewLabelIndex(core.TermToken{Span: span, Text: text}),
			PosTags:   core.NewLabelIndex(core.PosTag{Span: span, Tag: "NN"}),
		}
	}

	results := p.Process(context.Background(), doc("fever"), doc("cough"), doc("fever"))
	require.Len(t, results, 3)
	assert.Len(t, results[0].Concepts, 1)
	assert.Empty(t, results[1].Concepts)
	assert.Len(t, results[2].Concepts, 1)
	assert.Equal(t, "MSH", results[2].Concepts[0].Source)
}

// stubDictionary is a read-only dictionary safe for concurrent use.
type stubDictionary struct {
	records map[string][]core.ConceptRecord
}

func (d *stubDictionary) ForPhrase(_ context.Context, phrase string) ([]core.ConceptRecord, error) {
	return d.records[phrase], nil
}

func (d *stubDictionary) ForLowercasePhrase(context.Context, string) ([]core.ConceptRecord, error) {
	return nil, nil
}

func (d *stubDictionary) ForNorms(context.Context, core.TermBag) ([]core.ConceptRecord, error) {
	return nil, nil
}

func (d *stubDictionary) ResolveSource(int32) string {
	return "MSH"
}

type stubTerms struct{}

func (stubTerms) Lookup(context.Context, string) (core.TermID, error) {
	return core.UnknownTermID, nil
}
