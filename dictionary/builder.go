package dictionary

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/poiesic/conceptmatch/core"
	"github.com/poiesic/conceptmatch/storage"
)

// Builder accumulates prepared dictionary entries in memory and writes them
// to a store in one pass. Term ids are assigned in order of first sight,
// starting at zero. A Builder is not safe for concurrent use.
type Builder struct {
	layout    storage.RecordLayout
	fitLayout bool
	logger    *slog.Logger

	terms     map[string]core.TermID
	phrases   map[string][]core.ConceptRecord
	lowercase map[string][]core.ConceptRecord
	norms     map[string][]core.ConceptRecord
	sources   map[int32]string
	sourceIDs map[string]int32
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder) error

// WithRecordLayout sets the record layout written to the store.
// Default is storage.DefaultRecordLayout.
func WithRecordLayout(layout storage.RecordLayout) BuilderOption {
	return func(b *Builder) error {
		if err := layout.Validate(); err != nil {
			return err
		}
		b.layout = layout
		return nil
	}
}

// WithFittedLayout widens the record layout at flush time so that every
// identifier added to the builder fits its field.
func WithFittedLayout() BuilderOption {
	return func(b *Builder) error {
		b.fitLayout = true
		return nil
	}
}

// WithBuilderLogger sets a custom logger.
// Default is slog.Default().
func WithBuilderLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBuilder creates an empty builder.
func NewBuilder(opts ...BuilderOption) (*Builder, error) {
	b := &Builder{
		layout:    storage.DefaultRecordLayout,
		logger:    slog.Default(),
		terms:     make(map[string]core.TermID),
		phrases:   make(map[string][]core.ConceptRecord),
		lowercase: make(map[string][]core.ConceptRecord),
		norms:     make(map[string][]core.ConceptRecord),
		sources:   make(map[int32]string),
		sourceIDs: make(map[string]int32),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	b.logger = b.logger.With("component", "builder")
	return b, nil
}

// AddTerm returns the id of term, assigning the next free id if the term has
// not been seen.
func (b *Builder) AddTerm(term string) core.TermID {
	if id, ok := b.terms[term]; ok {
		return id
	}
	id := core.TermID(len(b.terms))
	b.terms[term] = id
	return id
}

// AddPhrase adds record to the exact phrase index under phrase.
func (b *Builder) AddPhrase(phrase string, record core.ConceptRecord) error {
	if err := checkEntry(phrase, record); err != nil {
		return err
	}
	b.phrases[phrase] = append(b.phrases[phrase], record)
	return nil
}

// AddLowercasePhrase adds record to the lowercase phrase index. The phrase is
// folded with Lowercase before it is used as a key.
func (b *Builder) AddLowercasePhrase(phrase string, record core.ConceptRecord) error {
	if err := checkEntry(phrase, record); err != nil {
		return err
	}
	key := Lowercase(phrase)
	b.lowercase[key] = append(b.lowercase[key], record)
	return nil
}

// AddNorms adds record to the norms index under the bag of the given norm
// terms. Each term is assigned an id if it has none yet.
func (b *Builder) AddNorms(norms []string, record core.ConceptRecord) error {
	if len(norms) == 0 {
		return ErrEmptyNorms
	}
	if err := core.ValidateRecord(record); err != nil {
		return err
	}
	var bb core.TermBagBuilder
	for _, norm := range norms {
		bb.Add(b.AddTerm(norm))
	}
	key := string(bb.Build().Bytes())
	b.norms[key] = append(b.norms[key], record)
	return nil
}

// AddSource registers name under id, replacing any earlier name.
func (b *Builder) AddSource(id int32, name string) {
	if old, ok := b.sources[id]; ok {
		delete(b.sourceIDs, old)
	}
	b.sources[id] = name
	b.sourceIDs[name] = id
}

// SourceID returns the id registered for name.
func (b *Builder) SourceID(name string) (int32, bool) {
	id, ok := b.sourceIDs[name]
	return id, ok
}

// Layout returns the record layout Flush would write.
func (b *Builder) Layout() storage.RecordLayout {
	if !b.fitLayout {
		return b.layout
	}
	layout := b.layout
	for _, index := range []map[string][]core.ConceptRecord{b.phrases, b.lowercase, b.norms} {
		for _, records := range index {
			for _, record := range records {
				layout = layout.Fit(record)
			}
		}
	}
	return layout
}

// Flush writes every accumulated entry and the record layout through w, then
// flushes w.
func (b *Builder) Flush(w storage.Writer) error {
	if w == nil {
		return ErrWriterRequired
	}
	layout := b.Layout()

	for _, term := range slices.Sorted(maps.Keys(b.terms)) {
		if err := w.Put(storage.TableTerms, []byte(term), storage.MarshalTermID(b.terms[term])); err != nil {
			return err
		}
	}
	for _, index := range []struct {
		table   storage.Table
		entries map[string][]core.ConceptRecord
	}{
		{storage.TablePhrases, b.phrases},
		{storage.TableLowercase, b.lowercase},
		{storage.TableNorms, b.norms},
	} {
		if err := writeIndex(w, layout, index.table, index.entries); err != nil {
			return err
		}
	}
	for _, id := range slices.Sorted(maps.Keys(b.sources)) {
		if err := w.Put(storage.TableSources, storage.MarshalSourceID(id), storage.MarshalSourceName(b.sources[id])); err != nil {
			return err
		}
	}
	if err := w.Put(storage.TableMeta, []byte(storage.LayoutKey), storage.MarshalRecordLayout(layout)); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	b.logger.Info("dictionary written",
		"terms", len(b.terms),
		"phrases", len(b.phrases),
		"lowercasePhrases", len(b.lowercase),
		"norms", len(b.norms),
		"sources", len(b.sources))
	return nil
}

func writeIndex(w storage.Writer, layout storage.RecordLayout, table storage.Table, entries map[string][]core.ConceptRecord) error {
	for _, key := range slices.Sorted(maps.Keys(entries)) {
		value, err := layout.MarshalConceptRecords(entries[key]...)
		if err != nil {
			return fmt.Errorf("%s key %q: %w", table, key, err)
		}
		if err := w.Put(table, []byte(key), value); err != nil {
			return err
		}
	}
	return nil
}

func checkEntry(phrase string, record core.ConceptRecord) error {
	if phrase == "" {
		return ErrEmptyPhrase
	}
	return core.ValidateRecord(record)
}
