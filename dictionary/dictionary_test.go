package dictionary

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/poiesic/conceptmatch/core"
	"github.com/poiesic/conceptmatch/storage"
	"github.com/poiesic/conceptmatch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	feverRecord  = core.ConceptRecord{SUI: "S0001", CUI: "C0015967", TUI: "T184", SourceID: 1}
	severeRecord = core.ConceptRecord{SUI: "S0002", CUI: "C1519275", TUI: "T080", SourceID: 1}
	orphanRecord = core.ConceptRecord{SUI: "S0003", CUI: "C0000001", TUI: "T001", SourceID: 42}
)

// buildStore writes the entries added by fill into a fresh in-memory backend.
func buildStore(t *testing.T, fill func(b *Builder), opts ...BuilderOption) *badger.Backend {
	t.Helper()
	backend, err := badger.NewMemoryBackend()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	builder, err := NewBuilder(opts...)
	require.NoError(t, err)
	fill(builder)

	w, err := backend.NewWriter()
	require.NoError(t, err)
	require.NoError(t, builder.Flush(w))
	return backend
}

func sampleDictionary(b *Builder) {
	b.AddSource(1, "MSH")
	_ = b.AddPhrase("Fever", feverRecord)
	_ = b.AddPhrase("Fever", severeRecord)
	_ = b.AddLowercasePhrase("Severe", severeRecord)
	_ = b.AddPhrase("Orphan", orphanRecord)
	_ = b.AddNorms([]string{"high", "fever"}, feverRecord)
}

// countingStore records how many reads reach the wrapped store.
type countingStore struct {
	storage.Store
	gets int
}

func (s *countingStore) Get(ctx context.Context, table storage.Table, key []byte) ([]byte, error) {
	s.gets++
	return s.Store.Get(ctx, table, key)
}

// brokenStore fails every read.
type brokenStore struct{}

var errDisk = errors.New("disk on fire")

func (brokenStore) Get(context.Context, storage.Table, []byte) ([]byte, error) {
	return nil, errors.Join(storage.ErrStoreIO, errDisk)
}

func (brokenStore) Scan(context.Context, storage.Table) iter.Seq2[*storage.Entry, error] {
	return func(yield func(*storage.Entry, error) bool) {}
}

func (brokenStore) Close() error { return nil }

func TestOpen_RequiresStore(t *testing.T) {
	_, err := Open(context.Background(), nil)
	assert.ErrorIs(t, err, ErrStoreRequired)
}

func TestOpen_DefaultLayout(t *testing.T) {
	backend, err := badger.NewMemoryBackend()
	require.NoError(t, err)
	defer backend.Close()

	dict, err := Open(context.Background(), backend)
	require.NoError(t, err)
	assert.Equal(t, storage.DefaultRecordLayout, dict.Layout())
	assert.Empty(t, dict.Sources())
}

func TestOpen_StoredLayout(t *testing.T) {
	layout := storage.RecordLayout{SUIWidth: 10, CUIWidth: 9, TUIWidth: 5}
	backend := buildStore(t, sampleDictionary, WithRecordLayout(layout))

	dict, err := Open(context.Background(), backend)
	require.NoError(t, err)
	assert.Equal(t, layout, dict.Layout())

	records, err := dict.ForPhrase(context.Background(), "Fever")
	require.NoError(t, err)
	assert.Equal(t, []core.ConceptRecord{feverRecord, severeRecord}, records)
}

func TestOpen_BadLayout(t *testing.T) {
	backend, err := badger.NewMemoryBackend()
	require.NoError(t, err)
	defer backend.Close()
	require.NoError(t, badger.Populate(backend, storage.TableMeta, map[string][]byte{
		storage.LayoutKey: {0xff},
	}))

	_, err = Open(context.Background(), backend)
	assert.ErrorIs(t, err, storage.ErrFormat)
}

func TestForPhrase(t *testing.T) {
	dict, err := Open(context.Background(), buildStore(t, sampleDictionary))
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("hit keeps record order", func(t *testing.T) {
		records, err := dict.ForPhrase(ctx, "Fever")
		require.NoError(t, err)
		assert.Equal(t, []core.ConceptRecord{feverRecord, severeRecord}, records)
	})

	t.Run("exact index is case sensitive", func(t *testing.T) {
		records, err := dict.ForPhrase(ctx, "fever")
		require.NoError(t, err)
		assert.Nil(t, records)
	})

	t.Run("lowercase entries are not exact entries", func(t *testing.T) {
		records, err := dict.ForPhrase(ctx, "Severe")
		require.NoError(t, err)
		assert.Nil(t, records)
	})
}

func TestForLowercasePhrase(t *testing.T) {
	dict, err := Open(context.Background(), buildStore(t, sampleDictionary))
	require.NoError(t, err)

	records, err := dict.ForLowercasePhrase(context.Background(), Lowercase("SEVERE"))
	require.NoError(t, err)
	assert.Equal(t, []core.ConceptRecord{severeRecord}, records)

	records, err = dict.ForLowercasePhrase(context.Background(), "fever")
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestForNorms(t *testing.T) {
	backend := buildStore(t, sampleDictionary)
	terms, err := NewTermStore(backend)
	require.NoError(t, err)
	dict, err := Open(context.Background(), backend)
	require.NoError(t, err)
	ctx := context.Background()

	high, err := terms.Lookup(ctx, "high")
	require.NoError(t, err)
	fever, err := terms.Lookup(ctx, "fever")
	require.NoError(t, err)

	// Order of construction does not matter.
	records, err := dict.ForNorms(ctx, core.NewTermBag(fever, high, fever))
	require.NoError(t, err)
	assert.Equal(t, []core.ConceptRecord{feverRecord}, records)

	records, err = dict.ForNorms(ctx, core.NewTermBag(fever))
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestForNorms_EmptyBagSkipsStore(t *testing.T) {
	counting := &countingStore{Store: buildStore(t, sampleDictionary)}
	dict, err := Open(context.Background(), counting)
	require.NoError(t, err)
	before := counting.gets

	records, err := dict.ForNorms(context.Background(), core.NewTermBag())
	require.NoError(t, err)
	assert.Nil(t, records)
	assert.Equal(t, before, counting.gets)
}

func TestLookup_StoreFailure(t *testing.T) {
	_, err := Open(context.Background(), brokenStore{})
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrStoreIO)
}

func TestLookup_MalformedValue(t *testing.T) {
	backend, err := badger.NewMemoryBackend()
	require.NoError(t, err)
	defer backend.Close()
	require.NoError(t, badger.Populate(backend, storage.TablePhrases, map[string][]byte{
		"Fever": make([]byte, storage.DefaultRecordLayout.Width()+3),
	}))

	dict, err := Open(context.Background(), backend)
	require.NoError(t, err)

	_, err = dict.ForPhrase(context.Background(), "Fever")
	assert.ErrorIs(t, err, storage.ErrFormat)
}

func TestResolveSource(t *testing.T) {
	dict, err := Open(context.Background(), buildStore(t, sampleDictionary))
	require.NoError(t, err)

	name, ok := dict.Source(1)
	assert.True(t, ok)
	assert.Equal(t, "MSH", name)
	assert.Equal(t, "MSH", dict.ResolveSource(1))

	_, ok = dict.Source(42)
	assert.False(t, ok)
	assert.Equal(t, UnknownSource, dict.ResolveSource(42))
	assert.Equal(t, UnknownSource, dict.ResolveSource(42))

	_, reported := dict.reported.Load(int32(42))
	assert.True(t, reported)
}

func TestLowercase(t *testing.T) {
	assert.Equal(t, "severe fever", Lowercase("Severe FEVER"))
	assert.Equal(t, "istanbul", Lowercase("ISTANBUL"))
}
