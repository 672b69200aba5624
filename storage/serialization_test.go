package storage

import (
	"testing"

	"github.com/poiesic/conceptmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConceptRecords_RoundTrip(t *testing.T) {
	layout := DefaultRecordLayout
	r1 := core.ConceptRecord{SUI: "S0000001", CUI: "C0015967", TUI: "T184", SourceID: 1}
	r2 := core.ConceptRecord{SUI: "S12", CUI: "C2", TUI: "T1", SourceID: 70000}
	r3 := core.ConceptRecord{CUI: "C3", SourceID: -4}

	one, err := layout.MarshalConceptRecords(r1)
	require.NoError(t, err)
	assert.Len(t, one, layout.Width())

	var blob []byte
	for _, r := range []core.ConceptRecord{r1, r2, r3} {
		blob, err = layout.AppendConceptRecord(blob, r)
		require.NoError(t, err)
	}

	decoded, err := layout.UnmarshalConceptRecords(blob)
	require.NoError(t, err)
	assert.Equal(t, []core.ConceptRecord{r1, r2, r3}, decoded)
}

func TestUnmarshalConceptRecords_Empty(t *testing.T) {
	decoded, err := DefaultRecordLayout.UnmarshalConceptRecords(nil)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestUnmarshalConceptRecords_BadLength(t *testing.T) {
	layout := DefaultRecordLayout
	blob, err := layout.MarshalConceptRecords(core.ConceptRecord{CUI: "C1"}, core.ConceptRecord{CUI: "C2"})
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"truncated", blob[:len(blob)-1]},
		{"trailing byte", append(blob, 0)},
		{"shorter than one record", blob[:3]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := layout.UnmarshalConceptRecords(tt.data)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestAppendConceptRecord_TooLong(t *testing.T) {
	layout := RecordLayout{SUIWidth: 2, CUIWidth: 2, TUIWidth: 2}

	_, err := layout.AppendConceptRecord(nil, core.ConceptRecord{CUI: "C123"})
	assert.ErrorIs(t, err, ErrIdentifierTooLong)
}

func TestRecordLayout_Fit(t *testing.T) {
	layout := RecordLayout{SUIWidth: 1, CUIWidth: 1, TUIWidth: 1}.
		Fit(core.ConceptRecord{SUI: "S00001", CUI: "C1", TUI: "T123"})

	assert.Equal(t, RecordLayout{SUIWidth: 6, CUIWidth: 2, TUIWidth: 4}, layout)
	assert.Equal(t, 16, layout.Width())
}

func TestRecordLayout_MarshalUnmarshal(t *testing.T) {
	tests := []struct {
		name   string
		layout RecordLayout
	}{
		{"default", DefaultRecordLayout},
		{"wide", RecordLayout{SUIWidth: 200, CUIWidth: 12, TUIWidth: 300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := UnmarshalRecordLayout(MarshalRecordLayout(tt.layout))
			require.NoError(t, err)
			assert.Equal(t, tt.layout, decoded)
		})
	}
}

func TestUnmarshalRecordLayout_Invalid(t *testing.T) {
	_, err := UnmarshalRecordLayout(nil)
	assert.ErrorIs(t, err, ErrFormat)

	_, err = UnmarshalRecordLayout(MarshalRecordLayout(RecordLayout{SUIWidth: 0, CUIWidth: 8, TUIWidth: 4}))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestMarshalUnmarshalSourceName(t *testing.T) {
	for _, name := range []string{"MSH", "", "SNOMEDCT_US"} {
		t.Run(name, func(t *testing.T) {
			decoded, err := UnmarshalSourceName(MarshalSourceName(name))
			require.NoError(t, err)
			assert.Equal(t, name, decoded)
		})
	}
}

func TestMarshalUnmarshalTermID(t *testing.T) {
	for _, id := range []core.TermID{0, 1, 258, core.UnknownTermID, 2147483647} {
		data := MarshalTermID(id)
		assert.Len(t, data, 4)

		decoded, err := UnmarshalTermID(data)
		require.NoError(t, err)
		assert.Equal(t, id, decoded)
	}

	_, err := UnmarshalTermID([]byte{1, 2})
	assert.ErrorIs(t, err, ErrFormat)
}

func TestMarshalUnmarshalSourceID(t *testing.T) {
	decoded, err := UnmarshalSourceID(MarshalSourceID(42))
	require.NoError(t, err)
	assert.Equal(t, int32(42), decoded)

	_, err = UnmarshalSourceID(nil)
	assert.ErrorIs(t, err, ErrFormat)
}
