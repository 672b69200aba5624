package core

import (
	"encoding/binary"
	"fmt"
	"slices"
)

// termIDSize is the encoded width of one term id.
const termIDSize = 4

// TermBag is an order-independent set of term ids, held as a sorted,
// deduplicated slice. Two bags built from the same ids in any order have
// identical Bytes.
type TermBag struct {
	ids []TermID
}

// NewTermBag canonicalizes ids into a bag.
func NewTermBag(ids ...TermID) TermBag {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return TermBag{ids: slices.Compact(sorted)}
}

// ParseTermBag decodes bytes produced by TermBag.Bytes.
// Input that is not sorted and unique is canonicalized.
func ParseTermBag(data []byte) (TermBag, error) {
	if len(data)%termIDSize != 0 {
		return TermBag{}, fmt.Errorf("%w: length %d is not a multiple of %d", ErrMalformedTermBag, len(data), termIDSize)
	}
	ids := make([]TermID, 0, len(data)/termIDSize)
	for offset := 0; offset < len(data); offset += termIDSize {
		ids = append(ids, TermID(int32(binary.BigEndian.Uint32(data[offset:]))))
	}
	return NewTermBag(ids...), nil
}

// Bytes packs each id as a 4-byte big-endian integer, in ascending order,
// with no separators or length prefix.
func (b TermBag) Bytes() []byte {
	buf := make([]byte, len(b.ids)*termIDSize)
	for i, id := range b.ids {
		binary.BigEndian.PutUint32(buf[i*termIDSize:], uint32(id))
	}
	return buf
}

// UniqueTerms returns the number of distinct ids in the bag.
func (b TermBag) UniqueTerms() int {
	return len(b.ids)
}

// IDs returns a copy of the canonical ids.
func (b TermBag) IDs() []TermID {
	return slices.Clone(b.ids)
}

// Equal reports whether both bags hold the same ids.
func (b TermBag) Equal(other TermBag) bool {
	return slices.Equal(b.ids, other.ids)
}

// TermBagBuilder accumulates term ids for a bag.
type TermBagBuilder struct {
	ids []TermID
}

// Add appends an id; duplicates are removed by Build.
func (bb *TermBagBuilder) Add(id TermID) {
	bb.ids = append(bb.ids, id)
}

// Build returns the canonical bag of everything added so far.
func (bb *TermBagBuilder) Build() TermBag {
	return NewTermBag(bb.ids...)
}
