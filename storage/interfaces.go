package storage

import (
	"context"
	"iter"
)

// Table names one of the dictionary's key spaces.
type Table string

const (
	// TablePhrases maps UTF-8 phrase bytes, exactly as they appear in text, to packed records.
	TablePhrases Table = "phrases"
	// TableLowercase maps lower-cased UTF-8 phrase bytes to packed records.
	TableLowercase Table = "lowercase"
	// TableNorms maps encoded term bags to packed records.
	TableNorms Table = "norms"
	// TableTerms maps term strings to 4-byte big-endian term ids.
	TableTerms Table = "terms"
	// TableSources maps 4-byte big-endian source ids to source names.
	TableSources Table = "sources"
	// TableMeta holds build metadata such as the record layout.
	TableMeta Table = "meta"
)

// Tables lists every table in a dictionary store.
var Tables = []Table{TablePhrases, TableLowercase, TableNorms, TableTerms, TableSources, TableMeta}

// Entry is one key/value pair yielded by Store.Scan.
// Key and Value are copies owned by the caller.
type Entry struct {
	Key   []byte
	Value []byte
}

// Store is a read-only byte-keyed store with get and iterate.
// Implementations must be safe for concurrent use by many readers without
// external locking.
type Store interface {
	// Get returns the value stored under key in table.
	// Returns ErrNotFound if the key is absent and an ErrStoreIO-wrapped error
	// if the read fails.
	Get(ctx context.Context, table Table, key []byte) ([]byte, error)

	// Scan lazily yields every entry of table in key order. Iteration stops at
	// the first error, which is yielded with a nil Entry. Each call starts a
	// fresh pass.
	Scan(ctx context.Context, table Table) iter.Seq2[*Entry, error]

	// Close releases the store.
	Close() error
}

// Writer is the write capability used to populate a store before it is
// opened read-only for matching. It is never used on the query path.
type Writer interface {
	// Put stores value under key in table, replacing any previous value.
	Put(table Table, key, value []byte) error

	// Flush commits everything written. The writer must not be used afterwards.
	Flush() error
}
