package dictionary

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/poiesic/conceptmatch/core"
	"github.com/poiesic/conceptmatch/storage"
)

// TermEntry is one term and its id.
type TermEntry struct {
	Term string
	ID   core.TermID
}

// TermStore maps term strings to ids over storage.TableTerms.
type TermStore struct {
	store storage.Store

	sizeMu sync.Mutex
	size   int
	sized  bool
}

// NewTermStore creates a term store reading from store.
func NewTermStore(store storage.Store) (*TermStore, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	return &TermStore{store: store}, nil
}

// Lookup returns the id of term.
// Returns core.UnknownTermID and storage.ErrNotFound if term is absent.
func (ts *TermStore) Lookup(ctx context.Context, term string) (core.TermID, error) {
	value, err := ts.store.Get(ctx, storage.TableTerms, []byte(term))
	if err != nil {
		return core.UnknownTermID, err
	}
	id, err := storage.UnmarshalTermID(value)
	if err != nil {
		return core.UnknownTermID, fmt.Errorf("term %q: %w", term, err)
	}
	return id, nil
}

// Contains reports whether term has an id.
func (ts *TermStore) Contains(ctx context.Context, term string) (bool, error) {
	_, err := ts.Lookup(ctx, term)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Size returns the number of terms. The first successful call scans the
// whole table; later calls return the remembered count.
func (ts *TermStore) Size(ctx context.Context) (int, error) {
	ts.sizeMu.Lock()
	defer ts.sizeMu.Unlock()

	if ts.sized {
		return ts.size, nil
	}
	count := 0
	for _, err := range ts.store.Scan(ctx, storage.TableTerms) {
		if err != nil {
			return 0, err
		}
		count++
	}
	ts.size = count
	ts.sized = true
	return count, nil
}

// All lazily yields every term in store order. Each call starts a new pass.
func (ts *TermStore) All(ctx context.Context) iter.Seq2[TermEntry, error] {
	return func(yield func(TermEntry, error) bool) {
		for entry, err := range ts.store.Scan(ctx, storage.TableTerms) {
			if err != nil {
				yield(TermEntry{ID: core.UnknownTermID}, err)
				return
			}
			id, err := storage.UnmarshalTermID(entry.Value)
			if err != nil {
				yield(TermEntry{ID: core.UnknownTermID}, fmt.Errorf("term %q: %w", entry.Key, err))
				return
			}
			if !yield(TermEntry{Term: string(entry.Key), ID: id}, nil) {
				return
			}
		}
	}
}
