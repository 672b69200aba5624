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


package dictionary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"

	"github.com/poiesic/conceptmatch/core"
	"github.com/poiesic/conceptmatch/storage"
)

// UnknownSource is the name substituted for a source id missing from the
// registry.
const UnknownSource = "unknown"

// Dictionary answers phrase and norm lookups against the three concept
// indices of a store.
type Dictionary struct {
	store   storage.Store
	layout  storage.RecordLayout
	sources map[int32]string
	logger  *slog.Logger

	// source ids already reported as unresolved
	reported sync.Map
}

// Option configures a Dictionary.
type Option func(*Dictionary) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dictionary) error {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger
		return nil
	}
}

// Open reads the record layout and the source registry from store and
// returns a dictionary over it. A store without a stored layout uses
// storage.DefaultRecordLayout.
func Open(ctx context.Context, store storage.Store, opts ...Option) (*Dictionary, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	d := &Dictionary{
		store:   store,
		layout:  storage.DefaultRecordLayout,
		sources: make(map[int32]string),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	d.logger = d.logger.With("component", "dictionary")

	if err := d.loadLayout(ctx); err != nil {
		return nil, err
	}
	if err := d.loadSources(ctx); err != nil {
		return nil, err
	}
	d.logger.Debug("dictionary opened", "sources", len(d.sources), "recordWidth", d.layout.Width())
	return d, nil
}

func (d *Dictionary) loadLayout(ctx context.Context) error {
	value, err := d.store.Get(ctx, storage.TableMeta, []byte(storage.LayoutKey))
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading record layout: %w", err)
	}
	layout, err := storage.UnmarshalRecordLayout(value)
	if err != nil {
		return err
	}
	d.layout = layout
	return nil
}

func (d *Dictionary) loadSources(ctx context.Context) error {
	for entry, err := range d.store.Scan(ctx, storage.TableSources) {
		if err != nil {
			return fmt.Errorf("loading sources: %w", err)
		}
		id, err := storage.UnmarshalSourceID(entry.Key)
		if err != nil {
			return err
		}
		name, err := storage.UnmarshalSourceName(entry.Value)
		if err != nil {
			return err
		}
		d.sources[id] = name
	}
	return nil
}

// Layout returns the record layout of the concept indices.
func (d *Dictionary) Layout() storage.RecordLayout {
	return d.layout
}

// Sources returns a copy of the source registry.
func (d *Dictionary) Sources() map[int32]string {
	return maps.Clone(d.sources)
}

// ForPhrase returns the records stored for phrase exactly as written.
// Returns nil and no error if there is no entry.
func (d *Dictionary) ForPhrase(ctx context.Context, phrase string) ([]core.ConceptRecord, error) {
	return d.lookup(ctx, storage.TablePhrases, []byte(phrase))
}

// ForLowercasePhrase returns the records stored for an already lower-cased
// phrase. Use Lowercase to fold the phrase first.
func (d *Dictionary) ForLowercasePhrase(ctx context.Context, phrase string) ([]core.ConceptRecord, error) {
	return d.lookup(ctx, storage.TableLowercase, []byte(phrase))
}

// ForNorms returns the records stored for a bag of norm term ids. An empty
// bag never matches and is answered without reading the store.
func (d *Dictionary) ForNorms(ctx context.Context, bag core.TermBag) ([]core.ConceptRecord, error) {
	if bag.UniqueTerms() == 0 {
		return nil, nil
	}
	return d.lookup(ctx, storage.TableNorms, bag.Bytes())
}

func (d *Dictionary) lookup(ctx context.Context, table storage.Table, key []byte) ([]core.ConceptRecord, error) {
	value, err := d.store.Get(ctx, table, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	records, err := d.layout.UnmarshalConceptRecords(value)
	if err != nil {
		return nil, fmt.Errorf("%s key %q: %w", table, key, err)
	}
	return records, nil
}

// Source returns the name registered for id.
func (d *Dictionary) Source(id int32) (string, bool) {
	name, ok := d.sources[id]
	return name, ok
}

// ResolveSource returns the name registered for id, or UnknownSource.
// Each unresolved id is logged once.
func (d *Dictionary) ResolveSource(id int32) string {
	if name, ok := d.sources[id]; ok {
		return name
	}
	if _, seen := d.reported.LoadOrStore(id, struct{}{}); !seen {
		d.logger.Warn("unresolved source id", "sourceId", id)
	}
	return UnknownSource
}

// Lowercase folds phrase for the lowercase index. Folding does not depend on
// the process locale.
func Lowercase(phrase string) string {
	return strings.ToLower(phrase)
}
