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


package conceptmatch

import (
	"context"
	"log/slog"

	"github.com/poiesic/conceptmatch/annotate"
	"github.com/poiesic/conceptmatch/concepts"
	"github.com/poiesic/conceptmatch/dictionary"
	"github.com/poiesic/conceptmatch/metrics"
	"github.com/poiesic/conceptmatch/storage/badger"
	"github.com/prometheus/client_golang/prometheus"
)

// Database is an opened concept dictionary. It is read-only and safe to share
// between any number of matchers and pipelines.
type Database struct {
	backend *badger.Backend
	terms   *dictionary.TermStore
	dict    *dictionary.Dictionary
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	logger     *slog.Logger
	registerer prometheus.Registerer
}

// WithLogger sets the logger handed to every component.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetricsRegisterer registers matching metrics with reg.
// Metrics are disabled by default.
func WithMetricsRegisterer(reg prometheus.Registerer) DatabaseOption {
	return func(o *databaseOptions) {
		o.registerer = reg
	}
}

// Open opens the dictionary stored at filePath read-only.
func Open(ctx context.Context, filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	m, err := metrics.New(options.registerer)
	if err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(filePath, badger.ReadOnly(), badger.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	terms, err := dictionary.NewTermStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	dict, err := dictionary.Open(ctx, backend, dictionary.WithLogger(options.logger))
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Database{
		backend: backend,
		terms:   terms,
		dict:    dict,
		metrics: m,
		logger:  options.logger,
	}, nil
}

// Close closes the underlying store.
func (db *Database) Close() error {
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) Dictionary() *dictionary.Dictionary {
	return db.dict
}

func (db *Database) Terms() *dictionary.TermStore {
	return db.terms
}

// NewMatcher creates a matcher over the dictionary. The database logger and
// metrics are applied before opts.
func (db *Database) NewMatcher(opts ...concepts.Option) (*concepts.Matcher, error) {
	base := []concepts.Option{
		concepts.WithLogger(db.logger),
		concepts.WithMetrics(db.metrics),
	}
	return concepts.NewMatcher(db.dict, db.terms, append(base, opts...)...)
}

// NewPipeline creates a pipeline running matcher. A nil matcher uses a
// default matcher from NewMatcher.
func (db *Database) NewPipeline(matcher annotate.Matcher, opts ...annotate.Option) (*annotate.Pipeline, error) {
	if matcher == nil {
		m, err := db.NewMatcher()
		if err != nil {
			return nil, err
		}
		matcher = m
	}
	base := []annotate.Option{
		annotate.WithLogger(db.logger),
		annotate.WithMetrics(db.metrics),
	}
	return annotate.NewPipeline(matcher, append(base, opts...)...)
}

// Create writes a new dictionary at filePath. fill adds entries to the
// builder; the entries are written only if fill succeeds.
func Create(filePath string, fill func(b *dictionary.Builder) error, opts ...dictionary.BuilderOption) error {
	builder, err := dictionary.NewBuilder(opts...)
	if err != nil {
		return err
	}
	if err := fill(builder); err != nil {
		return err
	}

	backend, err := badger.OpenBackend(filePath)
	if err != nil {
		return err
	}
	defer backend.Close()

	w, err := backend.NewWriter()
	if err != nil {
		return err
	}
	if err := builder.Flush(w); err != nil {
		w.Cancel()
		return err
	}
	return nil
}
