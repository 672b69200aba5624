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


package annotate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/conceptmatch/concepts"
	"github.com/poiesic/conceptmatch/core"
	"github.com/poiesic/conceptmatch/metrics"
)

// Matcher matches one document into a sink.
// *concepts.Matcher implements it.
type Matcher interface {
	Match(ctx context.Context, doc *concepts.Document, sink concepts.Sink) error
}

var _ Matcher = (*concepts.Matcher)(nil)

// Result holds the labels found in one document. Index is the position of
// the document in the Process call. When Err is set Terms and Concepts are
// empty.
type Result struct {
	Index    int
	Terms    []core.DictionaryTerm
	Concepts []core.Concept
	Err      error
}

// Pipeline matches documents concurrently on a bounded worker pool.
type Pipeline struct {
	matcher Matcher
	pool    *ants.Pool
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the number of documents matched at once.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithMetrics records document counts and durations in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) error {
		p.metrics = m
		return nil
	}
}

// NewPipeline creates a pipeline that matches documents with matcher.
func NewPipeline(matcher Matcher, opts ...Option) (*Pipeline, error) {
	if matcher == nil {
		return nil, ErrMatcherRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		matcher: matcher,
		pool:    pool,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "pipeline")
	return p, nil
}

// PoolSize returns the number of workers.
func (p *Pipeline) PoolSize() int {
	return p.pool.Cap()
}

// Process matches every document and returns one Result per document in
// input order. It returns once all documents are done. Canceling ctx makes
// the remaining documents fail with ctx.Err().
func (p *Pipeline) Process(ctx context.Context, docs ...*concepts.Document) []Result {
	results := make([]Result, len(docs))
	var wg sync.WaitGroup

	for i, doc := range docs {
		results[i].Index = i
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			p.process(ctx, doc, &results[i])
		})
		if err != nil {
			wg.Done()
			if errors.Is(err, ants.ErrPoolClosed) {
				err = ErrPipelineReleased
			}
			results[i].Err = err
		}
	}

	wg.Wait()
	return results
}

func (p *Pipeline) process(ctx context.Context, doc *concepts.Document, result *Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result.Terms, result.Concepts = nil, nil
			result.Err = fmt.Errorf("document %d: panic: %v", result.Index, r)
			p.logger.Error("document panicked", "index", result.Index, "panic", r)
		}
		p.metrics.ObserveDocument(time.Since(start), result.Err)
	}()

	if err := ctx.Err(); err != nil {
		result.Err = fmt.Errorf("document %d: %w", result.Index, err)
		return
	}
	sink := &concepts.Collector{}
	if err := p.matcher.Match(ctx, doc, sink); err != nil {
		result.Err = fmt.Errorf("document %d: %w", result.Index, err)
		p.logger.Warn("document failed", "index", result.Index, "err", err)
		return
	}
	result.Terms = sink.Terms
	result.Concepts = sink.Concepts
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
