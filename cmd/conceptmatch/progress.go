package main

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// progressTracker reports how many documents a run has handled. The total
// is usually unknown when reading a stream, in which case only the count
// and rate are printed.
type progressTracker struct {
	writer         io.Writer
	total          int
	current        int
	failed         int
	reportInterval int
	lastReported   int
	startTime      time.Time
	started        bool
	mu             sync.Mutex
}

// newProgressTracker creates a tracker that reports every reportInterval
// documents. A total of zero means unknown; an interval of zero disables
// reporting.
func newProgressTracker(writer io.Writer, total, reportInterval int) *progressTracker {
	return &progressTracker{
		writer:         writer,
		total:          total,
		reportInterval: reportInterval,
	}
}

func (p *progressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.current = 0
	p.failed = 0
	p.lastReported = 0
}

// Add records done documents, failed of which returned an error.
func (p *progressTracker) Add(done, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.current += done
	p.failed += failed
	if p.total > 0 && p.current > p.total {
		p.current = p.total
	}

	if p.reportInterval > 0 && p.current-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.current
	}
}

// Counts returns the documents handled and failed so far.
func (p *progressTracker) Counts() (done, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.failed
}

// Finish prints the final progress line.
func (p *progressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || p.reportInterval == 0 {
		return
	}

	p.report()
	fmt.Fprintln(p.writer)
}

func (p *progressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}

	return time.Since(p.startTime)
}

// report prints the current progress. Must be called with lock held.
func (p *progressTracker) report() {
	rate := 0.0
	if elapsed := time.Since(p.startTime).Seconds(); elapsed > 0 {
		rate = float64(p.current) / elapsed
	}

	if p.total > 0 {
		percentage := float64(p.current) / float64(p.total) * 100.0
		fmt.Fprintf(p.writer, "\rProgress: %d/%d (%.1f%%), %d failed - %.1f docs/s",
			p.current, p.total, percentage, p.failed, rate)
		return
	}
	fmt.Fprintf(p.writer, "\rProgress: %d docs, %d failed - %.1f docs/s",
		p.current, p.failed, rate)
}
