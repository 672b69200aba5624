// Package annotate runs concept matching over batches of documents.
//
// The Pipeline type fans documents out to a worker pool. Each document is
// matched by its own task with its own concepts.Collector, so the only state
// shared between tasks is the read-only dictionary behind the matcher.
//
// A failed document does not stop the batch: its Result carries the error
// and the labels emitted before the failure are dropped. The caller decides
// whether to skip that document or abort the run.
package annotate
