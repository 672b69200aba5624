package badger

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/conceptmatch/storage"
)

// Backend wraps a BadgerDB instance holding every dictionary table under its
// own key prefix.
type Backend struct {
	db       *badger.DB
	readOnly bool
	logger   *slog.Logger
}

var _ storage.Store = (*Backend)(nil)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

type backendOptions struct {
	readOnly bool
	inMemory bool
	logger   *slog.Logger
}

// Option configures how a Backend is opened.
type Option func(*backendOptions)

// ReadOnly opens an existing database without a write path. This is how
// dictionaries are opened for matching.
func ReadOnly() Option {
	return func(o *backendOptions) {
		o.readOnly = true
	}
}

// InMemory opens a transient database. The path is ignored.
func InMemory() Option {
	return func(o *backendOptions) {
		o.inMemory = true
	}
}

// WithLogger sets the logger for the backend and for badger's own messages.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *backendOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// OpenBackend opens a BadgerDB database at the specified path.
// A writable database creates the directory if it doesn't exist; a read-only
// database must already exist. Any failure wraps storage.ErrStoreIO.
func OpenBackend(filePath string, opts ...Option) (*Backend, error) {
	o := &backendOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if o.inMemory && o.readOnly {
		return nil, fmt.Errorf("%w: an in-memory database cannot be read-only", storage.ErrStoreIO)
	}

	var bopts badger.Options
	if o.inMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := prepareDir(filePath, o.readOnly); err != nil {
			return nil, fmt.Errorf("%w: %w", storage.ErrStoreIO, err)
		}
		bopts = badger.DefaultOptions(filePath).WithReadOnly(o.readOnly)
	}

	bopts.Logger = &badgerLoggerAdapter{logger: o.logger.With("component", "badger")}
	bopts.Compression = options.None

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %q: %w", storage.ErrStoreIO, filePath, err)
	}

	return &Backend{
		db:       db,
		readOnly: o.readOnly,
		logger:   o.logger,
	}, nil
}

// prepareDir ensures filePath is a directory, creating it for writable opens.
func prepareDir(filePath string, readOnly bool) error {
	info, err := os.Stat(filePath)
	if err != nil {
		if !os.IsNotExist(err) || readOnly {
			return err
		}
		if err := os.MkdirAll(filePath, 0755); err != nil {
			return err
		}
		info, err = os.Stat(filePath)
		if err != nil {
			return err
		}
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", filePath)
	}
	return nil
}

// Close closes the BadgerDB database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed returns true if the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// IsReadOnly reports whether the backend was opened without a write path.
func (b *Backend) IsReadOnly() bool {
	return b.readOnly
}

// WithTx executes a function within a BadgerDB transaction.
// If isWrite is true, creates a read-write transaction.
// The transaction is automatically discarded when fn returns.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// Get returns a copy of the value stored under key in table.
func (b *Backend) Get(ctx context.Context, table storage.Table, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.db.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	fullKey, err := tableKey(table, key)
	if err != nil {
		return nil, err
	}

	var value []byte
	err = b.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(fullKey)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	}, false)

	switch {
	case err == nil:
		return value, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, storage.ErrNotFound
	default:
		return nil, fmt.Errorf("%w: reading %s: %w", storage.ErrStoreIO, table, err)
	}
}

// Scan lazily iterates table in key order. The transaction stays open only
// while the caller is ranging over the sequence.
func (b *Backend) Scan(ctx context.Context, table storage.Table) iter.Seq2[*storage.Entry, error] {
	return func(yield func(*storage.Entry, error) bool) {
		if b.db.IsClosed() {
			yield(nil, storage.ErrStorageClosed)
			return
		}
		prefix, err := tablePrefix(table)
		if err != nil {
			yield(nil, err)
			return
		}

		_ = b.WithTx(func(tx *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			it := tx.NewIterator(opts)
			defer it.Close()

			for it.Rewind(); it.Valid(); it.Next() {
				if err := ctx.Err(); err != nil {
					yield(nil, err)
					return nil
				}
				item := it.Item()
				value, err := item.ValueCopy(nil)
				if err != nil {
					yield(nil, fmt.Errorf("%w: scanning %s: %w", storage.ErrStoreIO, table, err))
					return nil
				}
				entry := &storage.Entry{
					Key:   item.KeyCopy(nil)[len(prefix):],
					Value: value,
				}
				if !yield(entry, nil) {
					return nil
				}
			}
			return nil
		}, false)
	}
}

// NewWriter returns a batch writer for populating the database.
// Returns storage.ErrReadOnly if the backend was opened read-only.
func (b *Backend) NewWriter() (*Writer, error) {
	if b.readOnly {
		return nil, storage.ErrReadOnly
	}
	return &Writer{batch: b.db.NewWriteBatch()}, nil
}

// Writer batches writes into the database. It implements storage.Writer.
type Writer struct {
	batch *badger.WriteBatch
}

var _ storage.Writer = (*Writer)(nil)

// Put stores value under key in table.
func (w *Writer) Put(table storage.Table, key, value []byte) error {
	fullKey, err := tableKey(table, key)
	if err != nil {
		return err
	}
	if err := w.batch.Set(fullKey, value); err != nil {
		return fmt.Errorf("%w: writing %s: %w", storage.ErrStoreIO, table, err)
	}
	return nil
}

// Flush commits the batch.
func (w *Writer) Flush() error {
	if err := w.batch.Flush(); err != nil {
		return fmt.Errorf("%w: flushing: %w", storage.ErrStoreIO, err)
	}
	return nil
}

// Cancel discards any pending writes.
func (w *Writer) Cancel() {
	w.batch.Cancel()
}
