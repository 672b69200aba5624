package dictionary

import "errors"

var (
	// ErrStoreRequired is returned when a store is not provided.
	ErrStoreRequired = errors.New("store required")

	// ErrWriterRequired is returned when a builder is flushed without a writer.
	ErrWriterRequired = errors.New("writer required")

	// ErrEmptyPhrase is returned when a phrase entry has no text.
	ErrEmptyPhrase = errors.New("phrase must not be empty")

	// ErrEmptyNorms is returned when a norms entry has no terms.
	ErrEmptyNorms = errors.New("norms must not be empty")

	// ErrMalformedRow is returned when a BSV row cannot be parsed.
	ErrMalformedRow = errors.New("malformed dictionary row")

	// ErrUnknownSourceName is returned when a BSV row names a source that was
	// not registered with the builder.
	ErrUnknownSourceName = errors.New("unknown source name")
)
