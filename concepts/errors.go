package concepts

import "errors"

var (
	// ErrDictionaryRequired is returned when a dictionary is not provided.
	ErrDictionaryRequired = errors.New("dictionary required")

	// ErrTermLookupRequired is returned when a term lookup is not provided.
	ErrTermLookupRequired = errors.New("term lookup required")

	// ErrDocumentRequired is returned when Match is called without a document.
	ErrDocumentRequired = errors.New("document required")

	// ErrSinkRequired is returned when Match is called without a sink.
	ErrSinkRequired = errors.New("sink required")
)
