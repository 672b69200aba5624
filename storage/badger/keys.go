package badger

import (
	"fmt"

	"github.com/poiesic/conceptmatch/storage"
)

// Key prefixes for the dictionary tables
const (
	phrasePrefix    = "phr:"
	lowercasePrefix = "low:"
	normsPrefix     = "nrm:"
	termPrefix      = "trm:"
	sourcePrefix    = "src:"
	metaPrefix      = "meta:"
)

// tablePrefix returns the key prefix of table.
func tablePrefix(table storage.Table) ([]byte, error) {
	switch table {
	case storage.TablePhrases:
		return []byte(phrasePrefix), nil
	case storage.TableLowercase:
		return []byte(lowercasePrefix), nil
	case storage.TableNorms:
		return []byte(normsPrefix), nil
	case storage.TableTerms:
		return []byte(termPrefix), nil
	case storage.TableSources:
		return []byte(sourcePrefix), nil
	case storage.TableMeta:
		return []byte(metaPrefix), nil
	default:
		return nil, fmt.Errorf("%w: %q", storage.ErrUnknownTable, table)
	}
}

// tableKey generates the physical key for key in table.
// Format: prefix + key bytes
func tableKey(table storage.Table, key []byte) ([]byte, error) {
	prefix, err := tablePrefix(table)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, len(prefix)+len(key))
	offset := copy(buf, prefix)
	copy(buf[offset:], key)
	return buf, nil
}
