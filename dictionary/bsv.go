package dictionary

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/conceptmatch/core"
)

const (
	bsvMinFields = 5
	bsvMaxFields = 6
)

// LoadBSV adds the rows of a bar-separated file to the builder and returns
// the number of rows read. Each row is
//
//	text|sui|cui|tui|source[|norms]
//
// where source is a name registered with AddSource and norms is a
// space-separated list of norm terms. Every row is added to the exact and
// lowercase phrase indices; rows with norms are also added to the norms index.
// Blank lines and lines starting with '#' are ignored.
func (b *Builder) LoadBSV(r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.Comma = '|'
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	rows := 0
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, fmt.Errorf("%w: %w", ErrMalformedRow, err)
		}
		line, _ := reader.FieldPos(0)
		if err := b.addRow(fields); err != nil {
			return rows, fmt.Errorf("line %d: %w", line, err)
		}
		rows++
	}
}

func (b *Builder) addRow(fields []string) error {
	if len(fields) < bsvMinFields || len(fields) > bsvMaxFields {
		return fmt.Errorf("%w: %d fields", ErrMalformedRow, len(fields))
	}
	sourceID, ok := b.SourceID(fields[4])
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSourceName, fields[4])
	}
	text := fields[0]
	record := core.ConceptRecord{
		SUI:      fields[1],
		CUI:      fields[2],
		TUI:      fields[3],
		SourceID: sourceID,
	}

	if err := b.AddPhrase(text, record); err != nil {
		return err
	}
	if err := b.AddLowercasePhrase(text, record); err != nil {
		return err
	}
	if len(fields) == bsvMaxFields {
		if norms := strings.Fields(fields[5]); len(norms) > 0 {
			return b.AddNorms(norms, record)
		}
	}
	return nil
}
