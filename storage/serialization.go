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


package storage

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/conceptmatch/core"
)

const (
	// sourceIDSize is the width of the trailing source id in a record.
	sourceIDSize = 4

	// termIDSize is the width of a value in the terms table.
	termIDSize = 4

	// LayoutKey is the meta table key holding the record layout.
	LayoutKey = "layout"
)

// RecordLayout fixes the field widths of an encoded concept record. It is
// chosen when a dictionary is built and stays constant for that build.
type RecordLayout struct {
	SUIWidth int
	CUIWidth int
	TUIWidth int
}

// DefaultRecordLayout fits UMLS identifiers: S0000000, C0000000 and T000.
var DefaultRecordLayout = RecordLayout{SUIWidth: 8, CUIWidth: 8, TUIWidth: 4}

// Width returns the encoded size of one record.
func (l RecordLayout) Width() int {
	return l.SUIWidth + l.CUIWidth + l.TUIWidth + sourceIDSize
}

// Validate checks that every field has a positive width.
func (l RecordLayout) Validate() error {
	if l.SUIWidth <= 0 || l.CUIWidth <= 0 || l.TUIWidth <= 0 {
		return fmt.Errorf("%w: record layout %d/%d/%d has a non-positive field width",
			ErrFormat, l.SUIWidth, l.CUIWidth, l.TUIWidth)
	}
	return nil
}

// Fit widens the layout so that record's identifiers fit.
func (l RecordLayout) Fit(record core.ConceptRecord) RecordLayout {
	l.SUIWidth = max(l.SUIWidth, len(record.SUI))
	l.CUIWidth = max(l.CUIWidth, len(record.CUI))
	l.TUIWidth = max(l.TUIWidth, len(record.TUI))
	return l
}

// AppendConceptRecord appends the fixed-width encoding of record to dst.
func (l RecordLayout) AppendConceptRecord(dst []byte, record core.ConceptRecord) ([]byte, error) {
	var err error
	if dst, err = appendField(dst, "sui", record.SUI, l.SUIWidth); err != nil {
		return nil, err
	}
	if dst, err = appendField(dst, "cui", record.CUI, l.CUIWidth); err != nil {
		return nil, err
	}
	if dst, err = appendField(dst, "tui", record.TUI, l.TUIWidth); err != nil {
		return nil, err
	}
	return binary.BigEndian.AppendUint32(dst, uint32(record.SourceID)), nil
}

// MarshalConceptRecords concatenates the encodings of records in order.
func (l RecordLayout) MarshalConceptRecords(records ...core.ConceptRecord) ([]byte, error) {
	buf := make([]byte, 0, len(records)*l.Width())
	for _, record := range records {
		var err error
		buf, err = l.AppendConceptRecord(buf, record)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// UnmarshalConceptRecords decodes a packed value blob, one record per
// iteration, until the cursor reaches the end of data. A length that is not
// an exact multiple of the record width is a format error.
func (l RecordLayout) UnmarshalConceptRecords(data []byte) ([]core.ConceptRecord, error) {
	width := l.Width()
	if len(data)%width != 0 {
		return nil, fmt.Errorf("%w: value of %d bytes is not a multiple of record width %d",
			ErrFormat, len(data), width)
	}
	records := make([]core.ConceptRecord, 0, len(data)/width)
	for cursor := 0; cursor < len(data); cursor += width {
		records = append(records, l.unmarshalConceptRecord(data[cursor:cursor+width]))
	}
	return records, nil
}

// unmarshalConceptRecord decodes exactly one record of l.Width() bytes.
func (l RecordLayout) unmarshalConceptRecord(data []byte) core.ConceptRecord {
	offset := 0
	field := func(width int) string {
		value := strings.TrimRight(string(data[offset:offset+width]), "\x00")
		offset += width
		return value
	}
	record := core.ConceptRecord{
		SUI: field(l.SUIWidth),
		CUI: field(l.CUIWidth),
		TUI: field(l.TUIWidth),
	}
	record.SourceID = int32(binary.BigEndian.Uint32(data[offset:]))
	return record
}

// appendField appends value NUL-padded to width bytes.
func appendField(dst []byte, name, value string, width int) ([]byte, error) {
	if len(value) > width {
		return nil, fmt.Errorf("%w: %s %q is %d bytes, field is %d", ErrIdentifierTooLong, name, value, len(value), width)
	}
	dst = append(dst, value...)
	for i := len(value); i < width; i++ {
		dst = append(dst, 0)
	}
	return dst, nil
}

// MarshalTermID serializes a term id as 4 big-endian bytes.
func MarshalTermID(id core.TermID) []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(id))
}

// UnmarshalTermID deserializes a term id.
func UnmarshalTermID(data []byte) (core.TermID, error) {
	if len(data) != termIDSize {
		return core.UnknownTermID, fmt.Errorf("%w: term id of %d bytes", ErrFormat, len(data))
	}
	return core.TermID(int32(binary.BigEndian.Uint32(data))), nil
}

// MarshalSourceID serializes a source id as 4 big-endian bytes.
func MarshalSourceID(id int32) []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(id))
}

// UnmarshalSourceID deserializes a source id.
func UnmarshalSourceID(data []byte) (int32, error) {
	if len(data) != sourceIDSize {
		return 0, fmt.Errorf("%w: source id of %d bytes", ErrFormat, len(data))
	}
	return int32(binary.BigEndian.Uint32(data)), nil
}

// MarshalSourceName serializes a source name to bytes.
func MarshalSourceName(name string) []byte {
	buf := make([]byte, ord.String.Size(name))
	ord.String.Marshal(name, buf)
	return buf
}

// UnmarshalSourceName deserializes a source name from bytes.
func UnmarshalSourceName(data []byte) (string, error) {
	name, _, err := ord.String.Unmarshal(data)
	if err != nil {
		return "", fmt.Errorf("%w: source name: %w", ErrFormat, err)
	}
	return name, nil
}

// MarshalRecordLayout serializes a RecordLayout to bytes.
func MarshalRecordLayout(layout RecordLayout) []byte {
	widths := []int{layout.SUIWidth, layout.CUIWidth, layout.TUIWidth}
	size := 0
	for _, w := range widths {
		size += varint.Int.Size(w)
	}
	buf := make([]byte, size)
	n := 0
	for _, w := range widths {
		n += varint.Int.Marshal(w, buf[n:])
	}
	return buf
}

// UnmarshalRecordLayout deserializes a RecordLayout from bytes.
func UnmarshalRecordLayout(data []byte) (RecordLayout, error) {
	var widths [3]int
	n := 0
	for i := range widths {
		w, read, err := varint.Int.Unmarshal(data[n:])
		if err != nil {
			return RecordLayout{}, fmt.Errorf("%w: record layout: %w", ErrFormat, err)
		}
		widths[i] = w
		n += read
	}
	layout := RecordLayout{SUIWidth: widths[0], CUIWidth: widths[1], TUIWidth: widths[2]}
	if err := layout.Validate(); err != nil {
		return RecordLayout{}, err
	}
	return layout, nil
}
