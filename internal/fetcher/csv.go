// Package fetcher downloads registry extracts and reads their CSV and ZIP contents.
package fetcher

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

const utf8BOM = "\ufeff"

// CSVOptions configures the CSV reader.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool
}

// Record is one CSV data row addressed by header column name.
type Record struct {
	fields []string
	cols   map[string]int
}

// NewRecord builds a Record from a header and a row of fields.
func NewRecord(header, fields []string) Record {
	return Record{fields: fields, cols: mapHeader(header)}
}

// Get returns the value of the named column, or "" if the column is absent
// or the row is short.
func (r Record) Get(name string) string {
	idx, ok := r.cols[name]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return r.fields[idx]
}

// ReadCSV reads a CSV stream with a header row and calls fn for each data row,
// in order, on the caller's goroutine. Rows may have more or fewer fields than
// the header. A UTF-8 byte order mark before the header is ignored.
// It returns the number of data rows passed to fn.
func ReadCSV(ctx context.Context, r io.Reader, opts CSVOptions, fn func(Record) error) (int64, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && string(b) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow variable fields

	var (
		cols  map[string]int
		count int64
	)
	for {
		if ctx.Err() != nil {
			return count, eris.Wrap(ctx.Err(), "csv: context cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, eris.Wrap(err, "csv: read row")
		}

		if opts.TrimSpace {
			for i, field := range record {
				record[i] = strings.TrimSpace(field)
			}
		}

		if cols == nil {
			cols = mapHeader(record)
			continue
		}

		count++
		if err := fn(Record{fields: record, cols: cols}); err != nil {
			return count, err
		}
	}
}

// mapHeader builds a column name to index map. The first occurrence of a
// duplicated column name wins.
func mapHeader(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimSpace(col)
		if _, seen := m[col]; seen {
			continue
		}
		m[col] = i
	}
	return m
}
