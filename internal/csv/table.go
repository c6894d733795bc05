package csv

import (
	"strings"
	"unicode"
)

const (
	lineSep  = "\n"
	fieldSep = ","
)

// Table is the parsed form of an uploaded CSV file.
type Table struct {
	// Header is the trimmed header row as written, duplicates included.
	Header []string
	// Records holds one record per data line, in file order.
	Records []Record
}

// Parse converts raw CSV text into a Table. The first line is the header
// row. Fields are split on commas with no quoting support, every header and
// value is trimmed, and rows shorter than the header are padded with empty
// strings. Fields past the last header are dropped.
//
// Parse never fails: empty input yields a single empty header and no records.
func Parse(text string) *Table {
	lines := strings.Split(trim(text), lineSep)

	header := strings.Split(lines[0], fieldSep)
	for i := range header {
		header[i] = trim(header[i])
	}

	records := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := strings.Split(line, fieldSep)
		record := newRecord(len(header))
		for i, h := range header {
			value := ""
			if i < len(fields) {
				value = trim(fields[i])
			}
			record.set(h, value)
		}
		records = append(records, record)
	}

	return &Table{
		Header:  header,
		Records: records,
	}
}

func (t *Table) Len() int {
	return len(t.Records)
}

// Columns returns the distinct column names in header order. These are the
// keys every record carries.
func (t *Table) Columns() []string {
	seen := make(map[string]struct{}, len(t.Header))
	cols := make([]string, 0, len(t.Header))
	for _, h := range t.Header {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		cols = append(cols, h)
	}
	return cols
}

// Head returns at most n records from the start of the table. n <= 0
// returns every record.
func (t *Table) Head(n int) []Record {
	if n <= 0 || n >= len(t.Records) {
		return t.Records
	}
	return t.Records[:n]
}

// trim strips surrounding whitespace. A byte order mark counts as
// whitespace; NEL (U+0085) does not.
func trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		if r == '\u0085' {
			return false
		}
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}
