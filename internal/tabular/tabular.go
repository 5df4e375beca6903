// Package tabular turns delimited text into ordered rows keyed by column name.
//
// The split is flat: quoting and escaping are not interpreted, so a cell that
// contains the delimiter shifts every following value of that row by one
// column. Callers must supply delimiter-safe input.
package tabular

import (
	"strings"

	"fjacquet/mpr-recon/internal/reconerror"
)

// DefaultDelimiter separates values when no other delimiter is configured.
const DefaultDelimiter = ','

// RawRow maps a column name to its raw, trimmed cell value.
type RawRow map[string]string

// Table is a parsed dataset: the header columns in file order and the data rows.
type Table struct {
	Columns []string
	Rows    []RawRow
}

// Parse splits comma-delimited text into a Table.
func Parse(text string) (*Table, error) {
	return ParseWithDelimiter(text, DefaultDelimiter)
}

// ParseWithDelimiter splits text on line breaks and each line on delim.
// The first non-blank line is the header. Blank lines are skipped, rows with
// fewer values than columns get empty strings for the missing trailing
// fields, and values beyond the last column are dropped.
func ParseWithDelimiter(text string, delim rune) (*Table, error) {
	lines := splitLines(text)

	headerIdx := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, &reconerror.ParseError{
			Reason: "no header line found",
			Err:    reconerror.ErrEmptyInput,
		}
	}

	sep := string(delim)
	columns := splitTrim(lines[headerIdx], sep)

	table := &Table{
		Columns: columns,
		Rows:    make([]RawRow, 0, len(lines)-headerIdx-1),
	}
	for _, line := range lines[headerIdx+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		table.Rows = append(table.Rows, buildRow(columns, splitTrim(line, sep)))
	}
	return table, nil
}

// FromRecords builds a Table from pre-split records, such as spreadsheet rows.
// The same trimming and padding rules as ParseWithDelimiter apply.
func FromRecords(header []string, records [][]string) (*Table, error) {
	columns := make([]string, len(header))
	blank := true
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
		if columns[i] != "" {
			blank = false
		}
	}
	if blank {
		return nil, &reconerror.ParseError{
			Reason: "no header line found",
			Err:    reconerror.ErrEmptyInput,
		}
	}

	table := &Table{Columns: columns, Rows: make([]RawRow, 0, len(records))}
	for _, record := range records {
		values := make([]string, len(record))
		empty := true
		for i, v := range record {
			values[i] = strings.TrimSpace(v)
			if values[i] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		table.Rows = append(table.Rows, buildRow(columns, values))
	}
	return table, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Preview returns at most n leading rows.
func (t *Table) Preview(n int) []RawRow {
	if n <= 0 || n >= len(t.Rows) {
		return t.Rows
	}
	return t.Rows[:n]
}

// HasColumn reports whether name is one of the header columns.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

func buildRow(columns, values []string) RawRow {
	row := make(RawRow, len(columns))
	for i, col := range columns {
		if i < len(values) {
			row[col] = values[i]
		} else {
			row[col] = ""
		}
	}
	return row
}

func splitLines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func splitTrim(line, sep string) []string {
	parts := strings.Split(line, sep)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
