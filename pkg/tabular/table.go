package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrEmptyTable is returned when a file has no header row
var ErrEmptyTable = errors.New("tabular: empty table")

// Table is a loaded spreadsheet: one header row plus data rows
type Table struct {
	Header []string
	Rows   [][]string
}

// LoadCSV reads a comma or semicolon separated file
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses a table from r. The delimiter is sniffed from the header line.
func ReadCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(io.LimitReader(r, 8<<20))
	if err != nil {
		return nil, err
	}
	text := strings.TrimPrefix(string(data), "\ufeff")

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = sniffDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse spreadsheet: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}

	t := &Table{Header: records[0]}
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func sniffDelimiter(text string) rune {
	line := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	if strings.Count(line, "\t") > strings.Count(line, ",") {
		return '\t'
	}
	return ','
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Render formats the table as pipe-separated lines, keeping at most maxRows data rows
func (t *Table) Render(maxRows int) string {
	var b strings.Builder
	b.WriteString(strings.Join(t.Header, " | "))
	b.WriteString("\n")
	for i, row := range t.Rows {
		if maxRows > 0 && i >= maxRows {
			fmt.Fprintf(&b, "... (%d more rows)\n", len(t.Rows)-maxRows)
			break
		}
		b.WriteString(strings.Join(row, " | "))
		b.WriteString("\n")
	}
	return b.String()
}
