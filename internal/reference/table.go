// Package reference loads the externally supplied lookup tables used for
// import-name enrichment. Tables are read fully into memory and never mutated.
package reference

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither spreadsheets nor delimited text.
	ErrUnsupportedFormat = errors.New("unsupported reference table format")

	// ErrEmptyTable is returned when a table has no header row.
	ErrEmptyTable = errors.New("reference table is empty")
)

// UTF-8 BOM written by Excel when saving CSV.
var bom = []byte{0xEF, 0xBB, 0xBF}

// Table is a header-indexed, read-only tabular input.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
	index   map[string]int
}

// New builds a Table. Column names are trimmed of surrounding whitespace; on
// duplicate names the first column wins.
func New(name string, header []string, rows [][]string) *Table {
	t := &Table{
		Name:    name,
		Columns: make([]string, len(header)),
		Rows:    rows,
		index:   make(map[string]int, len(header)),
	}
	for i, h := range header {
		h = strings.TrimSpace(h)
		t.Columns[i] = h
		if _, ok := t.index[h]; !ok {
			t.index[h] = i
		}
	}
	return t
}

// Has reports whether the table has a column named col.
func (t *Table) Has(col string) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[col]
	return ok
}

// Missing returns the subset of cols the table lacks, in the given order.
func (t *Table) Missing(cols ...string) []string {
	var missing []string
	for _, c := range cols {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Value returns the cell of row under col, or "" when absent or short.
func (t *Table) Value(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// Load reads a reference table from path. The encoding is chosen by extension:
// .xlsx/.xlsm are spreadsheets, .csv/.txt comma-delimited, .tsv tab-delimited.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference table %q: %w", path, err)
	}
	defer f.Close()

	return Read(f, filepath.Base(path))
}

// Read parses a reference table from r, using filename to pick the encoding.
func Read(r io.Reader, filename string) (*Table, error) {
	var (
		header []string
		rows   [][]string
		err    error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		header, rows, err = readSpreadsheet(r)
	case ".csv", ".txt":
		header, rows, err = readDelimited(r, ',')
	case ".tsv":
		header, rows, err = readDelimited(r, '\t')
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("read reference table %q: %w", filename, err)
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyTable, filename)
	}

	return New(filename, header, rows), nil
}

func readSpreadsheet(r io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	return rows[0], rows[1:], nil
}

func readDelimited(r io.Reader, comma rune) ([]string, [][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	data = bytes.TrimPrefix(data, bom)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	return records[0], records[1:], nil
}
