package reference

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestNew_TrimsHeaders(t *testing.T) {
	tbl := New("t", []string{" Invoice Number ", "STATE", "STATE"}, [][]string{{"R1", "A", "B"}, {"R2"}})

	assert.Equal(t, []string{"Invoice Number", "STATE", "STATE"}, tbl.Columns)
	assert.True(t, tbl.Has("Invoice Number"))
	assert.Equal(t, "A", tbl.Value(tbl.Rows[0], "STATE"), "duplicate header keeps first column")
	assert.Equal(t, "", tbl.Value(tbl.Rows[1], "STATE"), "short row")
	assert.Equal(t, "", tbl.Value(tbl.Rows[0], "Nope"))
	assert.Equal(t, []string{"Nope"}, tbl.Missing("STATE", "Nope"))
}

func TestRead_CSV(t *testing.T) {
	data := "\xEF\xBB\xBFInvoice Number,Ship To (State)\nR1,Kerala\n\"R2\",\"Tamil Nadu\"\n"

	tbl, err := Read(strings.NewReader(data), "ledger.csv")
	require.NoError(t, err)

	assert.Equal(t, "ledger.csv", tbl.Name)
	assert.True(t, tbl.Has("Invoice Number"), "BOM must be stripped from the first header")
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "Tamil Nadu", tbl.Value(tbl.Rows[1], "Ship To (State)"))
}

func TestRead_TSV(t *testing.T) {
	tbl, err := Read(strings.NewReader("STATE NAME\tIMPORT NAME\nGOA\tGoa Imports\n"), "states.tsv")
	require.NoError(t, err)
	assert.Equal(t, "Goa Imports", tbl.Value(tbl.Rows[0], "IMPORT NAME"))
}

func TestRead_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "STATE NAME"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "IMPORT NAME"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "MAHARASHTRA"))
	require.NoError(t, f.SetCellValue(sheet, "B2", "ABC Imports"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	tbl, err := Read(&buf, "states.xlsx")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "ABC Imports", tbl.Value(tbl.Rows[0], "IMPORT NAME"))
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(strings.NewReader("x"), "ledger.pdf")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = Read(strings.NewReader(""), "empty.csv")
	assert.True(t, errors.Is(err, ErrEmptyTable))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte("Invoice Number,Ship To (State)\nR1,Goa\n"), 0o644))

	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ledger.csv", tbl.Name)
	assert.Len(t, tbl.Rows, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
