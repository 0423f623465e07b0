package writer

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestXLSXWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := &XLSXWriter{}
	require.NoError(t, w.Write(&buf, sampleReport(true)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, EntriesSheet}, f.GetSheetList())

	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, SummaryHeader(true), rows[0])
	assert.Equal(t, "R001", rows[1][0])
	assert.Equal(t, "ABC Imports", rows[1][1])

	raw, err := f.GetCellValue(SummarySheet, "C2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "950", raw, "amounts are stored as numbers")

	entries, err := f.GetRows(EntriesSheet)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, EntryHeader(), entries[0])
	assert.Equal(t, "MAIN_ENTRY", entries[1][8])
}

func TestXLSXWriter_WriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advice.xlsx")
	require.NoError(t, (&XLSXWriter{}).WriteToFile(path, sampleReport(false)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, SummaryHeader(false), rows[0])
}
