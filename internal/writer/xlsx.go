package writer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet names in the workbook.
const (
	SummarySheet = "Summary"
	EntriesSheet = "Entries"
)

// XLSXWriter writes the summary and entries to one workbook, one sheet each.
type XLSXWriter struct{}

// WriteToFile writes the workbook to path.
func (w *XLSXWriter) WriteToFile(path string, rep *Report) error {
	return writeFile(path, func(out io.Writer) error { return w.Write(out, rep) })
}

// Write writes the workbook to out. Amounts are stored as numbers.
func (w *XLSXWriter) Write(out io.Writer, rep *Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(EntriesSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	summary := make([][]any, 0, len(rep.Summary))
	for _, r := range rep.Summary {
		summary = append(summary, summaryCells(r, rep.Enriched))
	}
	if err := fillSheet(f, SummarySheet, SummaryHeader(rep.Enriched), summary); err != nil {
		return err
	}

	entries := make([][]any, 0, len(rep.Entries))
	for _, e := range rep.Entries {
		entries = append(entries, entryCells(e))
	}
	if err := fillSheet(f, EntriesSheet, entryHeader, entries); err != nil {
		return err
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func fillSheet(f *excelize.File, sheet string, header []string, rows [][]any) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	amounts, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("create amount style: %w", err)
	}

	for col, h := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("%s header: %w", sheet, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}

	for i, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
			}
			if _, ok := v.(float64); ok {
				if err := f.SetCellStyle(sheet, cell, cell, amounts); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
