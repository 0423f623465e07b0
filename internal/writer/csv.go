package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// CSVWriter writes the summary and the audit entries as two CSV documents.
type CSVWriter struct{}

// WriteToFiles writes the summary to path and the entries next to it (see
// EntriesPath). It returns the paths written.
func (w *CSVWriter) WriteToFiles(path string, rep *Report) ([]string, error) {
	entriesPath := EntriesPath(path)

	if err := writeFile(path, func(out io.Writer) error { return w.WriteSummary(out, rep) }); err != nil {
		return nil, err
	}
	if err := writeFile(entriesPath, func(out io.Writer) error { return w.WriteEntries(out, rep) }); err != nil {
		return nil, err
	}
	return []string{path, entriesPath}, nil
}

// WriteSummary writes the per-invoice summary table.
func (w *CSVWriter) WriteSummary(out io.Writer, rep *Report) error {
	records := make([][]string, 0, len(rep.Summary))
	for _, r := range rep.Summary {
		records = append(records, toStrings(summaryCells(r, rep.Enriched)))
	}
	return writeCSV(out, SummaryHeader(rep.Enriched), records)
}

// WriteEntries writes the un-aggregated entry table with signed TDS.
func (w *CSVWriter) WriteEntries(out io.Writer, rep *Report) error {
	records := make([][]string, 0, len(rep.Entries))
	for _, e := range rep.Entries {
		records = append(records, toStrings(entryCells(e)))
	}
	return writeCSV(out, entryHeader, records)
}

func writeCSV(out io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(out)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return f.Close()
}
