// Package writer serializes a conversion Report as CSV files or an XLSX workbook.
package writer

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/insightdelivered/payment-advice-converter/internal/models"
)

// Report is the pair of tables produced for one advice.
type Report struct {
	Summary []models.SummaryRow
	Entries []models.Entry

	// Enriched adds the Import Name column to the summary table.
	Enriched bool
}

var entryHeader = []string{
	"Document Number", "Invoice Number", "Invoice Date", "Invoice Amount", "GST Adjustment",
	"Payment Amount", "TDS (Signed)", "Debit Note", "Status", "Page",
}

// SummaryHeader returns the summary column names in output order.
func SummaryHeader(enriched bool) []string {
	h := []string{"Invoice Number"}
	if enriched {
		h = append(h, "Import Name")
	}
	return append(h, "Final Paid Amount", "TDS", "Invoice Amount", "GST Adjustment",
		"Payment Amount", "Debit Note", "Invoice Date")
}

// EntryHeader returns the audit table column names in output order.
func EntryHeader() []string {
	return append([]string(nil), entryHeader...)
}

// summaryCells returns one summary row as typed cells: strings and float64s.
func summaryCells(r models.SummaryRow, enriched bool) []any {
	cells := []any{r.InvoiceNumber}
	if enriched {
		name := ""
		if r.ImportName != nil {
			name = *r.ImportName
		}
		cells = append(cells, name)
	}
	return append(cells, r.FinalPaidAmount, r.TDS, r.InvoiceAmount, r.GSTAdjustment,
		r.PaymentAmount, r.DebitNote, r.InvoiceDate)
}

func entryCells(e models.Entry) []any {
	return []any{
		e.DocumentNumber, e.InvoiceNumber, e.InvoiceDate, e.InvoiceAmount, e.GSTAdjustment,
		e.PaymentAmount, e.TDSSigned, e.DebitNote, string(e.Status), e.Page,
	}
}

func toStrings(cells []any) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		switch v := c.(type) {
		case float64:
			out[i] = formatAmount(v)
		case int:
			out[i] = strconv.Itoa(v)
		case string:
			out[i] = v
		}
	}
	return out
}

func formatAmount(amount float64) string {
	if amount == 0 {
		// Avoid "-0.00".
		return "0.00"
	}
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

// EntriesPath derives the audit file path from the summary path:
// "out/advice.csv" becomes "out/advice_entries.csv".
func EntriesPath(summaryPath string) string {
	ext := filepath.Ext(summaryPath)
	return strings.TrimSuffix(summaryPath, ext) + "_entries" + ext
}
