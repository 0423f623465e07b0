package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/payment-advice-converter/internal/models"
)

type group struct {
	row           models.SummaryRow
	invoiceAmount decimal.Decimal
	gst           decimal.Decimal
	payment       decimal.Decimal
	tds           decimal.Decimal
	debitNote     decimal.Decimal
	hasDate       bool
}

// Summarize reduces entries to one SummaryRow per invoice number, in order of
// first appearance. Sums are taken in decimal so two-place amounts add exactly.
func Summarize(entries []models.Entry) []models.SummaryRow {
	groups := make(map[string]*group)
	var order []string

	for _, e := range entries {
		g, ok := groups[e.InvoiceNumber]
		if !ok {
			g = &group{
				row:           models.SummaryRow{InvoiceNumber: e.InvoiceNumber},
				invoiceAmount: decimal.NewFromFloat(e.InvoiceAmount),
				tds:           decimal.NewFromFloat(e.TDSSigned),
			}
			groups[e.InvoiceNumber] = g
			order = append(order, e.InvoiceNumber)
		}

		if !g.hasDate && e.InvoiceDate != "" {
			g.row.InvoiceDate = e.InvoiceDate
			g.hasDate = true
		}

		g.invoiceAmount = decimal.Max(g.invoiceAmount, decimal.NewFromFloat(e.InvoiceAmount))
		g.gst = g.gst.Add(decimal.NewFromFloat(e.GSTAdjustment))
		g.payment = g.payment.Add(decimal.NewFromFloat(e.PaymentAmount))
		g.debitNote = g.debitNote.Add(decimal.NewFromFloat(e.DebitNote))

		// All entries of an invoice carry the same back-filled TDS; keep the
		// largest magnitude so the reduction stays correct even if they differ.
		if tds := decimal.NewFromFloat(e.TDSSigned); tds.Abs().GreaterThan(g.tds.Abs()) {
			g.tds = tds
		}
	}

	rows := make([]models.SummaryRow, 0, len(order))
	for _, inv := range order {
		g := groups[inv]
		row := g.row
		row.InvoiceAmount = g.invoiceAmount.InexactFloat64()
		row.GSTAdjustment = g.gst.InexactFloat64()
		row.PaymentAmount = g.payment.InexactFloat64()
		row.DebitNote = g.debitNote.InexactFloat64()
		row.TDSSigned = g.tds.InexactFloat64()
		row.FinalPaidAmount = g.payment.Add(g.gst).InexactFloat64()
		row.TDS = g.tds.Abs().InexactFloat64()
		rows = append(rows, row)
	}
	return rows
}
