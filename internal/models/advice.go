package models

// EntryStatus identifies what kind of movement an Entry records.
type EntryStatus string

const (
	StatusMainEntry EntryStatus = "MAIN_ENTRY"
	StatusGSTPaid   EntryStatus = "GST_PAID"
	StatusGSTHold   EntryStatus = "GST_HOLD"
)

// Entry is one recognized line-group from a payment advice.
type Entry struct {
	DocumentNumber string      `json:"documentNumber"`
	InvoiceNumber  string      `json:"invoiceNumber"`
	InvoiceDate    string      `json:"invoiceDate,omitempty"`
	InvoiceAmount  float64     `json:"invoiceAmount"`
	GSTAdjustment  float64     `json:"gstAdjustment"`
	PaymentAmount  float64     `json:"paymentAmount"`
	TDSSigned      float64     `json:"tdsSigned"`
	DebitNote      float64     `json:"debitNote"`
	Status         EntryStatus `json:"status"`
	Page           int         `json:"page"`
}

// SummaryRow is the per-invoice reduction of all Entries sharing an invoice number.
type SummaryRow struct {
	InvoiceNumber   string  `json:"invoiceNumber"`
	InvoiceDate     string  `json:"invoiceDate,omitempty"`
	InvoiceAmount   float64 `json:"invoiceAmount"`
	GSTAdjustment   float64 `json:"gstAdjustment"`
	PaymentAmount   float64 `json:"paymentAmount"`
	TDSSigned       float64 `json:"tdsSigned"`
	DebitNote       float64 `json:"debitNote"`
	FinalPaidAmount float64 `json:"finalPaidAmount"`
	TDS             float64 `json:"tds"`

	// Set only by enrichment. Nil means no match.
	State      *string `json:"state,omitempty"`
	ImportName *string `json:"importName,omitempty"`
}

// DebugLine captures what the scanner did with each input line.
type DebugLine struct {
	Page    int    `json:"page"`
	LineNum int    `json:"lineNum"`
	Text    string `json:"text"`
	Result  string `json:"result"` // "main-entry", "gst-entry", "duplicate", "date", "short-payment", "tds", "tds-ignored", "skipped"
}

// AdviceInfo holds everything extracted from one payment advice document.
type AdviceInfo struct {
	AccountNumber string
	Pages         int
	Entries       []Entry
	DebugLines    []DebugLine
}
