package parser

import (
	"regexp"
	"strings"
)

// DefaultInvoicePrefix is the organizational invoice-number prefix used when
// none is configured.
const DefaultInvoicePrefix = "VCC"

// LineKind is the classification of a single advice line.
type LineKind int

const (
	NotAnEntry LineKind = iota
	MainEntryStart
	GSTEntryStart
)

func (k LineKind) String() string {
	switch k {
	case MainEntryStart:
		return "main-entry"
	case GSTEntryStart:
		return "gst-entry"
	default:
		return "not-an-entry"
	}
}

// Classifier decides whether a line starts a Main Entry, a GST Entry, or neither.
//
// An invoice number is a token beginning with R followed by digits, or beginning
// with the organizational prefix followed by any alphanumeric suffix. Matching is
// case-insensitive and anchored only at the start of the token.
type Classifier struct {
	invoicePattern *regexp.Regexp
}

// NewClassifier builds a classifier for the given organizational prefix.
func NewClassifier(prefix string) *Classifier {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultInvoicePrefix
	}
	return &Classifier{
		invoicePattern: regexp.MustCompile(`(?i)^(?:R\d+|` + regexp.QuoteMeta(prefix) + `[A-Z0-9]+)`),
	}
}

// IsInvoiceNumber reports whether token has the invoice-number shape.
func (c *Classifier) IsInvoiceNumber(token string) bool {
	return c.invoicePattern.MatchString(token)
}

// Classify inspects a line's whitespace-separated tokens.
func (c *Classifier) Classify(fields []string) LineKind {
	if len(fields) < 3 || !c.IsInvoiceNumber(fields[1]) {
		return NotAnEntry
	}
	if len(fields) >= 4 {
		return MainEntryStart
	}
	return GSTEntryStart
}
