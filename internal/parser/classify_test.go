package parser

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	c := NewClassifier("")

	tests := []struct {
		line     string
		expected LineKind
	}{
		{"51000123 R100234 1,000.00 950.00", MainEntryStart},
		{"51000123 r100234 1,000.00 950.00 01.04.2024 05.04.2024", MainEntryStart},
		{"51000123 R100234 50.00-", GSTEntryStart},
		{"51000123 VCC24A17 50.00", GSTEntryStart},
		{"51000123 vcc-17 50.00", NotAnEntry},
		{"51000123 R 1,000.00 950.00", NotAnEntry},
		{"R100234 51000123 1,000.00 950.00", NotAnEntry},
		{"51000123 R100234", NotAnEntry},
		{"TDS Amount 25.00-", NotAnEntry},
		{"", NotAnEntry},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := c.Classify(strings.Fields(tt.line))
			if got != tt.expected {
				t.Errorf("Classify(%q): got %s, want %s", tt.line, got, tt.expected)
			}
		})
	}
}

func TestClassifierCustomPrefix(t *testing.T) {
	c := NewClassifier("ACME")

	if !c.IsInvoiceNumber("acme2024X9") {
		t.Error("expected prefix match to be case-insensitive")
	}
	if c.IsInvoiceNumber("VCC123") {
		t.Error("default prefix should not match when a custom prefix is configured")
	}
	if !c.IsInvoiceNumber("R42") {
		t.Error("R-numbers should always match")
	}
}
