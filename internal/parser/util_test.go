package parser

import (
	"strings"
	"testing"
)

func TestParseSignedAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"1,234.56", 1234.56},
		{"1234.56-", -1234.56},
		{"-1234.56", -1234.56},
		{"abc", 0},
		{"", 0},
		{"-", 0},
		{"1,18,000.00", 118000},
		{"25.00-", -25},
		{"100-", -100},
		{"-100-", -100},
		{"Rs.50.00", 50},
		{"0.00", 0},
		{"950", 950},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseSignedAmount(tt.input)
			if got != tt.expected {
				t.Errorf("ParseSignedAmount(%q): got %f, want %f", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFindAmounts(t *testing.T) {
	got := findAmounts("TDS Amount 25.00- of 1,000.00")
	want := []float64{-25, 1000}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("amount[%d]: got %f, want %f", i, got[i], want[i])
		}
	}

	if amounts := findAmounts("TDS Amount"); len(amounts) != 0 {
		t.Errorf("expected no amounts, got %v", amounts)
	}
}

func TestSecondDate(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"01.04.2024 05.04.2024", "05.04.2024", true},
		{"Doc 01.04.2024 Inv 05.04.2024", "05.04.2024", true},
		{"01.04.2024", "", false},
		{"1.4.2024 5.4.2024", "", false},
		{"99.99.9999 31.02.2024", "31.02.2024", true},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := secondDate(strings.Fields(tt.input))
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("secondDate(%q): got (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestShortPaymentAmount(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{"Short payment Rs.50.00", 50, true},
		{"SHORT PAYMENT Rs. 5,900.00", 5900, true},
		{"Short payment INR 12.50", 12.5, true},
		{"Short payment pending", 0, true},
		{"Payment Rs.50.00", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := shortPaymentAmount(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("shortPaymentAmount(%q): got (%f, %v), want (%f, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
