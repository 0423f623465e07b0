package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// Optional leading minus, comma-grouped digits, optional two-digit fraction,
	// optional trailing minus (accounting notation for debits).
	signedAmountPattern = regexp.MustCompile(`-?\d[\d,]*(?:\.\d{2})?-?`)

	// DD.MM.YYYY, not calendar-validated.
	datePattern = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)

	shortPaymentPattern = regexp.MustCompile(`(?i)short\s*payment`)
	// Currency amount following "Rs" / "Rs." / "INR".
	currencyAmountPattern = regexp.MustCompile(`(?i)(?:Rs\.?|INR)\s*(-?[\d,]+(?:\.\d{2})?-?)`)

	tdsMarkerPattern = regexp.MustCompile(`(?i)TDS\s+Amount`)
)

// ParseSignedAmount converts the first numeric substring of s to a float64.
// "1,234.56" -> 1234.56, "1234.56-" -> -1234.56, "-1234.56" -> -1234.56.
// Anything without a numeric substring yields 0.
func ParseSignedAmount(s string) float64 {
	m := signedAmountPattern.FindString(s)
	if m == "" {
		return 0
	}
	return parseSignedMatch(m)
}

// findAmounts returns every signed amount on a line, in order.
func findAmounts(line string) []float64 {
	matches := signedAmountPattern.FindAllString(line, -1)
	amounts := make([]float64, 0, len(matches))
	for _, m := range matches {
		amounts = append(amounts, parseSignedMatch(m))
	}
	return amounts
}

func parseSignedMatch(m string) float64 {
	m = strings.ReplaceAll(m, ",", "")
	negative := strings.HasPrefix(m, "-")
	if strings.HasSuffix(m, "-") {
		m = strings.TrimSuffix(m, "-")
		negative = true
	}
	m = strings.TrimPrefix(m, "-")

	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	if negative {
		return -v
	}
	return v
}

func isDate(token string) bool {
	return datePattern.MatchString(token)
}

// secondDate returns the second date-shaped token among fields.
func secondDate(fields []string) (string, bool) {
	found := 0
	for _, f := range fields {
		if !isDate(f) {
			continue
		}
		found++
		if found == 2 {
			return f, true
		}
	}
	return "", false
}

// shortPaymentAmount reports whether line is a short-payment note and the
// currency amount it carries (0 when the amount cannot be read).
func shortPaymentAmount(line string) (float64, bool) {
	if !shortPaymentPattern.MatchString(line) {
		return 0, false
	}
	m := currencyAmountPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, true
	}
	return math.Abs(ParseSignedAmount(m[1])), true
}

func truncate(line string, n int) string {
	if len(line) > n {
		return line[:n] + "..."
	}
	return line
}
