package extractor

import (
	"regexp"
	"strings"
	"unicode"
)

// PageBreak separates pages in pre-extracted text supplied by clients that
// ran the PDF through their own text layer.
const PageBreak = "---PAGE_BREAK---"

var pageBreakPattern = regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(PageBreak) + `[ \t]*$|\f`)

// adviceWords appear on every payment advice; text with none of them is
// almost certainly mis-decoded glyphs.
var adviceWords = []string{
	"payment", "advice", "invoice", "amount", "a/c", "account",
	"tds", "paid", "date", "total", "ref", "doc",
}

// SplitPages splits plain text into pages on form feeds or PageBreak lines.
// Trailing empty pages are dropped; interior empty pages are kept so page
// numbers stay aligned.
func SplitPages(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	pages := pageBreakPattern.Split(text, -1)
	for len(pages) > 0 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	for i := range pages {
		pages[i] = strings.Trim(pages[i], "\n")
	}
	return pages
}

// IsReadableText reports whether pages hold enough mostly-ASCII text and at
// least one word expected on a payment advice.
func IsReadableText(pages []string) bool {
	return isReadableText(pages)
}

func isReadableText(pages []string) bool {
	if totalTextLen(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	return containsAdviceWords(pages)
}

// textQuality is the share of ASCII letters, digits, whitespace and common
// punctuation among all runes. unicode.IsLetter is too lenient here since
// identity-encoded fonts decode to accented garbage.
func textQuality(pages []string) float64 {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			switch {
			case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r)):
				readable++
			case strings.ContainsRune(".,-/:;()'\"%&@#!?+=*₹", r):
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

func containsAdviceWords(pages []string) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, w := range adviceWords {
		if strings.Contains(combined, w) {
			return true
		}
	}
	return false
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}
