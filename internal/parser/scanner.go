package parser

import (
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/payment-advice-converter/internal/models"
)

// dedupKey is the identity of an Entry within one parse.
type dedupKey struct {
	invoice string
	payment float64
	status  models.EntryStatus
}

// scanner owns all mutable state of one parse. The last-seen invoice crosses
// page boundaries so a TDS line on page 2 can bind to an invoice from page 1.
type scanner struct {
	classifier  *Classifier
	log         zerolog.Logger
	debug       bool
	entries     []models.Entry
	seen        map[dedupKey]struct{}
	tds         map[string]float64
	lastInvoice string
	debugLines  []models.DebugLine
}

func newScanner(c *Classifier, log zerolog.Logger, debug bool) *scanner {
	return &scanner{
		classifier: c,
		log:        log,
		debug:      debug,
		seen:       make(map[dedupKey]struct{}),
		tds:        make(map[string]float64),
	}
}

// scanPage walks one page's lines. The cursor only moves forward: extract
// returns the index of the last line it consumed, which is never below i.
func (s *scanner) scanPage(page int, lines []string) {
	for i := 0; i < len(lines); i++ {
		line := normalizeLine(lines[i])
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		kind := s.classifier.Classify(fields)

		trace := s.trace(page, i, line, "skipped")
		next := i
		if kind != NotAnEntry {
			var result string
			next, result = s.extract(kind, fields, page, lines, i)
			s.setResult(trace, result)
		}

		if result, ok := s.associateTDS(line); ok && kind == NotAnEntry {
			s.setResult(trace, result)
		}

		i = next
	}
}

// extract builds one Entry from the line at i, consuming an optional date line
// and, for Main Entries, an optional short-payment line.
func (s *scanner) extract(kind LineKind, fields []string, page int, lines []string, i int) (int, string) {
	entry := baseEntry(kind, fields)
	entry.Page = page

	var consumed []consumedLine
	cursor := i
	if cursor+1 < len(lines) {
		next := normalizeLine(lines[cursor+1])
		nextFields := strings.Fields(next)
		if s.classifier.Classify(nextFields) == NotAnEntry {
			if date, ok := secondDate(nextFields); ok {
				entry.InvoiceDate = date
				cursor++
				consumed = append(consumed, consumedLine{next, "date", s.trace(page, cursor, next, "date")})
			}
		}
	}
	if entry.InvoiceDate == "" && len(fields) > 4 {
		// Older advices print the document and invoice dates on the entry line.
		if date, ok := secondDate(fields[4:]); ok {
			entry.InvoiceDate = date
		}
	}

	if kind == MainEntryStart && cursor+1 < len(lines) {
		next := normalizeLine(lines[cursor+1])
		if amount, ok := shortPaymentAmount(next); ok {
			entry.DebitNote = amount
			cursor++
			consumed = append(consumed, consumedLine{next, "short-payment", s.trace(page, cursor, next, "short-payment")})
		}
	}

	key := dedupKey{invoice: entry.InvoiceNumber, payment: entry.PaymentAmount, status: entry.Status}
	if _, dup := s.seen[key]; dup {
		s.log.Debug().
			Str("invoice", entry.InvoiceNumber).
			Float64("payment", entry.PaymentAmount).
			Str("status", string(entry.Status)).
			Int("page", page).
			Msg("Duplicate entry suppressed")
		s.associateConsumed(consumed)
		return cursor, "duplicate"
	}
	s.seen[key] = struct{}{}
	s.entries = append(s.entries, entry)
	s.lastInvoice = entry.InvoiceNumber
	s.associateConsumed(consumed)

	return cursor, kind.String()
}

// consumedLine is a line read ahead by extract.
type consumedLine struct {
	text  string
	role  string
	trace int
}

// associateConsumed checks read-ahead lines for a TDS marker once the entry
// that consumed them has settled the current invoice.
func (s *scanner) associateConsumed(lines []consumedLine) {
	for _, l := range lines {
		if result, ok := s.associateTDS(l.text); ok {
			s.setResult(l.trace, l.role+"+"+result)
		}
	}
}

func baseEntry(kind LineKind, fields []string) models.Entry {
	entry := models.Entry{
		DocumentNumber: fields[0],
		InvoiceNumber:  fields[1],
	}
	if kind == MainEntryStart {
		entry.InvoiceAmount = math.Abs(ParseSignedAmount(fields[2]))
		entry.PaymentAmount = ParseSignedAmount(fields[3])
		entry.Status = models.StatusMainEntry
		return entry
	}

	amount := ParseSignedAmount(fields[2])
	entry.GSTAdjustment = amount
	entry.PaymentAmount = amount
	if amount > 0 {
		entry.Status = models.StatusGSTPaid
	} else {
		entry.Status = models.StatusGSTHold
	}
	return entry
}

// associateTDS records the first withheld-tax amount seen for the current
// invoice. Later TDS lines for the same invoice are ignored.
func (s *scanner) associateTDS(line string) (string, bool) {
	loc := tdsMarkerPattern.FindStringIndex(line)
	if loc == nil {
		return "", false
	}
	if s.lastInvoice == "" {
		return "tds-ignored", true
	}
	if _, done := s.tds[s.lastInvoice]; done {
		return "tds-ignored", true
	}
	// Prefer the amount after the marker; a date line may carry it at the end.
	amounts := findAmounts(line[loc[1]:])
	if len(amounts) == 0 {
		amounts = findAmounts(line)
	}
	if len(amounts) == 0 {
		return "tds-ignored", true
	}
	s.tds[s.lastInvoice] = amounts[0]
	s.log.Debug().
		Str("invoice", s.lastInvoice).
		Float64("tds", amounts[0]).
		Msg("TDS associated")
	return "tds", true
}

// finish back-fills the resolved TDS onto every Entry of its invoice.
func (s *scanner) finish() []models.Entry {
	for i := range s.entries {
		s.entries[i].TDSSigned = s.tds[s.entries[i].InvoiceNumber]
	}
	return s.entries
}

func (s *scanner) trace(page, i int, line, result string) int {
	if !s.debug {
		return -1
	}
	s.debugLines = append(s.debugLines, models.DebugLine{
		Page:    page,
		LineNum: i + 1,
		Text:    truncate(line, 120),
		Result:  result,
	})
	return len(s.debugLines) - 1
}

func (s *scanner) setResult(idx int, result string) {
	if idx >= 0 {
		s.debugLines[idx].Result = result
	}
}

// normalizeLine cleans up common PDF extraction artifacts.
func normalizeLine(line string) string {
	line = strings.ReplaceAll(line, "\u200B", "")
	line = strings.ReplaceAll(line, "\u00A0", " ")
	line = strings.ReplaceAll(line, "\t", " ")
	return strings.TrimSpace(line)
}
