// Package converter runs the advice pipeline shared by the CLI and the API:
// account check, scan, aggregation and optional enrichment.
package converter

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/payment-advice-converter/internal/logger"
	"github.com/insightdelivered/payment-advice-converter/internal/metrics"
	"github.com/insightdelivered/payment-advice-converter/internal/models"
	"github.com/insightdelivered/payment-advice-converter/internal/parser"
	"github.com/insightdelivered/payment-advice-converter/internal/reconcile"
	"github.com/insightdelivered/payment-advice-converter/internal/reference"
	"github.com/insightdelivered/payment-advice-converter/internal/writer"
)

// ErrNoEntries marks an advice in which nothing was recognized. It is reported
// as a warning on the Result, never returned as an error.
var ErrNoEntries = errors.New("no entries found in payment advice")

// References holds the optional enrichment tables. Enrichment runs only when
// both are present.
type References struct {
	Ledger   *reference.Table
	StateMap *reference.Table
}

// Enrichment reports what the join did.
type Enrichment struct {
	Applied bool                `json:"applied"`
	Matched int                 `json:"matched"`
	Total   int                 `json:"total"`
	Missing map[string][]string `json:"missing,omitempty"` // keyed by "ledger" or "state map"
}

// Result is the outcome of one conversion.
type Result struct {
	Info       *models.AdviceInfo
	Summary    []models.SummaryRow
	Enrichment *Enrichment
	Warnings   []string
}

// Empty reports whether no entries were found. Callers skip export when true.
func (r *Result) Empty() bool {
	return r.Info == nil || len(r.Info.Entries) == 0
}

// Report returns the tables to hand to a writer.
func (r *Result) Report() *writer.Report {
	rep := &writer.Report{
		Summary:  r.Summary,
		Enriched: r.Enrichment != nil && r.Enrichment.Applied,
	}
	if r.Info != nil {
		rep.Entries = r.Info.Entries
	}
	return rep
}

// Converter turns page text into summary rows.
type Converter struct {
	parser parser.Parser
	log    zerolog.Logger
}

// New returns a Converter using an AdviceParser built from opts.
func New(opts parser.Options) *Converter {
	return NewWithParser(parser.New(opts))
}

// NewWithParser returns a Converter around an existing parser.
func NewWithParser(p parser.Parser) *Converter {
	metrics.Init()
	return &Converter{
		parser: p,
		log:    logger.WithComponent("converter"),
	}
}

// Process converts the pages of one advice. The only error returned is an
// account rejection from the parser; empty results and enrichment problems
// are carried as warnings.
func (c *Converter) Process(pages []string, refs *References) (*Result, error) {
	start := time.Now()

	info, err := c.parser.Parse(pages)
	if err != nil {
		result := metrics.ResultError
		if errors.Is(err, parser.ErrAccountMismatch) || errors.Is(err, parser.ErrAccountNotFound) {
			result = metrics.ResultRejected
		}
		metrics.ObserveAdvice(result, time.Since(start))
		return nil, err
	}

	res := &Result{
		Info:    info,
		Summary: []models.SummaryRow{},
	}
	countEntries(info.Entries)

	if len(info.Entries) == 0 {
		res.Warnings = append(res.Warnings, ErrNoEntries.Error())
		c.log.Warn().Int("pages", info.Pages).Msg("No entries found, export skipped")
		metrics.ObserveAdvice(metrics.ResultEmpty, time.Since(start))
		return res, nil
	}

	res.Summary = reconcile.Summarize(info.Entries)

	if refs != nil {
		c.enrich(res, refs)
	}

	metrics.ObserveAdvice(metrics.ResultOK, time.Since(start))
	c.log.Info().
		Str("account", info.AccountNumber).
		Int("entries", len(info.Entries)).
		Int("invoices", len(res.Summary)).
		Dur("took", time.Since(start)).
		Msg("Payment advice converted")

	return res, nil
}

func (c *Converter) enrich(res *Result, refs *References) {
	switch {
	case refs.Ledger == nil && refs.StateMap == nil:
		return
	case refs.Ledger == nil || refs.StateMap == nil:
		msg := "enrichment skipped: both a ledger and a state map are required"
		res.Warnings = append(res.Warnings, msg)
		c.log.Warn().Msg(msg)
		return
	}

	res.Enrichment = &Enrichment{Total: len(res.Summary)}

	enriched, err := reconcile.Enrich(res.Summary, refs.Ledger, refs.StateMap)
	if err != nil {
		var mce *reconcile.MissingColumnsError
		if errors.As(err, &mce) {
			res.Enrichment.Missing = mce.Missing
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf("enrichment skipped: %v", err))
		c.log.Warn().Err(err).Msg("Enrichment skipped")
		return
	}

	res.Summary = enriched.Rows
	res.Enrichment.Applied = true
	res.Enrichment.Matched = enriched.Matched
	metrics.AddEnrichment(enriched.Matched, enriched.Total)

	if enriched.Matched < enriched.Total {
		c.log.Warn().
			Int("matched", enriched.Matched).
			Int("total", enriched.Total).
			Msg("Some invoices have no import name")
	}
}

func countEntries(entries []models.Entry) {
	counts := make(map[models.EntryStatus]int)
	for _, e := range entries {
		counts[e.Status]++
	}
	for status, n := range counts {
		metrics.AddEntries(string(status), n)
	}
}
