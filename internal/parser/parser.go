package parser

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/payment-advice-converter/internal/logger"
	"github.com/insightdelivered/payment-advice-converter/internal/models"
)

// Parser defines the interface for payment advice parsers.
type Parser interface {
	// Parse takes raw text from PDF pages and returns the extracted entries.
	Parse(pages []string) (*models.AdviceInfo, error)
	// Name returns the human-readable parser name.
	Name() string
}

// Options configures an AdviceParser.
type Options struct {
	// InvoicePrefix is the organizational invoice-number prefix. Defaults to DefaultInvoicePrefix.
	InvoicePrefix string
	// ExpectedAccount enables the first-page account check when non-empty.
	ExpectedAccount string
	// Debug records a DebugLine for every line visited.
	Debug bool
}

// AdviceParser handles bank payment advice text.
//
// A payment advice typically looks like:
//
//	Your A/c with us : 001234567890
//	Doc No    Inv./Ref No  Inv Amount   Paid Amount
//	51000123  R100234      1,18,000.00  1,12,100.00
//	          10.04.2024   02.04.2024
//	Short payment Rs.5,900.00
//	51000124  R100234      5,900.00-
//	TDS Amount 2,000.00-
type AdviceParser struct {
	opts       Options
	classifier *Classifier
	log        zerolog.Logger
}

// New returns a parser configured with opts.
func New(opts Options) *AdviceParser {
	return &AdviceParser{
		opts:       opts,
		classifier: NewClassifier(opts.InvoicePrefix),
		log:        logger.WithComponent("parser"),
	}
}

func (p *AdviceParser) Name() string {
	return "Payment Advice"
}

// Parse verifies the account (when configured) and scans every page in order.
// Malformed lines never fail the parse; only the account check can.
func (p *AdviceParser) Parse(pages []string) (*models.AdviceInfo, error) {
	info := &models.AdviceInfo{Pages: len(pages)}

	if p.opts.ExpectedAccount != "" {
		account, err := VerifyAccount(pages, p.opts.ExpectedAccount)
		if err != nil {
			p.log.Error().Err(err).Msg("Payment advice rejected")
			return nil, err
		}
		info.AccountNumber = account
	} else if len(pages) > 0 {
		info.AccountNumber = FindAccountNumber(pages[0])
	}

	sc := newScanner(p.classifier, p.log, p.opts.Debug)
	for i, page := range pages {
		sc.scanPage(i+1, strings.Split(page, "\n"))
	}
	info.Entries = sc.finish()
	info.DebugLines = sc.debugLines

	p.log.Info().
		Int("pages", len(pages)).
		Int("entries", len(info.Entries)).
		Int("tds_invoices", len(sc.tds)).
		Msg("Payment advice scanned")

	return info, nil
}
