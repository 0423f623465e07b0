package converter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/payment-advice-converter/internal/models"
	"github.com/insightdelivered/payment-advice-converter/internal/parser"
	"github.com/insightdelivered/payment-advice-converter/internal/reconcile"
	"github.com/insightdelivered/payment-advice-converter/internal/reference"
)

var twoPageAdvice = []string{
	`Payment Advice
Your A/c with us : 001234567890
12345678 R001 1,000.00 950.00
01.04.2024 05.04.2024
Short payment Rs.50.00`,
	`TDS Amount 25.00-`,
}

func TestProcess_EndToEnd(t *testing.T) {
	c := New(parser.Options{})

	res, err := c.Process(twoPageAdvice, nil)
	require.NoError(t, err)
	assert.False(t, res.Empty())
	assert.Empty(t, res.Warnings)
	assert.Nil(t, res.Enrichment)

	require.Len(t, res.Summary, 1)
	r := res.Summary[0]
	assert.Equal(t, "R001", r.InvoiceNumber)
	assert.Equal(t, 950.0, r.FinalPaidAmount)
	assert.Equal(t, 25.0, r.TDS)
	assert.Equal(t, 1000.0, r.InvoiceAmount)
	assert.Equal(t, 0.0, r.GSTAdjustment)
	assert.Equal(t, 950.0, r.PaymentAmount)
	assert.Equal(t, 50.0, r.DebitNote)
	assert.Equal(t, "05.04.2024", r.InvoiceDate)

	rep := res.Report()
	assert.False(t, rep.Enriched)
	assert.Len(t, rep.Entries, 1)
}

func TestProcess_NoEntries(t *testing.T) {
	c := New(parser.Options{})

	res, err := c.Process([]string{"Payment Advice\nnothing here"}, nil)
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Empty(t, res.Summary)
	assert.Contains(t, res.Warnings, ErrNoEntries.Error())
}

func TestProcess_AccountRejected(t *testing.T) {
	c := New(parser.Options{ExpectedAccount: "555"})

	res, err := c.Process(twoPageAdvice, nil)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, parser.ErrAccountMismatch))
	assert.Contains(t, err.Error(), "555")
}

func TestProcess_Enrichment(t *testing.T) {
	c := New(parser.Options{})
	refs := &References{
		Ledger:   reference.New("ledger.csv", []string{"Invoice Number", "Ship To (State)"}, [][]string{{"R001", "Maharashtra"}}),
		StateMap: reference.New("states.csv", []string{"STATE NAME", "IMPORT NAME"}, [][]string{{"MAHARASHTRA", "ABC Imports"}}),
	}

	res, err := c.Process(twoPageAdvice, refs)
	require.NoError(t, err)
	require.NotNil(t, res.Enrichment)
	assert.True(t, res.Enrichment.Applied)
	assert.Equal(t, 1, res.Enrichment.Matched)
	assert.Equal(t, 1, res.Enrichment.Total)

	require.NotNil(t, res.Summary[0].ImportName)
	assert.Equal(t, "ABC Imports", *res.Summary[0].ImportName)
	assert.True(t, res.Report().Enriched)
}

func TestProcess_EnrichmentMissingColumns(t *testing.T) {
	c := New(parser.Options{})
	refs := &References{
		Ledger:   reference.New("ledger.csv", []string{"Invoice"}, nil),
		StateMap: reference.New("states.csv", []string{"STATE NAME", "IMPORT NAME"}, nil),
	}

	res, err := c.Process(twoPageAdvice, refs)
	require.NoError(t, err)

	// Base summary is still produced.
	require.Len(t, res.Summary, 1)
	assert.Nil(t, res.Summary[0].ImportName)

	require.NotNil(t, res.Enrichment)
	assert.False(t, res.Enrichment.Applied)
	assert.Equal(t, []string{"Invoice Number", "Ship To (State)"}, res.Enrichment.Missing[reconcile.RoleLedger])
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "Ship To (State)")
	assert.False(t, res.Report().Enriched)
}

func TestProcess_EnrichmentNeedsBothTables(t *testing.T) {
	c := New(parser.Options{})
	refs := &References{
		Ledger: reference.New("ledger.csv", []string{"Invoice Number", "Ship To (State)"}, nil),
	}

	res, err := c.Process(twoPageAdvice, refs)
	require.NoError(t, err)
	assert.Nil(t, res.Enrichment)
	assert.Len(t, res.Warnings, 1)
}

type stubParser struct {
	info *models.AdviceInfo
	err  error
}

func (s stubParser) Parse([]string) (*models.AdviceInfo, error) { return s.info, s.err }
func (s stubParser) Name() string                                { return "stub" }

func TestProcess_ParserError(t *testing.T) {
	boom := errors.New("boom")
	c := NewWithParser(stubParser{err: boom})

	_, err := c.Process(nil, nil)
	assert.ErrorIs(t, err, boom)
}
