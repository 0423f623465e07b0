package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/payment-advice-converter/internal/config"
	"github.com/insightdelivered/payment-advice-converter/internal/converter"
	"github.com/insightdelivered/payment-advice-converter/internal/extractor"
	"github.com/insightdelivered/payment-advice-converter/internal/logger"
	"github.com/insightdelivered/payment-advice-converter/internal/parser"
	"github.com/insightdelivered/payment-advice-converter/internal/reference"
	"github.com/insightdelivered/payment-advice-converter/internal/writer"
)

var convertCmd = &cobra.Command{
	Use:   "convert <advice.pdf|advice.txt> [more ...]",
	Short: "Convert payment advice files to XLSX or CSV",
	Long: `Convert one or more payment advices into a per-invoice summary plus a
full entry table for audit.

XLSX output is one workbook with Summary and Entries sheets. CSV output is
two files: <name>.csv (summary) and <name>_entries.csv.

Text input uses form feeds or ---PAGE_BREAK--- lines between pages.`,
	Example: `  # Convert with defaults (xlsx next to the input)
  payment-advice-converter convert advice.pdf

  # Enforce the account and add import names
  payment-advice-converter convert --account 001234567890 \
      --ledger ledger.xlsx --state-map states.csv advice.pdf

  # CSV output to a chosen path
  payment-advice-converter convert --format csv --output march.csv advice.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().String("ledger", "", "Ledger table (xlsx/csv) with 'Invoice Number' and 'Ship To (State)'")
	convertCmd.Flags().String("state-map", "", "State map table (xlsx/csv) with 'STATE NAME' and 'IMPORT NAME'")
	convertCmd.Flags().String("account", "", "Expected account number; overrides account.expected")
	convertCmd.Flags().String("prefix", "", "Organizational invoice prefix; overrides parser.invoice_prefix")
	convertCmd.Flags().String("format", "", "Output format: xlsx or csv (default from output.format)")
	convertCmd.Flags().StringP("output", "o", "", "Output path (single input only; defaults to the input name)")
}

type convertOptions struct {
	parser parser.Options
	refs   *converter.References
	format string
	output string
}

var supportedInputs = []string{".pdf", ".txt"}

func runConvert(cmd *cobra.Command, args []string) error {
	opts, err := convertOptionsFromFlags(cmd, cfg)
	if err != nil {
		return err
	}
	if opts.output != "" && len(args) > 1 {
		return fmt.Errorf("--output can only be used with a single input file")
	}

	out := cmd.OutOrStdout()
	for _, path := range args {
		if err := convertFile(path, opts, out); err != nil {
			return fmt.Errorf("processing %s: %w", path, err)
		}
	}
	return nil
}

func convertOptionsFromFlags(cmd *cobra.Command, cfg *config.Config) (convertOptions, error) {
	opts := convertOptions{
		parser: cfg.ParserOptions(),
		format: cfg.Output.Format,
	}

	if v, _ := cmd.Flags().GetString("account"); v != "" {
		opts.parser.ExpectedAccount = v
	}
	if v, _ := cmd.Flags().GetString("prefix"); v != "" {
		opts.parser.InvoicePrefix = v
	}
	opts.output, _ = cmd.Flags().GetString("output")

	// An explicit --format wins; otherwise a recognized --output extension decides.
	if v, _ := cmd.Flags().GetString("format"); v != "" {
		opts.format = strings.ToLower(v)
	} else if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.output)), "."); ext == config.FormatCSV || ext == config.FormatXLSX {
		opts.format = ext
	}
	if opts.format != config.FormatCSV && opts.format != config.FormatXLSX {
		return opts, fmt.Errorf("unknown format %q: use xlsx or csv", opts.format)
	}

	ledgerPath, _ := cmd.Flags().GetString("ledger")
	statePath, _ := cmd.Flags().GetString("state-map")
	refs, err := loadReferences(ledgerPath, statePath)
	if err != nil {
		return opts, err
	}
	opts.refs = refs
	return opts, nil
}

// loadReferences reads the enrichment tables once for all inputs.
func loadReferences(ledgerPath, statePath string) (*converter.References, error) {
	if ledgerPath == "" && statePath == "" {
		return nil, nil
	}

	refs := &converter.References{}
	if ledgerPath != "" {
		t, err := reference.Load(ledgerPath)
		if err != nil {
			return nil, err
		}
		refs.Ledger = t
	}
	if statePath != "" {
		t, err := reference.Load(statePath)
		if err != nil {
			return nil, err
		}
		refs.StateMap = t
	}
	return refs, nil
}

func convertFile(inputPath string, opts convertOptions, out io.Writer) error {
	log := logger.WithComponent("convert")

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	ext := strings.ToLower(filepath.Ext(inputPath))
	if !slices.Contains(supportedInputs, ext) {
		return fmt.Errorf("expected .pdf or .txt file, got %q", ext)
	}

	fmt.Fprintf(out, "Processing: %s\n", inputPath)

	pages, err := extractor.New().ExtractFile(inputPath)
	if err != nil {
		return fmt.Errorf("text extraction failed: %w", err)
	}
	fmt.Fprintf(out, "  Extracted text from %d page(s)\n", len(pages))

	res, err := converter.New(opts.parser).Process(pages, opts.refs)
	if err != nil {
		return err
	}

	if res.Info.AccountNumber != "" {
		fmt.Fprintf(out, "  Account number: %s\n", res.Info.AccountNumber)
	}
	fmt.Fprintf(out, "  Found %d entr%s across %d invoice(s)\n",
		len(res.Info.Entries), plural(len(res.Info.Entries), "y", "ies"), len(res.Summary))

	for _, w := range res.Warnings {
		fmt.Fprintf(out, "  Warning: %s\n", w)
	}
	if e := res.Enrichment; e != nil && e.Applied {
		fmt.Fprintf(out, "  Import names matched: %d/%d\n", e.Matched, e.Total)
	}

	if res.Empty() {
		fmt.Fprintln(out, "  Nothing to export. The text may not be a payment advice, or the invoice prefix may differ (--prefix).")
		return nil
	}

	outPath := opts.output
	if outPath == "" {
		outPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + "." + opts.format
	}

	rep := res.Report()
	switch opts.format {
	case config.FormatCSV:
		paths, err := (&writer.CSVWriter{}).WriteToFiles(outPath, rep)
		if err != nil {
			return fmt.Errorf("CSV write failed: %w", err)
		}
		fmt.Fprintf(out, "  Output: %s\n", strings.Join(paths, ", "))
	default:
		if err := (&writer.XLSXWriter{}).WriteToFile(outPath, rep); err != nil {
			return fmt.Errorf("XLSX write failed: %w", err)
		}
		fmt.Fprintf(out, "  Output: %s\n", outPath)
	}

	log.Debug().Str("input", inputPath).Str("output", outPath).Msg("Converted")
	fmt.Fprintln(out, "  Done.")
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
