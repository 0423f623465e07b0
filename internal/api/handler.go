package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/payment-advice-converter/internal/config"
	"github.com/insightdelivered/payment-advice-converter/internal/converter"
	"github.com/insightdelivered/payment-advice-converter/internal/extractor"
	"github.com/insightdelivered/payment-advice-converter/internal/logger"
	"github.com/insightdelivered/payment-advice-converter/internal/metrics"
	"github.com/insightdelivered/payment-advice-converter/internal/models"
	"github.com/insightdelivered/payment-advice-converter/internal/parser"
	"github.com/insightdelivered/payment-advice-converter/internal/reference"
	"github.com/insightdelivered/payment-advice-converter/internal/writer"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ConvertResponse is the JSON response from the /api/convert endpoint.
type ConvertResponse struct {
	Success    bool                  `json:"success"`
	Error      string                `json:"error,omitempty"`
	Account    string                `json:"account,omitempty"`
	Summary    []models.SummaryRow   `json:"summary"`
	Entries    []models.Entry        `json:"entries"`
	CSV        string                `json:"csv,omitempty"`
	EntriesCSV string                `json:"entriesCsv,omitempty"`
	Count      int                   `json:"count"`
	Totals     *Totals               `json:"totals,omitempty"`
	Enrichment *converter.Enrichment `json:"enrichment,omitempty"`
	Warnings   []string              `json:"warnings,omitempty"`
	RawText    string                `json:"rawText,omitempty"`
	Version    string                `json:"version,omitempty"`
	DebugLines []models.DebugLine    `json:"debugLines,omitempty"`
}

// Totals sums the summary columns shown in the UI footer.
type Totals struct {
	FinalPaid float64 `json:"finalPaid"`
	TDS       float64 `json:"tds"`
	DebitNote float64 `json:"debitNote"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	cfg       *config.Config
	version   string
	extractor *extractor.Extractor
	log       zerolog.Logger
}

// NewHandler returns a Handler serving with cfg.
func NewHandler(cfg *config.Config, version string) *Handler {
	return &Handler{
		cfg:       cfg,
		version:   version,
		extractor: extractor.New(),
		log:       logger.WithComponent("api"),
	}
}

// NewApp builds the fiber app with middleware and routes.
func (h *Handler) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "payment-advice-converter",
		BodyLimit:             h.cfg.Server.BodyLimitMB << 20,
		DisableStartupMessage: true,
		ErrorHandler:          h.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	app.Use(h.requestLogger)

	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/convert", h.HandleConvert)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	// Serve the single-page UI, falling back to index.html for client routes.
	if dir := h.cfg.Server.StaticDir; dir != "" {
		app.Static("/", dir)
		app.Get("/*", func(c *fiber.Ctx) error {
			if strings.HasPrefix(c.Path(), "/api/") {
				return fiber.ErrNotFound
			}
			return c.SendFile(filepath.Join(dir, "index.html"))
		})
	}
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": h.version,
	})
}

// HandleConvert accepts a PDF upload ("file") or pre-extracted text
// ("extractedText"), plus optional "ledger" and "stateMap" reference files,
// an "account" override and "format=xlsx" to download a workbook.
func (h *Handler) HandleConvert(c *fiber.Ctx) error {
	pages, err := h.pages(c)
	if err != nil {
		return err
	}

	refs, err := h.references(c)
	if err != nil {
		return err
	}

	opts := h.cfg.ParserOptions()
	if account := strings.TrimSpace(c.FormValue("account")); account != "" {
		opts.ExpectedAccount = account
	}
	if c.FormValue("debug") == "true" {
		opts.Debug = true
	}

	res, err := converter.New(opts).Process(pages, refs)
	if err != nil {
		if errors.Is(err, parser.ErrAccountMismatch) || errors.Is(err, parser.ErrAccountNotFound) {
			return fiber.NewError(fiber.StatusForbidden, err.Error())
		}
		return fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("Parsing failed: %v", err))
	}

	rep := res.Report()
	if strings.EqualFold(c.FormValue("format"), config.FormatXLSX) && !res.Empty() {
		var buf bytes.Buffer
		if err := (&writer.XLSXWriter{}).Write(&buf, rep); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("XLSX generation failed: %v", err))
		}
		c.Attachment(h.outputName(c) + ".xlsx")
		c.Set(fiber.HeaderContentType, xlsxContentType)
		return c.Send(buf.Bytes())
	}

	resp := ConvertResponse{
		Success:    true,
		Account:    res.Info.AccountNumber,
		Summary:    res.Summary,
		Entries:    res.Info.Entries,
		Count:      len(res.Summary),
		Enrichment: res.Enrichment,
		Warnings:   res.Warnings,
		RawText:    strings.Join(pages, "\n"+extractor.PageBreak+"\n"),
		Version:    h.version,
		DebugLines: res.Info.DebugLines,
	}
	if resp.Entries == nil {
		resp.Entries = []models.Entry{}
	}

	if !res.Empty() {
		var summaryBuf, entriesBuf bytes.Buffer
		w := &writer.CSVWriter{}
		if err := w.WriteSummary(&summaryBuf, rep); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
		}
		if err := w.WriteEntries(&entriesBuf, rep); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
		}
		resp.CSV = summaryBuf.String()
		resp.EntriesCSV = entriesBuf.String()
		resp.Totals = totals(res.Summary)
	}

	return c.JSON(resp)
}

// pages returns the advice text, preferring client-extracted text over the upload.
func (h *Handler) pages(c *fiber.Ctx) ([]string, error) {
	if text := c.FormValue("extractedText"); strings.TrimSpace(text) != "" {
		return extractor.SplitPages(text), nil
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "No file uploaded. Use form field 'file' or 'extractedText'.")
	}

	data, err := readUpload(fh)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Failed to read upload: %v", err))
	}

	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".pdf":
		pages, err := h.extractor.ExtractBytes(data)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("PDF extraction failed: %v", err))
		}
		return pages, nil
	case ".txt":
		return extractor.SplitPages(string(data)), nil
	default:
		return nil, fiber.NewError(fiber.StatusBadRequest, "Only PDF or text files are supported.")
	}
}

func (h *Handler) references(c *fiber.Ctx) (*converter.References, error) {
	ledger, err := formTable(c, "ledger")
	if err != nil {
		return nil, err
	}
	states, err := formTable(c, "stateMap")
	if err != nil {
		return nil, err
	}
	if ledger == nil && states == nil {
		return nil, nil
	}
	return &converter.References{Ledger: ledger, StateMap: states}, nil
}

// formTable loads an optional reference table upload. A missing field is not an error.
func formTable(c *fiber.Ctx, field string) (*reference.Table, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Failed to open %s: %v", field, err))
	}
	defer f.Close()

	t, err := reference.Read(f, fh.Filename)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Invalid %s: %v", field, err))
	}
	return t, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *Handler) outputName(c *fiber.Ctx) string {
	if fh, err := c.FormFile("file"); err == nil {
		return strings.TrimSuffix(fh.Filename, filepath.Ext(fh.Filename))
	}
	return "payment-advice"
}

func totals(rows []models.SummaryRow) *Totals {
	t := &Totals{}
	for _, r := range rows {
		t.FinalPaid += r.FinalPaidAmount
		t.TDS += r.TDS
		t.DebitNote += r.DebitNote
	}
	return t
}

func (h *Handler) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	}
	return c.Status(code).JSON(ConvertResponse{
		Success: false,
		Error:   err.Error(),
		Version: h.version,
	})
}

func (h *Handler) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	h.log.Debug().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("took", time.Since(start)).
		Msg("Request")
	return err
}
