package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/payment-advice-converter/internal/logger"
)

// ErrNoReadableText is returned when no extraction method produced text that
// looks like a payment advice. Image-only and custom-font PDFs end up here.
var ErrNoReadableText = errors.New("no readable text could be extracted from PDF")

// Extractor turns a PDF into one text string per page, lines separated by "\n".
type Extractor struct {
	log zerolog.Logger
}

// New returns an Extractor that logs under the "extractor" component.
func New() *Extractor {
	return &Extractor{log: logger.WithComponent("extractor")}
}

// ExtractFile returns the pages of path. PDFs go through ExtractText; any
// other file is read as plain text and split with SplitPages.
func (x *Extractor) ExtractFile(path string) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return x.ExtractText(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return SplitPages(string(data)), nil
}

// ExtractText reads the PDF at path. The structured library is tried first;
// pdftotext (poppler-utils) is the fallback when it is installed.
func (x *Extractor) ExtractText(path string) ([]string, error) {
	pages, libErr := x.withLibrary(func() (*pdf.Reader, io.Closer, error) {
		f, r, err := pdf.Open(path)
		return r, f, err
	})
	if libErr == nil && isReadableText(pages) {
		return pages, nil
	}
	x.log.Debug().Err(libErr).Str("path", path).Msg("library extraction unusable, trying pdftotext")

	popplerPages, popplerErr := extractWithPdftotext(path)
	if popplerErr == nil && isReadableText(popplerPages) {
		return popplerPages, nil
	}
	x.log.Debug().Err(popplerErr).Str("path", path).Msg("pdftotext extraction unusable")

	if libErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoReadableText, libErr)
	}
	return nil, ErrNoReadableText
}

// ExtractBytes extracts an in-memory PDF, such as an upload. The pdftotext
// fallback works from a temporary copy on disk.
func (x *Extractor) ExtractBytes(data []byte) ([]string, error) {
	pages, libErr := x.withLibrary(func() (*pdf.Reader, io.Closer, error) {
		r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
		return r, io.NopCloser(nil), err
	})
	if libErr == nil && isReadableText(pages) {
		return pages, nil
	}
	x.log.Debug().Err(libErr).Int("bytes", len(data)).Msg("library extraction unusable, trying pdftotext")

	tmp, err := os.CreateTemp("", "advice-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	popplerPages, popplerErr := extractWithPdftotext(tmp.Name())
	if popplerErr == nil && isReadableText(popplerPages) {
		return popplerPages, nil
	}

	if libErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoReadableText, libErr)
	}
	return nil, ErrNoReadableText
}

// withLibrary runs the ledongthuc/pdf methods in order of layout fidelity and
// returns the first readable result. The library panics on some malformed
// files, so panics are turned into errors.
func (x *Extractor) withLibrary(open func() (*pdf.Reader, io.Closer, error)) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf library panic: %v", r)
		}
	}()

	r, closer, err := open()
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, errors.New("PDF has no pages")
	}

	pages = extractByRow(r, numPages)
	if isReadableText(pages) {
		return pages, nil
	}

	x.log.Debug().Msg("row extraction unreadable, rebuilding rows from content")
	pages = extractByContent(r, numPages)
	if isReadableText(pages) {
		return pages, nil
	}

	if plain := extractByReaderPlainText(r); isReadableText([]string{plain}) {
		return []string{plain}, nil
	}
	return pages, nil
}

// extractByRow keeps one string per page even when a page is blank, so page
// numbers stay aligned with the document.
func extractByRow(r *pdf.Reader, numPages int) []string {
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			pages = append(pages, "")
			continue
		}

		var lines []string
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, w := range row.Content {
				words = append(words, w.S)
			}
			if line := strings.TrimSpace(strings.Join(words, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

type textItem struct {
	x float64
	s string
}

// extractByContent groups text objects into rows by rounded Y (top to bottom)
// and orders each row by X. A wide horizontal gap becomes a field break.
func extractByContent(r *pdf.Reader, numPages int) []string {
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		rowMap := make(map[int][]textItem)
		for _, t := range page.Content().Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			y := int(math.Round(t.Y))
			rowMap[y] = append(rowMap[y], textItem{x: t.X, s: t.S})
		}

		ys := make([]int, 0, len(rowMap))
		for y := range rowMap {
			ys = append(ys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(ys)))

		lines := make([]string, 0, len(ys))
		for _, y := range ys {
			items := rowMap[y]
			sort.Slice(items, func(a, b int) bool { return items[a].x < items[b].x })

			var sb strings.Builder
			for j, item := range items {
				if j > 0 && item.x-items[j-1].x > 15 {
					sb.WriteByte(' ')
				}
				sb.WriteString(item.s)
			}
			if line := strings.TrimSpace(sb.String()); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

func extractByReaderPlainText(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// extractWithPdftotext runs pdftotext once per page to keep page boundaries.
func extractWithPdftotext(path string) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}

	numPages := 1
	if out, err := exec.Command("pdfinfo", path).Output(); err == nil {
		for _, line := range strings.Split(string(out), "\n") {
			if rest, ok := strings.CutPrefix(line, "Pages:"); ok {
				if n, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil && n > 0 {
					numPages = n
				}
			}
		}
	}

	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		n := strconv.Itoa(i)
		out, err := exec.Command("pdftotext", "-layout", "-f", n, "-l", n, path, "-").Output()
		if err != nil {
			return nil, fmt.Errorf("pdftotext page %d: %w", i, err)
		}
		pages = append(pages, strings.TrimRight(string(out), "\f\n "))
	}
	return pages, nil
}
