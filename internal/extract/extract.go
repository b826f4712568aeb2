// Package extract converts raw document bytes into ordered, positioned text
// lines. Each declared format has its own strategy; PDF extraction prefers
// the digital text layer and falls back to per-page image recognition when
// the yielded text density is too low.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harikantbajaj/labsight/internal/report"
)

// Strategy extracts lines from one document format.
type Strategy interface {
	Extract(ctx context.Context, data []byte) (*report.ExtractionResult, error)
}

// Engine dispatches documents to format strategies and owns the shared
// recognition client and fallback policy.
type Engine struct {
	ocr             *OCRClient // nil when recognition is unavailable
	minCharsPerPage int
}

// NewEngine creates an extraction engine. ocr may be nil; image documents
// then fail with ErrExtractionFailure and PDFs never fall back.
func NewEngine(ocr *OCRClient, minCharsPerPage int) *Engine {
	if minCharsPerPage <= 0 {
		minCharsPerPage = 200
	}
	return &Engine{ocr: ocr, minCharsPerPage: minCharsPerPage}
}

// ForFormat returns the strategy for a declared format.
func (e *Engine) ForFormat(f report.Format) (Strategy, error) {
	switch f {
	case report.FormatPDF:
		return &PDFStrategy{OCR: e.ocr, MinCharsPerPage: e.minCharsPerPage}, nil
	case report.FormatImage:
		return &ImageStrategy{OCR: e.ocr}, nil
	case report.FormatText:
		return &TextStrategy{}, nil
	case report.FormatCSV:
		return &CSVStrategy{}, nil
	case report.FormatHTML:
		return &HTMLStrategy{}, nil
	case report.FormatDOCX:
		return &DOCXStrategy{}, nil
	case report.FormatMarkdown:
		return &MarkdownStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", report.ErrExtractionFailure, f)
	}
}

// Extract runs the matching strategy for doc. Context deadline overruns
// surface as ErrExtractionTimeout; a result with zero non-blank lines is
// an ErrExtractionFailure.
func (e *Engine) Extract(ctx context.Context, doc report.Document) (*report.ExtractionResult, error) {
	strat, err := e.ForFormat(doc.Format)
	if err != nil {
		return nil, err
	}

	// The fast strategies never consult the context; an already-spent
	// budget still has to read as a timeout.
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", report.ErrExtractionTimeout, err)
		}
		return nil, err
	}

	res, err := strat.Extract(ctx, doc.Data)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", report.ErrExtractionTimeout, err)
		}
		if errors.Is(err, report.ErrExtractionFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", report.ErrExtractionFailure, err)
	}

	if countText(res) == 0 {
		return nil, fmt.Errorf("%w: no recoverable text", report.ErrExtractionFailure)
	}
	return res, nil
}

// FormatForFilename guesses a declared format from a filename extension.
// Upload handlers use it when the client does not declare one.
func FormatForFilename(name string) (report.Format, bool) {
	name = strings.ToLower(name)
	switch {
	case strings.HasSuffix(name, ".pdf"):
		return report.FormatPDF, true
	case strings.HasSuffix(name, ".png"), strings.HasSuffix(name, ".jpg"),
		strings.HasSuffix(name, ".jpeg"), strings.HasSuffix(name, ".tif"),
		strings.HasSuffix(name, ".tiff"), strings.HasSuffix(name, ".bmp"):
		return report.FormatImage, true
	case strings.HasSuffix(name, ".txt"):
		return report.FormatText, true
	case strings.HasSuffix(name, ".csv"):
		return report.FormatCSV, true
	case strings.HasSuffix(name, ".html"), strings.HasSuffix(name, ".htm"):
		return report.FormatHTML, true
	case strings.HasSuffix(name, ".docx"):
		return report.FormatDOCX, true
	case strings.HasSuffix(name, ".md"), strings.HasSuffix(name, ".markdown"):
		return report.FormatMarkdown, true
	}
	return "", false
}

func countText(res *report.ExtractionResult) int {
	n := 0
	for _, l := range res.Lines {
		n += len(strings.TrimSpace(l.Text))
	}
	return n
}

// appendLines splits text into trimmed lines and appends them to dst with
// the given page and confidence, renumbering sequentially.
func appendLines(dst []report.Line, text string, page int, confidence float64) []report.Line {
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		dst = append(dst, report.Line{
			Text:       line,
			Page:       page,
			Number:     len(dst) + 1,
			Confidence: confidence,
		})
	}
	return dst
}
