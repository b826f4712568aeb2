package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harikantbajaj/labsight/internal/report"
	pdflib "github.com/ledongthuc/pdf"
)

// recognizedConfidence is assigned to lines produced by image recognition.
// The digital text layer always carries 1.0.
const recognizedConfidence = 0.85

// PDFStrategy extracts the digital text layer first and falls back to
// per-page image recognition when the text density of a page falls below
// MinCharsPerPage. Pages are processed independently: a failing page
// degrades to whatever its text layer yielded instead of aborting the
// whole document.
type PDFStrategy struct {
	OCR             *OCRClient
	MinCharsPerPage int
}

func (s *PDFStrategy) Extract(ctx context.Context, data []byte) (*report.ExtractionResult, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so stage a temp file.
	tmp, err := os.CreateTemp("", "labsight-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	pages, err := textLayerPages(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	res := &report.ExtractionResult{Pages: len(pages)}
	for i, pageText := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pageNum := i + 1

		if NeedsRecognition(pageText, s.MinCharsPerPage) && s.OCR != nil {
			recognized, ocrErr := s.recognizePage(ctx, tmpPath, pageNum)
			if ocrErr == nil && strings.TrimSpace(recognized) != "" {
				res.Lines = appendLines(res.Lines, recognized, pageNum, recognizedConfidence)
				res.Recognized = true
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Recognition failed for this page: keep the sparse text layer
			// with degraded confidence rather than dropping the page.
			res.Lines = appendLines(res.Lines, pageText, pageNum, 0.5)
			continue
		}

		res.Lines = appendLines(res.Lines, pageText, pageNum, 1.0)
	}

	return res, nil
}

// NeedsRecognition reports whether a page's text layer is too sparse to
// trust, measured in non-whitespace characters against the threshold.
func NeedsRecognition(pageText string, minChars int) bool {
	n := 0
	for _, r := range pageText {
		if !strings.ContainsRune(" \t\r\n\f", r) {
			n++
		}
	}
	return n < minChars
}

// textLayerPages returns the digital text layer per page. Pages whose text
// extraction fails yield an empty string, leaving them to recognition.
func textLayerPages(path string) ([]string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages[i-1] = text
	}
	return pages, nil
}

// recognizePage rasterizes one page with pdftoppm and runs recognition on
// the resulting image.
func (s *PDFStrategy) recognizePage(ctx context.Context, pdfPath string, page int) (string, error) {
	dir, err := os.MkdirTemp("", "labsight-ppm-*")
	if err != nil {
		return "", fmt.Errorf("create raster dir: %w", err)
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm", "-png", "-r", "300",
		"-f", fmt.Sprint(page), "-l", fmt.Sprint(page), pdfPath, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm: %w (%s)", err, strings.TrimSpace(string(out)))
	}

	matches, err := filepath.Glob(prefix + "*.png")
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm produced no image for page %d", page)
	}
	sort.Strings(matches)

	img, err := os.ReadFile(matches[0])
	if err != nil {
		return "", fmt.Errorf("read raster: %w", err)
	}
	return s.OCR.RecognizeImage(ctx, img)
}
