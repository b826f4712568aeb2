package extract

import (
	"bufio"
	"bytes"
	"context"
	"strings"

	"github.com/harikantbajaj/labsight/internal/report"
)

// TextStrategy handles plain text documents. Digital text carries full
// confidence and a single logical page.
type TextStrategy struct{}

func (s *TextStrategy) Extract(ctx context.Context, data []byte) (*report.ExtractionResult, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	res := &report.ExtractionResult{Pages: 1}
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		res.Lines = append(res.Lines, report.Line{
			Text:       line,
			Page:       1,
			Number:     len(res.Lines) + 1,
			Confidence: 1.0,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
