package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/harikantbajaj/labsight/internal/report"
)

// CSVStrategy handles delimited text exports. Each record becomes one line
// with cells joined by spaces, so a row like "Glucose,95,mg/dL" reads as a
// normal measurement line downstream.
type CSVStrategy struct{}

func (s *CSVStrategy) Extract(ctx context.Context, data []byte) (*report.ExtractionResult, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	res := &report.ExtractionResult{Pages: 1}
	for _, rec := range records {
		cells := make([]string, 0, len(rec))
		for _, c := range rec {
			if c = strings.TrimSpace(c); c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) == 0 {
			continue
		}
		res.Lines = append(res.Lines, report.Line{
			Text:       strings.Join(cells, " "),
			Page:       1,
			Number:     len(res.Lines) + 1,
			Confidence: 1.0,
		})
	}
	return res, nil
}
