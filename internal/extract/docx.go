package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	docx "github.com/fumiama/go-docx"
	"github.com/harikantbajaj/labsight/internal/report"
)

// DOCXStrategy handles .docx reports. Each paragraph becomes one line.
type DOCXStrategy struct{}

func (s *DOCXStrategy) Extract(ctx context.Context, data []byte) (*report.ExtractionResult, error) {
	// go-docx needs a ReadSeeker+size, so stage a temp file.
	tmp, err := os.CreateTemp("", "labsight-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, int64(len(data)))
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	res := &report.ExtractionResult{Pages: 1}
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		if text := paragraphText(para); text != "" {
			res.Lines = append(res.Lines, report.Line{
				Text:       text,
				Page:       1,
				Number:     len(res.Lines) + 1,
				Confidence: 1.0,
			})
		}
	}
	return res, nil
}

func paragraphText(para *docx.Paragraph) string {
	var buf []byte
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf = append(buf, t.Text...)
			}
		}
	}
	return strings.TrimSpace(string(buf))
}
