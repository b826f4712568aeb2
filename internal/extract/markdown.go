package extract

import (
	"context"
	"strings"

	"github.com/harikantbajaj/labsight/internal/report"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownStrategy handles markdown summaries. Formatting is stripped and
// each source line of a block becomes one extracted line.
type MarkdownStrategy struct{}

func (s *MarkdownStrategy) Extract(ctx context.Context, data []byte) (*report.ExtractionResult, error) {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(data))

	res := &report.ExtractionResult{Pages: 1}
	emit := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		res.Lines = append(res.Lines, report.Line{
			Text:       t,
			Page:       1,
			Number:     len(res.Lines) + 1,
			Confidence: 1.0,
		})
	}

	var walk func(ast.Node)
	walk = func(n ast.Node) {
		switch node := n.(type) {
		case *ast.Heading:
			emit(string(node.Text(data)))
			return
		case *ast.Paragraph, *ast.TextBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				emit(strings.TrimRight(string(seg.Value(data)), "\\"))
			}
			return
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(doc)

	return res, nil
}
