package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/harikantbajaj/labsight/internal/report"
	"golang.org/x/net/html"
)

// HTMLStrategy handles HTML lab reports. Table rows are flattened into
// single lines (cells joined by spaces) so a typical results table row like
// "<td>Glucose</td><td>95</td><td>mg/dL</td>" reads as one measurement
// line; other block elements become one line each.
type HTMLStrategy struct{}

func (s *HTMLStrategy) Extract(ctx context.Context, data []byte) (*report.ExtractionResult, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	res := &report.ExtractionResult{Pages: 1}
	emit := func(text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		res.Lines = append(res.Lines, report.Line{
			Text:       text,
			Page:       1,
			Number:     len(res.Lines) + 1,
			Confidence: 1.0,
		})
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "head", "nav", "footer":
				return
			case "tr":
				emit(rowText(n))
				return
			case "p", "li", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "div":
				// Only emit leaf-ish blocks; containers recurse.
				if !containsBlock(n) {
					emit(nodeText(n))
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return res, nil
}

// rowText joins the text of each cell in a table row with single spaces.
func rowText(tr *html.Node) string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			if t := nodeText(c); t != "" {
				cells = append(cells, t)
			}
		}
	}
	return strings.Join(cells, " ")
}

func nodeText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func containsBlock(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			switch c.Data {
			case "p", "div", "table", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6":
				return true
			}
		}
	}
	return false
}
