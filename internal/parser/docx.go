package parser

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Every body paragraph becomes a p element,
// including empty ones; table cells contribute their paragraphs in order.
type DOCXParser struct{}

func (p *DOCXParser) Parse(_ context.Context, path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var texts []string
	var title string
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			text := docxParagraphText(it)
			if title == "" && text != "" && docxHeadingLevel(it) == 1 {
				title = text
			}
			texts = append(texts, text)
		case *docx.Table:
			texts = append(texts, docxTableTexts(it)...)
		}
	}

	out := newDocument(path, TypeDOCX, paragraphs(texts))
	if title != "" {
		out.Metadata["dc:title"] = title
	}
	return out, nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ReplaceAll(strings.ToLower(para.Properties.Style.Val), " ", "")
	if level, ok := strings.CutPrefix(style, "heading"); ok && len(level) == 1 && level[0] >= '1' && level[0] <= '6' {
		return int(level[0] - '0')
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func docxTableTexts(tbl *docx.Table) []string {
	var out []string
	for _, row := range tbl.TableRows {
		for _, cell := range row.TableCells {
			for _, para := range cell.Paragraphs {
				out = append(out, docxParagraphText(para))
			}
		}
	}
	return out
}
