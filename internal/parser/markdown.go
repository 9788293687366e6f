package parser

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Each top-level block,
// headings included, becomes one paragraph.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(_ context.Context, path string) (*Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var texts []string
	var title string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		t := extractText(n, src)
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 && title == "" {
			title = t
		}
		texts = append(texts, t)
	}

	out := newDocument(path, TypeMarkdown, paragraphs(texts))
	if title != "" {
		out.Metadata["dc:title"] = title
	}
	return out, nil
}

// extractText gets the text content of a goldmark AST node. Inline content
// is taken from the inline children; leaf blocks such as code blocks carry
// their text as raw lines instead.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	writeText(&buf, n, src)
	return strings.TrimSpace(buf.String())
}

func writeText(buf *bytes.Buffer, n ast.Node, src []byte) {
	switch n := n.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(src))
		if n.HardLineBreak() || n.SoftLineBreak() {
			buf.WriteByte('\n')
		}
		return
	case *ast.String:
		buf.Write(n.Value)
		return
	case *ast.AutoLink:
		buf.Write(n.Label(src))
		return
	}
	if n.Type() == ast.TypeBlock && !n.HasChildren() {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		writeText(buf, c, src)
		// Nested blocks (list items, quoted paragraphs) end a line.
		if c.Type() == ast.TypeBlock && c.NextSibling() != nil {
			buf.WriteByte('\n')
		}
	}
}
