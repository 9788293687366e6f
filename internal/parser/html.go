package parser

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docdetect/internal/doctree"
)

// HTMLParser handles HTML files by tokenizing them directly.
type HTMLParser struct{}

func (p *HTMLParser) Parse(_ context.Context, path string) (*Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc := &Document{
		ContentType: TypeHTML,
		Metadata: map[string]string{
			"Content-Type": TypeHTML,
			"resourceName": filepath.Base(path),
		},
		Events: Tokenize(bytes.NewReader(src)),
	}
	if title := findTitle(src); title != "" {
		doc.Metadata["dc:title"] = title
	}
	return doc, nil
}

// findTitle returns the text of the first title element.
func findTitle(src []byte) string {
	var buf strings.Builder
	in := false
	for ev := range Tokenize(bytes.NewReader(src)) {
		switch {
		case ev.Kind == doctree.ElementStart && ev.Name == "title":
			in = true
		case ev.Kind == doctree.ElementEnd && ev.Name == "title":
			return strings.TrimSpace(buf.String())
		case ev.Kind == doctree.Characters && in:
			buf.WriteString(ev.Text)
		case ev.Kind == doctree.ElementStart && ev.Name == "body":
			return ""
		}
	}
	return ""
}
