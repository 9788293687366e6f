package parser

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dgallion1/docdetect/internal/doctree"
)

// ErrUnsupportedFormat is returned for documents no parser can handle.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Content types reported by the local parsers.
const (
	TypePDF      = "application/pdf"
	TypeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	TypePPTX     = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	TypeODT      = "application/vnd.oasis.opendocument.text"
	TypeODP      = "application/vnd.oasis.opendocument.presentation"
	TypeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	TypeMarkdown = "text/markdown"
	TypeHTML     = "text/html"
	TypeText     = "text/plain"
	TypeCSV      = "text/csv"
)

// Document is the parser's view of one file: its detected type, its
// metadata and its structural event stream.
type Document struct {
	ContentType string
	Metadata    map[string]string
	Events      iter.Seq[doctree.Event]
}

// Parser turns a file into a Document.
type Parser interface {
	Parse(ctx context.Context, path string) (*Document, error)
}

// Options selects and configures a Parser.
type Options struct {
	TikaURL           string       // when set, documents go to Tika Server
	HTTPClient        *http.Client // used for Tika requests
	FallbackPdftotext bool         // local PDF parser may shell out to pdftotext
}

// New returns a Tika-backed parser when a server URL is configured, and the
// local format parsers otherwise.
func New(opts Options) Parser {
	if opts.TikaURL != "" {
		return NewTika(opts.TikaURL, opts.HTTPClient)
	}
	return &Local{FallbackPdftotext: opts.FallbackPdftotext}
}

// contentTypes maps known extensions to the content type the local parsers
// report. Not every entry has a local text parser; see ForFile.
var contentTypes = map[string]string{
	".txt":      TypeText,
	".md":       TypeMarkdown,
	".markdown": TypeMarkdown,
	".csv":      TypeCSV,
	".html":     TypeHTML,
	".htm":      TypeHTML,
	".pdf":      TypePDF,
	".docx":     TypeDOCX,
	".pptx":     TypePPTX,
	".odt":      TypeODT,
	".odp":      TypeODP,
	".xlsx":     TypeXLSX,
}

// ContentTypeFor guesses a content type from the file extension, or "".
func ContentTypeFor(filename string) string {
	return contentTypes[strings.ToLower(filepath.Ext(filename))]
}

// Local dispatches to an in-process parser by file extension.
type Local struct {
	FallbackPdftotext bool
}

func (l *Local) Parse(ctx context.Context, path string) (*Document, error) {
	p, err := l.ForFile(path)
	if err != nil {
		return nil, err
	}
	return p.Parse(ctx, path)
}

// ForFile returns the appropriate local parser for a filename.
func (l *Local) ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: l.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".pptx":
		return &PPTXParser{}, nil
	case ".odt", ".odp":
		return &ODFParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a local parser can extract text from the file.
func IsSupportedExtension(filename string) bool {
	_, err := (&Local{}).ForFile(filename)
	return err == nil
}

func newDocument(path, contentType string, events []doctree.Event) *Document {
	return &Document{
		ContentType: contentType,
		Metadata: map[string]string{
			"Content-Type": contentType,
			"resourceName": filepath.Base(path),
		},
		Events: slices.Values(events),
	}
}

// paragraphs wraps each text in a p element.
func paragraphs(texts []string) []doctree.Event {
	var out []doctree.Event
	for _, t := range texts {
		out = append(out, doctree.Paragraph(t)...)
	}
	return out
}

// pageDiv wraps events in a page container with the given class.
func pageDiv(class string, body []doctree.Event) []doctree.Event {
	out := make([]doctree.Event, 0, len(body)+2)
	out = append(out, doctree.Start(doctree.TagPage, "class", class))
	out = append(out, body...)
	return append(out, doctree.End(doctree.TagPage))
}
