package parser

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dgallion1/docdetect/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. It tries the Go library first,
// then falls back to pdftotext if enabled.
type PDFParser struct {
	FallbackPdftotext bool
}

// Parse emits one page container per PDF page, with a paragraph per block of
// text separated by blank lines.
func (p *PDFParser) Parse(ctx context.Context, path string) (*Document, error) {
	pages, err := extractPDFPages(path)
	if err != nil && p.FallbackPdftotext {
		pages, err = extractPdftotext(ctx, path)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	var events []doctree.Event
	for _, page := range pages {
		events = append(events, pageDiv(doctree.ClassPage, paragraphs(splitParagraphs(page)))...)
	}
	doc := newDocument(path, TypePDF, events)
	doc.Metadata["xmpTPg:NPages"] = fmt.Sprint(len(pages))
	return doc, nil
}

func extractPDFPages(path string) ([]string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Keep the page so numbering stays aligned.
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func extractPdftotext(ctx context.Context, path string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	// pdftotext ends every page with a form feed.
	return splitPages(strings.TrimSuffix(string(out), "\f")), nil
}

func splitPages(text string) []string {
	return strings.Split(text, "\f")
}
