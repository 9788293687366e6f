package parser

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docdetect/internal/doctree"
)

// ODFParser handles OpenDocument text and presentation files by reading
// content.xml from the ZIP archive. Presentation pages become page
// containers; text:p and text:h elements become paragraphs.
type ODFParser struct{}

func (p *ODFParser) Parse(_ context.Context, path string) (*Document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	contentType := odfMimetype(&r.Reader)
	if contentType == "" {
		contentType = TypeODT
		if strings.EqualFold(filepath.Ext(path), ".odp") {
			contentType = TypeODP
		}
	}

	rc, err := r.Open("content.xml")
	if err != nil {
		return nil, fmt.Errorf("content.xml not found in archive: %w", err)
	}
	defer rc.Close()

	events, err := odfEvents(rc)
	if err != nil {
		return nil, fmt.Errorf("parse content.xml: %w", err)
	}
	return newDocument(path, contentType, events), nil
}

// odfMimetype reads the archive's mimetype entry.
func odfMimetype(r *zip.Reader) string {
	f, err := r.Open("mimetype")
	if err != nil {
		return ""
	}
	defer f.Close()
	b, err := io.ReadAll(io.LimitReader(f, 256))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func odfEvents(r io.Reader) ([]doctree.Event, error) {
	decoder := xml.NewDecoder(r)
	var events []doctree.Event
	var current strings.Builder
	depth := 0 // nesting of text:p/text:h
	notes := 0 // inside presentation:notes
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "notes":
				notes++
			case "page":
				if notes == 0 {
					events = append(events, doctree.Start(doctree.TagPage, "class", doctree.ClassPage))
				}
			case "p", "h":
				if notes == 0 {
					if depth == 0 {
						current.Reset()
					}
					depth++
				}
			case "s":
				if depth > 0 {
					current.WriteByte(' ')
				}
			case "tab":
				if depth > 0 {
					current.WriteByte('\t')
				}
			case "line-break":
				if depth > 0 {
					current.WriteByte('\n')
				}
			}
		case xml.CharData:
			if depth > 0 {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "notes":
				notes--
			case "page":
				if notes == 0 {
					events = append(events, doctree.End(doctree.TagPage))
				}
			case "p", "h":
				if notes == 0 && depth > 0 {
					depth--
					if depth == 0 {
						events = append(events, doctree.Paragraph(current.String())...)
					}
				}
			}
		}
	}
}
