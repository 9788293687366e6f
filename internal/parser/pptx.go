package parser

import (
	"archive/zip"
	"cmp"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/dgallion1/docdetect/internal/doctree"
)

const slidePrefix = "ppt/slides/slide"

// PPTXParser handles .pptx files. Each slide becomes a slide-content
// container holding one paragraph per DrawingML paragraph.
type PPTXParser struct{}

func (p *PPTXParser) Parse(_ context.Context, path string) (*Document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	slides := slideFiles(&r.Reader)
	if len(slides) == 0 {
		return nil, fmt.Errorf("no slides found in presentation")
	}

	var events []doctree.Event
	for _, f := range slides {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		texts, err := slideParagraphs(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.Name, err)
		}
		events = append(events, pageDiv(doctree.ClassSlide, paragraphs(texts))...)
	}
	doc := newDocument(path, TypePPTX, events)
	doc.Metadata["meta:slide-count"] = strconv.Itoa(len(slides))
	return doc, nil
}

// slideFiles returns slide parts ordered by slide number.
func slideFiles(r *zip.Reader) []*zip.File {
	var out []*zip.File
	for _, f := range r.File {
		if slideNumber(f.Name) > 0 {
			out = append(out, f)
		}
	}
	slices.SortFunc(out, func(a, b *zip.File) int {
		return cmp.Compare(slideNumber(a.Name), slideNumber(b.Name))
	})
	return out
}

// slideNumber extracts N from "ppt/slides/slideN.xml", or 0.
func slideNumber(name string) int {
	rest, ok := strings.CutPrefix(name, slidePrefix)
	if !ok {
		return 0
	}
	rest, ok = strings.CutSuffix(rest, ".xml")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0
	}
	return n
}

// slideParagraphs collects the text runs of every a:p element.
func slideParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)
	var texts []string
	var current strings.Builder
	var inParagraph, inText bool
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return texts, nil
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				inText = inParagraph
			case "br":
				if inParagraph {
					current.WriteByte('\n')
				}
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inParagraph {
					texts = append(texts, current.String())
				}
				inParagraph = false
			}
		}
	}
}
