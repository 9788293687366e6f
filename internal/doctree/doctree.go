package doctree

import "strings"

// PageTree is the page → section → text structure of a parsed document.
type PageTree struct {
	Pages []*Page // In document order, never empty
}

// Page is an ordered run of sections between two page boundaries.
type Page struct {
	Sections []*Section // Never empty

	paragraphs int
}

// Section is a span of text between two paragraph boundaries.
type Section struct {
	buf strings.Builder
}

// Text returns the accumulated, untrimmed section text.
func (s *Section) Text() string { return s.buf.String() }

// IsBlank reports whether the section holds only whitespace.
func (s *Section) IsBlank() bool { return strings.TrimSpace(s.buf.String()) == "" }

func (s *Section) append(text string) { s.buf.WriteString(text) }

func newPage() *Page {
	return &Page{Sections: []*Section{{}}}
}

// IsBlank reports whether every section of the page is blank.
func (p *Page) IsBlank() bool {
	for _, s := range p.Sections {
		if !s.IsBlank() {
			return false
		}
	}
	return true
}

func (p *Page) current() *Section { return p.Sections[len(p.Sections)-1] }

// New returns a tree holding one page with one empty section.
func New() *PageTree {
	return &PageTree{Pages: []*Page{newPage()}}
}

// PageCount returns the number of pages.
func (t *PageTree) PageCount() int { return len(t.Pages) }

// Sections returns the section texts of the 0-based page, or nil when out of range.
func (t *PageTree) Sections(page int) []string {
	if page < 0 || page >= len(t.Pages) {
		return nil
	}
	out := make([]string, len(t.Pages[page].Sections))
	for i, s := range t.Pages[page].Sections {
		out[i] = s.Text()
	}
	return out
}

// Texts maps each 0-based page index to its ordered section texts.
func (t *PageTree) Texts() map[int][]string {
	out := make(map[int][]string, len(t.Pages))
	for i := range t.Pages {
		out[i] = t.Sections(i)
	}
	return out
}

// IsBlank reports whether the whole document holds no text.
func (t *PageTree) IsBlank() bool {
	for _, p := range t.Pages {
		if !p.IsBlank() {
			return false
		}
	}
	return true
}

func (t *PageTree) current() *Page { return t.Pages[len(t.Pages)-1] }
