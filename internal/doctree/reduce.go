package doctree

import "iter"

// Markup conventions of the XHTML event vocabulary parsers emit.
const (
	TagPage      = "div"
	TagParagraph = "p"
	TagHead      = "head"

	ClassPage  = "page"
	ClassSlide = "slide-content"
)

// ReduceOptions tunes how sections are cut.
type ReduceOptions struct {
	// SuppressBlankSections drops a paragraph boundary while the current
	// section is still blank, so runs of empty paragraphs collapse into one.
	SuppressBlankSections bool
}

// Reduce folds a structural event stream into a PageTree.
//
// A div with class "page" starts a new page; the first one adopts the
// initial page if nothing but whitespace came before it. A div with class
// "slide-content" discards everything before it on first sight (slide decks
// lead with a title/metadata block) and starts a new page on every later
// occurrence. A p element starts a new section; the first p of a page reuses
// the page's opening section when only whitespace precedes it. Character
// data inside head is ignored.
func Reduce(events iter.Seq[Event], opts ReduceOptions) *PageTree {
	tree := New()
	sawPage := false
	sawSlide := false
	headDepth := 0

	for ev := range events {
		switch ev.Kind {
		case ElementStart:
			switch ev.Name {
			case TagHead:
				headDepth++
			case TagPage:
				switch ev.Attr("class") {
				case ClassPage:
					if !sawPage && tree.IsBlank() {
						tree = New()
					} else {
						tree.Pages = append(tree.Pages, newPage())
					}
					sawPage = true
				case ClassSlide:
					if !sawSlide {
						tree = New()
					} else {
						tree.Pages = append(tree.Pages, newPage())
					}
					sawSlide = true
				}
			case TagParagraph:
				page := tree.current()
				first := page.paragraphs == 0
				page.paragraphs++
				if page.current().IsBlank() && (first || opts.SuppressBlankSections) {
					continue
				}
				page.Sections = append(page.Sections, &Section{})
			}
		case ElementEnd:
			if ev.Name == TagHead && headDepth > 0 {
				headDepth--
			}
		case Characters:
			if headDepth > 0 {
				continue
			}
			tree.current().current().append(ev.Text)
		}
	}
	return tree
}
