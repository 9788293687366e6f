package doctree

import (
	"slices"
	"strings"
	"testing"
)

func reduce(events []Event, opts ReduceOptions) *PageTree {
	return Reduce(slices.Values(events), opts)
}

func build(parts ...[]Event) []Event {
	var out []Event
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func pageDiv(class string, body ...[]Event) []Event {
	out := []Event{Start(TagPage, "class", class)}
	out = append(out, build(body...)...)
	return append(out, End(TagPage))
}

func trimmed(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = strings.TrimSpace(t)
	}
	return out
}

func TestReduce_EmptyStream(t *testing.T) {
	tree := reduce(nil, ReduceOptions{})
	if tree.PageCount() != 1 {
		t.Fatalf("expected 1 page, got %d", tree.PageCount())
	}
	if got := tree.Sections(0); len(got) != 1 || got[0] != "" {
		t.Errorf("expected one empty section, got %q", got)
	}
}

func TestReduce_NoPageEventsSectionPerParagraph(t *testing.T) {
	tests := []struct {
		name       string
		paragraphs []string
		want       int
	}{
		{"none", nil, 1},
		{"one", []string{"alpha"}, 1},
		{"three", []string{"alpha", "beta", "gamma"}, 3},
		{"with blanks", []string{"alpha", "", "  ", "delta"}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var events []Event
			events = append(events, Chars("\n"))
			for _, p := range tt.paragraphs {
				events = append(events, Paragraph(p)...)
				events = append(events, Chars("\n"))
			}
			tree := reduce(events, ReduceOptions{})
			if tree.PageCount() != 1 {
				t.Fatalf("expected 1 page, got %d", tree.PageCount())
			}
			if got := len(tree.Sections(0)); got != tt.want {
				t.Errorf("expected %d sections, got %d", tt.want, got)
			}
		})
	}
}

func TestReduce_SuppressBlankSections(t *testing.T) {
	events := build(
		Paragraph("alpha"),
		Paragraph(""),
		Paragraph("   "),
		Paragraph("delta"),
	)

	plain := reduce(events, ReduceOptions{})
	if got := len(plain.Sections(0)); got != 4 {
		t.Fatalf("expected 4 sections without suppression, got %d", got)
	}

	suppressed := reduce(events, ReduceOptions{SuppressBlankSections: true})
	got := trimmed(suppressed.Sections(0))
	want := []string{"alpha", "delta"}
	if !slices.Equal(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestReduce_PageMarkers(t *testing.T) {
	events := build(
		[]Event{Start("html"), Start("body"), Chars("\n")},
		pageDiv(ClassPage, Paragraph("Hello world")),
		pageDiv(ClassPage, Paragraph("Second page"), Paragraph("More")),
		[]Event{End("body"), End("html")},
	)
	tree := reduce(events, ReduceOptions{})
	if tree.PageCount() != 2 {
		t.Fatalf("expected 2 pages, got %d", tree.PageCount())
	}
	if got := trimmed(tree.Sections(0)); !slices.Equal(got, []string{"Hello world"}) {
		t.Errorf("page 0: got %q", got)
	}
	if got := trimmed(tree.Sections(1)); !slices.Equal(got, []string{"Second page", "More"}) {
		t.Errorf("page 1: got %q", got)
	}
}

func TestReduce_TextBeforeFirstPageKeepsOwnPage(t *testing.T) {
	events := build(
		[]Event{Chars("preamble")},
		pageDiv(ClassPage, Paragraph("body")),
	)
	tree := reduce(events, ReduceOptions{})
	if tree.PageCount() != 2 {
		t.Fatalf("expected 2 pages, got %d", tree.PageCount())
	}
	if got := trimmed(tree.Sections(0)); got[0] != "preamble" {
		t.Errorf("expected preamble on page 0, got %q", got)
	}
}

func TestReduce_FirstSlideDiscardsPreamble(t *testing.T) {
	events := build(
		Paragraph("Deck title"),
		pageDiv(ClassSlide, Paragraph("Slide one")),
		pageDiv(ClassSlide, Paragraph("Slide two")),
		pageDiv(ClassSlide, Paragraph("Slide three")),
	)
	tree := reduce(events, ReduceOptions{})
	if tree.PageCount() != 3 {
		t.Fatalf("expected 3 pages, got %d", tree.PageCount())
	}
	for i, want := range []string{"Slide one", "Slide two", "Slide three"} {
		got := trimmed(tree.Sections(i))
		if !slices.Equal(got, []string{want}) {
			t.Errorf("page %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestReduce_UnrecognisedClassIsNotABoundary(t *testing.T) {
	events := build(
		Paragraph("one"),
		[]Event{Start(TagPage), Start(TagPage, "class", "annotation"), Start(TagPage, "id", "x")},
		Paragraph("two"),
	)
	tree := reduce(events, ReduceOptions{})
	if tree.PageCount() != 1 {
		t.Fatalf("expected 1 page, got %d", tree.PageCount())
	}
	if got := trimmed(tree.Sections(0)); !slices.Equal(got, []string{"one", "two"}) {
		t.Errorf("got %q", got)
	}
}

func TestReduce_HeadTextSkipped(t *testing.T) {
	events := build(
		[]Event{Start("html"), Start(TagHead), Start("title"), Chars("Quarterly Report"), End("title"), End(TagHead)},
		[]Event{Start("body")},
		Paragraph("Revenue grew."),
		[]Event{End("body"), End("html")},
	)
	tree := reduce(events, ReduceOptions{})
	got := trimmed(tree.Sections(0))
	if !slices.Equal(got, []string{"Revenue grew."}) {
		t.Errorf("expected only body text, got %q", got)
	}
}

func TestReduce_CharactersAppendVerbatim(t *testing.T) {
	events := build(
		[]Event{Start(TagParagraph), Chars("  Hello"), Chars(", "), Chars("world  "), End(TagParagraph)},
	)
	tree := reduce(events, ReduceOptions{})
	if got := tree.Sections(0)[0]; got != "  Hello, world  " {
		t.Errorf("expected verbatim text, got %q", got)
	}
}

func TestPageTree_TextsAndBounds(t *testing.T) {
	events := build(
		pageDiv(ClassPage, Paragraph("a")),
		pageDiv(ClassPage, Paragraph("b"), Paragraph("c")),
	)
	tree := reduce(events, ReduceOptions{})
	texts := tree.Texts()
	if len(texts) != 2 || len(texts[1]) != 2 {
		t.Fatalf("unexpected texts map: %q", texts)
	}
	if tree.Sections(-1) != nil || tree.Sections(5) != nil {
		t.Error("expected nil for out-of-range pages")
	}
}

func TestEvent_AttrMissing(t *testing.T) {
	ev := Start(TagPage)
	if ev.Attr("class") != "" {
		t.Error("expected empty class for attribute-less element")
	}
}
