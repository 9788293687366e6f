package parser

import (
	"io"
	"iter"

	"github.com/dgallion1/docdetect/internal/doctree"
	"golang.org/x/net/html"
)

// Tokenize streams (X)HTML as structural events. Self-closing tags produce a
// start and an end event; text inside script and style is dropped. A read
// error ends the stream.
func Tokenize(r io.Reader) iter.Seq[doctree.Event] {
	return func(yield func(doctree.Event) bool) {
		z := html.NewTokenizer(r)
		skip := 0
		for {
			tt := z.Next()
			switch tt {
			case html.ErrorToken:
				return
			case html.TextToken:
				if skip > 0 {
					continue
				}
				if !yield(doctree.Chars(string(z.Text()))) {
					return
				}
			case html.StartTagToken, html.SelfClosingTagToken:
				name, hasAttr := z.TagName()
				ev := doctree.Event{Kind: doctree.ElementStart, Name: string(name)}
				for hasAttr {
					var key, val []byte
					key, val, hasAttr = z.TagAttr()
					if ev.Attrs == nil {
						ev.Attrs = make(map[string]string)
					}
					ev.Attrs[string(key)] = string(val)
				}
				if tt == html.StartTagToken && rawText(ev.Name) {
					skip++
				}
				if !yield(ev) {
					return
				}
				if tt == html.SelfClosingTagToken && !yield(doctree.End(ev.Name)) {
					return
				}
			case html.EndTagToken:
				name, _ := z.TagName()
				if rawText(string(name)) && skip > 0 {
					skip--
				}
				if !yield(doctree.End(string(name))) {
					return
				}
			}
		}
	}
}

func rawText(name string) bool {
	return name == "script" || name == "style"
}
