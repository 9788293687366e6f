package doctree

// Kind tags a structural Event.
type Kind int

const (
	ElementStart Kind = iota
	ElementEnd
	Characters
)

func (k Kind) String() string {
	switch k {
	case ElementStart:
		return "start"
	case ElementEnd:
		return "end"
	case Characters:
		return "chars"
	}
	return "unknown"
}

// Event is one callback from a document parser, in document order.
type Event struct {
	Kind  Kind
	Name  string            // Element name, lower-case (start/end only)
	Attrs map[string]string // Element attributes (start only, may be nil)
	Text  string            // Character data (chars only)
}

// Attr returns the named attribute, or "" when absent.
func (e Event) Attr(name string) string {
	if e.Attrs == nil {
		return ""
	}
	return e.Attrs[name]
}

// Start builds an ElementStart event. attrs are key/value pairs.
func Start(name string, attrs ...string) Event {
	ev := Event{Kind: ElementStart, Name: name}
	if len(attrs) > 1 {
		ev.Attrs = make(map[string]string, len(attrs)/2)
		for i := 0; i+1 < len(attrs); i += 2 {
			ev.Attrs[attrs[i]] = attrs[i+1]
		}
	}
	return ev
}

// End builds an ElementEnd event.
func End(name string) Event { return Event{Kind: ElementEnd, Name: name} }

// Chars builds a Characters event.
func Chars(text string) Event { return Event{Kind: Characters, Text: text} }

// Paragraph is shorthand for a p element wrapping text.
func Paragraph(text string) []Event {
	return []Event{Start(TagParagraph), Chars(text), End(TagParagraph)}
}
