package tts

import "golang.org/x/net/html"

// Kind classifies the content a Unit was produced from.
type Kind int

const (
	// KindText is a paragraph, list item, bold span, or one sentence of one.
	KindText Kind = iota
	// KindHeading is an h1-h6 element.
	KindHeading
	// KindCodeBlock is a preformatted code block.
	KindCodeBlock
	// KindInlineCode is inline code outside a code block.
	KindInlineCode
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindHeading:
		return "heading"
	case KindCodeBlock:
		return "code-block"
	case KindInlineCode:
		return "inline-code"
	default:
		return "unknown"
	}
}

// Unit is one atomic narration item together with the document nodes that
// show it.
type Unit struct {
	// Text is the narration string with pause and emphasis annotations.
	Text string
	Kind Kind
	// Level is the heading level for KindHeading units.
	Level int

	// PrimaryRef is the default node to highlight.
	PrimaryRef *html.Node
	// FragmentRefs holds the wrappers of a sentence that spans several
	// disjoint text pieces, in document order.
	FragmentRefs []*html.Node
	// SourceNode is the important node the unit was derived from.
	SourceNode *html.Node
}

// HasRefs reports whether the unit carries a primary or fragment reference.
func (u Unit) HasRefs() bool {
	return u.PrimaryRef != nil || len(u.FragmentRefs) > 0
}

// QueueItem is a Unit placed in a playback queue.
type QueueItem struct {
	Index int
	Unit  Unit
	// FallbackRef is the nearest attached ancestor of the unit's source
	// node, computed at build time when no reference was attached.
	FallbackRef *html.Node
}
