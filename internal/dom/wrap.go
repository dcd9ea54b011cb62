package dom

import (
	"golang.org/x/net/html"
)

// textSpan is a text node and its rune offset inside the flattened text of
// the node being wrapped.
type textSpan struct {
	node  *html.Node
	start int
	runes []rune
}

func collectText(n *html.Node) []textSpan {
	var spans []textSpan
	offset := 0
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			r := []rune(c.Data)
			spans = append(spans, textSpan{node: c, start: offset, runes: r})
			offset += len(r)
		}
		return true
	})
	return spans
}

// WrapRange wraps the text of n between rune offsets [start, end) of its
// flattened text content. Every text node that intersects the range is split
// into up to three pieces and the intersecting piece is moved into a new
// element returned by newWrapper. The wrappers are returned in document order.
//
// The original text node is always kept in the tree, holding either the text
// before the range or, when the range starts at its beginning, the wrapped
// text itself.
func WrapRange(n *html.Node, start, end int, newWrapper func() *html.Node) []*html.Node {
	if n == nil || start >= end || newWrapper == nil {
		return nil
	}

	var wrappers []*html.Node
	for _, span := range collectText(n) {
		spanEnd := span.start + len(span.runes)
		s := max(start, span.start)
		e := min(end, spanEnd)
		if s >= e {
			continue
		}
		if span.node.Parent == nil {
			continue
		}

		before := string(span.runes[:s-span.start])
		inside := string(span.runes[s-span.start : e-span.start])
		after := string(span.runes[e-span.start:])

		w := newWrapper()
		parent := span.node.Parent
		if before == "" {
			span.node.Data = inside
			WrapNode(span.node, w)
		} else {
			span.node.Data = before
			w.AppendChild(NewText(inside))
			parent.InsertBefore(w, span.node.NextSibling)
		}
		if after != "" {
			parent.InsertBefore(NewText(after), w.NextSibling)
		}
		wrappers = append(wrappers, w)
	}
	return wrappers
}

// Unwrap replaces every element under root that carries class with its own
// children and merges the text nodes left adjacent by the removal. It returns
// the number of elements removed.
func Unwrap(root *html.Node, class string) int {
	targets := FindAll(root, func(c *html.Node) bool {
		return c != root && HasClass(c, class)
	})

	parents := make(map[*html.Node]struct{})
	for _, w := range targets {
		p := w.Parent
		if p == nil {
			continue
		}
		for c := w.FirstChild; c != nil; {
			next := c.NextSibling
			w.RemoveChild(c)
			p.InsertBefore(c, w)
			c = next
		}
		p.RemoveChild(w)
		parents[p] = struct{}{}
	}

	for p := range parents {
		MergeText(p)
	}
	return len(targets)
}

// MergeText joins runs of adjacent text children of n into the first node of
// each run and drops empty text nodes.
func MergeText(n *html.Node) {
	if n == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type != html.TextNode {
			c = next
			continue
		}
		for next != nil && next.Type == html.TextNode {
			c.Data += next.Data
			following := next.NextSibling
			n.RemoveChild(next)
			next = following
		}
		if c.Data == "" {
			n.RemoveChild(c)
		}
		c = next
	}
}
