// Package highlight keeps a visual highlight on the unit being narrated.
//
// Targets are resolved through an ordered table of candidates, from the
// unit's own wrappers down to the document body, so that something sensible
// is highlighted even after the original nodes left the tree.
package highlight

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/narrate/internal/dom"
	"github.com/dgnsrekt/narrate/tts"
	"golang.org/x/net/html"
)

// ActiveClass marks every highlighted node.
const ActiveClass = "speech-highlighting-active"

const visibleTextSelector = "p, span, div, h1, h2, h3, h4, h5, h6, li"

// property is one inline style set on a highlighted node. Nodes inside the
// content root get the Inside value.
type property struct {
	Name    string
	Inside  string
	Outside string
}

var properties = []property{
	{"font-size", "1em", "1.1em"},
	{"color", "#ff0000", "#ff0000"},
	{"font-weight", "bold", "bold"},
	{"background-color", "rgba(255,255,0,0.3)", "rgba(255,255,0,0.2)"},
	{"transition", "all 0.1s ease", "all 0.1s ease"},
	{"text-decoration", "none", "none"},
	{"animation", "speech-glow 1.5s ease-in-out infinite", "speech-glow 1.5s ease-in-out infinite"},
}

// Properties returns the names of the style properties a highlight sets.
func Properties() []string {
	names := make([]string, len(properties))
	for i, p := range properties {
		names[i] = p.Name
	}
	return names
}

type entry struct {
	node *html.Node
	// prev holds declarations the node had before it was highlighted.
	prev map[string]dom.Declaration
}

// HighlightSet is the set of nodes currently carrying the highlight.
type HighlightSet struct {
	entries []entry
}

// Nodes returns the highlighted nodes in the order they were highlighted.
func (s *HighlightSet) Nodes() []*html.Node {
	out := make([]*html.Node, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.node
	}
	return out
}

// Len returns the number of highlighted nodes.
func (s *HighlightSet) Len() int {
	return len(s.entries)
}

// Synchronizer implements tts.Highlighter over a page.
type Synchronizer struct {
	page tts.Page
	set  HighlightSet
}

// New returns a Synchronizer for page.
func New(page tts.Page) *Synchronizer {
	return &Synchronizer{page: page}
}

// Set returns the active highlight set.
func (s *Synchronizer) Set() *HighlightSet {
	return &s.set
}

// candidate produces highlight targets for one resolution tier.
type candidate struct {
	name    string
	resolve func() []*html.Node
}

// Sync clears the current highlight and highlights the item at index. It
// reports false when no tier produced an attached node.
func (s *Synchronizer) Sync(queue []tts.QueueItem, index int) bool {
	s.Clear()
	if index < 0 || index >= len(queue) {
		log.Warn("highlight index out of range", "index", index, "len", len(queue))
		return false
	}

	item := queue[index]
	for _, c := range s.candidates(item) {
		targets := c.resolve()
		if len(targets) == 0 {
			continue
		}
		s.apply(targets)
		log.Debug("highlight resolved", "index", index, "tier", c.name, "targets", len(targets))
		return true
	}
	log.Warn("highlight resolution failed", "index", index, "err", tts.ErrNoHighlightTarget)
	return false
}

func (s *Synchronizer) candidates(item tts.QueueItem) []candidate {
	u := item.Unit
	return []candidate{
		{"fragments", func() []*html.Node { return s.attached(u.FragmentRefs...) }},
		{"primary", func() []*html.Node { return s.attached(u.PrimaryRef) }},
		{"fallback", func() []*html.Node { return s.attached(item.FallbackRef) }},
		{"source", func() []*html.Node { return s.attached(u.SourceNode) }},
		{"ancestor", func() []*html.Node {
			refs := append([]*html.Node{u.PrimaryRef}, u.FragmentRefs...)
			refs = append(refs, item.FallbackRef, u.SourceNode)
			for _, n := range refs {
				if a := s.attachedAncestor(n); a != nil {
					return []*html.Node{a}
				}
			}
			return nil
		}},
		{"content-root", func() []*html.Node { return s.attached(s.page.ContentRoot()) }},
		{"viewport", s.visibleText},
		{"body", func() []*html.Node { return s.attached(s.page.Body()) }},
	}
}

func (s *Synchronizer) attached(nodes ...*html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		if n != nil && s.page.IsAttached(n) {
			out = append(out, n)
		}
	}
	return out
}

func (s *Synchronizer) attachedAncestor(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for a := n.Parent; a != nil; a = a.Parent {
		if s.page.IsAttached(a) {
			return a
		}
	}
	return nil
}

func (s *Synchronizer) visibleText() []*html.Node {
	root := s.page.Root()
	if root == nil {
		return nil
	}
	sel := goquery.NewDocumentFromNode(root).Find(visibleTextSelector).FilterFunction(func(_ int, sel *goquery.Selection) bool {
		n := sel.Get(0)
		return dom.TextContent(n) != "" && hasText(n) && s.page.InViewport(n)
	}).First()
	if sel.Length() == 0 {
		return nil
	}
	return sel.Nodes
}

func hasText(n *html.Node) bool {
	for _, r := range dom.TextContent(n) {
		if r != ' ' && r != '\n' && r != '\t' && r != '\r' {
			return true
		}
	}
	return false
}

func (s *Synchronizer) apply(targets []*html.Node) {
	content := s.page.ContentRoot()
	seen := make(map[*html.Node]bool, len(targets))
	for _, n := range targets {
		if seen[n] {
			continue
		}
		seen[n] = true

		inside := content != nil && dom.Contains(content, n)
		e := entry{node: n, prev: make(map[string]dom.Declaration)}
		for _, p := range properties {
			if d, ok := dom.StyleProperty(n, p.Name); ok {
				e.prev[p.Name] = d
			}
			v := p.Outside
			if inside {
				v = p.Inside
			}
			dom.SetStyleProperty(n, p.Name, v, true)
		}
		dom.AddClass(n, ActiveClass)
		s.set.entries = append(s.set.entries, e)
	}
	s.page.ScrollIntoView(targets[0])
}

// Clear removes the highlight from every node in the set, then from any
// other node in the document still carrying the marker class. It is safe to
// call repeatedly and on detached nodes.
func (s *Synchronizer) Clear() {
	for _, e := range s.set.entries {
		restore(e)
	}
	s.set.entries = nil

	if root := s.page.Root(); root != nil {
		stray := dom.FindAll(root, func(n *html.Node) bool {
			return dom.IsElement(n) && dom.HasClass(n, ActiveClass)
		})
		for _, n := range stray {
			restore(entry{node: n})
		}
	}
}

func restore(e entry) {
	for _, p := range properties {
		if d, ok := e.prev[p.Name]; ok {
			dom.SetStyleProperty(e.node, d.Property, d.Value, d.Important)
			continue
		}
		dom.RemoveStyleProperty(e.node, p.Name)
	}
	dom.RemoveClass(e.node, ActiveClass)
}
