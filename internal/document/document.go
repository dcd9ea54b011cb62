// Package document renders Markdown into a live HTML tree and exposes it as
// the page the narration core reads, highlights and scrolls.
package document

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/dgnsrekt/narrate/internal/dom"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"golang.org/x/net/html"
)

// ContentClass marks the element that encloses the rendered document.
const ContentClass = "markdown-section"

// DefaultScrollFraction places a scrolled-to node in the upper third of the
// viewport.
const DefaultScrollFraction = 0.3

var frontmatterRe = regexp.MustCompile(`(?s)\A---\r?\n.*?\r?\n---\r?\n`)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

// Viewport is the scroll primitive of whatever displays the page.
type Viewport interface {
	// Visible reports whether n is currently on screen.
	Visible(n *html.Node) bool
	// ScrollTo scrolls so that n starts at fraction of the viewport height.
	ScrollTo(n *html.Node, fraction float64)
}

// Page is the live document. The embedded mutex serialises every reader and
// writer of the tree; none of the methods below lock it themselves, so callers
// must hold it.
type Page struct {
	sync.Mutex

	root     *html.Node
	viewport Viewport

	// ScrollFraction is passed to the viewport on ScrollIntoView.
	ScrollFraction float64
}

// New returns a page over an already parsed document.
func New(root *html.Node) *Page {
	return &Page{root: root, ScrollFraction: DefaultScrollFraction}
}

// FromMarkdown renders src and returns a page over the result.
func FromMarkdown(src []byte) (*Page, error) {
	root, err := Render(src)
	if err != nil {
		return nil, err
	}
	return New(root), nil
}

// Render converts Markdown into a parsed HTML document whose body holds a
// single content section.
func Render(src []byte) (*html.Node, error) {
	src = frontmatterRe.ReplaceAll(src, nil)

	var buf bytes.Buffer
	buf.WriteString(`<!DOCTYPE html><html><head></head><body><section class="` + ContentClass + `">`)
	if err := md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("unable to render markdown: %w", err)
	}
	buf.WriteString(`</section></body></html>`)

	doc, err := html.Parse(&buf)
	if err != nil {
		return nil, fmt.Errorf("unable to parse rendered markdown: %w", err)
	}
	return doc, nil
}

// Replace swaps the document tree. Every node of the previous tree becomes
// detached.
func (p *Page) Replace(root *html.Node) {
	p.root = root
}

// SetViewport attaches the display.
func (p *Page) SetViewport(v Viewport) {
	p.viewport = v
}

// Root returns the document node.
func (p *Page) Root() *html.Node {
	return p.root
}

// IsAttached reports whether n is still reachable from the document root.
func (p *Page) IsAttached(n *html.Node) bool {
	return dom.Contains(p.root, n)
}

// Body returns the body element.
func (p *Page) Body() *html.Node {
	return dom.Find(p.root, func(n *html.Node) bool {
		return dom.IsElement(n, "body")
	})
}

// ContentRoot returns the element enclosing the rendered content.
func (p *Page) ContentRoot() *html.Node {
	return dom.Find(p.root, func(n *html.Node) bool {
		return dom.IsElement(n) && dom.HasClass(n, ContentClass)
	})
}

// InViewport reports whether n is visible. Without a viewport nothing is.
func (p *Page) InViewport(n *html.Node) bool {
	if p.viewport == nil || !p.IsAttached(n) {
		return false
	}
	return p.viewport.Visible(n)
}

// ScrollIntoView asks the viewport to bring n into its upper part.
func (p *Page) ScrollIntoView(n *html.Node) {
	if p.viewport == nil || n == nil {
		return
	}
	p.viewport.ScrollTo(n, p.ScrollFraction)
}

// Text returns the trimmed text of the content root, for previews.
func (p *Page) Text() string {
	return strings.TrimSpace(dom.TextContent(p.ContentRoot()))
}
