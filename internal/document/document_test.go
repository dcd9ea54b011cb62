package document

import (
	"testing"

	"github.com/dgnsrekt/narrate/internal/dom"
	"golang.org/x/net/html"
)

type fakeViewport struct {
	visible  map[*html.Node]bool
	scrolled *html.Node
	fraction float64
}

func (v *fakeViewport) Visible(n *html.Node) bool { return v.visible[n] }

func (v *fakeViewport) ScrollTo(n *html.Node, fraction float64) {
	v.scrolled = n
	v.fraction = fraction
}

// TestFromMarkdown tests rendering into a content section.
func TestFromMarkdown(t *testing.T) {
	src := "---\ntitle: x\n---\n# Title\n\nSome *text*.\n\n```go\nfmt.Println()\n```\n"
	page, err := FromMarkdown([]byte(src))
	if err != nil {
		t.Fatalf("FromMarkdown: %v", err)
	}

	content := page.ContentRoot()
	if content == nil || !dom.IsElement(content, "section") {
		t.Fatal("content root should be the section")
	}
	if dom.Closest(content, func(n *html.Node) bool { return n == page.Body() }) == nil {
		t.Error("content root should sit in the body")
	}
	h1 := dom.Find(content, func(n *html.Node) bool { return dom.IsElement(n, "h1") })
	if h1 == nil || dom.TextContent(h1) != "Title" {
		t.Errorf("h1 = %v", h1)
	}
	if dom.Find(content, func(n *html.Node) bool { return dom.IsElement(n, "pre") }) == nil {
		t.Error("code block should render as pre")
	}
	if got := page.Text(); got == "" || got[0] == '-' {
		t.Errorf("front matter should be stripped, text = %q", got)
	}
}

// TestReplace tests that replacing the tree detaches old nodes.
func TestReplace(t *testing.T) {
	page, err := FromMarkdown([]byte("old"))
	if err != nil {
		t.Fatal(err)
	}
	old := page.ContentRoot()
	if !page.IsAttached(old) {
		t.Fatal("content root should be attached")
	}

	root, err := Render([]byte("new"))
	if err != nil {
		t.Fatal(err)
	}
	page.Replace(root)
	if page.IsAttached(old) {
		t.Error("old nodes should be detached")
	}
	if page.Root() != root || page.Text() != "new" {
		t.Errorf("text = %q", page.Text())
	}
}

// TestViewport tests visibility and scrolling through the viewport.
func TestViewport(t *testing.T) {
	page, err := FromMarkdown([]byte("para"))
	if err != nil {
		t.Fatal(err)
	}
	p := dom.Find(page.Root(), func(n *html.Node) bool { return dom.IsElement(n, "p") })

	if page.InViewport(p) {
		t.Error("nothing is visible without a viewport")
	}
	page.ScrollIntoView(p)

	vp := &fakeViewport{visible: map[*html.Node]bool{p: true}}
	page.SetViewport(vp)
	if !page.InViewport(p) {
		t.Error("p should be visible")
	}
	page.ScrollIntoView(p)
	if vp.scrolled != p || vp.fraction != DefaultScrollFraction {
		t.Errorf("scrolled to %v at %v", vp.scrolled, vp.fraction)
	}

	dom.Detach(p)
	if page.InViewport(p) {
		t.Error("detached nodes are never visible")
	}
}
