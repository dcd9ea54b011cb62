package ui

import (
	"regexp"
	"strings"
	"testing"

	"github.com/dgnsrekt/narrate/internal/document"
	"github.com/dgnsrekt/narrate/internal/dom"
	"github.com/dgnsrekt/narrate/tts/highlight"
	"github.com/mattn/go-runewidth"
	"golang.org/x/net/html"
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plain(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = ansiRe.ReplaceAllString(l, "")
	}
	return out
}

func renderMarkdown(t *testing.T, src string, width int) (*document.Page, *layout) {
	t.Helper()
	page, err := document.FromMarkdown([]byte(src))
	if err != nil {
		t.Fatalf("FromMarkdown: %v", err)
	}
	return page, render(page.ContentRoot(), width, newStyleSet(""))
}

// TestRenderBlocks tests the layout of common block elements.
func TestRenderBlocks(t *testing.T) {
	src := "# Title\n\nFirst paragraph.\n\n- one\n- two\n\n```\ncode line\n```\n"
	_, l := renderMarkdown(t, src, 40)

	want := []string{
		"# Title",
		"",
		"First paragraph.",
		"",
		"• one",
		"• two",
		"",
		"code line",
	}
	got := plain(l.lines)
	if len(got) != len(want) {
		t.Fatalf("got %d lines %q, want %q", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestRenderWrap tests wrapping of words and of wide characters.
func TestRenderWrap(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		width int
		want  []string
	}{
		{
			name:  "words",
			src:   "alpha beta gamma delta",
			width: 12,
			want:  []string{"alpha beta", "gamma delta"},
		},
		{
			name:  "wide characters",
			src:   "这是一个很长的中文句子",
			width: 10,
			want:  []string{"这是一个很", "长的中文句", "子"},
		},
		{
			name:  "list continuation",
			src:   "- alpha beta gamma",
			width: 12,
			want:  []string{"• alpha beta", "  gamma"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, l := renderMarkdown(t, tt.src, tt.width)
			got := plain(l.lines)
			if len(got) != len(tt.want) {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
				if w := runewidth.StringWidth(got[i]); w > tt.width {
					t.Errorf("line %d is %d wide", i, w)
				}
			}
		})
	}
}

// TestRenderSpans tests that nodes map to the lines they were drawn on.
func TestRenderSpans(t *testing.T) {
	page, l := renderMarkdown(t, "# Title\n\nalpha beta gamma delta\n\nlast", 12)
	root := page.ContentRoot()

	ps := dom.FindAll(root, func(n *html.Node) bool { return dom.IsElement(n, "p") })
	if len(ps) != 2 {
		t.Fatalf("got %d paragraphs", len(ps))
	}
	h := dom.Find(root, func(n *html.Node) bool { return dom.IsElement(n, "h1") })

	tests := []struct {
		node *html.Node
		want span
	}{
		{h, span{0, 1}},
		{ps[0], span{2, 4}},
		{ps[0].FirstChild, span{2, 4}},
		{ps[1], span{5, 6}},
		{root, span{0, 6}},
	}
	for i, tt := range tests {
		got, ok := l.spanOf(tt.node)
		if !ok || got != tt.want {
			t.Errorf("%d: spanOf = %v, %v, want %v", i, got, ok, tt.want)
		}
	}

	// A node that was never drawn resolves through its parent.
	orphan := dom.NewElement("span")
	ps[1].AppendChild(orphan)
	if got, ok := l.spanOf(orphan); !ok || got != (span{5, 6}) {
		t.Errorf("spanOf(orphan) = %v, %v", got, ok)
	}
	if _, ok := l.spanOf(dom.NewElement("p")); ok {
		t.Error("a detached node should have no span")
	}
}

// TestRenderHighlight tests that highlighted nodes get their own style.
func TestRenderHighlight(t *testing.T) {
	page, err := document.FromMarkdown([]byte("plain **marked** plain"))
	if err != nil {
		t.Fatal(err)
	}
	strong := dom.Find(page.ContentRoot(), func(n *html.Node) bool { return dom.IsElement(n, "strong") })
	dom.AddClass(strong, highlight.ActiveClass)

	styles := newStyleSet("")
	r := &renderer{width: 80, styles: styles}
	r.node(page.ContentRoot(), 0)
	r.flush()

	var highlighted strings.Builder
	for _, c := range r.lines[0] {
		if c.style&styleHighlight != 0 {
			highlighted.WriteRune(c.r)
		}
	}
	if highlighted.String() != "marked" {
		t.Errorf("highlighted text = %q, want %q", highlighted.String(), "marked")
	}
}

// TestRenderNestedIndents tests prefixes of a quote nested in a list item.
func TestRenderNestedIndents(t *testing.T) {
	_, l := renderMarkdown(t, "- item\n\n  > quoted\n", 40)

	want := []string{"• item", "  │ quoted"}
	got := plain(l.lines)
	if len(got) != len(want) {
		t.Fatalf("got %d lines %q, want %q", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestIndent tests the help text indent helper.
func TestIndent(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"a\nb", 2, "  a\n  b\n"},
		{"a", 0, "a"},
		{"", 3, ""},
	}
	for _, tt := range tests {
		if got := indent(tt.in, tt.n); got != tt.want {
			t.Errorf("indent(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
