package segment

import (
	"strings"
	"testing"

	"github.com/dgnsrekt/narrate/internal/dom"
	"github.com/dgnsrekt/narrate/tts"
	"golang.org/x/net/html"
)

func parseSection(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(`<html><body><section class="markdown-section">` + src + `</section></body></html>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	root := dom.Find(doc, func(n *html.Node) bool { return dom.HasClass(n, "markdown-section") })
	if root == nil {
		t.Fatal("no content root")
	}
	return root
}

func fragmentText(u tts.Unit) string {
	var sb strings.Builder
	for _, f := range u.FragmentRefs {
		sb.WriteString(dom.TextContent(f))
	}
	return sb.String()
}

// TestSegmentSentenceWrapping tests splitting a plain paragraph into wrapped
// sentences.
func TestSegmentSentenceWrapping(t *testing.T) {
	const text = "第一句。第二句！第三句？"
	root := parseSection(t, "<p>"+text+"</p>")
	p := dom.Find(root, func(n *html.Node) bool { return dom.IsElement(n, "p") })

	seg := New(Options{Phrases: Chinese, Threshold: 5})
	units := seg.Segment(root)
	if len(units) != 3 {
		t.Fatalf("got %d units, want 3", len(units))
	}

	wantEnd := []string{"。", "！", "？"}
	var all strings.Builder
	for i, u := range units {
		frag := fragmentText(u)
		if !strings.HasSuffix(frag, wantEnd[i]) {
			t.Errorf("unit %d fragments %q should end with %q", i, frag, wantEnd[i])
		}
		if u.PrimaryRef != u.FragmentRefs[0] {
			t.Errorf("unit %d primary ref should be its first fragment", i)
		}
		if u.SourceNode != p {
			t.Errorf("unit %d source node should be the paragraph", i)
		}
		if !strings.Contains(u.Text, frag) {
			t.Errorf("unit %d text %q should contain %q", i, u.Text, frag)
		}
		all.WriteString(frag)
	}
	if all.String() != text {
		t.Errorf("fragments reconstruct %q, want %q", all.String(), text)
	}
	if dom.TextContent(p) != text {
		t.Errorf("paragraph text changed to %q", dom.TextContent(p))
	}
}

// TestSegmentShortParagraph tests that text under the threshold stays whole.
func TestSegmentShortParagraph(t *testing.T) {
	root := parseSection(t, "<p>第一句。第二句！第三句？</p>")
	p := dom.Find(root, func(n *html.Node) bool { return dom.IsElement(n, "p") })

	units := New(DefaultOptions()).Segment(root)
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	if units[0].PrimaryRef != p || len(units[0].FragmentRefs) != 0 {
		t.Error("short paragraph should be one whole-node unit")
	}
}

// TestSegmentChildElementsStayWhole tests that structured nodes are not split.
func TestSegmentChildElementsStayWhole(t *testing.T) {
	long := strings.Repeat("This is a sentence. ", 5)
	root := parseSection(t, "<p>"+long+"<em>and more.</em></p>")

	units := New(Options{Phrases: English}).Segment(root)
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	if !dom.IsElement(units[0].PrimaryRef, "p") {
		t.Errorf("primary ref should be the paragraph, got %v", units[0].PrimaryRef)
	}
}

// TestSegmentCodeBlock tests the code block unit and its target.
func TestSegmentCodeBlock(t *testing.T) {
	root := parseSection(t, "<pre><code>print(1)</code></pre>")
	code := dom.Find(root, func(n *html.Node) bool { return dom.IsElement(n, "code") })

	units := New(DefaultOptions()).Segment(root)
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	u := units[0]
	if u.Kind != tts.KindCodeBlock {
		t.Errorf("kind = %v, want code-block", u.Kind)
	}
	want := Chinese.CodeBegin + "print(1)" + Chinese.CodeEnd
	if !strings.Contains(u.Text, want) {
		t.Errorf("text %q should contain %q", u.Text, want)
	}
	if u.PrimaryRef != code {
		t.Error("primary ref should be the inner code node")
	}
	if !dom.IsElement(u.SourceNode, "pre") {
		t.Error("source node should be the pre block")
	}
}

// TestSegmentInlineCode tests wrapping of inline code.
func TestSegmentInlineCode(t *testing.T) {
	root := parseSection(t, "<p>Run <code>go test</code> now</p>")
	code := dom.Find(root, func(n *html.Node) bool { return dom.IsElement(n, "code") })

	units := New(Options{Phrases: English}).Segment(root)
	if len(units) != 2 {
		t.Fatalf("got %d units, want 2", len(units))
	}
	if units[0].Kind != tts.KindText || units[1].Kind != tts.KindInlineCode {
		t.Fatalf("kinds = %v, %v", units[0].Kind, units[1].Kind)
	}

	u := units[1]
	if u.SourceNode != code {
		t.Error("source node should be the code element")
	}
	if u.PrimaryRef == code || u.PrimaryRef != code.Parent || !dom.HasClass(u.PrimaryRef, WrapperClass) {
		t.Error("primary ref should be the wrapper around the code element")
	}
	if !strings.HasPrefix(u.Text, "[emphasis]Important code: go test.[/emphasis]") {
		t.Errorf("text = %q", u.Text)
	}
}

// TestSegmentHeadings tests heading labels and pauses by level.
func TestSegmentHeadings(t *testing.T) {
	root := parseSection(t, "<h1>Title</h1><h2>Part</h2><h4>Detail</h4>")
	units := New(DefaultOptions()).Segment(root)
	want := []string{
		"[pause=500]标题：Title[pause=400]。",
		"[pause=400]小节：Part[pause=300]。",
		"[pause=300]要点：Detail[pause=300]。",
	}
	if len(units) != len(want) {
		t.Fatalf("got %d units, want %d", len(units), len(want))
	}
	for i, u := range units {
		if u.Text != want[i] {
			t.Errorf("unit %d text = %q, want %q", i, u.Text, want[i])
		}
		if u.Level == 0 || u.Kind != tts.KindHeading {
			t.Errorf("unit %d should be a heading with a level", i)
		}
	}
}

// TestSegmentDocumentOrder tests ordering across node kinds.
func TestSegmentDocumentOrder(t *testing.T) {
	root := parseSection(t, "<h2>A</h2><p>B</p><ul><li>C</li></ul><pre><code>D</code></pre><p><strong>E</strong></p>")
	units := New(Options{Phrases: English}).Segment(root)

	var got []tts.Kind
	for _, u := range units {
		got = append(got, u.Kind)
	}
	want := []tts.Kind{tts.KindHeading, tts.KindText, tts.KindText, tts.KindCodeBlock, tts.KindText, tts.KindText}
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kinds[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if !dom.IsElement(units[4].SourceNode, "p") || !dom.IsElement(units[5].SourceNode, "strong") {
		t.Error("paragraph should come before its strong child")
	}
}

// TestSegmentDropsEmpty tests that whitespace and pictograph-only nodes are
// dropped.
func TestSegmentDropsEmpty(t *testing.T) {
	root := parseSection(t, "<p>   </p><p>😀🎉</p><li>✅ done</li>")
	units := New(DefaultOptions()).Segment(root)
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	if strings.ContainsRune(units[0].Text, '✅') {
		t.Errorf("pictograph not stripped: %q", units[0].Text)
	}
}

// TestSegmentNilRoot tests the absent root.
func TestSegmentNilRoot(t *testing.T) {
	if units := New(DefaultOptions()).Segment(nil); len(units) != 0 {
		t.Errorf("got %d units for nil root", len(units))
	}
}

// TestSegmentIdempotent tests that re-segmenting yields the same units.
func TestSegmentIdempotent(t *testing.T) {
	long := "First sentence here. Second sentence follows! Third one ends it?"
	root := parseSection(t, "<p>"+long+"</p><p>Use <code>x</code>.</p>")
	seg := New(Options{Phrases: English})

	first := seg.Segment(root)
	second := seg.Segment(root)
	if len(first) != len(second) {
		t.Fatalf("first run %d units, second run %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Text != second[i].Text {
			t.Errorf("unit %d: %q != %q", i, first[i].Text, second[i].Text)
		}
	}
	if len(first) != 5 {
		t.Errorf("got %d units, want 5", len(first))
	}
	wrappers := dom.FindAll(root, func(n *html.Node) bool { return dom.HasClass(n, WrapperClass) })
	if len(wrappers) != 4 {
		t.Errorf("got %d wrappers after two runs, want 4", len(wrappers))
	}
}

// TestSplitSentences tests sentence pairing and offsets.
func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"cjk", "第一句。第二句！第三句？", []string{"第一句。", "第二句！", "第三句？"}},
		{"ascii with spaces", "One. Two!  Three", []string{"One.", "Two!", "Three"}},
		{"trailing punctuation run", "Really?! Yes.", []string{"Really?!", "Yes."}},
		{"leading punctuation folds", "Hi. ... ok", []string{"Hi. ...", "ok"}},
		{"minor punctuation", "a；b:c", []string{"a；", "b:", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSentences(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d sentences %v, want %v", len(got), got, tt.want)
			}
			runes := []rune(tt.in)
			for i, s := range got {
				if s.text != tt.want[i] {
					t.Errorf("sentence %d = %q, want %q", i, s.text, tt.want[i])
				}
				if string(runes[s.start:s.end]) != s.text {
					t.Errorf("sentence %d offsets do not match its text", i)
				}
			}
		})
	}
}

// TestAnnotatePlainText tests pause insertion in plain text.
func TestAnnotatePlainText(t *testing.T) {
	got := Chinese.Annotate(tts.KindText, 0, "你好。世界；再见")
	want := "你好。[pause=300]世界；[pause=200]再见[pause=300]。"
	if got != want {
		t.Errorf("Annotate = %q, want %q", got, want)
	}

	got = English.Annotate(tts.KindText, 0, "Version 1.5 is out. Go!")
	want = "Version 1.5 is out.[pause=300] Go![pause=300]."
	if got != want {
		t.Errorf("Annotate = %q, want %q", got, want)
	}
}

// TestStripPictographs tests removal of each pictographic range.
func TestStripPictographs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"emoticon", "a\U0001F600b", "ab"},
		{"symbols and pictographs", "a\U0001F389b", "ab"},
		{"supplemental", "a\U0001F914b", "ab"},
		{"misc symbols", "a☀b", "ab"},
		{"dingbats", "a✅b", "ab"},
		{"regional indicators", "a\U0001F1E8\U0001F1F3b", "ab"},
		{"enclosed ideographic", "a\U0001F191\U0001F201\U0001F251b", "ab"},
		{"joiner and selector", "a‍️b", "ab"},
		{"plain text kept", "第一句。Hello!", "第一句。Hello!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripPictographs(tt.in); got != tt.want {
				t.Errorf("StripPictographs(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestSegmentDropsPictographOnly tests that a paragraph holding only emoji
// yields no unit and emoji are filtered from the rest.
func TestSegmentDropsPictographOnly(t *testing.T) {
	root := parseSection(t, "<p>\U0001F600\U0001F389‍️</p><p>好的\U0001F44D\U0001F1E8\U0001F1F3 ✅</p>")

	units := New(DefaultOptions()).Segment(root)
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	if got, want := units[0].Text, "好的[pause=300]。"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}
