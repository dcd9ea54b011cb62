package ui

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/dgnsrekt/narrate/internal/dom"
	"github.com/dgnsrekt/narrate/tts/highlight"
	"github.com/mattn/go-runewidth"
	"golang.org/x/net/html"
)

const tabWidth = 4

// span is a range of rendered lines, end exclusive.
type span struct {
	start, end int
}

// layout is a rendered document: its lines and the lines every node landed
// on.
type layout struct {
	lines []string
	spans map[*html.Node]span
}

// spanOf returns the lines of n or, when n was not drawn, of its nearest
// drawn ancestor.
func (l *layout) spanOf(n *html.Node) (span, bool) {
	if l == nil {
		return span{}, false
	}
	for ; n != nil; n = n.Parent {
		if s, ok := l.spans[n]; ok {
			return s, true
		}
	}
	return span{}, false
}

// cell is one rune on screen. text is the text node it came from, nil for
// decoration.
type cell struct {
	r     rune
	w     int
	style styleMask
	text  *html.Node
}

// blockIndent is the prefix of the lines of one nested block. first is drawn on
// the block's first line and rest on the ones after.
type blockIndent struct {
	first, rest string
	used        bool
}

type renderer struct {
	width  int
	styles *styleSet

	lines [][]cell
	cur   []cell
	curW  int

	indents  []blockIndent
	prefixed bool // prefix drawn on cur
	hasText  bool // cur holds more than its prefix
	space    bool // last cell of cur is a collapsible space

	blocks int // depth of open blocks
	pre    int // depth of open pre elements
	tight  int // depth of list items, whose blocks get no gap
}

// render lays out root for a terminal of the given width.
func render(root *html.Node, width int, styles *styleSet) *layout {
	if width < 10 {
		width = 10
	}
	r := &renderer{width: width, styles: styles}
	if root != nil {
		r.node(root, 0)
	}
	r.flush()
	for len(r.lines) > 0 && len(r.lines[len(r.lines)-1]) == 0 {
		r.lines = r.lines[:len(r.lines)-1]
	}
	return r.finish(root)
}

func (r *renderer) children(n *html.Node, st styleMask) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.node(c, st)
	}
}

func (r *renderer) node(n *html.Node, st styleMask) {
	switch n.Type {
	case html.TextNode:
		r.text(n, st)
		return
	case html.DocumentNode:
		r.children(n, st)
		return
	case html.ElementNode:
	default:
		return
	}

	if dom.HasClass(n, highlight.ActiveClass) {
		st |= styleHighlight
	}

	if level := dom.HeadingLevel(n); level > 0 {
		r.openBlock()
		r.decorate(strings.Repeat("#", level)+" ", st|styleHeading)
		r.children(n, st|styleHeading)
		r.closeBlock(true)
		return
	}

	switch n.Data {
	case "head", "script", "style", "template":
	case "p":
		r.openBlock()
		r.children(n, st)
		r.closeBlock(true)
	case "ul", "ol":
		r.list(n, st)
	case "pre":
		r.openBlock()
		r.pre++
		r.children(n, st|styleCode)
		r.pre--
		r.closeBlock(true)
	case "blockquote":
		r.openBlock()
		r.indents = append(r.indents, blockIndent{first: "│ ", rest: "│ "})
		r.children(n, st|styleItalic)
		r.indents = r.indents[:len(r.indents)-1]
		r.closeBlock(true)
	case "hr":
		r.openBlock()
		r.decorate(strings.Repeat("─", max(0, r.width-r.curW)), st|styleMuted)
		r.closeBlock(true)
	case "tr":
		r.openBlock()
		first := true
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !dom.IsElement(c, "td", "th") {
				continue
			}
			if !first {
				r.decorate(" │ ", styleMuted)
			}
			first = false
			cst := st
			if c.Data == "th" {
				cst |= styleBold
			}
			r.node(c, cst)
		}
		r.closeBlock(false)
	case "table":
		r.openBlock()
		r.children(n, st)
		r.closeBlock(true)
	case "br":
		r.breakLine()
	case "img":
		if alt, ok := dom.Attr(n, "alt"); ok && alt != "" {
			r.decorate("["+alt+"]", st|styleMuted)
		}
	case "strong", "b":
		r.children(n, st|styleBold)
	case "em", "i":
		r.children(n, st|styleItalic)
	case "code":
		r.children(n, st|styleCode)
	case "a":
		r.children(n, st|styleUnderline)
	case "del", "s":
		r.children(n, st|styleStrike)
	default:
		r.children(n, st)
	}
}

func (r *renderer) list(n *html.Node, st styleMask) {
	r.openBlock()
	ordered := n.Data == "ol"
	num := 1
	if v, ok := dom.Attr(n, "start"); ok {
		if i, err := strconv.Atoi(v); err == nil {
			num = i
		}
	}
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if !dom.IsElement(li, "li") {
			continue
		}
		marker := "• "
		if ordered {
			marker = strconv.Itoa(num) + ". "
			num++
		}
		lst := st
		if dom.HasClass(li, highlight.ActiveClass) {
			lst |= styleHighlight
		}
		r.openBlock()
		r.indents = append(r.indents, blockIndent{first: marker, rest: strings.Repeat(" ", runewidth.StringWidth(marker))})
		r.tight++
		r.children(li, lst)
		r.tight--
		r.indents = r.indents[:len(r.indents)-1]
		r.closeBlock(false)
	}
	r.closeBlock(r.tight == 0)
}

func (r *renderer) openBlock() {
	if r.hasText {
		r.breakLine()
	}
	r.blocks++
}

func (r *renderer) closeBlock(gap bool) {
	r.blocks--
	if r.hasText {
		r.breakLine()
	}
	if gap && r.tight == 0 && len(r.lines) > 0 && len(r.lines[len(r.lines)-1]) > 0 {
		r.lines = append(r.lines, nil)
	}
}

func (r *renderer) text(n *html.Node, st styleMask) {
	if r.pre > 0 {
		r.preText(n, st)
		return
	}
	if r.blocks == 0 && strings.TrimSpace(n.Data) == "" {
		return
	}
	for _, ch := range n.Data {
		if unicode.IsSpace(ch) {
			if !r.hasText || r.space {
				continue
			}
			r.put(cell{r: ' ', w: 1, style: st, text: n})
			r.space = true
			continue
		}
		r.put(cell{r: ch, w: runewidth.RuneWidth(ch), style: st, text: n})
		r.space = false
	}
}

// preText keeps whitespace and truncates instead of wrapping.
func (r *renderer) preText(n *html.Node, st styleMask) {
	s := n.Data
	if n.NextSibling == nil {
		s = strings.TrimSuffix(s, "\n")
	}
	for _, ch := range s {
		switch ch {
		case '\n':
			r.prefix()
			r.hasText = true
			r.breakLine()
			continue
		case '\t':
			for i := 0; i < tabWidth; i++ {
				r.appendClipped(cell{r: ' ', w: 1, style: st, text: n})
			}
			continue
		}
		r.appendClipped(cell{r: ch, w: runewidth.RuneWidth(ch), style: st, text: n})
	}
}

func (r *renderer) appendClipped(c cell) {
	r.prefix()
	r.hasText = true
	if r.curW+c.w > r.width {
		return
	}
	r.cur = append(r.cur, c)
	r.curW += c.w
}

// decorate draws s as part of the layout without tying it to a node.
func (r *renderer) decorate(s string, st styleMask) {
	for _, ch := range s {
		r.put(cell{r: ch, w: runewidth.RuneWidth(ch), style: st})
	}
	r.space = strings.HasSuffix(s, " ")
}

func (r *renderer) put(c cell) {
	r.prefix()
	if c.w > 0 && r.curW+c.w > r.width {
		if c.r == ' ' {
			r.breakLine()
			return
		}
		carry := r.carryWord()
		r.breakLine()
		r.prefix()
		for _, cc := range carry {
			r.cur = append(r.cur, cc)
			r.curW += cc.w
		}
	}
	r.cur = append(r.cur, c)
	r.curW += c.w
	r.hasText = true
}

// carryWord takes a trailing narrow-character word off the current line so
// that it can move to the next one whole. Wide characters break anywhere.
func (r *renderer) carryWord() []cell {
	i := len(r.cur) - 1
	for ; i >= 0; i-- {
		c := r.cur[i]
		if c.r == ' ' && c.text != nil {
			break
		}
		if c.text == nil || c.w != 1 {
			return nil
		}
	}
	if i <= 0 || len(r.cur)-i-1 > r.width/2 {
		return nil
	}
	carry := append([]cell(nil), r.cur[i+1:]...)
	r.cur = r.cur[:i]
	return carry
}

// prefix draws the indents on a fresh line.
func (r *renderer) prefix() {
	if r.prefixed {
		return
	}
	r.prefixed = true
	for i := range r.indents {
		in := &r.indents[i]
		s := in.rest
		if !in.used {
			s, in.used = in.first, true
		}
		for _, ch := range s {
			w := runewidth.RuneWidth(ch)
			r.cur = append(r.cur, cell{r: ch, w: w, style: styleMuted})
			r.curW += w
		}
	}
}

func (r *renderer) breakLine() {
	for len(r.cur) > 0 && r.cur[len(r.cur)-1].r == ' ' && r.cur[len(r.cur)-1].text != nil {
		r.curW -= r.cur[len(r.cur)-1].w
		r.cur = r.cur[:len(r.cur)-1]
	}
	r.lines = append(r.lines, r.cur)
	r.cur, r.curW = nil, 0
	r.prefixed, r.hasText, r.space = false, false, false
}

func (r *renderer) flush() {
	if r.hasText {
		r.breakLine()
	}
}

// finish draws the cells and records the lines of every drawn node up to
// root.
func (r *renderer) finish(root *html.Node) *layout {
	l := &layout{
		lines: make([]string, len(r.lines)),
		spans: make(map[*html.Node]span),
	}
	texts := make(map[*html.Node]span)
	for i, line := range r.lines {
		var sb strings.Builder
		start := 0
		for j := 1; j <= len(line); j++ {
			if j < len(line) && line[j].style == line[start].style {
				continue
			}
			var run strings.Builder
			for _, c := range line[start:j] {
				run.WriteRune(c.r)
			}
			sb.WriteString(r.styles.style(line[start].style).Render(run.String()))
			start = j
		}
		l.lines[i] = sb.String()

		for _, c := range line {
			if c.text != nil {
				texts[c.text] = extend(texts[c.text], i)
			}
		}
	}

	for t, s := range texts {
		for n := t; n != nil; n = n.Parent {
			cur, ok := l.spans[n]
			if !ok {
				l.spans[n] = s
			} else {
				l.spans[n] = span{start: min(cur.start, s.start), end: max(cur.end, s.end)}
			}
			if n == root {
				break
			}
		}
	}
	return l
}

func extend(s span, line int) span {
	if s == (span{}) {
		return span{start: line, end: line + 1}
	}
	return span{start: min(s.start, line), end: max(s.end, line+1)}
}
