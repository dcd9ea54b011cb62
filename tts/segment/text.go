package segment

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/dgnsrekt/narrate/tts"
)

// pictographs are stripped from narration text. The regional indicator
// symbols U+1F1E6-1F1FF fall inside the first R32 range.
var pictographs = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200d, Hi: 0x200d, Stride: 1},
		{Lo: 0x2600, Hi: 0x27bf, Stride: 1},
		{Lo: 0xfe0f, Hi: 0xfe0f, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1f191, Hi: 0x1f251, Stride: 1},
		{Lo: 0x1f300, Hi: 0x1f6ff, Stride: 1},
		{Lo: 0x1f900, Hi: 0x1f9ff, Stride: 1},
	},
}

// StripPictographs removes emoji and other pictographic symbols.
func StripPictographs(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.Is(pictographs, r) {
			return -1
		}
		return r
	}, s)
}

func pause(ms int) string {
	return "[pause=" + strconv.Itoa(ms) + "]"
}

// Annotate adds pause and emphasis directives to a unit's text.
func (p Phrases) Annotate(kind tts.Kind, level int, text string) string {
	switch kind {
	case tts.KindCodeBlock:
		return pause(500) + text + pause(500) + p.Terminator
	case tts.KindInlineCode:
		return "[emphasis]" + text + "[/emphasis]" + pause(300) + p.Terminator
	case tts.KindHeading:
		switch level {
		case 1:
			return pause(500) + text + pause(400) + p.Terminator
		case 2:
			return pause(400) + text + pause(300) + p.Terminator
		default:
			return pause(300) + text + pause(300) + p.Terminator
		}
	default:
		return annotateSentences(text) + pause(300) + p.Terminator
	}
}

// annotateSentences puts a pause after sentence punctuation that is followed
// by more text on the same line, and a shorter one after minor punctuation.
func annotateSentences(text string) string {
	runes := []rune(text)
	var sb strings.Builder
	for i, r := range runes {
		sb.WriteRune(r)
		var next rune
		if i+1 < len(runes) {
			next = runes[i+1]
		}
		switch r {
		case '。', '！', '？':
			if next != 0 && next != '\n' {
				sb.WriteString(pause(300))
			}
		case '.', '!', '?':
			if next == ' ' || next == '\t' {
				sb.WriteString(pause(300))
			}
		case '；', '：', ';', ':':
			sb.WriteString(pause(200))
		}
	}
	return sb.String()
}

// span is one sentence as rune offsets [start, end) into a node's text.
type span struct {
	start, end int
	text       string
}

func isTerminator(r rune) bool {
	switch r {
	case '。', '！', '？', '；', '：', '.', '!', '?', ';', ':':
		return true
	}
	return false
}

// splitSentences pairs each run of content with the punctuation that follows
// it. Offsets exclude surrounding whitespace. A run of punctuation with no
// content is folded into the previous sentence.
func splitSentences(text string) []span {
	runes := []rune(text)
	var out []span
	for i := 0; i < len(runes); {
		start := i
		for i < len(runes) && !isTerminator(runes[i]) {
			i++
		}
		contentEnd := i
		for i < len(runes) && isTerminator(runes[i]) {
			i++
		}

		s, e := start, i
		for s < e && unicode.IsSpace(runes[s]) {
			s++
		}
		for e > s && unicode.IsSpace(runes[e-1]) {
			e--
		}
		if s >= e {
			continue
		}
		if s >= contentEnd && len(out) > 0 {
			last := &out[len(out)-1]
			last.end = e
			last.text = string(runes[last.start:e])
			continue
		}
		out = append(out, span{start: s, end: e, text: string(runes[s:e])})
	}
	return out
}
