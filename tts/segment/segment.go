// Package segment partitions a rendered document into narration units.
//
// Headings, code blocks and inline code become one unit each. Paragraphs,
// list items and bold spans become one unit unless they are plain text long
// enough to hold several sentences, in which case every sentence becomes its
// own unit and its text is wrapped in place so it can be highlighted alone.
package segment

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/narrate/internal/dom"
	"github.com/dgnsrekt/narrate/tts"
	"golang.org/x/net/html"
)

// WrapperClass marks elements inserted by the segmenter.
const WrapperClass = "speech-highlight-target"

// DefaultThreshold is the text length, in characters, below which a node is
// never split into sentences.
const DefaultThreshold = 50

const importantSelector = "h1, h2, h3, h4, h5, h6, p, li, pre, strong, code"

// Options configures a Segmenter.
type Options struct {
	Phrases   Phrases
	Threshold int
}

// DefaultOptions returns the Chinese phrase set and the default threshold.
func DefaultOptions() Options {
	return Options{Phrases: Chinese, Threshold: DefaultThreshold}
}

// Segmenter implements tts.Segmenter.
type Segmenter struct {
	opts Options
}

// New returns a Segmenter.
func New(opts Options) *Segmenter {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Phrases.Terminator == "" {
		opts.Phrases = Chinese
	}
	return &Segmenter{opts: opts}
}

// Segment returns the units of root in document order. Wrappers left by an
// earlier call are removed first, so segmenting the same tree twice yields
// the same units.
func (s *Segmenter) Segment(root *html.Node) []tts.Unit {
	if root == nil {
		return nil
	}
	if n := dom.Unwrap(root, WrapperClass); n > 0 {
		log.Debug("removed previous wrappers", "count", n)
	}

	var nodes []*html.Node
	goquery.NewDocumentFromNode(root).Find(importantSelector).Each(func(_ int, sel *goquery.Selection) {
		if goquery.NodeName(sel) == "code" && sel.Closest("pre").Length() > 0 {
			return
		}
		nodes = append(nodes, sel.Get(0))
	})

	var units []tts.Unit
	for _, n := range nodes {
		for _, u := range s.segmentNode(n) {
			text := strings.TrimSpace(StripPictographs(u.Text))
			if text == "" {
				continue
			}
			u.Text = s.opts.Phrases.Annotate(u.Kind, u.Level, text)
			units = append(units, u)
		}
	}
	return units
}

func (s *Segmenter) segmentNode(n *html.Node) []tts.Unit {
	switch {
	case dom.IsElement(n, "pre"):
		return s.codeBlock(n)
	case dom.IsElement(n, "code"):
		return s.inlineCode(n)
	case dom.HeadingLevel(n) > 0:
		return s.heading(n)
	default:
		return s.block(n)
	}
}

func (s *Segmenter) codeBlock(pre *html.Node) []tts.Unit {
	target := dom.Find(pre, func(c *html.Node) bool {
		return c != pre && dom.IsElement(c, "code")
	})
	if target == nil {
		target = pre
	}
	code := strings.TrimSpace(dom.TextContent(target))
	if code == "" {
		return nil
	}
	return []tts.Unit{{
		Text:       s.opts.Phrases.CodeBegin + code + s.opts.Phrases.CodeEnd,
		Kind:       tts.KindCodeBlock,
		PrimaryRef: target,
		SourceNode: pre,
	}}
}

func (s *Segmenter) inlineCode(code *html.Node) []tts.Unit {
	text := strings.TrimSpace(dom.TextContent(code))
	if text == "" {
		return nil
	}
	wrapper := s.newWrapper()
	dom.WrapNode(code, wrapper)
	return []tts.Unit{{
		Text:       s.opts.Phrases.InlineCodeOpen + text + s.opts.Phrases.InlineCodeClose,
		Kind:       tts.KindInlineCode,
		PrimaryRef: wrapper,
		SourceNode: code,
	}}
}

func (s *Segmenter) heading(h *html.Node) []tts.Unit {
	text := strings.TrimSpace(dom.TextContent(h))
	if text == "" {
		return nil
	}
	level := dom.HeadingLevel(h)
	return []tts.Unit{{
		Text:       s.opts.Phrases.Label(level) + text,
		Kind:       tts.KindHeading,
		Level:      level,
		PrimaryRef: h,
		SourceNode: h,
	}}
}

func (s *Segmenter) block(n *html.Node) []tts.Unit {
	full := dom.TextContent(n)
	text := strings.TrimSpace(full)
	if text == "" {
		return nil
	}
	whole := []tts.Unit{{Text: text, Kind: tts.KindText, PrimaryRef: n, SourceNode: n}}

	if dom.HasElementChildren(n, "br", "hr") || utf8.RuneCountInString(text) < s.opts.Threshold {
		return whole
	}
	sentences := splitSentences(full)
	if len(sentences) <= 1 {
		return whole
	}

	units := make([]tts.Unit, 0, len(sentences))
	wrapped := 0
	for _, sent := range sentences {
		frags := dom.WrapRange(n, sent.start, sent.end, s.newWrapper)
		u := tts.Unit{
			Text:         sent.text,
			Kind:         tts.KindText,
			FragmentRefs: frags,
			SourceNode:   n,
		}
		if len(frags) > 0 {
			u.PrimaryRef = frags[0]
			wrapped++
		}
		units = append(units, u)
	}
	if wrapped == 0 {
		log.Debug("sentence wrapping found no text, keeping whole node", "tag", n.Data)
		return whole
	}
	return units
}

func (s *Segmenter) newWrapper() *html.Node {
	return dom.NewElement("span", html.Attribute{Key: "class", Val: WrapperClass})
}
