package tts

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	emphasisRe = regexp.MustCompile(`(?s)\[(?:强调|emphasis)\](.*?)\[/(?:强调|emphasis)\]`)
	pauseRe    = regexp.MustCompile(`\[(?:停顿|pause)=\d+\]`)
)

// Part is one piece of a unit's text, narrated as its own utterance.
type Part struct {
	Text     string
	Emphasis bool
}

// SplitEmphasis splits annotated text into emphasis and plain parts in order.
// Pause directives are replaced by terminator. Parts with nothing to say are
// dropped unless nothing else remains.
func SplitEmphasis(text, terminator string) []Part {
	var raw []Part
	last := 0
	for _, m := range emphasisRe.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			raw = append(raw, Part{Text: text[last:m[0]]})
		}
		raw = append(raw, Part{Text: text[m[2]:m[3]], Emphasis: true})
		last = m[1]
	}
	if last < len(text) {
		raw = append(raw, Part{Text: text[last:]})
	}

	var parts []Part
	for _, p := range raw {
		p.Text = strings.TrimSpace(pauseRe.ReplaceAllString(p.Text, terminator))
		if speakable(p.Text) {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		whole := strings.TrimSpace(pauseRe.ReplaceAllString(emphasisRe.ReplaceAllString(text, "$1"), terminator))
		if whole == "" {
			return nil
		}
		return []Part{{Text: whole}}
	}
	return parts
}

func speakable(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

// ChainState is the phase of an EmphasisChain.
type ChainState int

const (
	// ChainIdle means no unit is being narrated.
	ChainIdle ChainState = iota
	// ChainSpeaking means the part at Index is in flight.
	ChainSpeaking
	// ChainDone means every part has been narrated.
	ChainDone
)

// String returns the string representation of the chain state.
func (s ChainState) String() string {
	switch s {
	case ChainIdle:
		return "idle"
	case ChainSpeaking:
		return "speaking"
	case ChainDone:
		return "done"
	default:
		return "unknown"
	}
}

// EmphasisChain walks the parts of the active unit one utterance at a time.
type EmphasisChain struct {
	Parts []Part
	Index int
	State ChainState
}

// Begin starts a chain over parts and returns the first one.
func (c *EmphasisChain) Begin(parts []Part) (Part, bool) {
	*c = EmphasisChain{Parts: parts}
	if len(parts) == 0 {
		c.State = ChainDone
		return Part{}, false
	}
	c.State = ChainSpeaking
	return parts[0], true
}

// Current returns the part in flight.
func (c *EmphasisChain) Current() (Part, bool) {
	if c.State != ChainSpeaking || c.Index >= len(c.Parts) {
		return Part{}, false
	}
	return c.Parts[c.Index], true
}

// Advance moves to the next part. It returns false once the chain is done.
func (c *EmphasisChain) Advance() (Part, bool) {
	if c.State != ChainSpeaking {
		return Part{}, false
	}
	c.Index++
	if c.Index >= len(c.Parts) {
		c.State = ChainDone
		return Part{}, false
	}
	return c.Parts[c.Index], true
}

// Clear drops the chain.
func (c *EmphasisChain) Clear() {
	*c = EmphasisChain{}
}
