package ui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/dgnsrekt/narrate/tts"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

func (m model) View() string {
	if !m.ready {
		return ""
	}
	var b strings.Builder
	fmt.Fprint(&b, m.viewport.View()+"\n")

	// Footer
	m.statusBarView(&b)

	if m.showHelp {
		fmt.Fprint(&b, "\n"+m.helpView())
	}

	return b.String()
}

func logoView() string {
	return logoStyle(" Narrate ")
}

func (m model) statusBarView(b *strings.Builder) {
	const (
		minPercent               float64 = 0.0
		maxPercent               float64 = 1.0
		percentToStringMagnitude float64 = 100.0
	)

	showStatusMessage := m.state == readerStateStatusMessage

	logo := logoView()

	// Scroll percent
	percent := math.Max(minPercent, math.Min(maxPercent, m.viewport.ScrollPercent()))
	scrollPercent := statusBarScrollPosStyle(fmt.Sprintf(" %3.f%% ", percent*percentToStringMagnitude))

	// "Help" note
	helpNote := statusBarHelpStyle(" ? Help ")

	note := m.noteView()
	if showStatusMessage {
		note = m.statusMessage.message
	}
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)

	noteStyle := statusBarNoteStyle
	if showStatusMessage {
		noteStyle = statusBarMessageStyle
		if m.statusMessage.isError {
			noteStyle = statusBarErrorStyle
		}
	}
	note = noteStyle(note)

	// Empty space
	padding := max(0,
		m.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := noteStyle(strings.Repeat(" ", padding))

	fmt.Fprintf(b, "%s%s%s%s%s",
		logo,
		note,
		emptySpace,
		scrollPercent,
		helpNote,
	)
}

// noteView describes the document and the narration.
func (m model) noteView() string {
	parts := []string{filepath.Base(m.cfg.Path)}

	switch m.narration {
	case tts.StatePlaying:
		parts = append(parts, fmt.Sprintf("Reading %d/%d", m.index+1, m.total))
	case tts.StatePaused:
		parts = append(parts, fmt.Sprintf("Paused %d/%d", m.index+1, m.total))
	default:
		parts = append(parts, "Press space to read")
	}

	if c := m.deps.Controls; c != nil {
		if v, ok := c.Voice(); ok {
			parts = append(parts, voiceLabel(v))
		}
		parts = append(parts, fmt.Sprintf("%.1fx", c.Rate()))
	}

	if m.deps.Cache != nil {
		var size int64
		for _, s := range m.deps.Cache.Stats() {
			size += s.Size
		}
		if size > 0 {
			parts = append(parts, "cache "+humanize.Bytes(uint64(size))) //nolint:gosec
		}
	}
	return strings.Join(parts, " · ")
}

func (m model) helpView() (s string) {
	col1 := []string{
		"space/s  start reading",
		"p        pause",
		"r        resume",
		"x        stop",
		"v        next voice",
		"+/-      rate",
		"y        copy current part",
		"h        highlight first part",
		"q        quit",
	}

	s += "\n"
	s += "k/↑      up                  " + col1[0] + "\n"
	s += "j/↓      down                " + col1[1] + "\n"
	s += "b/pgup   page up             " + col1[2] + "\n"
	s += "f/pgdn   page down           " + col1[3] + "\n"
	s += "u        ½ page up           " + col1[4] + "\n"
	s += "d        ½ page down         " + col1[5] + "\n"
	s += "g/home   go to top           " + col1[6] + "\n"
	s += "G/end    go to bottom        " + col1[7] + "\n"
	s += "?        close help          " + col1[8]

	s = indent(s, 2)

	// Fill up empty cells with spaces for background coloring
	if m.width > 0 {
		lines := strings.Split(s, "\n")
		for i := 0; i < len(lines); i++ {
			l := runewidth.StringWidth(lines[i])
			n := max(m.width-l, 0)
			lines[i] += strings.Repeat(" ", n)
		}

		s = strings.Join(lines, "\n")
	}

	return helpViewStyle(s)
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
