package ui

import "github.com/charmbracelet/lipgloss"

var (
	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}
	green     = lipgloss.Color("#04B575")
	fuchsia   = lipgloss.Color("#EE6FF8")
	cream     = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	mutedFg   = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(fuchsia).
			Bold(true).
			Render

	statusBarScrollPosStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	statusBarErrorStyle = lipgloss.NewStyle().
				Foreground(cream).
				Background(red).
				Render

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Background(lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"}).
			Render
)

// styleMask is the set of text attributes of one rendered cell.
type styleMask uint8

const (
	styleBold styleMask = 1 << iota
	styleItalic
	styleUnderline
	styleStrike
	styleCode
	styleHeading
	styleMuted
	styleHighlight
)

// styleSet renders cells and caches one lipgloss style per mask.
type styleSet struct {
	highlight lipgloss.TerminalColor
	cache     map[styleMask]lipgloss.Style
}

func newStyleSet(highlightColor string) *styleSet {
	if highlightColor == "" {
		highlightColor = "226"
	}
	return &styleSet{
		highlight: lipgloss.Color(highlightColor),
		cache:     make(map[styleMask]lipgloss.Style),
	}
}

func (s *styleSet) style(m styleMask) lipgloss.Style {
	if st, ok := s.cache[m]; ok {
		return st
	}
	st := lipgloss.NewStyle()
	if m&styleBold != 0 {
		st = st.Bold(true)
	}
	if m&styleItalic != 0 {
		st = st.Italic(true)
	}
	if m&styleUnderline != 0 {
		st = st.Underline(true)
	}
	if m&styleStrike != 0 {
		st = st.Strikethrough(true)
	}
	if m&styleCode != 0 {
		st = st.Foreground(red)
	}
	if m&styleHeading != 0 {
		st = st.Foreground(green).Bold(true)
	}
	if m&styleMuted != 0 {
		st = st.Foreground(mutedFg)
	}
	if m&styleHighlight != 0 {
		st = st.Background(s.highlight).Foreground(lipgloss.Color("0")).Bold(true)
	}
	s.cache[m] = st
	return st
}
