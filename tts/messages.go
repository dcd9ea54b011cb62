package tts

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Messages for Bubble Tea communication between the controller and the UI.

// StateChangedMsg indicates the playback state has changed.
type StateChangedMsg struct {
	From  StateType
	To    StateType
	Index int // Current unit index
	Total int // Number of queued units
}

// UnitChangedMsg indicates a unit has started.
type UnitChangedMsg struct {
	Index int
	Total int
	Kind  Kind
	Text  string // Narration text with annotations
}

// BoundaryMsg reports narration progress inside the active unit.
type BoundaryMsg struct {
	Index     int
	CharIndex int
}

// NoticeMsg carries a user-facing notice such as ErrNoContent.
type NoticeMsg struct {
	Err error
}

// NarrationErrorMsg indicates a unit failed and was skipped.
type NarrationErrorMsg struct {
	Index int
	Err   error
}

// VoicesChangedMsg carries a refreshed, preference-sorted voice list.
type VoicesChangedMsg struct {
	Voices []Voice
}

// WaitForMessage returns a command that delivers the controller's next
// message. Re-issue it after each message is handled.
func (c *Controller) WaitForMessage() tea.Cmd {
	return func() tea.Msg {
		return <-c.msgs
	}
}
