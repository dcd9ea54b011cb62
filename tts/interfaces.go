package tts

import (
	"time"

	"golang.org/x/net/html"
)

// Page is the live document the core reads from and highlights in. Callers
// hold the page's lock while using it.
type Page interface {
	// Root returns the document node.
	Root() *html.Node
	// Body returns the body element, if any.
	Body() *html.Node
	// ContentRoot returns the element enclosing the narrated content.
	ContentRoot() *html.Node
	// IsAttached reports whether n is still reachable from the root.
	IsAttached(n *html.Node) bool
	// InViewport reports whether n is currently visible.
	InViewport(n *html.Node) bool
	// ScrollIntoView brings n into the upper part of the viewport.
	ScrollIntoView(n *html.Node)
}

// Segmenter turns a content tree into narration units.
type Segmenter interface {
	Segment(root *html.Node) []Unit
}

// Highlighter keeps the visual highlight in sync with the queue.
type Highlighter interface {
	// Sync highlights the item at index and reports whether any target was
	// found.
	Sync(queue []QueueItem, index int) bool
	// Clear removes every highlight. It is idempotent.
	Clear()
}

// Voice describes one voice a narrator offers.
type Voice struct {
	ID   string
	Name string
	// Lang is a BCP 47 tag such as "zh-CN".
	Lang    string
	Default bool
}

// Utterance is one request to the narration service.
type Utterance struct {
	ID    uint64
	Text  string
	Voice Voice
	Lang  string
	Rate  float64
	Pitch float64
}

// EventKind identifies a narration notification.
type EventKind int

const (
	// EventEnd reports that an utterance finished.
	EventEnd EventKind = iota
	// EventError reports that an utterance failed.
	EventError
	// EventBoundary reports progress inside an utterance.
	EventBoundary
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventEnd:
		return "end"
	case EventError:
		return "error"
	case EventBoundary:
		return "boundary"
	default:
		return "unknown"
	}
}

// NarrationEvent is a notification from the narration service about one
// utterance.
type NarrationEvent struct {
	Kind        EventKind
	UtteranceID uint64
	// CharIndex is the character offset of a boundary event.
	CharIndex int
	Err       error
}

// Narrator is the external narration service. Speak must not block on
// playback and must not deliver events from inside the Speak call.
type Narrator interface {
	Speak(u Utterance) error
	// Cancel drops the in-flight utterance and any paused state. No events
	// are delivered for it afterwards.
	Cancel()
	// Pause halts the in-flight utterance where it is.
	Pause()
	Voices() []Voice
	// SetEventHandler registers the receiver of narration events.
	SetEventHandler(fn func(NarrationEvent))
}

// Settings are the user-selected narration controls.
type Settings struct {
	Voice Voice
	Rate  float64
	Pitch float64
}

// SettingsSource supplies the current narration controls.
type SettingsSource interface {
	Settings() Settings
}

// Timer is a pending delayed call.
type Timer interface {
	Stop() bool
}

// Clock schedules delayed calls.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock returns a Clock backed by time.AfterFunc.
func RealClock() Clock {
	return realClock{}
}
