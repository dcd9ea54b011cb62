// Package tts holds the narration core: units and the queue built from them,
// the playback controller, and the contracts it needs from the page, the
// segmenter, the highlighter and the narration service.
package tts

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/net/html"
)

// ControllerConfig holds configuration for the playback controller.
type ControllerConfig struct {
	Lang               string        // Language used when the voice has none
	DefaultRate        float64       // Rate used when the rate control is unset
	DefaultPitch       float64       // Pitch used when the pitch control is unset
	EmphasisRateFactor float64       // Multiplier applied to the rate for emphasis parts
	NormalPause        time.Duration // Delay after a plain unit
	CodePause          time.Duration // Delay after a code block unit
	ErrorDelay         time.Duration // Delay before skipping past a failed unit
	Terminator         string        // Replaces pause directives before narration
	VoicePreference    VoicePreference
}

// DefaultControllerConfig returns a sensible default configuration.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		Lang:               "zh-CN",
		DefaultRate:        0.8,
		DefaultPitch:       1.0,
		EmphasisRateFactor: 1.2,
		NormalPause:        200 * time.Millisecond,
		CodePause:          500 * time.Millisecond,
		ErrorDelay:         300 * time.Millisecond,
		Terminator:         "。",
		VoicePreference:    DefaultVoicePreference(),
	}
}

// Status is a snapshot of the controller for display.
type Status struct {
	State StateType
	Index int
	Total int
	Chain ChainState
	Voice Voice
	Rate  float64
}

// Controller drives sequential narration of a queue and keeps the highlight
// on the active unit. Every entry point and every narration or timer callback
// runs while holding the page lock, one at a time.
type Controller struct {
	lock        sync.Locker
	page        Page
	narrator    Narrator
	segmenter   Segmenter
	highlighter Highlighter
	settings    SettingsSource
	clock       Clock
	config      ControllerConfig

	machine *StateMachine
	state   PlaybackState

	utterance uint64 // id of the utterance in flight, 0 when none
	lastID    uint64
	session   uint64 // bumped on every start and teardown
	timer     Timer

	msgs          chan tea.Msg
	voiceHandlers []func([]Voice)

	// Callbacks
	onStateChange func(from, to StateType)
	onUnitChange  func(index, total int)
	onNotice      func(error)
	onError       func(error)
}

// NewController creates a controller. lock is the page lock shared with
// everything else that reads or writes the document.
func NewController(lock sync.Locker, page Page, narrator Narrator, segmenter Segmenter, highlighter Highlighter, config ControllerConfig) *Controller {
	c := &Controller{
		lock:        lock,
		page:        page,
		narrator:    narrator,
		segmenter:   segmenter,
		highlighter: highlighter,
		clock:       RealClock(),
		config:      config,
		machine:     NewStateMachine(),
		msgs:        make(chan tea.Msg, 64),
	}
	if c.config.Terminator == "" {
		c.config.Terminator = "。"
	}
	c.setupStateMachine()
	narrator.SetEventHandler(c.handleEvent)
	return c
}

// SetSettingsSource sets where the session snapshot of voice, rate and pitch
// is read from.
func (c *Controller) SetSettingsSource(s SettingsSource) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.settings = s
}

// SetClock replaces the clock used for inter-unit delays.
func (c *Controller) SetClock(clock Clock) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.clock = clock
}

// OnStateChange registers a callback for state changes.
func (c *Controller) OnStateChange(fn func(from, to StateType)) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.onStateChange = fn
}

// OnUnitChange registers a callback for unit transitions.
func (c *Controller) OnUnitChange(fn func(index, total int)) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.onUnitChange = fn
}

// OnNotice registers a callback for user-facing notices.
func (c *Controller) OnNotice(fn func(error)) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.onNotice = fn
}

// OnError registers a callback for skipped units.
func (c *Controller) OnError(fn func(error)) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.onError = fn
}

// OnVoiceListChanged registers fn to receive the sorted voice list. It is
// called once right away and again on every RefreshVoices.
func (c *Controller) OnVoiceListChanged(fn func([]Voice)) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.voiceHandlers = append(c.voiceHandlers, fn)
	voices := SortVoices(c.narrator.Voices(), c.config.VoicePreference)
	go fn(voices)
}

// RefreshVoices re-reads the narrator's voices and notifies every handler.
func (c *Controller) RefreshVoices() {
	c.lock.Lock()
	defer c.lock.Unlock()
	voices := SortVoices(c.narrator.Voices(), c.config.VoicePreference)
	for _, fn := range c.voiceHandlers {
		go fn(voices)
	}
	c.send(VoicesChangedMsg{Voices: voices})
}

// StartSession segments root, builds a fresh queue and starts narrating it.
// Any running session is cancelled first. It returns ErrNoContent, and stays
// idle, when nothing can be read.
func (c *Controller) StartSession(root *html.Node) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.narrator.Cancel()
	c.teardown()
	c.session++
	c.snapshot()

	var units []Unit
	if root != nil {
		units = c.segmenter.Segment(root)
	}
	queue := BuildQueue(units, c.page)
	if len(queue) == 0 {
		log.Info("nothing to read")
		c.notice(ErrNoContent)
		return ErrNoContent
	}

	c.state.Queue = queue
	c.machine.Transition(StatePlaying)
	log.Debug("session started", "units", len(queue), "voice", c.state.Voice.ID, "rate", c.state.Rate)
	c.speakCurrent()
	return nil
}

// PauseSession pauses narration and keeps the current highlight.
func (c *Controller) PauseSession() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.machine.Current() != StatePlaying {
		return ErrInvalidState
	}
	c.narrator.Pause()
	c.stopTimer()
	// Resume resubmits the unit, so events of the paused utterance are stale.
	c.utterance = 0
	c.state.IsPaused = true
	c.machine.Transition(StatePaused)
	return nil
}

// ResumeSession restarts narration from the beginning of the current unit.
func (c *Controller) ResumeSession() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.machine.Current() != StatePaused {
		return ErrInvalidState
	}
	c.state.IsPaused = false
	c.machine.Transition(StatePlaying)
	c.speakCurrent()
	return nil
}

// StopSession cancels narration and resets everything to the initial state.
func (c *Controller) StopSession() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.narrator.Cancel()
	c.state.IsStopped = true
	c.teardown()
	return nil
}

// HighlightUnit highlights the unit at index without touching playback. When
// no session is running it segments the page's content root to find units.
func (c *Controller) HighlightUnit(index int) (bool, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	queue := c.state.Queue
	if len(queue) == 0 {
		root := c.page.ContentRoot()
		if root == nil {
			return false, ErrNoContent
		}
		queue = BuildQueue(c.segmenter.Segment(root), c.page)
	}
	if index < 0 || index >= len(queue) {
		return false, ErrInvalidUnitIndex
	}
	return c.highlighter.Sync(queue, index), nil
}

// Status returns a snapshot of the playback state.
func (c *Controller) Status() Status {
	c.lock.Lock()
	defer c.lock.Unlock()
	return Status{
		State: c.machine.Current(),
		Index: c.state.Index,
		Total: len(c.state.Queue),
		Chain: c.state.Chain.State,
		Voice: c.state.Voice,
		Rate:  c.state.Rate,
	}
}

// Current returns the active queue item.
func (c *Controller) Current() (QueueItem, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.machine.Current() == StateIdle {
		return QueueItem{}, false
	}
	return c.state.Active()
}

func (c *Controller) setupStateMachine() {
	for _, s := range []StateType{StateIdle, StatePlaying, StatePaused} {
		c.machine.OnEnter(s, func(from StateType) {
			c.notifyStateChange(from, c.machine.Current())
		})
	}
}

// snapshot fixes voice, rate and pitch for the session.
func (c *Controller) snapshot() {
	var s Settings
	if c.settings != nil {
		s = c.settings.Settings()
	}
	if s.Voice.ID == "" {
		if v, ok := DefaultVoice(SortVoices(c.narrator.Voices(), c.config.VoicePreference)); ok {
			s.Voice = v
		}
	}
	if s.Rate <= 0 {
		s.Rate = c.config.DefaultRate
	}
	if s.Pitch <= 0 {
		s.Pitch = c.config.DefaultPitch
	}
	c.state.Voice = s.Voice
	c.state.Rate = s.Rate
	c.state.Pitch = s.Pitch
	c.state.Lang = s.Voice.Lang
	if c.state.Lang == "" {
		c.state.Lang = c.config.Lang
	}
}

// speakCurrent highlights the active item and submits its first part.
func (c *Controller) speakCurrent() {
	if c.state.IsStopped || c.state.IsPaused {
		return
	}
	item, ok := c.state.Active()
	if !ok {
		c.finish()
		return
	}

	c.narrator.Cancel()
	c.utterance = 0
	if !c.highlighter.Sync(c.state.Queue, item.Index) {
		log.Warn("no highlight target", "index", item.Index)
	}
	c.notifyUnitChange(item)

	part, ok := c.state.Chain.Begin(SplitEmphasis(item.Unit.Text, c.config.Terminator))
	if !ok {
		c.completeUnit()
		return
	}
	c.submit(part)
}

func (c *Controller) submit(p Part) {
	c.lastID++
	c.utterance = c.lastID

	rate := c.state.Rate
	if p.Emphasis {
		rate *= c.config.EmphasisRateFactor
	}
	u := Utterance{
		ID:    c.utterance,
		Text:  p.Text,
		Voice: c.state.Voice,
		Lang:  c.state.Lang,
		Rate:  rate,
		Pitch: c.state.Pitch,
	}
	if err := c.narrator.Speak(u); err != nil {
		c.utterance = 0
		c.failUnit(err)
	}
}

// handleEvent receives narration events. Events for anything but the
// utterance in flight are ignored.
func (c *Controller) handleEvent(ev NarrationEvent) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if ev.UtteranceID == 0 || ev.UtteranceID != c.utterance {
		return
	}
	switch ev.Kind {
	case EventBoundary:
		c.send(BoundaryMsg{Index: c.state.Index, CharIndex: ev.CharIndex})
	case EventError:
		c.utterance = 0
		c.failUnit(ev.Err)
	case EventEnd:
		c.utterance = 0
		c.partDone()
	}
}

func (c *Controller) partDone() {
	if c.state.IsStopped {
		return
	}
	if part, more := c.state.Chain.Advance(); more {
		if c.state.IsPaused {
			return
		}
		c.submit(part)
		return
	}
	c.completeUnit()
}

// completeUnit is the single path from one unit to the next.
func (c *Controller) completeUnit() {
	item, _ := c.state.Active()
	c.highlighter.Clear()
	c.state.Chain.Clear()
	c.state.Index++

	if c.state.IsStopped || c.state.IsPaused {
		return
	}
	if c.state.Index >= len(c.state.Queue) {
		c.finish()
		return
	}
	delay := c.config.NormalPause
	if item.Unit.Kind == KindCodeBlock {
		delay = c.config.CodePause
	}
	c.schedule(delay)
}

func (c *Controller) failUnit(err error) {
	index := c.state.Index
	log.Error("narration failed", "index", index, "err", err)

	e := NewError(ErrNarrationFailed, "controller", "speak").
		WithSeverity(SeverityWarning).
		WithContext("index", index).
		WithContext("cause", err)
	c.send(NarrationErrorMsg{Index: index, Err: e})
	if fn := c.onError; fn != nil {
		go fn(e)
	}

	c.highlighter.Clear()
	c.state.Chain.Clear()
	c.state.Index++
	if c.state.IsStopped || c.state.IsPaused {
		return
	}
	c.schedule(c.config.ErrorDelay)
}

func (c *Controller) schedule(d time.Duration) {
	c.stopTimer()
	session := c.session
	c.timer = c.clock.AfterFunc(d, func() {
		c.lock.Lock()
		defer c.lock.Unlock()
		if session != c.session {
			return
		}
		c.timer = nil
		c.speakCurrent()
	})
}

func (c *Controller) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// finish ends a session that ran out of units.
func (c *Controller) finish() {
	log.Debug("session complete", "units", len(c.state.Queue))
	c.teardown()
}

// teardown returns every piece of playback state to its initial value.
func (c *Controller) teardown() {
	c.stopTimer()
	c.highlighter.Clear()
	c.state.reset()
	c.utterance = 0
	c.session++
	c.machine.Reset()
}

func (c *Controller) notice(err error) {
	c.send(NoticeMsg{Err: err})
	if fn := c.onNotice; fn != nil {
		go fn(err)
	}
}

func (c *Controller) notifyStateChange(from, to StateType) {
	c.send(StateChangedMsg{From: from, To: to, Index: c.state.Index, Total: len(c.state.Queue)})
	if fn := c.onStateChange; fn != nil {
		go fn(from, to)
	}
}

func (c *Controller) notifyUnitChange(item QueueItem) {
	total := len(c.state.Queue)
	c.send(UnitChangedMsg{Index: item.Index, Total: total, Kind: item.Unit.Kind, Text: item.Unit.Text})
	if fn := c.onUnitChange; fn != nil {
		go fn(item.Index, total)
	}
}

func (c *Controller) send(msg tea.Msg) {
	select {
	case c.msgs <- msg:
	default:
		log.Debug("dropping controller message", "msg", msg)
	}
}
