package tts

// StateType represents the phase of a playback session.
type StateType int

const (
	// StateIdle indicates no session is running.
	StateIdle StateType = iota
	// StatePlaying indicates units are being narrated.
	StatePlaying
	// StatePaused indicates narration is paused on the current unit.
	StatePaused
)

// String returns the string representation of the state.
func (s StateType) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// StateMachine guards transitions between playback phases.
type StateMachine struct {
	current     StateType
	transitions map[StateType][]StateType
	onEnter     map[StateType]func(from StateType)
}

// NewStateMachine creates a state machine in StateIdle.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateIdle,
		transitions: map[StateType][]StateType{
			StateIdle:    {StatePlaying},
			StatePlaying: {StatePaused, StateIdle},
			StatePaused:  {StatePlaying, StateIdle},
		},
		onEnter: make(map[StateType]func(StateType)),
	}
}

// CanTransition reports whether moving to the given state is allowed.
func (sm *StateMachine) CanTransition(to StateType) bool {
	for _, s := range sm.transitions[sm.current] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition attempts to move to the given state.
func (sm *StateMachine) Transition(to StateType) bool {
	if !sm.CanTransition(to) {
		return false
	}
	from := sm.current
	sm.current = to
	if fn := sm.onEnter[to]; fn != nil {
		fn(from)
	}
	return true
}

// Current returns the current state.
func (sm *StateMachine) Current() StateType {
	return sm.current
}

// OnEnter registers a callback for entering a state.
func (sm *StateMachine) OnEnter(state StateType, fn func(from StateType)) {
	sm.onEnter[state] = fn
}

// Reset forces the machine back to StateIdle, firing the idle callback when
// the state changes.
func (sm *StateMachine) Reset() {
	if sm.current == StateIdle {
		return
	}
	from := sm.current
	sm.current = StateIdle
	if fn := sm.onEnter[StateIdle]; fn != nil {
		fn(from)
	}
}

// PlaybackState is everything a session mutates. It is owned by the
// Controller.
type PlaybackState struct {
	IsPaused  bool
	IsStopped bool
	Index     int
	Queue     []QueueItem

	// Session snapshot of the narration controls.
	Voice Voice
	Lang  string
	Rate  float64
	Pitch float64

	Chain EmphasisChain
}

// Active returns the item being narrated.
func (s *PlaybackState) Active() (QueueItem, bool) {
	if s.Index < 0 || s.Index >= len(s.Queue) {
		return QueueItem{}, false
	}
	return s.Queue[s.Index], true
}

// reset returns the state to its initial configuration.
func (s *PlaybackState) reset() {
	*s = PlaybackState{}
}
