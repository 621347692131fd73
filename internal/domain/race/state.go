package race

// State is the race lifecycle state.
type State int

// Lifecycle states. Finished and Cancelled return to Idle after a cooldown.
const (
	StateIdle State = iota
	StateMenuOpen
	StateCountdown
	StateRecording // first run, no ghost to race
	StateRacing    // a ghost is replayed while the attempt is recorded
	StateFinished
	StateCancelled
)

// String returns a snake_case label.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMenuOpen:
		return "menu_open"
	case StateCountdown:
		return "countdown"
	case StateRecording:
		return "recording"
	case StateRacing:
		return "racing"
	case StateFinished:
		return "finished"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Active reports whether a race is underway, including its countdown.
func (s State) Active() bool {
	return s == StateCountdown || s == StateRecording || s == StateRacing
}

// Running reports whether the race clock is running.
func (s State) Running() bool {
	return s == StateRecording || s == StateRacing
}

// Selectable reports whether a new race may be started.
func (s State) Selectable() bool {
	return s == StateIdle || s == StateMenuOpen
}
