package orchestrator

// Position of a run in the orchestration state machine.
type State int

const (
	Start          State = iota // Nothing has run yet.
	EmulationReady              // Cross-architecture emulation is installed.
	BuilderReady                // The builder resource is selected and healthy.
	Published                   // The multi-platform image was built and pushed.
	LocalLoaded                 // The host-platform image was built and loaded locally.
	Failed                      // A fatal error ended the run.
)

// Returns the state name as used in logs.
func (s State) String() string {
	switch s {
	case Start:
		return "START"
	case EmulationReady:
		return "EMULATION_READY"
	case BuilderReady:
		return "BUILDER_READY"
	case Published:
		return "PUBLISHED"
	case LocalLoaded:
		return "LOCAL_LOADED"
	case Failed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Whether the run ends in this state.
func (s State) Terminal() bool {
	return s == Published || s == LocalLoaded || s == Failed
}

// Selects which path a run takes. Fixed for the duration of a run.
type Mode int

const (
	ModePublish Mode = iota // Multi-platform build pushed to the registry.
	ModeLocal               // Host-platform build loaded into the local image store.
)

// Returns the mode name as used in logs.
func (m Mode) String() string {
	if m == ModeLocal {
		return "local"
	}
	return "publish"
}

// Receives state transitions as they happen.
//
// Enter is called once for every state a run passes through, starting with
// [Start] and ending with a terminal state.
type Observer interface {
	Enter(state State)
}

// Adapts a plain function to [Observer].
type ObserverFunc func(state State)

// Calls f(state).
func (f ObserverFunc) Enter(state State) {
	f(state)
}
