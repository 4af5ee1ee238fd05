package dial

// Phase discriminates the two variants of a Snapshot.
type Phase int32

const (
	// PhaseLoading indicates no combined value has been produced yet.
	// Snapshot carries no preference data in this phase.
	PhaseLoading Phase = iota

	// PhaseLoaded indicates every input has emitted at least once and the
	// Snapshot carries the full combined display state.
	PhaseLoaded
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}
