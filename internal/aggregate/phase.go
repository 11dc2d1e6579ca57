package aggregate

// Phase is the orchestrator's position in a run:
// Idle -> Searching -> Counting -> Done. Searching moves to Failed on an
// upstream error or zero matches; Counting moves to Failed only when the
// run's context is canceled, since failed batches are skipped. Rejected
// runs never leave the current phase.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseSearching
	PhaseCounting
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSearching:
		return "searching"
	case PhaseCounting:
		return "counting"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// MarshalText renders the phase by name in JSON and logs.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
