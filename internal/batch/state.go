package batch

// State tracks one chapter through its retry lifecycle:
// Pending -> Attempting -> {Succeeded | Pending | Failed}.
// Succeeded and Failed are terminal.
type State int

const (
	StatePending State = iota
	StateAttempting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAttempting:
		return "attempting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// validTransition enforces the chapter state machine edges.
func validTransition(from, to State) bool {
	switch from {
	case StatePending:
		return to == StateAttempting
	case StateAttempting:
		return to == StateSucceeded || to == StatePending || to == StateFailed
	default:
		return false
	}
}
