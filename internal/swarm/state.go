package swarm

// GameState is the capture game lifecycle state.
type GameState int

const (
	StateActive      GameState = iota // capturing allowed
	StateCelebrating                  // win message up, bursts firing, captured dots frozen
	StateResetting                    // capture set cleared, dots hidden until reveal
)

func (gs GameState) String() string {
	switch gs {
	case StateActive:
		return "active"
	case StateCelebrating:
		return "celebrating"
	case StateResetting:
		return "resetting"
	default:
		return "unknown"
	}
}

// Locked reports whether the state belongs to the celebration lock-out, in
// which pointer input, capture and layout changes are ignored.
func (gs GameState) Locked() bool {
	return gs == StateCelebrating || gs == StateResetting
}

// Variant selects how an agent is drawn.
type Variant int

const (
	VariantFree            Variant = iota
	VariantCaptured                // homing on the pointer
	VariantCapturedWaiting         // captured, pointer over protected content
)

func (v Variant) String() string {
	switch v {
	case VariantFree:
		return "free"
	case VariantCaptured:
		return "captured"
	case VariantCapturedWaiting:
		return "waiting"
	default:
		return "unknown"
	}
}
