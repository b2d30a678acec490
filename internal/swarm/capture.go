package swarm

import "time"

// CaptureGame is the capture set plus the Active -> Celebrating -> Resetting
// -> Active lifecycle. It holds state only; Simulation drives the timeline.
type CaptureGame struct {
	state    GameState
	total    int
	captured map[int]struct{}

	lastCapture time.Time // zero when nothing captured this cycle
	showWin     bool
	dotsVisible bool

	cycle       int       // incremented on every trigger
	triggeredAt time.Time // start of the current or last celebration
}

func newCaptureGame(total int) *CaptureGame {
	return &CaptureGame{
		state:       StateActive,
		total:       total,
		captured:    make(map[int]struct{}, total),
		dotsVisible: true,
	}
}

// State returns the lifecycle state.
func (cg *CaptureGame) State() GameState { return cg.state }

// Count returns the size of the capture set.
func (cg *CaptureGame) Count() int { return len(cg.captured) }

// Total returns the number of agents that must be captured to win.
func (cg *CaptureGame) Total() int { return cg.total }

// Cycle returns how many celebrations have been triggered.
func (cg *CaptureGame) Cycle() int { return cg.cycle }

// Has reports whether id is in the capture set.
func (cg *CaptureGame) Has(id int) bool {
	_, ok := cg.captured[id]
	return ok
}

// record adds newly captured ids. It reports whether the set just became full.
func (cg *CaptureGame) record(ids []int, now time.Time) bool {
	if len(ids) == 0 || cg.state != StateActive {
		return false
	}
	before := len(cg.captured)
	for _, id := range ids {
		cg.captured[id] = struct{}{}
	}
	cg.lastCapture = now
	return before < cg.total && len(cg.captured) >= cg.total
}

// anchorID returns the lowest captured id, or -1 when the set is empty.
func (cg *CaptureGame) anchorID() int {
	best := -1
	for id := range cg.captured {
		if best < 0 || id < best {
			best = id
		}
	}
	return best
}

// begin enters Celebrating. Order: freeze capture, show the win message,
// start the dot fade-out. The counter hides as a consequence of the state.
func (cg *CaptureGame) begin(now time.Time) bool {
	if cg.state.Locked() {
		return false
	}
	cg.state = StateCelebrating
	cg.showWin = true
	cg.dotsVisible = false
	cg.cycle++
	cg.triggeredAt = now
	return true
}

// reset clears the capture set and enters Resetting.
func (cg *CaptureGame) reset() {
	for id := range cg.captured {
		delete(cg.captured, id)
	}
	cg.lastCapture = time.Time{}
	cg.state = StateResetting
}

// reveal brings the dots back, hides the win message and re-opens capture.
func (cg *CaptureGame) reveal() {
	cg.dotsVisible = true
	cg.showWin = false
	cg.state = StateActive
}

// flashing reports whether a capture happened within d before now.
func (cg *CaptureGame) flashing(now time.Time, d time.Duration) bool {
	if cg.state != StateActive || cg.lastCapture.IsZero() {
		return false
	}
	return now.Sub(cg.lastCapture) < d
}
