package swarm

import (
	"fmt"
	"strings"
	"time"
)

// reportWindowTicks is the default sliding window for recent-behaviour reports (~10s at 60TPS).
const reportWindowTicks = 600

// --- Snapshot types ---

// CaptureReport captures the game's progress at one tick.
type CaptureReport struct {
	Tick     int
	Time     time.Time
	State    GameState
	Cycle    int
	Captured int
	Total    int

	Links        int
	AvgOpacity   float64
	FreeAvgSpeed float64 // mean speed of free agents
	Inside       bool
	Hovering     bool
}

// --- Reporter ---

// CaptureReporter collects periodic reports and summarizes capture progress
// over a run and over a sliding tick window.
type CaptureReporter struct {
	history     []CaptureReport
	windowTicks int
	maxKeep     int

	start           time.Time
	firstFullTick   int // -1 until the first celebration begins
	firstFullAt     time.Time
	celebrations    int
	lastCycle       int
	peakCaptured    int
	resets          int
	lastState       GameState
	samplesInActive int
	collected       int
}

// NewCaptureReporter creates a reporter with the given window size.
func NewCaptureReporter(windowTicks int) *CaptureReporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &CaptureReporter{
		windowTicks:   windowTicks,
		maxKeep:       windowTicks * 2,
		firstFullTick: -1,
	}
}

// Collect records a report from a snapshot. Subscribe it to a Simulation to
// sample every tick.
func (r *CaptureReporter) Collect(s *Snapshot) {
	rpt := CaptureReport{
		Tick:     s.Tick,
		Time:     s.Time,
		State:    s.State,
		Cycle:    s.Cycle,
		Captured: s.Counter.Count,
		Total:    s.Counter.Total,
		Links:    len(s.Links),
		Inside:   s.Inside,
		Hovering: s.Hovering,
	}
	free := 0
	for _, a := range s.Agents {
		rpt.AvgOpacity += a.Opacity
		if !a.Captured {
			rpt.FreeAvgSpeed += a.Vel.Len()
			free++
		}
	}
	if n := len(s.Agents); n > 0 {
		rpt.AvgOpacity /= float64(n)
	}
	if free > 0 {
		rpt.FreeAvgSpeed /= float64(free)
	}

	if r.collected == 0 {
		r.start = s.Time
		r.lastState = s.State
	}
	if s.Cycle > r.lastCycle {
		r.celebrations += s.Cycle - r.lastCycle
		r.lastCycle = s.Cycle
		if r.firstFullTick < 0 {
			r.firstFullTick = s.Tick
			r.firstFullAt = s.Time
		}
	}
	if r.lastState != StateResetting && s.State == StateResetting {
		r.resets++
	}
	r.lastState = s.State
	r.collected++
	if s.State == StateActive {
		r.samplesInActive++
	}
	if rpt.Captured > r.peakCaptured {
		r.peakCaptured = rpt.Captured
	}

	r.history = append(r.history, rpt)
	if len(r.history) > r.maxKeep {
		r.history = r.history[len(r.history)-r.maxKeep:]
	}
}

// Latest returns the most recent report, or nil if none collected yet.
func (r *CaptureReporter) Latest() *CaptureReport {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// History returns the retained reports.
func (r *CaptureReporter) History() []CaptureReport {
	return r.history
}

// RunSummary is the whole-run outcome.
type RunSummary struct {
	Samples        int // total collected, including pruned history
	Celebrations   int
	Resets         int
	PeakCaptured   int
	FirstFullTick  int           // -1 if no celebration ran
	TimeToFirstWin time.Duration // zero if no celebration ran
	ActiveShare    float64       // fraction of samples spent Active
}

// Summary returns the whole-run outcome.
func (r *CaptureReporter) Summary() RunSummary {
	rs := RunSummary{
		Samples:       r.collected,
		Celebrations:  r.celebrations,
		Resets:        r.resets,
		PeakCaptured:  r.peakCaptured,
		FirstFullTick: r.firstFullTick,
	}
	if r.firstFullTick >= 0 {
		rs.TimeToFirstWin = r.firstFullAt.Sub(r.start)
	}
	if r.collected > 0 {
		rs.ActiveShare = float64(r.samplesInActive) / float64(r.collected)
	}
	return rs
}

// WindowReport is an aggregated summary over a time window.
type WindowReport struct {
	FromTick, ToTick int
	SampleCount      int

	CapturedGain int // captures gained inside the window, ignoring resets
	AvgLinks     float64
	AvgOpacity   float64
	AvgFreeSpeed float64
	InsideShare  float64
	StateShare   map[GameState]float64 // 0-100
}

// WindowSummary aggregates the reports inside the recent window.
func (r *CaptureReporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}
	latestTick := r.history[len(r.history)-1].Tick
	cutoff := latestTick - r.windowTicks
	var window []CaptureReport
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].Tick < cutoff {
			break
		}
		window = append(window, r.history[i])
	}
	if len(window) == 0 {
		return nil
	}

	n := float64(len(window))
	wr := &WindowReport{
		FromTick:    window[len(window)-1].Tick,
		ToTick:      window[0].Tick,
		SampleCount: len(window),
		StateShare:  make(map[GameState]float64),
	}
	// window is newest first.
	for i, rpt := range window {
		wr.AvgLinks += float64(rpt.Links)
		wr.AvgOpacity += rpt.AvgOpacity
		wr.AvgFreeSpeed += rpt.FreeAvgSpeed
		if rpt.Inside {
			wr.InsideShare++
		}
		wr.StateShare[rpt.State]++
		if i+1 < len(window) {
			if d := rpt.Captured - window[i+1].Captured; d > 0 {
				wr.CapturedGain += d
			}
		}
	}
	wr.AvgLinks /= n
	wr.AvgOpacity /= n
	wr.AvgFreeSpeed /= n
	wr.InsideShare /= n
	for k, v := range wr.StateShare {
		wr.StateShare[k] = v / n * 100
	}
	return wr
}

// Format returns a human-readable multi-line string of the window summary.
func (wr *WindowReport) Format() string {
	if wr == nil {
		return "No data collected yet.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Capture Report (T=%d..%d, %d samples) ===\n",
		wr.FromTick, wr.ToTick, wr.SampleCount)
	sb.WriteString("\n--- State Distribution ---\n")
	for _, st := range []GameState{StateActive, StateCelebrating, StateResetting} {
		if pct, ok := wr.StateShare[st]; ok && pct > 0.5 {
			fmt.Fprintf(&sb, "  %-12s %5.1f%%\n", st, pct)
		}
	}
	sb.WriteString("\n--- Field ---\n")
	fmt.Fprintf(&sb, "  captures gained=%d  avg links=%.1f  avg opacity=%.1f  free speed=%.2f\n",
		wr.CapturedGain, wr.AvgLinks, wr.AvgOpacity, wr.AvgFreeSpeed)
	fmt.Fprintf(&sb, "  pointer inside=%.0f%%\n", wr.InsideShare*100)
	return sb.String()
}

// FormatLatest returns a concise line for the most recent report.
func (r *CaptureReporter) FormatLatest() string {
	rpt := r.Latest()
	if rpt == nil {
		return "No data.\n"
	}
	return fmt.Sprintf("T=%d %s cycle=%d captured=%d/%d links=%d opacity=%.0f\n",
		rpt.Tick, rpt.State, rpt.Cycle, rpt.Captured, rpt.Total, rpt.Links, rpt.AvgOpacity)
}
