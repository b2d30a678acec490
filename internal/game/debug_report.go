package game

import (
	"fmt"
	"log"
	"strings"

	"github.com/Garsondee/Particle-Header/internal/swarm"
	"github.com/atotto/clipboard"
)

// reportTicks is how much recent history the debug report includes.
const reportTicks = 300

func (g *Game) debugReport(lastTicks int) string {
	s := g.snap
	if s == nil {
		return ""
	}
	if lastTicks <= 0 {
		lastTicks = reportTicks
	}
	toTick := s.Tick
	fromTick := toTick - lastTicks + 1
	if fromTick < 0 {
		fromTick = 0
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- Particle Header debug report ---\n")
	fmt.Fprintf(&b, "seed=%d tick_range=[%d..%d] surface=%.0fx%.0f\n", g.sim.Seed(), fromTick, toTick, s.Width, s.Height)
	fmt.Fprintf(&b, "state=%s cycle=%d captured=%d/%d dots_visible=%t win=%t\n",
		s.State, s.Cycle, s.Counter.Count, s.Counter.Total, s.DotsVisible, s.WinMessage)
	fmt.Fprintf(&b, "pointer=(%.0f,%.0f) inside=%t hovering=%t\n\n", s.Pointer.X, s.Pointer.Y, s.Inside, s.Hovering)

	if g.inspector.has {
		if v, ok := s.Agent(g.inspector.selected); ok {
			fmt.Fprintf(&b, "== SELECTED (P%02d) ==\n", v.ID)
			for _, line := range inspectorLines(v, false) {
				b.WriteString("  " + line + "\n")
			}
			for _, line := range inspectorLines(v, true) {
				b.WriteString("  " + line + "\n")
			}
			b.WriteByte('\n')
		}
	}

	b.WriteString("== REPORT ==\n")
	b.WriteString(g.reporter.FormatLatest())
	b.WriteByte('\n')
	sum := g.reporter.Summary()
	fmt.Fprintf(&b, "celebrations=%d resets=%d peak=%d first_full_tick=%d\n\n",
		sum.Celebrations, sum.Resets, sum.PeakCaptured, sum.FirstFullTick)

	b.WriteString("== EVENTS ==\n")
	b.WriteString(g.sim.Log().FormatRange(fromTick, toTick))
	return b.String()
}

// copyDebugReport puts the report on the system clipboard.
func (g *Game) copyDebugReport() {
	report := g.debugReport(reportTicks)
	if report == "" {
		return
	}
	if err := clipboard.WriteAll(report); err != nil {
		log.Printf("[Clipboard] Warning: %v", err)
		g.setStatus("clipboard unavailable")
		return
	}
	g.setStatus(fmt.Sprintf("debug report copied (%d lines)", strings.Count(report, "\n")))
}

// eventSummary is the one-line state summary used in the window title.
func eventSummary(s *swarm.Snapshot) string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("%s %d/%d", s.State, s.Counter.Count, s.Counter.Total)
}
