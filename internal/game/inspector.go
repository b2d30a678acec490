package game

import (
	"fmt"
	"image/color"

	"github.com/Garsondee/Particle-Header/internal/swarm"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Inspector panel, rendered into an offscreen buffer at 1x then blitted at
// inspScale.
const (
	inspScale = 2
	inspBufW  = 200
	inspBufH  = 150
	inspPad   = 4
	inspLineH = 13

	pickRadius = 14.0 // screen pixels
)

// Inspector holds the selected agent and view toggle state.
type Inspector struct {
	selected int
	has      bool
	rawView  bool // false = curated, true = raw dump
}

// pick selects the drawn agent nearest to (x, y) within pickRadius, or
// clears the selection. It reports whether an agent was hit.
func (in *Inspector) pick(s *swarm.Snapshot, x, y float64) bool {
	id, ok := agentAt(s, x, y)
	in.selected, in.has = id, ok
	return ok
}

func agentAt(s *swarm.Snapshot, x, y float64) (int, bool) {
	at := swarm.Vec2{X: x, Y: y}
	best := pickRadius * pickRadius
	hit := -1
	for _, a := range s.Agents {
		if !a.Drawn() {
			continue
		}
		if d2 := a.Pos.Sub(at).Len2(); d2 < best {
			best = d2
			hit = a.ID
		}
	}
	return hit, hit >= 0
}

// inspectorLines is the panel text for v.
func inspectorLines(v swarm.AgentView, raw bool) []string {
	if raw {
		return []string{
			fmt.Sprintf("pos    %.1f, %.1f", v.Pos.X, v.Pos.Y),
			fmt.Sprintf("vel    %.2f, %.2f", v.Vel.X, v.Vel.Y),
			fmt.Sprintf("target %.1f, %.1f", v.Target.X, v.Target.Y),
			fmt.Sprintf("r=%.2f vmax=%.2f fmax=%.3f", v.Radius, v.MaxSpeed, v.MaxForce),
			fmt.Sprintf("opacity=%.0f alpha=%.0f", v.Opacity, v.Alpha),
			fmt.Sprintf("diameter=%.2f", v.Diameter),
		}
	}
	state := "free"
	if v.Captured {
		state = "captured"
	}
	return []string{
		fmt.Sprintf("cell   col %d row %d", v.Col, v.Row),
		fmt.Sprintf("state  %s (%s)", state, v.Variant),
		fmt.Sprintf("speed  %.2f / %.2f", v.Vel.Len(), v.MaxSpeed),
		fmt.Sprintf("home   %.0f px away", v.Pos.Dist(v.Target)),
		fmt.Sprintf("fade   %.0f%%", v.Opacity/2.55),
	}
}

// drawInspector renders the inspector panel bottom-right.
func (g *Game) drawInspector(screen *ebiten.Image) {
	if !g.inspector.has || g.snap == nil {
		return
	}
	v, ok := g.snap.Agent(g.inspector.selected)
	if !ok {
		return
	}
	if g.inspBuf == nil {
		g.inspBuf = ebiten.NewImage(inspBufW, inspBufH)
	}
	buf := g.inspBuf
	buf.Clear()

	border := color.RGBA{R: 90, G: 80, B: 150, A: 255}
	vector.FillRect(buf, 0, 0, inspBufW, inspBufH, color.RGBA{R: 14, G: 12, B: 26, A: 230}, false)
	vector.StrokeRect(buf, 0, 0, inspBufW, inspBufH, 1.0, border, false)

	lx, ly := inspPad, inspPad
	viewName := "CURATED"
	if g.inspector.rawView {
		viewName = "RAW"
	}
	ebitenutil.DebugPrintAt(buf, fmt.Sprintf("[ P%02d ]  %s [I]", v.ID, viewName), lx, ly)
	ly += inspLineH + 4
	vector.StrokeLine(buf, float32(lx), float32(ly), inspBufW-inspPad, float32(ly), 1.0, border, false)
	ly += 4

	for _, line := range inspectorLines(v, g.inspector.rawView) {
		ebitenutil.DebugPrintAt(buf, line, lx, ly)
		ly += inspLineH
	}

	px := g.width - inspBufW*inspScale - 12
	if g.settings.Settings().ShowLogPanel {
		px -= logPanelWidth
	}
	py := g.height - inspBufH*inspScale - 8
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(inspScale, inspScale)
	opts.GeoM.Translate(float64(px), float64(py))
	screen.DrawImage(buf, opts)
}
