package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/Garsondee/Particle-Header/internal/swarm"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	s := g.snap
	if s == nil {
		return
	}

	g.drawHeadline(screen, s)
	g.drawLinks(screen, s)
	g.drawAgents(screen, s)
	g.drawConfetti(screen)
	g.drawCounter(screen, s)
	if s.WinMessage {
		g.drawWinMessage(screen, s)
	}

	if g.settings.Settings().ShowLogPanel {
		g.thoughtLog.Draw(screen, g.width-logPanelWidth, g.height)
	}
	if g.showHUD {
		g.drawHUD(screen, s)
	}
	if g.status != "" && g.sim.Now().Before(g.statusUntil) {
		ebitenutil.DebugPrintAt(screen, g.status, 8, 8)
	}
	g.drawInspector(screen)
}

// withAlpha returns c at alpha a in [0,255].
func withAlpha(c color.RGBA, a float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Max(0, math.Min(255, a)))}
}

func (g *Game) drawHeadline(screen *ebiten.Image, s *swarm.Snapshot) {
	r := s.Region
	if r.Empty() {
		return
	}
	vector.FillRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), color.RGBA{R: 18, G: 16, B: 32, A: 255}, false)
	vector.StrokeRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), 1, color.RGBA{R: 60, G: 52, B: 100, A: 255}, false)
	g.drawText(screen, headline, r.X+r.W/2, r.Y+r.H/2-13, 2, color.White)
}

func (g *Game) drawLinks(screen *ebiten.Image, s *swarm.Snapshot) {
	for _, l := range s.Links {
		a, b := s.Agents[l.A], s.Agents[l.B]
		vector.StrokeLine(screen, float32(a.Pos.X), float32(a.Pos.Y), float32(b.Pos.X), float32(b.Pos.Y), 1, withAlpha(linkColor, l.Alpha), true)
	}
}

func (g *Game) drawAgents(screen *ebiten.Image, s *swarm.Snapshot) {
	for _, a := range s.Agents {
		if !a.Drawn() {
			continue
		}
		c := freeDotColor
		if a.Variant != swarm.VariantFree {
			c = capturedColor
		}
		vector.FillCircle(screen, float32(a.Pos.X), float32(a.Pos.Y), float32(a.Diameter/2), withAlpha(c, a.Alpha), true)
		if g.inspector.has && g.inspector.selected == a.ID {
			vector.StrokeCircle(screen, float32(a.Pos.X), float32(a.Pos.Y), float32(a.Diameter/2+4), 1, color.White, true)
		}
	}
}

// drawConfetti draws each piece as a thick line along its long axis, which
// gives a rotated rectangle.
func (g *Game) drawConfetti(screen *ebiten.Image) {
	for _, p := range g.confetti.Pieces() {
		dx := math.Cos(p.Angle) * p.W / 2
		dy := math.Sin(p.Angle) * p.W / 2
		vector.StrokeLine(screen,
			float32(p.Pos.X-dx), float32(p.Pos.Y-dy), float32(p.Pos.X+dx), float32(p.Pos.Y+dy),
			float32(p.H), withAlpha(p.Color, 255*p.Alpha()), false)
	}
}

func (g *Game) drawCounter(screen *ebiten.Image, s *swarm.Snapshot) {
	c := s.Counter
	if !c.Visible {
		return
	}
	scale := 1.0
	clr := color.Color(color.RGBA{R: 200, G: 190, B: 255, A: 255})
	if c.Flash {
		scale = 1.5
		clr = color.White
	}
	g.drawText(screen, fmt.Sprintf("%d/%d", c.Count, c.Total), c.Anchor.X, c.Anchor.Y-24, scale, clr)
}

func (g *Game) drawWinMessage(screen *ebiten.Image, s *swarm.Snapshot) {
	const scale = 2
	w, h := text.Measure(swarm.WinMessage, g.face, 0)
	cx, cy := s.Width/2, s.Height/2
	bw, bh := w*scale+32, h*scale+20
	vector.FillRect(screen, float32(cx-bw/2), float32(cy-bh/2), float32(bw), float32(bh), color.RGBA{R: 20, G: 12, B: 36, A: 220}, false)
	vector.StrokeRect(screen, float32(cx-bw/2), float32(cy-bh/2), float32(bw), float32(bh), 1.5, capturedColor, false)
	g.drawText(screen, swarm.WinMessage, cx, cy-h*scale/2, scale, color.White)
}

// drawText draws str horizontally centred on x with its top at y.
func (g *Game) drawText(screen *ebiten.Image, str string, x, y, scale float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.PrimaryAlign = text.AlignCenter
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, str, g.face, op)
}

// drawHUD renders the key legend into hudBuf at 1x and blits it scaled up.
func (g *Game) drawHUD(screen *ebiten.Image, s *swarm.Snapshot) {
	mute := "on"
	if g.chime.Muted() {
		mute = "off"
	}
	lines := []string{
		fmt.Sprintf("%s  cycle %d  %d/%d", s.State, s.Cycle, s.Counter.Count, s.Counter.Total),
		"[T] celebrate  [C] copy report",
		fmt.Sprintf("[M] sound: %s  [L] log", mute),
		"[R] save replay  [H] hide",
	}

	const lineH = 12
	const charW = 6
	const padX = 5
	const padY = 4

	maxLen := 0
	for _, l := range lines {
		if len(l) > maxLen {
			maxLen = len(l)
		}
	}
	boxW := float32(maxLen*charW + padX*2)
	boxH := float32(len(lines)*lineH + padY*2)

	bufW, bufH := g.width/hudScale, g.height/hudScale
	if bufW < 1 || bufH < 1 {
		return
	}
	if g.hudBuf == nil || g.hudBuf.Bounds().Dx() != bufW || g.hudBuf.Bounds().Dy() != bufH {
		g.hudBuf = ebiten.NewImage(bufW, bufH)
	}
	bx := float32(4)
	by := float32(bufH) - boxH - 4

	g.hudBuf.Clear()
	vector.FillRect(g.hudBuf, bx, by, boxW, boxH, color.RGBA{R: 12, G: 10, B: 24, A: 210}, false)
	vector.StrokeRect(g.hudBuf, bx, by, boxW, boxH, 1.0, color.RGBA{R: 90, G: 80, B: 150, A: 180}, false)
	for i, line := range lines {
		ebitenutil.DebugPrintAt(g.hudBuf, line, int(bx)+padX, int(by)+padY+i*lineH)
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(hudScale), float64(hudScale))
	screen.DrawImage(g.hudBuf, opts)
}
