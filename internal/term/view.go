// Package term renders the simulation in a terminal with tcell and feeds it
// mouse input. Each cell stands for a CellW x CellH block of surface pixels.
package term

import (
	"fmt"
	"math"

	"github.com/Garsondee/Particle-Header/internal/confetti"
	"github.com/Garsondee/Particle-Header/internal/swarm"
	"github.com/gdamore/tcell/v2"
)

// Surface pixels per terminal cell. Cells are about twice as tall as wide.
const (
	CellW = 8.0
	CellH = 16.0
)

var (
	background  = tcell.NewRGBColor(11, 10, 20)
	freeRGB     = [3]int32{0x9b, 0x87, 0xf5}
	capturedRGB = [3]int32{0xD9, 0x46, 0xEF}
	baseStyle   = tcell.StyleDefault.Background(background)
)

// Runes per variant.
const (
	runeFree     = '•'
	runeCaptured = '●'
	runeWaiting  = '○'
	runeConfetti = '*'
	runeLink     = '·'
)

// View draws snapshots onto a tcell screen.
type View struct {
	screen tcell.Screen
}

// NewView wraps an initialised screen.
func NewView(screen tcell.Screen) *View {
	return &View{screen: screen}
}

// Viewport is the simulation viewport, in surface pixels, for a terminal of
// cols x rows cells.
func Viewport(cols, rows int) (float64, float64) {
	return float64(cols) * CellW, float64(rows) * CellH
}

// CellCentre maps a cell to the surface pixel at its centre.
func CellCentre(x, y int) swarm.Vec2 {
	return swarm.Vec2{X: (float64(x) + 0.5) * CellW, Y: (float64(y) + 0.5) * CellH}
}

// cellOf maps a surface pixel to its cell.
func cellOf(p swarm.Vec2) (int, int) {
	return int(math.Floor(p.X / CellW)), int(math.Floor(p.Y / CellH))
}

// shade scales an RGB triple by alpha in [0,255] over the background.
func shade(rgb [3]int32, alpha float64) tcell.Color {
	f := math.Max(0, math.Min(1, alpha/255))
	mix := func(c, bg int32) int32 { return bg + int32(float64(c-bg)*f) }
	return tcell.NewRGBColor(mix(rgb[0], 11), mix(rgb[1], 10), mix(rgb[2], 20))
}

// Draw renders s and the confetti pieces, then shows the screen.
func (v *View) Draw(s *swarm.Snapshot, pieces []confetti.Piece) {
	v.screen.SetStyle(baseStyle)
	v.screen.Clear()
	if s == nil {
		v.screen.Show()
		return
	}
	v.drawRegion(s)
	v.drawLinks(s)
	v.drawAgents(s)
	v.drawConfetti(pieces)
	v.drawCounter(s)
	if s.WinMessage {
		_, rows := v.screen.Size()
		v.drawCentred(swarm.WinMessage, rows/2, baseStyle.Foreground(tcell.ColorWhite).Bold(true))
	}
	v.screen.Show()
}

func (v *View) put(x, y int, r rune, style tcell.Style) {
	cols, rows := v.screen.Size()
	if x < 0 || y < 0 || x >= cols || y >= rows {
		return
	}
	v.screen.SetContent(x, y, r, nil, style)
}

func (v *View) text(x, y int, str string, style tcell.Style) {
	for i, r := range []rune(str) {
		v.put(x+i, y, r, style)
	}
}

func (v *View) drawCentred(str string, y int, style tcell.Style) {
	cols, _ := v.screen.Size()
	v.text((cols-len([]rune(str)))/2, y, str, style)
}

func (v *View) drawRegion(s *swarm.Snapshot) {
	r := s.Region
	if r.Empty() {
		return
	}
	x0, y0 := cellOf(swarm.Vec2{X: r.X, Y: r.Y})
	x1, y1 := cellOf(swarm.Vec2{X: r.X + r.W, Y: r.Y + r.H})
	border := baseStyle.Foreground(tcell.NewRGBColor(60, 52, 100))
	for x := x0; x <= x1; x++ {
		v.put(x, y0, '─', border)
		v.put(x, y1, '─', border)
	}
	for y := y0; y <= y1; y++ {
		v.put(x0, y, '│', border)
		v.put(x1, y, '│', border)
	}
	v.put(x0, y0, '┌', border)
	v.put(x1, y0, '┐', border)
	v.put(x0, y1, '└', border)
	v.put(x1, y1, '┘', border)
	label := "Catch every dot"
	v.text((x0+x1-len(label))/2+1, (y0+y1)/2, label, baseStyle.Foreground(tcell.ColorWhite))
}

// drawLinks marks the midpoint of every proximity link.
func (v *View) drawLinks(s *swarm.Snapshot) {
	for _, l := range s.Links {
		a, b := s.Agents[l.A], s.Agents[l.B]
		x, y := cellOf(a.Pos.Lerp(b.Pos, 0.5))
		v.put(x, y, runeLink, baseStyle.Foreground(shade(freeRGB, l.Alpha*6)))
	}
}

func (v *View) drawAgents(s *swarm.Snapshot) {
	for _, a := range s.Agents {
		if !a.Drawn() {
			continue
		}
		x, y := cellOf(a.Pos)
		switch a.Variant {
		case swarm.VariantCaptured:
			v.put(x, y, runeCaptured, baseStyle.Foreground(shade(capturedRGB, a.Alpha)))
		case swarm.VariantCapturedWaiting:
			v.put(x, y, runeWaiting, baseStyle.Foreground(shade(capturedRGB, a.Alpha*3)))
		default:
			v.put(x, y, runeFree, baseStyle.Foreground(shade(freeRGB, a.Alpha*2)))
		}
	}
}

func (v *View) drawConfetti(pieces []confetti.Piece) {
	for _, p := range pieces {
		x, y := cellOf(p.Pos)
		c := tcell.NewRGBColor(int32(p.Color.R), int32(p.Color.G), int32(p.Color.B))
		v.put(x, y, runeConfetti, baseStyle.Foreground(c))
	}
}

func (v *View) drawCounter(s *swarm.Snapshot) {
	c := s.Counter
	if !c.Visible {
		return
	}
	x, y := cellOf(c.Anchor)
	style := baseStyle.Foreground(tcell.NewRGBColor(200, 190, 255))
	if c.Flash {
		style = style.Foreground(tcell.ColorWhite).Bold(true)
	}
	label := fmt.Sprintf("%d/%d", c.Count, c.Total)
	v.text(x-len(label)/2, y-2, label, style)
}
