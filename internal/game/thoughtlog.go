package game

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/Garsondee/Particle-Header/internal/swarm"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	logPanelWidth = 360
	logMaxEntries = 60
	logLineHeight = 11
)

// ThoughtEntry is a single line in the on-screen log.
type ThoughtEntry struct {
	Tick     int
	Label    string // agent label e.g. "P07", or "--"
	Category string
	Message  string
}

// ThoughtLog is a ring buffer of recent simulation events rendered on-screen.
// Timer callbacks add to it from other goroutines.
type ThoughtLog struct {
	mu      sync.Mutex
	entries []ThoughtEntry
	head    int
	count   int
}

// NewThoughtLog creates a thought log with a fixed capacity.
func NewThoughtLog() *ThoughtLog {
	return &ThoughtLog{
		entries: make([]ThoughtEntry, logMaxEntries),
	}
}

// Add appends an entry to the log.
func (tl *ThoughtLog) Add(tick int, label, category, msg string) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.entries[tl.head] = ThoughtEntry{
		Tick:     tick,
		Label:    label,
		Category: category,
		Message:  msg,
	}
	tl.head = (tl.head + 1) % logMaxEntries
	if tl.count < logMaxEntries {
		tl.count++
	}
}

// AddEntry adds a SimLog entry; it is the sim log's sink.
func (tl *ThoughtLog) AddEntry(e swarm.SimLogEntry) {
	msg := e.Key
	if e.Value != "" {
		msg += " " + e.Value
	}
	tl.Add(e.Tick, e.Agent, e.Category, msg)
}

// Recent returns entries in chronological order (oldest first).
func (tl *ThoughtLog) Recent() []ThoughtEntry {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	result := make([]ThoughtEntry, tl.count)
	for i := 0; i < tl.count; i++ {
		idx := (tl.head - tl.count + i + logMaxEntries) % logMaxEntries
		result[i] = tl.entries[idx]
	}
	return result
}

// categoryColor is the marker colour for a log category.
func categoryColor(category string) color.RGBA {
	switch category {
	case "capture":
		return color.RGBA{R: 0xD9, G: 0x46, B: 0xEF, A: 255}
	case "state":
		return color.RGBA{R: 0xF9, G: 0x73, B: 0x16, A: 255}
	case "effects":
		return color.RGBA{R: 0x0E, G: 0xA5, B: 0xE9, A: 255}
	case "layout":
		return color.RGBA{R: 120, G: 200, B: 120, A: 255}
	default:
		return color.RGBA{R: 150, G: 150, B: 170, A: 255}
	}
}

// Draw renders the log panel at panelX, full height.
func (tl *ThoughtLog) Draw(screen *ebiten.Image, panelX int, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), float32(panelH), color.RGBA{R: 10, G: 9, B: 18, A: 235}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 60, G: 52, B: 100, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), 16, color.RGBA{R: 22, G: 18, B: 40, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "EVENT LOG", panelX+8, 2)

	entries := tl.Recent()

	// Newest at the bottom.
	maxVisible := (panelH - 24) / logLineHeight
	startIdx := 0
	if len(entries) > maxVisible {
		startIdx = len(entries) - maxVisible
	}
	visible := entries[startIdx:]
	const recent = 3

	y := 20
	for i, e := range visible {
		if i >= len(visible)-recent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(logPanelWidth-4), float32(logLineHeight), color.RGBA{R: 34, G: 28, B: 60, A: 160}, false)
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+3), 3, 5, categoryColor(e.Category), false)
		line := fmt.Sprintf("%4d [%s] %s", e.Tick, e.Label, e.Message)
		ebitenutil.DebugPrintAt(screen, line, panelX+12, y)
		y += logLineHeight
	}
}
