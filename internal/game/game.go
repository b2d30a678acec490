package game

import (
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Garsondee/Particle-Header/internal/audio"
	"github.com/Garsondee/Particle-Header/internal/config"
	"github.com/Garsondee/Particle-Header/internal/confetti"
	"github.com/Garsondee/Particle-Header/internal/replay"
	"github.com/Garsondee/Particle-Header/internal/swarm"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

// hudScale is the integer upscale factor applied to the key legend.
const hudScale = 2

// statusDuration is how long a status line stays on screen.
const statusDuration = 3 * time.Second

// windowTitle prefixes the live state shown in the title bar.
const windowTitle = "Particle Header"

// headline is drawn inside the protected region.
const headline = "Catch every dot"

var (
	backgroundColor = color.RGBA{R: 11, G: 10, B: 20, A: 255}
	freeDotColor    = color.RGBA{R: 0x9b, G: 0x87, B: 0xf5, A: 0xff}
	capturedColor   = color.RGBA{R: 0xD9, G: 0x46, B: 0xEF, A: 0xff}
	linkColor       = color.RGBA{R: 0x9b, G: 0x87, B: 0xf5, A: 0xff}
)

// Config configures a Game. Zero values select the defaults.
type Config struct {
	Params        swarm.Params
	Seed          int64
	Width, Height int                     // initial viewport
	Settings      *config.SettingsManager // nil keeps preferences in memory
	Chime         *audio.Chime            // nil plays no sound
	Clock         swarm.Clock             // nil uses the wall clock
	ReplayDir     string                  // where R saves recordings; "" means the working directory
}

// Game is the desktop viewer: it feeds mouse and touch input into the
// simulation, ticks it once per ebiten update and draws the latest snapshot.
type Game struct {
	sim      *swarm.Simulation
	recorder *replay.Recorder
	confetti *confetti.System
	chime    *audio.Chime
	settings *config.SettingsManager
	reporter *swarm.CaptureReporter
	face     *text.GoXFace

	thoughtLog *ThoughtLog
	inspector  Inspector
	snap       *swarm.Snapshot

	width, height int
	resize        resizeState
	throttle      time.Duration

	prevKeys      map[ebiten.Key]bool
	prevMouseLeft bool
	lastCursor    [2]int
	touchIDs      []ebiten.TouchID
	touching      bool
	showHUD       bool

	title       string
	status      string
	statusUntil time.Time
	replayDir   string

	// Offscreen buffers, created on first Draw.
	hudBuf  *ebiten.Image
	inspBuf *ebiten.Image
}

// New builds the viewer and its simulation.
func New(cfg Config) (*Game, error) {
	if cfg.Params.TotalParticles == 0 && cfg.Params.Cols == 0 {
		cfg.Params = swarm.DefaultParams()
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 1280, 720
	}
	if cfg.Settings == nil {
		cfg.Settings = config.NewSettingsManager(nil)
	}
	if cfg.Chime == nil {
		cfg.Chime = audio.NewSilentChime()
	}
	cfg.Chime.SetMuted(cfg.Settings.Settings().Muted)

	g := &Game{
		chime:      cfg.Chime,
		settings:   cfg.Settings,
		reporter:   swarm.NewCaptureReporter(0),
		face:       text.NewGoXFace(basicfont.Face7x13),
		thoughtLog: NewThoughtLog(),
		width:      cfg.Width,
		height:     cfg.Height,
		throttle:   cfg.Params.ResizeThrottle,
		prevKeys:   make(map[ebiten.Key]bool),
		showHUD:    true,
		replayDir:  cfg.ReplayDir,
		lastCursor: [2]int{-1, -1},
	}

	surfaceH := float64(cfg.Height) * cfg.Params.SurfaceHeight
	g.confetti = confetti.New(float64(cfg.Width), surfaceH, cfg.Seed)

	simLog := swarm.NewSimLog(false)
	simLog.SetSink(g.thoughtLog.AddEntry)

	opts := []swarm.Option{
		swarm.WithSeed(cfg.Seed),
		swarm.WithEffects(swarm.MultiEffects{g.confetti, g.chime}),
		swarm.WithLog(simLog),
	}
	if cfg.Clock != nil {
		opts = append(opts, swarm.WithClock(cfg.Clock))
	}
	sim, err := swarm.New(cfg.Params, float64(cfg.Width), float64(cfg.Height), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start simulation: %w", err)
	}
	g.sim = sim
	g.recorder = replay.NewRecorder(sim, float64(cfg.Width), float64(cfg.Height))
	sim.Subscribe(func(s *swarm.Snapshot) {
		g.snap = s
		g.reporter.Collect(s)
	})
	return g, nil
}

// Simulation exposes the running simulation.
func (g *Game) Simulation() *swarm.Simulation { return g.sim }

// TriggerHook returns a function that starts a celebration, for hosts that
// want to fire one from outside the viewer. Triggers are recorded.
func (g *Game) TriggerHook() func() {
	return func() { g.recorder.Trigger() }
}

// Close stops the simulation timers and the chime and saves preferences.
func (g *Game) Close() {
	g.sim.Close()
	g.chime.Close()
	g.saveSettings()
}

func (g *Game) Update() error {
	g.handleInput()
	g.applyPendingResize()
	g.recorder.Tick()
	g.confetti.Update(1 / float64(ebiten.TPS()))
	if t := windowTitle + " - " + eventSummary(g.snap); t != g.title {
		g.title = t
		ebiten.SetWindowTitle(t)
	}
	return nil
}

// Layout tracks the window size. The simulation surface follows it through
// the resize throttle; a size dropped by the throttle is retried once the
// throttle window has passed.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.resize.want(outsideWidth, outsideHeight)
		g.settings.SetWindowSize(outsideWidth, outsideHeight)
	}
	return g.width, g.height
}

func (g *Game) applyPendingResize() {
	now := g.sim.Now()
	w, h, ok := g.resize.due(now)
	if !ok {
		return
	}
	applied := g.recorder.Resize(float64(w), float64(h))
	g.resize.done(applied, now, g.throttle)
	if applied {
		sw, sh := g.surfaceSize()
		g.confetti.SetSurface(sw, sh)
	}
}

func (g *Game) surfaceSize() (float64, float64) {
	p := g.sim.Params()
	return float64(g.width), float64(g.height) * p.SurfaceHeight
}

// --- Input ---

// handleInput forwards pointer and touch input and processes key presses
// (edge-triggered).
func (g *Game) handleInput() {
	mx, my := ebiten.CursorPosition()
	if mx != g.lastCursor[0] || my != g.lastCursor[1] {
		g.lastCursor = [2]int{mx, my}
		g.recorder.PointerMove(float64(mx), float64(my))
	}

	g.touchIDs = ebiten.AppendTouchIDs(g.touchIDs[:0])
	if len(g.touchIDs) > 0 {
		tx, ty := ebiten.TouchPosition(g.touchIDs[0])
		g.recorder.TouchMove([]swarm.Vec2{{X: float64(tx), Y: float64(ty)}})
		g.touching = true
	} else if g.touching {
		g.recorder.TouchMove(nil)
		g.touching = false
	}

	currentKeys := map[ebiten.Key]bool{}
	for _, k := range boundKeys {
		currentKeys[k] = ebiten.IsKeyPressed(k)
		if currentKeys[k] && !g.prevKeys[k] {
			g.handleKey(k)
		}
	}
	g.prevKeys = currentKeys

	// Left mouse click: select the dot under the cursor.
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if left && !g.prevMouseLeft && g.snap != nil {
		g.inspector.pick(g.snap, float64(mx), float64(my))
	}
	g.prevMouseLeft = left
}

var boundKeys = []ebiten.Key{
	ebiten.KeyT, ebiten.KeyC, ebiten.KeyM, ebiten.KeyL,
	ebiten.KeyR, ebiten.KeyH, ebiten.KeyI,
}

func (g *Game) handleKey(k ebiten.Key) {
	switch k {
	case ebiten.KeyT:
		if !g.recorder.Trigger() {
			g.setStatus("celebration already running")
		}
	case ebiten.KeyC:
		g.copyDebugReport()
	case ebiten.KeyM:
		muted := g.settings.ToggleMute()
		g.chime.SetMuted(muted)
		g.saveSettings()
		if muted {
			g.setStatus("sound off")
		} else {
			g.setStatus("sound on")
		}
	case ebiten.KeyL:
		g.settings.ToggleLogPanel()
		g.saveSettings()
	case ebiten.KeyR:
		if path, err := g.saveReplay(); err != nil {
			log.Printf("[Replay] Warning: %v", err)
			g.setStatus("replay not saved")
		} else {
			g.setStatus("replay saved to " + path)
		}
	case ebiten.KeyH:
		g.showHUD = !g.showHUD
	case ebiten.KeyI:
		g.inspector.rawView = !g.inspector.rawView
	}
}

func (g *Game) setStatus(msg string) {
	g.status = msg
	g.statusUntil = g.sim.Now().Add(statusDuration)
}

func (g *Game) saveSettings() {
	if err := g.settings.Save(); err != nil {
		log.Printf("[Settings] Warning: %v", err)
	}
}

// saveReplay writes everything recorded so far and returns the file path.
func (g *Game) saveReplay() (string, error) {
	dir := g.replayDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create replay dir: %w", err)
	}
	name := fmt.Sprintf("particle-header-%d-%d.replay", g.sim.Seed(), g.sim.Now().Unix())
	path := filepath.Join(dir, name)
	if err := replay.Save(path, g.recorder.Recording()); err != nil {
		return "", err
	}
	return path, nil
}

// --- Resize ---

// resizeState holds a viewport size the simulation has not accepted yet.
type resizeState struct {
	pending bool
	w, h    int
	notDue  time.Time
}

func (r *resizeState) want(w, h int) {
	r.pending = true
	r.w, r.h = w, h
}

// due reports the pending size if one exists and may be tried at now.
func (r *resizeState) due(now time.Time) (int, int, bool) {
	if !r.pending || now.Before(r.notDue) {
		return 0, 0, false
	}
	return r.w, r.h, true
}

func (r *resizeState) done(applied bool, now time.Time, throttle time.Duration) {
	if applied {
		r.pending = false
		return
	}
	r.notDue = now.Add(throttle)
}
