package term

import (
	"context"
	"fmt"
	"time"

	"github.com/Garsondee/Particle-Header/internal/confetti"
	"github.com/Garsondee/Particle-Header/internal/swarm"
	"github.com/gdamore/tcell/v2"
)

// DefaultFrame is the terminal frame interval.
const DefaultFrame = time.Second / 30

// AppConfig configures an App. Zero values select the defaults.
type AppConfig struct {
	Params  swarm.Params
	Seed    int64
	Frame   time.Duration
	Effects swarm.Effects // extra provider next to the confetti, e.g. a chime
	Clock   swarm.Clock
}

// App is the terminal viewer: a simulation sized to the terminal, mouse
// input, and a View.
type App struct {
	screen   tcell.Screen
	view     *View
	sim      *swarm.Simulation
	confetti *confetti.System
	snap     *swarm.Snapshot
	frame    time.Duration
	throttle time.Duration

	hover      bool
	pendingW   float64
	pendingH   float64
	pending    bool
	retryAfter time.Time
}

// NewApp builds an app on an initialised screen.
func NewApp(screen tcell.Screen, cfg AppConfig) (*App, error) {
	if cfg.Params.TotalParticles == 0 && cfg.Params.Cols == 0 {
		cfg.Params = swarm.DefaultParams()
	}
	if cfg.Frame <= 0 {
		cfg.Frame = DefaultFrame
	}
	cols, rows := screen.Size()
	vw, vh := Viewport(cols, rows)

	a := &App{
		screen:   screen,
		view:     NewView(screen),
		confetti: confetti.New(vw, vh*cfg.Params.SurfaceHeight, cfg.Seed),
		frame:    cfg.Frame,
		throttle: cfg.Params.ResizeThrottle,
	}
	opts := []swarm.Option{
		swarm.WithSeed(cfg.Seed),
		swarm.WithEffects(swarm.MultiEffects{a.confetti, cfg.Effects}),
	}
	if cfg.Clock != nil {
		opts = append(opts, swarm.WithClock(cfg.Clock))
	}
	sim, err := swarm.New(cfg.Params, vw, vh, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start simulation: %w", err)
	}
	a.sim = sim
	sim.Subscribe(func(s *swarm.Snapshot) { a.snap = s })
	screen.EnableMouse(tcell.MouseMotionEvents)
	return a, nil
}

// Simulation exposes the running simulation.
func (a *App) Simulation() *swarm.Simulation { return a.sim }

// HandleEvent applies one terminal event. It reports whether the app should
// quit.
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return true
			case 't':
				a.sim.Trigger()
			case 'h':
				a.hover = !a.hover
				a.sim.SetHoveringContent(a.hover)
			}
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		p := CellCentre(x, y)
		a.sim.PointerMove(p.X, p.Y)
	case *tcell.EventResize:
		cols, rows := ev.Size()
		a.pendingW, a.pendingH = Viewport(cols, rows)
		a.pending = true
		a.screen.Sync()
	}
	return false
}

// Step advances one frame and redraws.
func (a *App) Step() {
	a.applyPendingResize()
	a.sim.Tick()
	a.confetti.Update(a.frame.Seconds())
	a.view.Draw(a.snap, a.confetti.Pieces())
}

func (a *App) applyPendingResize() {
	now := a.sim.Now()
	if !a.pending || now.Before(a.retryAfter) {
		return
	}
	if a.sim.Resize(a.pendingW, a.pendingH) {
		a.pending = false
		a.confetti.SetSurface(a.pendingW, a.pendingH*a.sim.Params().SurfaceHeight)
		return
	}
	a.retryAfter = now.Add(a.throttle)
}

// Run polls events and steps frames until ctx is done or the user quits. It
// closes the simulation but leaves the screen to the caller.
func (a *App) Run(ctx context.Context) error {
	defer a.sim.Close()
	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)
	go a.pollEvents(events, done)

	ticker := time.NewTicker(a.frame)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if a.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			a.Step()
		}
	}
}

// pollEvents forwards screen events until the screen is finalised or done is
// closed. Events polled after done closes are dropped.
func (a *App) pollEvents(events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			close(events)
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}
