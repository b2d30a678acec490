package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Garsondee/Particle-Header/internal/config"
	"github.com/Garsondee/Particle-Header/internal/replay"
	"github.com/Garsondee/Particle-Header/internal/swarm"
	"github.com/Garsondee/Particle-Header/internal/swarmtest"
	"github.com/charmbracelet/lipgloss"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	headStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

// Scenario names.
const (
	scenarioSweep   = "sweep"   // pointer walks from dot to dot until all are caught
	scenarioTrigger = "trigger" // external hook fires a celebration early on
	scenarioIdle    = "idle"    // nobody touches anything
)

// triggerAtTick is when the trigger scenario fires the hook.
const triggerAtTick = 60

// replayEpoch is where replay clocks start; recordings only store offsets.
var replayEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type runStats struct {
	runIndex int
	seed     int64
	label    string
	ticks    int
	total    int

	firstCaptureTick int
	firstCelebrate   int
	firstResetTick   int
	firstRevealTick  int

	captures       int
	stateChanges   int
	bursts         int
	triggerIgnored int
	resizeDropped  int

	summary       swarm.RunSummary
	windowSummary *swarm.WindowReport
	series        []float64 // captured count after every tick
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var scenario string
	var replayPath string
	var chartPath string
	var configPath string

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 1200, "ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenario, "scenario", scenarioSweep, "scenario name (sweep, trigger, idle)")
	flag.StringVar(&replayPath, "replay", "", "play back a saved replay instead of running scenarios")
	flag.StringVar(&chartPath, "chart", "", "write a PNG chart of captured dots per tick to this path")
	flag.StringVar(&configPath, "config", "", "tuning YAML file")
	flag.Parse()

	tuning, err := config.LoadOrDefault(configPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	params := tuning.Params()

	var all []runStats
	if replayPath != "" {
		fmt.Println(titleStyle.Render("=== Headless Replay Report ==="))
		fmt.Println(dimStyle.Render("replay=" + replayPath))
		fmt.Println()
		rs, err := runReplay(replayPath, params)
		if err != nil {
			fmt.Println("error:", err)
			os.Exit(1)
		}
		all = append(all, rs)
		printRun(rs)
	} else {
		if runs <= 0 {
			fmt.Println("error: -runs must be > 0")
			return
		}
		if ticks <= 0 {
			fmt.Println("error: -ticks must be > 0")
			return
		}
		run, ok := scenarios[scenario]
		if !ok {
			fmt.Printf("error: unsupported scenario %q (supported: %s)\n", scenario, strings.Join(scenarioNames(), ", "))
			return
		}

		fmt.Println(titleStyle.Render("=== Headless Capture Report ==="))
		fmt.Println(dimStyle.Render(fmt.Sprintf("scenario=%s runs=%d ticks=%d seed_base=%d seed_step=%d",
			scenario, runs, ticks, seedBase, seedStep)))
		fmt.Println()

		all = make([]runStats, 0, runs)
		for i := 0; i < runs; i++ {
			seed := seedBase + int64(i)*seedStep
			rs := run(params, seed, ticks)
			rs.runIndex = i + 1
			all = append(all, rs)
			printRun(rs)
		}
	}

	printAggregate(all)

	if chartPath != "" {
		if err := writeChart(chartPath, all, params.BurstPalette); err != nil {
			fmt.Println("error:", err)
			os.Exit(1)
		}
		fmt.Println(dimStyle.Render("chart written to " + chartPath))
	}
}

// --- Scenarios ---

type scenarioFunc func(p swarm.Params, seed int64, ticks int) runStats

var scenarios = map[string]scenarioFunc{
	scenarioSweep:   runScenarioSweep,
	scenarioTrigger: runScenarioTrigger,
	scenarioIdle:    runScenarioIdle,
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for k := range scenarios {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func newScenarioSim(p swarm.Params, seed int64) (*swarmtest.TestSim, *[]float64) {
	ts := swarmtest.NewTestSim(
		swarmtest.WithSurface(1280, 720),
		swarmtest.WithSeed(seed),
		swarmtest.WithTuning(func(dst *swarm.Params) { *dst = p }),
	)
	series := &[]float64{}
	ts.Sim.Subscribe(func(s *swarm.Snapshot) {
		*series = append(*series, float64(s.Counter.Count))
	})
	return ts, series
}

func runScenarioSweep(p swarm.Params, seed int64, ticks int) runStats {
	ts, series := newScenarioSim(p, seed)
	defer ts.Close()
	used := ts.CaptureAll(ticks)
	if used < 0 {
		used = ticks
	}
	ts.Leave()
	ts.RunTicks(ticks - used)
	return collect(ts.Sim, ts.Reporter, scenarioSweep, seed, *series)
}

func runScenarioTrigger(p swarm.Params, seed int64, ticks int) runStats {
	ts, series := newScenarioSim(p, seed)
	defer ts.Close()
	ts.MoveTo(ts.Width/4, ts.Height/4)
	first := min(triggerAtTick, ticks)
	ts.RunTicks(first)
	ts.Sim.TriggerHook()()
	ts.RunTicks(ticks - first)
	return collect(ts.Sim, ts.Reporter, scenarioTrigger, seed, *series)
}

func runScenarioIdle(p swarm.Params, seed int64, ticks int) runStats {
	ts, series := newScenarioSim(p, seed)
	defer ts.Close()
	ts.Leave()
	ts.RunTicks(ticks)
	return collect(ts.Sim, ts.Reporter, scenarioIdle, seed, *series)
}

// runReplay plays a saved recording back on virtual time.
func runReplay(path string, p swarm.Params) (runStats, error) {
	rec, err := replay.Load(path)
	if err != nil {
		return runStats{}, err
	}
	simLog := swarm.NewSimLog(false)
	sim, clock, err := replay.NewSimulation(rec, p, replayEpoch, swarm.WithLog(simLog))
	if err != nil {
		return runStats{}, err
	}
	defer sim.Close()

	reporter := swarm.NewCaptureReporter(0)
	var series []float64
	sim.Subscribe(func(s *swarm.Snapshot) {
		reporter.Collect(s)
		series = append(series, float64(s.Counter.Count))
	})
	if err := replay.Play(rec, sim, clock); err != nil {
		return runStats{}, err
	}
	rs := collect(sim, reporter, "replay", rec.Seed, series)
	rs.runIndex = 1
	return rs, nil
}

func collect(sim *swarm.Simulation, reporter *swarm.CaptureReporter, label string, seed int64, series []float64) runStats {
	log := sim.Log()
	entries := log.Entries()
	return runStats{
		seed:             seed,
		label:            label,
		ticks:            sim.TickCount(),
		total:            sim.Params().TotalParticles,
		firstCaptureTick: firstTick(entries, "capture", "new", ""),
		firstCelebrate:   firstTick(entries, "state", "change", "→ celebrating"),
		firstResetTick:   firstTick(entries, "timeline", "reset", ""),
		firstRevealTick:  firstTick(entries, "timeline", "reveal", ""),
		captures:         log.CountCategory("capture", "new"),
		stateChanges:     log.CountCategory("state", "change"),
		bursts:           log.CountCategory("effects", "burst"),
		triggerIgnored:   log.CountCategory("state", "trigger_ignored"),
		resizeDropped:    log.CountCategory("layout", "resize_dropped"),
		summary:          reporter.Summary(),
		windowSummary:    reporter.WindowSummary(),
		series:           series,
	}
}

func firstTick(entries []swarm.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

// detectStall reports a run whose capture count stopped growing short of a
// full set while nothing was celebrating.
func detectStall(rs runStats) (bool, string) {
	if rs.summary.Celebrations > 0 {
		return false, "celebrated"
	}
	if rs.summary.PeakCaptured == 0 {
		return false, "no_captures"
	}
	if rs.summary.PeakCaptured >= rs.total {
		return false, "complete"
	}
	if rs.windowSummary != nil && rs.windowSummary.CapturedGain > 0 {
		return false, fmt.Sprintf("still_capturing gain=%d", rs.windowSummary.CapturedGain)
	}
	return true, fmt.Sprintf("stuck_at=%d/%d", rs.summary.PeakCaptured, rs.total)
}

// --- Output ---

func printRun(rs runStats) {
	fmt.Println(headStyle.Render(fmt.Sprintf("--- Run %d (%s seed=%d) ---", rs.runIndex, rs.label, rs.seed)))
	fmt.Printf("phase_markers: first_capture=%d celebrate=%d reset=%d reveal=%d\n",
		rs.firstCaptureTick, rs.firstCelebrate, rs.firstResetTick, rs.firstRevealTick)
	fmt.Printf("event_totals: capture=%d state_change=%d burst=%d trigger_ignored=%d resize_dropped=%d\n",
		rs.captures, rs.stateChanges, rs.bursts, rs.triggerIgnored, rs.resizeDropped)
	s := rs.summary
	fmt.Printf("outcome: ticks=%d celebrations=%d resets=%d peak=%d/%d active=%.0f%%",
		rs.ticks, s.Celebrations, s.Resets, s.PeakCaptured, rs.total, s.ActiveShare*100)
	if s.FirstFullTick >= 0 {
		fmt.Printf(" first_win_tick=%d first_win_after=%s", s.FirstFullTick, s.TimeToFirstWin)
	}
	fmt.Println()
	if stalled, reason := detectStall(rs); stalled {
		fmt.Println(warnStyle.Render("stalled: " + reason))
	} else if s.Celebrations > 0 {
		fmt.Println(goodStyle.Render("celebrated"))
	}
	if rs.windowSummary != nil {
		fmt.Print(dimStyle.Render(strings.TrimRight(rs.windowSummary.Format(), "\n")))
		fmt.Println()
	}
	fmt.Println()
}

func printAggregate(all []runStats) {
	totalCaptures := 0
	totalBursts := 0
	totalCelebrations := 0
	stalled := 0
	var winTicks []int
	var captureTicks []int

	for _, rs := range all {
		totalCaptures += rs.captures
		totalBursts += rs.bursts
		totalCelebrations += rs.summary.Celebrations
		if rs.summary.FirstFullTick >= 0 {
			winTicks = append(winTicks, rs.summary.FirstFullTick)
		}
		if rs.firstCaptureTick >= 0 {
			captureTicks = append(captureTicks, rs.firstCaptureTick)
		}
		if ok, _ := detectStall(rs); ok {
			stalled++
		}
	}

	fmt.Println(titleStyle.Render("=== Aggregate ==="))
	fmt.Printf("runs=%d\n", len(all))
	fmt.Printf("avg_events_per_run: capture=%.1f burst=%.1f celebration=%.1f\n",
		avg(totalCaptures, len(all)), avg(totalBursts, len(all)), avg(totalCelebrations, len(all)))
	fmt.Printf("phase_marker_avg_ticks: first_capture=%s first_win=%s\n",
		avgTickString(captureTicks), avgTickString(winTicks))
	line := fmt.Sprintf("stalled_runs=%d", stalled)
	if stalled > 0 {
		fmt.Println(warnStyle.Render(line))
	} else {
		fmt.Println(goodStyle.Render(line))
	}
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

// --- Chart ---

// buildChart plots the captured count per tick, one series per run.
func buildChart(all []runStats, palette []string) (chart.Chart, error) {
	colors := config.Palette(palette)
	var series []chart.Series
	maxY := 1.0
	for i, rs := range all {
		if len(rs.series) < 2 {
			continue
		}
		xs := make([]float64, len(rs.series))
		for t := range xs {
			xs[t] = float64(t + 1)
		}
		c := colors[i%len(colors)]
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("run %d (seed %d)", rs.runIndex, rs.seed),
			XValues: xs,
			YValues: rs.series,
			Style: chart.Style{
				StrokeColor: drawing.Color{R: c.R, G: c.G, B: c.B, A: 255},
				StrokeWidth: 2.0,
			},
		})
		if t := float64(rs.total); t > maxY {
			maxY = t
		}
	}
	if len(series) == 0 {
		return chart.Chart{}, fmt.Errorf("not enough ticks to chart")
	}
	return chart.Chart{
		Width:  960,
		Height: 360,
		XAxis: chart.XAxis{
			Name:  "tick",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "captured",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 0, Max: maxY},
		},
		Series: series,
	}, nil
}

func writeChart(path string, all []runStats, palette []string) error {
	graph, err := buildChart(all, palette)
	if err != nil {
		return err
	}
	f, err := os.Create(path) // #nosec G304 -- path comes from the command line
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	if err := graph.Render(chart.PNG, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return f.Close()
}
