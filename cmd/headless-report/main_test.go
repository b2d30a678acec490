package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Garsondee/Particle-Header/internal/replay"
	"github.com/Garsondee/Particle-Header/internal/swarm"
)

func TestFirstTick(t *testing.T) {
	entries := []swarm.SimLogEntry{
		{Tick: 3, Category: "capture", Key: "new", Value: "P04 1/80"},
		{Tick: 9, Category: "state", Key: "change", Value: "active → celebrating (all_captured)"},
		{Tick: 12, Category: "state", Key: "change", Value: "celebrating → resetting (timeline)"},
	}
	if got := firstTick(entries, "capture", "new", ""); got != 3 {
		t.Fatalf("first capture = %d, want 3", got)
	}
	if got := firstTick(entries, "state", "change", "→ resetting"); got != 12 {
		t.Fatalf("first reset change = %d, want 12", got)
	}
	if got := firstTick(entries, "timeline", "reveal", ""); got != -1 {
		t.Fatalf("missing marker = %d, want -1", got)
	}
}

func TestDetectStall_TrueWhenCapturesStop(t *testing.T) {
	rs := runStats{
		total:         80,
		summary:       swarm.RunSummary{PeakCaptured: 61, FirstFullTick: -1},
		windowSummary: &swarm.WindowReport{CapturedGain: 0},
	}
	stalled, reason := detectStall(rs)
	if !stalled {
		t.Fatalf("expected stall, got false (reason=%s)", reason)
	}
	if !strings.Contains(reason, "stuck_at=61/80") {
		t.Fatalf("reason = %s", reason)
	}
}

func TestDetectStall_FalseWhenCelebrated(t *testing.T) {
	rs := runStats{
		total:   80,
		summary: swarm.RunSummary{PeakCaptured: 80, Celebrations: 1},
	}
	if stalled, reason := detectStall(rs); stalled {
		t.Fatalf("celebrated run reported as stalled (reason=%s)", reason)
	}
}

func TestDetectStall_FalseWhileStillCapturing(t *testing.T) {
	rs := runStats{
		total:         80,
		summary:       swarm.RunSummary{PeakCaptured: 30, FirstFullTick: -1},
		windowSummary: &swarm.WindowReport{CapturedGain: 4},
	}
	if stalled, reason := detectStall(rs); stalled {
		t.Fatalf("run still gaining captures reported as stalled (reason=%s)", reason)
	}
}

func TestAvgHelpers(t *testing.T) {
	if avg(10, 0) != 0 || avg(9, 3) != 3 {
		t.Fatal("avg")
	}
	if avgTickString(nil) != "n/a" {
		t.Fatal("empty avgTickString")
	}
	if got := avgTickString([]int{10, 20}); got != "15.0" {
		t.Fatalf("avgTickString = %s", got)
	}
}

func TestScenarioIdle_NoCaptures(t *testing.T) {
	rs := runScenarioIdle(swarm.DefaultParams(), 3, 120)
	if rs.ticks != 120 || len(rs.series) != 120 {
		t.Fatalf("ticks=%d samples=%d, want 120", rs.ticks, len(rs.series))
	}
	if rs.captures != 0 || rs.summary.Celebrations != 0 {
		t.Fatalf("idle run captured %d and celebrated %d times", rs.captures, rs.summary.Celebrations)
	}
	if stalled, _ := detectStall(rs); stalled {
		t.Fatal("idle run with no captures reported as stalled")
	}
}

func TestScenarioTrigger_RunsWholeTimeline(t *testing.T) {
	// 700 frames at 60 TPS covers the 9 s celebration timeline.
	rs := runScenarioTrigger(swarm.DefaultParams(), 8, 700)
	if rs.summary.Celebrations != 1 {
		t.Fatalf("celebrations = %d, want 1", rs.summary.Celebrations)
	}
	if rs.bursts != 4 {
		t.Fatalf("bursts = %d, want 4", rs.bursts)
	}
	if rs.firstCelebrate != triggerAtTick {
		t.Fatalf("celebration began at tick %d, want %d", rs.firstCelebrate, triggerAtTick)
	}
	if rs.firstResetTick < 0 || rs.firstRevealTick <= rs.firstResetTick {
		t.Fatalf("reset=%d reveal=%d", rs.firstResetTick, rs.firstRevealTick)
	}
}

func TestScenarios_Deterministic(t *testing.T) {
	a := runScenarioTrigger(swarm.DefaultParams(), 21, 200)
	b := runScenarioTrigger(swarm.DefaultParams(), 21, 200)
	if len(a.series) != len(b.series) {
		t.Fatalf("series lengths %d vs %d", len(a.series), len(b.series))
	}
	for i := range a.series {
		if a.series[i] != b.series[i] {
			t.Fatalf("series differ at tick %d", i+1)
		}
	}
}

func TestRunReplay(t *testing.T) {
	clock := swarm.NewManualClock(replayEpoch)
	sim, err := swarm.New(swarm.DefaultParams(), 1280, 720, swarm.WithSeed(6), swarm.WithClock(clock))
	if err != nil {
		t.Fatal(err)
	}
	rec := replay.NewRecorder(sim, 1280, 720)
	rec.PointerMove(100, 100)
	for i := 0; i < 30; i++ {
		clock.Advance(16 * time.Millisecond)
		rec.Tick()
	}
	rec.Trigger()
	clock.Advance(10 * time.Second)
	sim.Close()

	path := filepath.Join(t.TempDir(), "run.replay")
	if err := replay.Save(path, rec.Recording()); err != nil {
		t.Fatal(err)
	}
	rs, err := runReplay(path, swarm.DefaultParams())
	if err != nil {
		t.Fatalf("runReplay: %v", err)
	}
	if rs.seed != 6 || rs.ticks != 30 || rs.bursts != 4 {
		t.Fatalf("seed=%d ticks=%d bursts=%d", rs.seed, rs.ticks, rs.bursts)
	}

	if _, err := runReplay(filepath.Join(t.TempDir(), "missing.replay"), swarm.DefaultParams()); err == nil {
		t.Fatal("missing replay loaded")
	}
}

func TestWriteChart(t *testing.T) {
	rs := runScenarioIdle(swarm.DefaultParams(), 2, 30)
	rs.runIndex = 1
	path := filepath.Join(t.TempDir(), "capture.png")
	if err := writeChart(path, []runStats{rs}, swarm.DefaultParams().BurstPalette); err != nil {
		t.Fatalf("writeChart: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("chart is not a PNG (%d bytes)", len(data))
	}
}

func TestBuildChart_NeedsTwoSamples(t *testing.T) {
	if _, err := buildChart([]runStats{{series: []float64{1}}}, nil); err == nil {
		t.Fatal("chart built from a single sample")
	}
}
