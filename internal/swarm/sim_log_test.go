package swarm

import (
	"strings"
	"testing"
)

func TestSimLog_FilterAndLookup(t *testing.T) {
	sl := NewSimLog(false)
	sl.Add(1, "P03", "capture", "new", "count=1/80", 1)
	sl.Add(2, "--", "state", "change", "active → celebrating (external_trigger)", 1)
	sl.Add(5, "P04", "capture", "new", "count=2/80", 2)
	sl.AddVerbose(5, "P04", "agent", "speed", "1.20", 1.2)

	if n := sl.CountCategory("capture", "new"); n != 2 {
		t.Fatalf("capture/new = %d", n)
	}
	if sl.Len() != 3 {
		t.Fatalf("verbose entry recorded in quiet mode: %d entries", sl.Len())
	}
	last, ok := sl.LastOf("capture", "new")
	if !ok || last.Agent != "P04" || last.NumVal != 2 {
		t.Fatalf("LastOf = %+v, %t", last, ok)
	}
	if !sl.HasEntry("state", "", "external_trigger") {
		t.Fatal("HasEntry missed substring")
	}
	if got := sl.FilterAgent("P03"); len(got) != 1 {
		t.Fatalf("FilterAgent = %d", len(got))
	}
	if got := sl.FilterTickRange(2, 5); len(got) != 2 {
		t.Fatalf("FilterTickRange = %d", len(got))
	}
	if out := sl.FormatRange(1, 1); !strings.Contains(out, "[T=001] P03") {
		t.Fatalf("FormatRange:\n%s", out)
	}
}

func TestSimLog_Sink(t *testing.T) {
	sl := NewSimLog(true)
	var seen []string
	sl.SetSink(func(e SimLogEntry) { seen = append(seen, e.Key) })
	sl.Add(1, "--", "layout", "resize_applied", "800x600", 800)
	sl.AddVerbose(1, "P00", "agent", "speed", "2.00", 2)
	if len(seen) != 2 || seen[0] != "resize_applied" || seen[1] != "speed" {
		t.Fatalf("sink saw %v", seen)
	}
}

func TestSimLog_NilIsSafe(t *testing.T) {
	var sl *SimLog
	sl.Add(1, "--", "state", "change", "x", 0)
	sl.AddVerbose(1, "--", "state", "change", "x", 0)
	if sl.Verbose() {
		t.Fatal("nil log claims verbose")
	}
}
