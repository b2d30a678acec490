package swarm

import (
	"fmt"
	"strings"
	"sync"
)

// SimLogEntry is one recorded simulation event.
type SimLogEntry struct {
	Tick     int
	Agent    string  // label e.g. "P07", or "--" for global events
	Category string  // capture, state, layout, effects, pointer, timeline
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] P07  capture   new              count=12
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-16s %s",
		e.Tick, e.Agent, e.Category, e.Key, e.Value)
}

// SimLog collects structured events. Unlike ThoughtLog (UI ring-buffer in the
// desktop viewer), SimLog is unbounded and machine-readable. Timer callbacks
// write to it from other goroutines, so access is serialized.
type SimLog struct {
	mu      sync.Mutex
	entries []SimLogEntry
	verbose bool
	sink    func(SimLogEntry)
}

// NewSimLog creates a SimLog. If verbose is true, per-tick position and speed
// entries are also recorded.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Verbose reports whether per-tick entries are recorded.
func (sl *SimLog) Verbose() bool {
	if sl == nil {
		return false
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.verbose
}

// SetSink registers fn to receive every new entry as it is added. The desktop
// viewer uses it to feed its on-screen panel.
func (sl *SimLog) SetSink(fn func(SimLogEntry)) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	sl.sink = fn
}

// Add records a new entry.
func (sl *SimLog) Add(tick int, agent, category, key, value string, numVal float64) {
	if sl == nil {
		return
	}
	e := SimLogEntry{
		Tick:     tick,
		Agent:    agent,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	}
	sl.mu.Lock()
	sl.entries = append(sl.entries, e)
	sink := sl.sink
	sl.mu.Unlock()
	if sink != nil {
		sink(e)
	}
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, agent, category, key, value string, numVal float64) {
	if !sl.Verbose() {
		return
	}
	sl.Add(tick, agent, category, key, value, numVal)
}

// Entries returns a copy of all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	out := make([]SimLogEntry, len(sl.entries))
	copy(out, sl.entries)
	return out
}

// Len returns the number of recorded entries.
func (sl *SimLog) Len() int {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return len(sl.entries)
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.Entries() {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterAgent returns entries for a specific agent label.
func (sl *SimLog) FilterAgent(label string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.Entries() {
		if e.Agent == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.Entries() {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.Entries() {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.Entries() {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRange returns a log string filtered to a tick range.
func (sl *SimLog) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range sl.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of a snapshot.
func (sl *SimLog) Summary(s *Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", s.Tick)
	fmt.Fprintf(&sb, "State: %s  cycle=%d\n", s.State, s.Cycle)
	fmt.Fprintf(&sb, "Captured: %d/%d  dot scale %.2f\n", s.Counter.Count, s.Counter.Total, s.DotScale)

	variants := map[Variant]int{}
	fading := 0
	for _, a := range s.Agents {
		variants[a.Variant]++
		if a.Opacity < maxOpacity {
			fading++
		}
	}
	sb.WriteString("Variants: ")
	for _, v := range []Variant{VariantFree, VariantCaptured, VariantCapturedWaiting} {
		if n := variants[v]; n > 0 {
			fmt.Fprintf(&sb, "%s=%d  ", v, n)
		}
	}
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "Links: %d  below full opacity: %d\n", len(s.Links), fading)
	fmt.Fprintf(&sb, "Pointer: (%.1f, %.1f) inside=%t hovering=%t\n",
		s.Pointer.X, s.Pointer.Y, s.Inside, s.Hovering)
	return sb.String()
}
