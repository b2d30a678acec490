package swarm

import (
	"sort"
	"sync"
	"time"
)

// Clock supplies wall-clock time and deferred callbacks. The celebration
// timeline runs on a Clock rather than on frame counts so it keeps its pace
// at any frame rate.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a pending deferred callback.
type Timer interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or was already stopped.
	Stop() bool
}

// RealClock is the system clock.
type RealClock struct{}

// NewRealClock creates a system clock.
func NewRealClock() *RealClock {
	return &RealClock{}
}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// ManualClock is a Clock that only moves when told to. Callbacks run
// synchronously inside Advance, in deadline order.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	clock *ManualClock
	at    time.Time
	seq   int
	fn    func()
	done  bool
}

// NewManualClock creates a manual clock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &manualTimer{clock: c, at: c.now.Add(d), seq: c.seq, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Advance moves the clock forward by d, running every callback that falls due.
// Callbacks scheduled by other callbacks run too if they fall inside the window.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		sort.SliceStable(c.timers, func(i, j int) bool {
			if c.timers[i].at.Equal(c.timers[j].at) {
				return c.timers[i].seq < c.timers[j].seq
			}
			return c.timers[i].at.Before(c.timers[j].at)
		})
		if len(c.timers) == 0 || c.timers[0].at.After(target) {
			c.now = target
			c.mu.Unlock()
			return
		}
		next := c.timers[0]
		c.timers = c.timers[1:]
		next.done = true
		if next.at.After(c.now) {
			c.now = next.at
		}
		c.mu.Unlock()
		next.fn()
	}
}

func (t *manualTimer) Stop() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	for i, other := range c.timers {
		if other == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			break
		}
	}
	return true
}

// timerGroup tracks the timers of one owner so they can be cancelled together.
type timerGroup struct {
	mu     sync.Mutex
	clock  Clock
	timers []Timer
	closed bool
}

func newTimerGroup(c Clock) *timerGroup {
	return &timerGroup{clock: c}
}

// after schedules fn unless the group was closed.
func (g *timerGroup) after(d time.Duration, fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.timers = append(g.timers, g.clock.AfterFunc(d, fn))
}

// stopAll cancels every pending timer and returns how many were still pending.
func (g *timerGroup) stopAll() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, t := range g.timers {
		if t.Stop() {
			n++
		}
	}
	g.timers = g.timers[:0]
	return n
}

// forget drops references to timers that have already fired.
func (g *timerGroup) forget() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timers = g.timers[:0]
}

// close cancels everything and refuses new timers.
func (g *timerGroup) close() int {
	n := g.stopAll()
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	return n
}
