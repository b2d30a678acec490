package audio

import (
	"math"
	"testing"
	"time"

	"github.com/Garsondee/Particle-Header/internal/swarm"
	"github.com/gopxl/beep"
)

// drain streams s to the end and returns the sample count and peak level.
func drain(t *testing.T, s beep.Streamer) (int, float64) {
	t.Helper()
	buf := make([][2]float64, 512)
	total, peak := 0, 0.0
	for i := 0; i < 10000; i++ {
		n, ok := s.Stream(buf)
		for _, smp := range buf[:n] {
			for _, v := range smp {
				if math.IsNaN(v) {
					t.Fatal("NaN sample")
				}
				peak = math.Max(peak, math.Abs(v))
			}
		}
		total += n
		if !ok || n == 0 {
			return total, peak
		}
	}
	t.Fatal("streamer never drained")
	return 0, 0
}

func TestVoice_FiniteAndBounded(t *testing.T) {
	rate := beep.SampleRate(44100)
	n, peak := drain(t, voice(swarm.BurstRequest{Particles: 100}, rate))

	lo, hi := rate.N(chimeDuration-50*time.Millisecond), rate.N(chimeDuration+50*time.Millisecond)
	if n < lo || n > hi {
		t.Errorf("voice length = %d samples, want %d..%d", n, lo, hi)
	}
	if peak <= 0.01 || peak > 1 {
		t.Errorf("peak = %f, want audible and unclipped", peak)
	}
	if err := voice(swarm.BurstRequest{}, rate).Err(); err != nil {
		t.Errorf("Err() = %v", err)
	}
}

func TestVoice_LouderForBiggerBursts(t *testing.T) {
	rate := beep.SampleRate(22050)
	_, small := drain(t, voice(swarm.BurstRequest{Particles: 25}, rate))
	_, big := drain(t, voice(swarm.BurstRequest{Particles: 400}, rate))
	if big <= small {
		t.Fatalf("peak(400)=%f not above peak(25)=%f", big, small)
	}
}

func TestBurstVolume(t *testing.T) {
	if v := burstVolume(referenceParticles); v != baseVolume {
		t.Errorf("burstVolume(ref) = %v, want %v", v, baseVolume)
	}
	if v := burstVolume(4 * referenceParticles); math.Abs(v-(baseVolume+1)) > 1e-9 {
		t.Errorf("burstVolume(4×ref) = %v", v)
	}
	if v := burstVolume(1 << 20); v != 0 {
		t.Errorf("burstVolume not capped at unity: %v", v)
	}
	if burstVolume(0) != burstVolume(1) {
		t.Error("zero particles should be treated as one")
	}
}

func TestNoteIndexWraps(t *testing.T) {
	for i, want := range map[int]int{0: 0, 3: 3, 6: 0, 7: 1, -2: 2} {
		if got := noteIndex(i); got != want {
			t.Errorf("noteIndex(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestEnvelope_AttackAndDecay(t *testing.T) {
	rate := beep.SampleRate(1000)
	e := newEnvelope(nil, time.Second, 10*time.Millisecond, rate)
	if e.gain(0) != 0 {
		t.Errorf("gain(0) = %v, want 0", e.gain(0))
	}
	if g := e.gain(5); math.Abs(g-0.5*math.Exp(-5/e.tau)) > 1e-9 {
		t.Errorf("gain mid-attack = %v", g)
	}
	if g := e.gain(999); g > 0.0011 {
		t.Errorf("tail gain = %v, want about -60 dB", g)
	}
	if e.gain(1000) != 0 {
		t.Error("gain past the end must be zero")
	}
}

func TestSine_StopsAtLength(t *testing.T) {
	rate := beep.SampleRate(1000)
	n, peak := drain(t, newSine(100, 250*time.Millisecond, rate))
	if n != 250 {
		t.Fatalf("samples = %d, want 250", n)
	}
	if peak > 1 {
		t.Fatalf("peak = %f", peak)
	}
}

func TestChime_SilentBookkeeping(t *testing.T) {
	c := NewSilentChime()
	req := swarm.BurstRequest{Particles: 100}

	c.RequestBurst(req)
	c.RequestBurst(req)
	if c.Played() != 2 {
		t.Fatalf("Played = %d, want 2", c.Played())
	}

	c.SetMuted(true)
	if !c.Muted() {
		t.Fatal("SetMuted(true) not reported")
	}
	c.RequestBurst(req)
	if c.Played() != 2 {
		t.Fatal("muted chime counted a burst")
	}

	c.SetMuted(false)
	c.Close()
	c.Close()
	c.RequestBurst(req)
	if c.Played() != 2 {
		t.Fatal("closed chime counted a burst")
	}
}

func TestChime_IsEffects(t *testing.T) {
	var _ swarm.Effects = NewSilentChime()
}
