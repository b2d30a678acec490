// Package config loads simulation tuning from YAML and persists viewer
// preferences between runs.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Garsondee/Particle-Header/internal/swarm"
)

// Range is a closed min/max interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Tuning is the on-disk form of swarm.Params. Durations are milliseconds.
//
// File location: configs/tuning.yaml (optional; defaults apply when absent)
type Tuning struct {
	Field struct {
		TotalParticles int     `yaml:"totalParticles"`
		Cols           int     `yaml:"cols"`
		Rows           int     `yaml:"rows"`
		GridFill       float64 `yaml:"gridFill"`
		SurfaceHeight  float64 `yaml:"surfaceHeight"`
		SpawnJitter    float64 `yaml:"spawnJitter"`
		ResizeThrottle int     `yaml:"resizeThrottleMs"`
	} `yaml:"field"`

	Agent struct {
		Radius       Range `yaml:"radius"`
		MaxSpeed     Range `yaml:"maxSpeed"`
		MaxForce     Range `yaml:"maxForce"`
		InitialSpeed Range `yaml:"initialSpeed"`
	} `yaml:"agent"`

	Pointer struct {
		RepelRadius   float64 `yaml:"repelRadius"`
		RepelGain     float64 `yaml:"repelGain"`
		AttractRadius float64 `yaml:"attractRadius"`
		AttractGain   float64 `yaml:"attractGain"`
	} `yaml:"pointer"`

	Steering struct {
		ArrivalRadius float64 `yaml:"arrivalRadius"`
		SteerScale    float64 `yaml:"steerScale"`
	} `yaml:"steering"`

	Capture struct {
		Radius           float64 `yaml:"radius"`
		HomingLerp       float64 `yaml:"homingLerp"`
		HomingSpeedScale float64 `yaml:"homingSpeedScale"`
		FlashMs          int     `yaml:"flashMs"`
		DotGrowthStep    float64 `yaml:"dotGrowthStep"`
	} `yaml:"capture"`

	Render struct {
		FadeOutStep  float64 `yaml:"fadeOutStep"`
		FadeInStep   float64 `yaml:"fadeInStep"`
		LinkOpacity  float64 `yaml:"linkOpacity"`
		LinkDistance float64 `yaml:"linkDistance"`
	} `yaml:"render"`

	Celebration struct {
		BurstOffsetsMs []int    `yaml:"burstOffsetsMs"`
		ResetAfterMs   int      `yaml:"resetAfterMs"`
		RevealAfterMs  int      `yaml:"revealAfterMs"`
		BurstParticles int      `yaml:"burstParticles"`
		BurstSpread    float64  `yaml:"burstSpread"`
		OriginX        float64  `yaml:"originX"`
		OriginY        float64  `yaml:"originY"`
		Palette        []string `yaml:"palette"`
	} `yaml:"celebration"`

	Protected struct {
		Width  float64 `yaml:"width"`
		Height float64 `yaml:"height"`
	} `yaml:"protected"`
}

// Default returns the stock tuning.
func Default() *Tuning {
	return FromParams(swarm.DefaultParams())
}

// FromParams converts simulation parameters to their file form.
func FromParams(p swarm.Params) *Tuning {
	t := &Tuning{}
	t.Field.TotalParticles = p.TotalParticles
	t.Field.Cols = p.Cols
	t.Field.Rows = p.Rows
	t.Field.GridFill = p.GridFill
	t.Field.SurfaceHeight = p.SurfaceHeight
	t.Field.SpawnJitter = p.SpawnJitter
	t.Field.ResizeThrottle = ms(p.ResizeThrottle)

	t.Agent.Radius = Range(p.Radius)
	t.Agent.MaxSpeed = Range(p.MaxSpeed)
	t.Agent.MaxForce = Range(p.MaxForce)
	t.Agent.InitialSpeed = Range(p.InitialSpeed)

	t.Pointer.RepelRadius = p.RepelRadius
	t.Pointer.RepelGain = p.RepelGain
	t.Pointer.AttractRadius = p.AttractRadius
	t.Pointer.AttractGain = p.AttractGain

	t.Steering.ArrivalRadius = p.ArrivalRadius
	t.Steering.SteerScale = p.SteerScale

	t.Capture.Radius = p.CaptureRadius
	t.Capture.HomingLerp = p.HomingLerp
	t.Capture.HomingSpeedScale = p.HomingSpeedScale
	t.Capture.FlashMs = ms(p.CaptureFlash)
	t.Capture.DotGrowthStep = p.DotGrowthStep

	t.Render.FadeOutStep = p.FadeOutStep
	t.Render.FadeInStep = p.FadeInStep
	t.Render.LinkOpacity = p.LinkOpacity
	t.Render.LinkDistance = p.LinkDistance

	for _, off := range p.BurstOffsets {
		t.Celebration.BurstOffsetsMs = append(t.Celebration.BurstOffsetsMs, ms(off))
	}
	t.Celebration.ResetAfterMs = ms(p.ResetAfter)
	t.Celebration.RevealAfterMs = ms(p.RevealAfter)
	t.Celebration.BurstParticles = p.BurstParticles
	t.Celebration.BurstSpread = p.BurstSpread
	t.Celebration.OriginX = p.BurstOrigin.X
	t.Celebration.OriginY = p.BurstOrigin.Y
	t.Celebration.Palette = append([]string(nil), p.BurstPalette...)

	t.Protected.Width = p.ProtectedWidth
	t.Protected.Height = p.ProtectedHeight
	return t
}

// Params converts the tuning to simulation parameters.
func (t *Tuning) Params() swarm.Params {
	p := swarm.Params{
		TotalParticles: t.Field.TotalParticles,
		Cols:           t.Field.Cols,
		Rows:           t.Field.Rows,
		GridFill:       t.Field.GridFill,
		SurfaceHeight:  t.Field.SurfaceHeight,
		SpawnJitter:    t.Field.SpawnJitter,
		ResizeThrottle: dur(t.Field.ResizeThrottle),

		Radius:       swarm.FloatRange(t.Agent.Radius),
		MaxSpeed:     swarm.FloatRange(t.Agent.MaxSpeed),
		MaxForce:     swarm.FloatRange(t.Agent.MaxForce),
		InitialSpeed: swarm.FloatRange(t.Agent.InitialSpeed),

		RepelRadius:   t.Pointer.RepelRadius,
		RepelGain:     t.Pointer.RepelGain,
		AttractRadius: t.Pointer.AttractRadius,
		AttractGain:   t.Pointer.AttractGain,

		ArrivalRadius: t.Steering.ArrivalRadius,
		SteerScale:    t.Steering.SteerScale,

		CaptureRadius:    t.Capture.Radius,
		HomingLerp:       t.Capture.HomingLerp,
		HomingSpeedScale: t.Capture.HomingSpeedScale,
		CaptureFlash:     dur(t.Capture.FlashMs),
		DotGrowthStep:    t.Capture.DotGrowthStep,

		FadeOutStep:  t.Render.FadeOutStep,
		FadeInStep:   t.Render.FadeInStep,
		LinkOpacity:  t.Render.LinkOpacity,
		LinkDistance: t.Render.LinkDistance,

		ResetAfter:     dur(t.Celebration.ResetAfterMs),
		RevealAfter:    dur(t.Celebration.RevealAfterMs),
		BurstParticles: t.Celebration.BurstParticles,
		BurstSpread:    t.Celebration.BurstSpread,
		BurstOrigin:    swarm.Vec2{X: t.Celebration.OriginX, Y: t.Celebration.OriginY},
		BurstPalette:   append([]string(nil), t.Celebration.Palette...),

		ProtectedWidth:  t.Protected.Width,
		ProtectedHeight: t.Protected.Height,
	}
	for _, off := range t.Celebration.BurstOffsetsMs {
		p.BurstOffsets = append(p.BurstOffsets, dur(off))
	}
	return p
}

// Load reads a tuning file. Keys missing from the file keep their default
// values.
func Load(path string) (*Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates tuning YAML.
func Parse(data []byte) (*Tuning, error) {
	t := Default()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse tuning config: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning config: %w", err)
	}
	return t, nil
}

// LoadOrDefault loads path, or returns the defaults when path is empty.
func LoadOrDefault(path string) (*Tuning, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Marshal encodes the tuning as YAML.
func (t *Tuning) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tuning config: %w", err)
	}
	return data, nil
}

// Validate reports the first out-of-range value.
func (t *Tuning) Validate() error {
	f := &t.Field
	if f.Cols <= 0 || f.Rows <= 0 {
		return fmt.Errorf("grid must have at least one cell, got %dx%d", f.Cols, f.Rows)
	}
	if f.TotalParticles <= 0 || f.TotalParticles > f.Cols*f.Rows {
		return fmt.Errorf("totalParticles %d must be in 1..%d", f.TotalParticles, f.Cols*f.Rows)
	}
	if f.GridFill <= 0 || f.GridFill > 1 {
		return fmt.Errorf("gridFill %.2f must be in (0,1]", f.GridFill)
	}
	if f.SurfaceHeight <= 0 || f.SurfaceHeight > 1 {
		return fmt.Errorf("surfaceHeight %.2f must be in (0,1]", f.SurfaceHeight)
	}
	if f.SpawnJitter < 0 {
		return fmt.Errorf("spawnJitter %.2f must not be negative", f.SpawnJitter)
	}
	if f.ResizeThrottle < 0 {
		return fmt.Errorf("resizeThrottleMs %d must not be negative", f.ResizeThrottle)
	}

	for name, r := range map[string]Range{
		"radius":       t.Agent.Radius,
		"maxSpeed":     t.Agent.MaxSpeed,
		"maxForce":     t.Agent.MaxForce,
		"initialSpeed": t.Agent.InitialSpeed,
	} {
		if r.Min < 0 || r.Min > r.Max {
			return fmt.Errorf("agent %s range invalid: min(%.2f) max(%.2f)", name, r.Min, r.Max)
		}
	}
	if t.Agent.MaxSpeed.Max <= 0 {
		return fmt.Errorf("agent maxSpeed must allow movement")
	}

	if t.Pointer.RepelRadius < 0 || t.Pointer.AttractRadius < t.Pointer.RepelRadius {
		return fmt.Errorf("pointer radii invalid: repel(%.1f) attract(%.1f)",
			t.Pointer.RepelRadius, t.Pointer.AttractRadius)
	}
	if t.Steering.ArrivalRadius < 0 {
		return fmt.Errorf("arrivalRadius %.1f must not be negative", t.Steering.ArrivalRadius)
	}
	if t.Capture.Radius < 0 {
		return fmt.Errorf("capture radius %.1f must not be negative", t.Capture.Radius)
	}
	if t.Capture.HomingLerp < 0 || t.Capture.HomingLerp > 1 {
		return fmt.Errorf("homingLerp %.2f must be in [0,1]", t.Capture.HomingLerp)
	}
	if t.Render.FadeOutStep <= 0 || t.Render.FadeInStep <= 0 {
		return fmt.Errorf("fade steps must be positive")
	}

	c := &t.Celebration
	if c.ResetAfterMs <= 0 || c.RevealAfterMs < 0 {
		return fmt.Errorf("celebration timeline invalid: reset(%d) reveal(%d)", c.ResetAfterMs, c.RevealAfterMs)
	}
	for i, off := range c.BurstOffsetsMs {
		if off < 0 || off >= c.ResetAfterMs {
			return fmt.Errorf("burst %d offset %dms must be in [0,%d)", i, off, c.ResetAfterMs)
		}
	}
	if c.BurstParticles < 0 {
		return fmt.Errorf("burstParticles %d must not be negative", c.BurstParticles)
	}
	if c.OriginX < 0 || c.OriginX > 1 || c.OriginY < 0 || c.OriginY > 1 {
		return fmt.Errorf("burst origin (%.2f,%.2f) must be normalized", c.OriginX, c.OriginY)
	}
	for _, hex := range c.Palette {
		if _, err := ParseHex(hex); err != nil {
			return fmt.Errorf("palette: %w", err)
		}
	}

	if t.Protected.Width < 0 || t.Protected.Height < 0 {
		return fmt.Errorf("protected region %.0fx%.0f must not be negative", t.Protected.Width, t.Protected.Height)
	}
	return nil
}

func ms(d time.Duration) int { return int(d / time.Millisecond) }

func dur(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }
