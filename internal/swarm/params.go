package swarm

import "time"

// FloatRange is a closed interval sampled uniformly at agent creation.
type FloatRange struct {
	Min, Max float64
}

// Params holds every tunable constant of the simulation. DefaultParams
// returns the stock values; internal/config can load overrides.
type Params struct {
	// Field layout.
	TotalParticles int
	Cols, Rows     int
	GridFill       float64 // fraction of the surface the grid spans
	SurfaceHeight  float64 // surface height as a fraction of the viewport height
	SpawnJitter    float64 // initial offset as a fraction of surface extent

	// Per-agent random constants.
	Radius       FloatRange
	MaxSpeed     FloatRange
	MaxForce     FloatRange
	InitialSpeed FloatRange

	// Pointer influence on free agents.
	RepelRadius   float64
	RepelGain     float64
	AttractRadius float64
	AttractGain   float64

	// Arrival steering toward the rest target.
	ArrivalRadius float64
	SteerScale    float64

	// Capture and homing.
	CaptureRadius    float64
	HomingLerp       float64
	HomingSpeedScale float64

	// Opacity.
	FadeOutStep   float64
	FadeInStep    float64
	LinkOpacity   float64 // agents at or below this opacity draw no links
	LinkDistance  float64
	CaptureFlash  time.Duration
	DotGrowthStep float64

	// Resize throttle.
	ResizeThrottle time.Duration

	// Celebration timeline, all relative to the trigger.
	BurstOffsets []time.Duration
	ResetAfter   time.Duration
	RevealAfter  time.Duration // measured from the reset boundary

	// Burst request.
	BurstParticles int
	BurstSpread    float64
	BurstOrigin    Vec2
	BurstPalette   []string

	// Protected content region, centred on the surface. Zero size disables
	// automatic hover detection.
	ProtectedWidth  float64
	ProtectedHeight float64
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		TotalParticles: 80,
		Cols:           10,
		Rows:           8,
		GridFill:       0.95,
		SurfaceHeight:  0.95,
		SpawnJitter:    0.05,

		Radius:       FloatRange{2, 4},
		MaxSpeed:     FloatRange{1, 3},
		MaxForce:     FloatRange{0.1, 0.3},
		InitialSpeed: FloatRange{0.5, 1.5},

		RepelRadius:   120,
		RepelGain:     0.05,
		AttractRadius: 200,
		AttractGain:   0.01,

		ArrivalRadius: 100,
		SteerScale:    0.1,

		CaptureRadius:    60,
		HomingLerp:       0.1,
		HomingSpeedScale: 2,

		FadeOutStep:   15,
		FadeInStep:    10,
		LinkOpacity:   40,
		LinkDistance:  100,
		CaptureFlash:  time.Second,
		DotGrowthStep: 0.01,

		ResizeThrottle: 500 * time.Millisecond,

		BurstOffsets: []time.Duration{0, 800 * time.Millisecond, 1600 * time.Millisecond, 2400 * time.Millisecond},
		ResetAfter:   4 * time.Second,
		RevealAfter:  5 * time.Second,

		BurstParticles: 100,
		BurstSpread:    70,
		BurstOrigin:    Vec2{0.5, 0.5},
		BurstPalette:   []string{"#9b87f5", "#D946EF", "#F97316", "#0EA5E9", "#8B5CF6"},

		ProtectedWidth:  256,
		ProtectedHeight: 128,
	}
}
