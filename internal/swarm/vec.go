package swarm

import "math"

// Vec2 is a 2D vector in surface pixel space.
type Vec2 struct{ X, Y float64 }

func (a Vec2) Add(b Vec2) Vec2      { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2      { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Scale(s float64) Vec2 { return Vec2{a.X * s, a.Y * s} }
func (a Vec2) Len2() float64        { return a.X*a.X + a.Y*a.Y }
func (a Vec2) Len() float64         { return math.Sqrt(a.Len2()) }

// Dist returns the Euclidean distance between a and b.
func (a Vec2) Dist(b Vec2) float64 { return b.Sub(a).Len() }

// WithLen returns a vector pointing the same way as a with length l.
// A zero vector stays zero. A negative l flips the direction.
func (a Vec2) WithLen(l float64) Vec2 {
	n := a.Len()
	if n == 0 {
		return Vec2{}
	}
	return a.Scale(l / n)
}

// Limit caps the length of a at max.
func (a Vec2) Limit(max float64) Vec2 {
	n2 := a.Len2()
	if n2 > max*max {
		return a.Scale(max / math.Sqrt(n2))
	}
	return a
}

// Lerp moves a toward b by fraction t.
func (a Vec2) Lerp(b Vec2, t float64) Vec2 {
	return Vec2{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// mapRange linearly maps v from [inLo,inHi] onto [outLo,outHi] without clamping.
func mapRange(v, inLo, inHi, outLo, outHi float64) float64 {
	if inHi == inLo {
		return outLo
	}
	return outLo + (v-inLo)*(outHi-outLo)/(inHi-inLo)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
