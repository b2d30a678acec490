package swarm

// Rect is an axis-aligned rectangle in surface coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Vec2) bool {
	if r.Empty() {
		return false
	}
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Tracker resolves where the pointer is relative to the surface and whether it
// sits over protected content. It never rejects coordinates: anything off the
// surface simply reads as outside.
type Tracker struct {
	pointer Vec2
	inside  bool

	region        Rect // protected content, centred on the surface
	hoverRegion   bool // pointer inside region
	hoverExplicit bool // host said the pointer is over protected content

	width, height float64
}

func newTracker(width, height float64, p *Params) *Tracker {
	t := &Tracker{pointer: Vec2{width / 2, height / 2}}
	t.layout(width, height, p)
	return t
}

// layout re-centres the protected region after the surface changed size. A
// pointer the new surface no longer covers reads as outside; a pointer that
// was already outside stays outside until it moves.
func (t *Tracker) layout(width, height float64, p *Params) {
	t.width = width
	t.height = height
	t.inside = t.inside && t.inBounds(t.pointer)
	t.region = Rect{
		X: (width - p.ProtectedWidth) / 2,
		Y: (height - p.ProtectedHeight) / 2,
		W: p.ProtectedWidth,
		H: p.ProtectedHeight,
	}
	t.hoverRegion = t.region.Contains(t.pointer)
}

func (t *Tracker) inBounds(p Vec2) bool {
	return p.X >= 0 && p.X <= t.width && p.Y >= 0 && p.Y <= t.height
}

// move records a pointer position in surface coordinates.
func (t *Tracker) move(p Vec2) {
	t.pointer = p
	t.inside = t.inBounds(p)
	t.hoverRegion = t.region.Contains(p)
}

// touch records a touch-move. Only the first touch point counts; with no
// touch point the pointer is treated as having left the surface.
func (t *Tracker) touch(points []Vec2) {
	if len(points) == 0 {
		t.inside = false
		return
	}
	t.move(points[0])
}

func (t *Tracker) setHover(h bool) {
	t.hoverExplicit = h
}

// Pointer returns the last recorded pointer position.
func (t *Tracker) Pointer() Vec2 { return t.pointer }

// Inside reports whether the pointer is on the surface.
func (t *Tracker) Inside() bool { return t.inside }

// Hovering reports whether the pointer is over protected content.
func (t *Tracker) Hovering() bool { return t.hoverRegion || t.hoverExplicit }

// Region returns the protected content rectangle.
func (t *Tracker) Region() Rect { return t.region }
