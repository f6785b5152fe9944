package actor

// Rect is an axis-aligned box with y growing downwards.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

func (r Rect) Left() float64    { return r.X }
func (r Rect) Right() float64   { return r.X + r.Width }
func (r Rect) Top() float64     { return r.Y }
func (r Rect) Bottom() float64  { return r.Y + r.Height }
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

func (r Rect) Offset(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.Width &&
		r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height &&
		r.Y+r.Height > other.Y
}

// Solids is the static collision map actors move against.
type Solids struct {
	rects []Rect
}

func NewSolids(rects ...Rect) *Solids {
	return &Solids{rects: append([]Rect(nil), rects...)}
}

func (s *Solids) Add(r Rect) { s.rects = append(s.rects, r) }

func (s *Solids) Rects() []Rect {
	if s == nil {
		return nil
	}
	return s.rects
}

// Collide reports whether r overlaps any solid.
func (s *Solids) Collide(r Rect) bool {
	if s == nil {
		return false
	}
	for _, solid := range s.rects {
		if solid.Intersects(r) {
			return true
		}
	}
	return false
}
