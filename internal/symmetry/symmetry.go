package symmetry

import "math"

// Point is a position in surface pixel coordinates.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Segment is a line between two pointer positions.
type Segment struct {
	From, To Point
}

// Mode describes how a segment is replicated around the surface centre.
type Mode struct {
	// Order is the number of rotational copies. Values below one are
	// treated as one.
	Order        int
	Mirror       bool
	Kaleidoscope bool
}

func (m Mode) order() int {
	if m.Order < 1 {
		return 1
	}
	return m.Order
}

// Reflections reports how many copies are produced for each rotation.
func (m Mode) Reflections() int {
	switch {
	case m.Kaleidoscope:
		return 4
	case m.Mirror:
		return 2
	default:
		return 1
	}
}

// Copies returns the number of segments Expand produces for one input segment.
func (m Mode) Copies() int {
	return m.order() * m.Reflections()
}

// Angle returns the rotation applied to the i-th copy.
func (m Mode) Angle(i int) float64 {
	return 2 * math.Pi / float64(m.order()) * float64(i)
}

// Rotate turns p around c by theta radians. With y pointing down a positive
// angle rotates clockwise on screen.
func Rotate(p, c Point, theta float64) Point {
	sin, cos := math.Sincos(theta)
	dx := p.X - c.X
	dy := p.Y - c.Y
	return Point{
		X: c.X + dx*cos - dy*sin,
		Y: c.Y + dx*sin + dy*cos,
	}
}

// FlipH reflects p about the vertical axis through c.
func FlipH(p, c Point) Point { return Point{X: 2*c.X - p.X, Y: p.Y} }

// FlipV reflects p about the horizontal axis through c.
func FlipV(p, c Point) Point { return Point{X: p.X, Y: 2*c.Y - p.Y} }

// Reflect is the point reflection of p through c.
func Reflect(p, c Point) Point { return Point{X: 2*c.X - p.X, Y: 2*c.Y - p.Y} }

func (s Segment) apply(fn func(Point) Point) Segment {
	return Segment{From: fn(s.From), To: fn(s.To)}
}

// Rotate returns s turned around c by theta radians.
func (s Segment) Rotate(c Point, theta float64) Segment {
	return s.apply(func(p Point) Point { return Rotate(p, c, theta) })
}

// Expand returns every copy of seg that m asks for. For each rotation i the
// plain copy comes first, followed by the horizontal mirror and, in
// kaleidoscope mode, the vertical mirror and the point reflection. The
// reflections are taken in the unrotated frame and then rotated with the
// plain copy.
func Expand(seg Segment, c Point, m Mode) []Segment {
	n := m.order()
	out := make([]Segment, 0, m.Copies())
	base := []Segment{seg}
	if m.Mirror || m.Kaleidoscope {
		base = append(base, seg.apply(func(p Point) Point { return FlipH(p, c) }))
	}
	if m.Kaleidoscope {
		base = append(base,
			seg.apply(func(p Point) Point { return FlipV(p, c) }),
			seg.apply(func(p Point) Point { return Reflect(p, c) }),
		)
	}
	for i := 0; i < n; i++ {
		theta := m.Angle(i)
		for _, b := range base {
			if i == 0 {
				out = append(out, b)
				continue
			}
			out = append(out, b.Rotate(c, theta))
		}
	}
	return out
}

// Spokes returns the grid overlay for the given order: one segment per
// rotation from the centre of a w×h surface, reaching past its edge.
func Spokes(order int, w, h float64) []Segment {
	m := Mode{Order: order}
	n := m.order()
	c := Point{X: w / 2, Y: h / 2}
	out := make([]Segment, 0, n)
	for i := 0; i < n; i++ {
		sin, cos := math.Sincos(m.Angle(i))
		out = append(out, Segment{From: c, To: Point{X: c.X + cos*w, Y: c.Y + sin*h}})
	}
	return out
}
