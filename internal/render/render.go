package render

import (
	"image/color"
	"math/rand/v2"

	"github.com/example/mandala/internal/symmetry"
	"github.com/lucasb-eyer/go-colorful"
)

// Canvas is the surface the renderer strokes onto.
type Canvas interface {
	Center() symmetry.Point
	StrokeLine(seg symmetry.Segment, col color.Color, width float64)
}

// Params holds everything that affects how a segment is drawn.
type Params struct {
	Mode    symmetry.Mode
	Color   color.RGBA
	Width   float64
	Rainbow bool
}

// Renderer replicates pointer segments under the configured symmetry.
type Renderer struct {
	rng *rand.Rand
}

// NewRenderer creates a Renderer sampling rainbow hues from rng. A nil rng
// uses a randomly seeded source.
func NewRenderer(rng *rand.Rand) *Renderer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Renderer{rng: rng}
}

// StrokeSegment draws every symmetric copy of seg onto dst. In rainbow mode
// a single hue is sampled for the call and shared by all copies.
func (r *Renderer) StrokeSegment(dst Canvas, seg symmetry.Segment, p Params) {
	col := r.Color(p)
	for _, s := range symmetry.Expand(seg, dst.Center(), p.Mode) {
		dst.StrokeLine(s, col, p.Width)
	}
}

// Color returns the colour of the next segment.
func (r *Renderer) Color(p Params) color.RGBA {
	if !p.Rainbow {
		return p.Color
	}
	return HueColor(r.SampleHue())
}

// SampleHue draws a hue uniformly from [0, 360).
func (r *Renderer) SampleHue() float64 {
	return r.rng.Float64() * 360
}

// HueColor converts a hue in degrees to an opaque colour at full
// saturation and 50% lightness.
func HueColor(hue float64) color.RGBA {
	cr, cg, cb := colorful.Hsl(hue, 1, 0.5).Clamped().RGB255()
	return color.RGBA{R: cr, G: cg, B: cb, A: 255}
}
