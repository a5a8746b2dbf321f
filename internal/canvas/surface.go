package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/example/mandala/internal/symmetry"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// Surface is the raster the mandala is painted on. It is not safe for
// concurrent use.
type Surface struct {
	img        *image.RGBA
	background color.RGBA
	grid       color.RGBA

	dasher *rasterx.Dasher
	filler *rasterx.Filler
}

// New creates a w×h surface painted with the background colour. The grid
// overlay is not drawn until Repaint is called.
func New(w, h int, background, grid color.RGBA) *Surface {
	s := &Surface{background: background, grid: grid}
	s.reset(w, h)
	return s
}

func (s *Surface) reset(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
	s.dasher = nil
	s.filler = nil
	s.Fill(s.background)
}

// Image exposes the backing pixels. Callers must not retain it across
// Resize or Restore.
func (s *Surface) Image() *image.RGBA { return s.img }

// Size returns the surface dimensions in pixels.
func (s *Surface) Size() image.Point { return s.img.Bounds().Size() }

// Center returns the geometric centre of the surface.
func (s *Surface) Center() symmetry.Point {
	sz := s.Size()
	return symmetry.Pt(float64(sz.X)/2, float64(sz.Y)/2)
}

// Background returns the colour used by Fill and Repaint.
func (s *Surface) Background() color.RGBA { return s.background }

// SetBackground changes the background colour without repainting.
func (s *Surface) SetBackground(c color.RGBA) { s.background = c }

// GridColor returns the colour of the spoke overlay.
func (s *Surface) GridColor() color.RGBA { return s.grid }

// SetGridColor changes the spoke colour without repainting.
func (s *Surface) SetGridColor(c color.RGBA) { s.grid = c }

// Resize replaces the pixels with a blank w×h buffer.
func (s *Surface) Resize(w, h int) {
	s.reset(w, h)
}

// Fill paints the whole surface with c.
func (s *Surface) Fill(c color.RGBA) {
	draw.Draw(s.img, s.img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
}

// Repaint fills the background and draws the spoke overlay for order.
func (s *Surface) Repaint(order int) {
	s.Fill(s.background)
	s.DrawGrid(order)
}

// DrawGrid draws one hairline spoke per rotation of the given order.
func (s *Surface) DrawGrid(order int) {
	sz := s.Size()
	for _, sp := range symmetry.Spokes(order, float64(sz.X), float64(sz.Y)) {
		DrawLine(s.img,
			int(math.Round(sp.From.X)), int(math.Round(sp.From.Y)),
			int(math.Round(sp.To.X)), int(math.Round(sp.To.Y)),
			s.grid, 1)
	}
}

func (s *Surface) rasterizers() (*rasterx.Dasher, *rasterx.Filler) {
	if s.dasher == nil {
		sz := s.Size()
		scanner := rasterx.NewScannerGV(sz.X, sz.Y, s.img, s.img.Bounds())
		s.dasher = rasterx.NewDasher(sz.X, sz.Y, scanner)
		s.filler = rasterx.NewFiller(sz.X, sz.Y, scanner)
	}
	return s.dasher, s.filler
}

// StrokeLine draws an anti-aliased, round-capped line over the existing
// pixels. A segment whose ends coincide leaves a round dot.
func (s *Surface) StrokeLine(seg symmetry.Segment, col color.Color, width float64) {
	if width <= 0 {
		return
	}
	dasher, filler := s.rasterizers()
	if seg.From == seg.To {
		filler.Clear()
		filler.SetColor(col)
		rasterx.AddCircle(seg.From.X, seg.From.Y, width/2, filler)
		filler.Draw()
		return
	}
	dasher.Clear()
	dasher.SetStroke(fixed.Int26_6(width*64), 0, rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.ArcClip, nil, 0)
	dasher.SetColor(col)
	dasher.Start(rasterx.ToFixedP(seg.From.X, seg.From.Y))
	dasher.Line(rasterx.ToFixedP(seg.To.X, seg.To.Y))
	dasher.Stop(false)
	dasher.Draw()
}

// Snapshot returns a copy of the current pixels.
func (s *Surface) Snapshot() *image.RGBA {
	return clone(s.img)
}

// Restore replaces the pixels with a copy of snap. A snapshot of a
// different size resizes the surface.
func (s *Surface) Restore(snap *image.RGBA) {
	if snap == nil {
		return
	}
	if snap.Bounds() == s.img.Bounds() && snap.Stride == s.img.Stride {
		copy(s.img.Pix, snap.Pix)
		return
	}
	s.img = clone(snap)
	s.dasher = nil
	s.filler = nil
}

func clone(img *image.RGBA) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	if img.Stride == out.Stride {
		copy(out.Pix, img.Pix)
		return out
	}
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}
