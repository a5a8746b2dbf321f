package canvas

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/example/mandala/internal/symmetry"
)

var (
	bg   = color.RGBA{17, 24, 39, 255}
	grid = color.RGBA{31, 41, 55, 255}
	red  = color.RGBA{255, 0, 0, 255}
)

func TestNewFillsBackground(t *testing.T) {
	s := New(20, 10, bg, grid)
	if got := s.Size(); got != image.Pt(20, 10) {
		t.Fatalf("size %v", got)
	}
	if got := s.Image().RGBAAt(19, 9); got != bg {
		t.Fatalf("corner pixel %+v, want %+v", got, bg)
	}
	if c := s.Center(); c != symmetry.Pt(10, 5) {
		t.Fatalf("centre %+v", c)
	}
}

func TestStrokeLinePaintsAlongSegment(t *testing.T) {
	s := New(40, 40, bg, grid)
	s.StrokeLine(symmetry.Segment{From: symmetry.Pt(5, 20), To: symmetry.Pt(35, 20)}, red, 4)
	mid := s.Image().RGBAAt(20, 20)
	if mid.R < 200 || mid.G > 60 {
		t.Fatalf("expected red at the middle of the stroke, got %+v", mid)
	}
	if got := s.Image().RGBAAt(20, 5); got != bg {
		t.Fatalf("pixel away from the stroke changed: %+v", got)
	}
}

func TestStrokeLineRoundCap(t *testing.T) {
	s := New(40, 40, bg, grid)
	s.StrokeLine(symmetry.Segment{From: symmetry.Pt(10, 20), To: symmetry.Pt(30, 20)}, red, 8)
	// The cap extends half the width past the end point.
	if got := s.Image().RGBAAt(7, 20); got == bg {
		t.Fatal("expected the round cap to cover the pixel before the start point")
	}
}

func TestStrokeLineDot(t *testing.T) {
	s := New(20, 20, bg, grid)
	s.StrokeLine(symmetry.Segment{From: symmetry.Pt(10, 10), To: symmetry.Pt(10, 10)}, red, 6)
	if got := s.Image().RGBAAt(10, 10); got == bg {
		t.Fatal("expected a dot for a zero-length segment")
	}
}

func TestSnapshotRestore(t *testing.T) {
	s := New(16, 16, bg, grid)
	before := s.Snapshot()
	s.StrokeLine(symmetry.Segment{From: symmetry.Pt(0, 0), To: symmetry.Pt(15, 15)}, red, 3)
	if bytes.Equal(before.Pix, s.Image().Pix) {
		t.Fatal("stroke did not change pixels")
	}
	s.Restore(before)
	if !bytes.Equal(before.Pix, s.Image().Pix) {
		t.Fatal("restore did not reproduce the snapshot")
	}
	// The snapshot must be independent of later drawing.
	s.Fill(red)
	if before.RGBAAt(0, 0) != bg {
		t.Fatal("snapshot aliases the surface")
	}
}

func TestRestoreDifferentSize(t *testing.T) {
	s := New(8, 8, bg, grid)
	other := New(4, 6, red, grid).Snapshot()
	s.Restore(other)
	if got := s.Size(); got != image.Pt(4, 6) {
		t.Fatalf("size after restore %v", got)
	}
	s.StrokeLine(symmetry.Segment{From: symmetry.Pt(0, 0), To: symmetry.Pt(3, 5)}, bg, 1)
}

func TestResizeClears(t *testing.T) {
	s := New(10, 10, bg, grid)
	s.Fill(red)
	s.Resize(30, 30)
	if got := s.Size(); got != image.Pt(30, 30) {
		t.Fatalf("size %v", got)
	}
	if got := s.Image().RGBAAt(0, 0); got != bg {
		t.Fatalf("resized surface not cleared: %+v", got)
	}
}

func TestRepaintDrawsSpokes(t *testing.T) {
	s := New(20, 20, bg, grid)
	s.Fill(red)
	s.Repaint(4)
	img := s.Image()
	if got := img.RGBAAt(10, 10); got != grid {
		t.Fatalf("centre pixel %+v, want grid", got)
	}
	// Order 4 spokes run along the axes.
	for _, p := range []image.Point{{19, 10}, {10, 19}, {0, 10}, {10, 0}} {
		if got := img.RGBAAt(p.X, p.Y); got != grid {
			t.Fatalf("pixel %v = %+v, want grid", p, got)
		}
	}
	if got := img.RGBAAt(2, 17); got != bg {
		t.Fatalf("off-spoke pixel %+v, want background", got)
	}
}

func TestDrawLineClipsAndThickens(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	DrawLine(img, -5, 4, 14, 4, red, 3)
	for x := 0; x < 10; x++ {
		for _, y := range []int{3, 4, 5} {
			if got := img.RGBAAt(x, y); got != red {
				t.Fatalf("pixel (%d,%d) = %+v, want stroke", x, y, got)
			}
		}
	}
	if got := img.RGBAAt(4, 6); got != (color.RGBA{}) {
		t.Fatalf("pixel outside the line width painted: %+v", got)
	}
}
