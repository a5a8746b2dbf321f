package symmetry

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b Point) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}

func TestExpandCopyCounts(t *testing.T) {
	seg := Segment{From: Pt(10, 20), To: Pt(30, 25)}
	c := Pt(50, 50)
	for n := 1; n <= 36; n++ {
		base := len(Expand(seg, c, Mode{Order: n}))
		if base != n {
			t.Fatalf("order %d: got %d copies, want %d", n, base, n)
		}
		mirror := len(Expand(seg, c, Mode{Order: n, Mirror: true}))
		if mirror != 2*base {
			t.Fatalf("order %d mirror: got %d copies, want %d", n, mirror, 2*base)
		}
		kal := len(Expand(seg, c, Mode{Order: n, Kaleidoscope: true}))
		if kal != 4*base {
			t.Fatalf("order %d kaleidoscope: got %d copies, want %d", n, kal, 4*base)
		}
		both := len(Expand(seg, c, Mode{Order: n, Mirror: true, Kaleidoscope: true}))
		if both != 4*base {
			t.Fatalf("order %d mirror+kaleidoscope: got %d copies, want %d", n, both, 4*base)
		}
	}
}

func TestExpandRotatesAboutCentre(t *testing.T) {
	seg := Segment{From: Pt(60, 50), To: Pt(70, 40)}
	c := Pt(50, 50)
	const n = 8
	out := Expand(seg, c, Mode{Order: n})
	for i, got := range out {
		theta := 2 * math.Pi * float64(i) / n
		want := Segment{From: Rotate(seg.From, c, theta), To: Rotate(seg.To, c, theta)}
		if !near(got.From, want.From) || !near(got.To, want.To) {
			t.Fatalf("copy %d: got %+v want %+v", i, got, want)
		}
		// Rotation preserves the distance to the centre.
		if d0, d1 := math.Hypot(seg.To.X-c.X, seg.To.Y-c.Y), math.Hypot(got.To.X-c.X, got.To.Y-c.Y); math.Abs(d0-d1) > eps {
			t.Fatalf("copy %d: radius changed %v -> %v", i, d0, d1)
		}
	}
}

func TestQuarterTurn(t *testing.T) {
	got := Rotate(Pt(60, 50), Pt(50, 50), math.Pi/2)
	if !near(got, Pt(50, 60)) {
		t.Fatalf("quarter turn: got %+v", got)
	}
}

func TestOrderOneIsIdentity(t *testing.T) {
	seg := Segment{From: Pt(1, 2), To: Pt(3, 4)}
	out := Expand(seg, Pt(100, 100), Mode{Order: 1})
	if len(out) != 1 || out[0] != seg {
		t.Fatalf("unexpected copies %+v", out)
	}
	if got := (Mode{Order: 0}).Copies(); got != 1 {
		t.Fatalf("order 0 copies = %d, want 1", got)
	}
}

func TestMirrorCopiesReflectAboutVerticalAxis(t *testing.T) {
	seg := Segment{From: Pt(10, 20), To: Pt(30, 40)}
	c := Pt(50, 50)
	out := Expand(seg, c, Mode{Order: 1, Mirror: true})
	if len(out) != 2 {
		t.Fatalf("got %d copies", len(out))
	}
	want := Segment{From: Pt(90, 20), To: Pt(70, 40)}
	if !near(out[1].From, want.From) || !near(out[1].To, want.To) {
		t.Fatalf("mirror copy %+v, want %+v", out[1], want)
	}
}

func TestKaleidoscopeCopies(t *testing.T) {
	seg := Segment{From: Pt(10, 20), To: Pt(30, 40)}
	c := Pt(50, 50)
	out := Expand(seg, c, Mode{Order: 1, Kaleidoscope: true})
	want := []Segment{
		seg,
		{From: Pt(90, 20), To: Pt(70, 40)},
		{From: Pt(10, 80), To: Pt(30, 60)},
		{From: Pt(90, 80), To: Pt(70, 60)},
	}
	for i := range want {
		if !near(out[i].From, want[i].From) || !near(out[i].To, want[i].To) {
			t.Fatalf("copy %d: got %+v want %+v", i, out[i], want[i])
		}
	}
}

func TestSpokes(t *testing.T) {
	spokes := Spokes(4, 100, 100)
	if len(spokes) != 4 {
		t.Fatalf("got %d spokes", len(spokes))
	}
	for _, s := range spokes {
		if !near(s.From, Pt(50, 50)) {
			t.Fatalf("spoke does not start at centre: %+v", s)
		}
	}
	if !near(spokes[0].To, Pt(150, 50)) {
		t.Fatalf("first spoke ends at %+v", spokes[0].To)
	}
	if !near(spokes[1].To, Pt(50, 150)) {
		t.Fatalf("second spoke ends at %+v", spokes[1].To)
	}
}
