package session

import (
	"bytes"
	"errors"
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/example/mandala/internal/symmetry"
)

func newTestSession(opts ...Option) *Session {
	base := []Option{
		WithCanvasSize(400),
		WithOrder(4),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	}
	return New(append(base, opts...)...)
}

func stroke(s *Session, from, to symmetry.Point) {
	s.PointerDown(from)
	s.PointerMove(to)
	s.PointerUp()
}

func pixel(s *Session, x, y int) color.RGBA {
	return s.Image().RGBAAt(x, y)
}

func TestNewSnapsOptions(t *testing.T) {
	s := New(WithOrder(7), WithCanvasSize(100), WithWidth(500))
	if s.Order() != 6 {
		t.Fatalf("order %d, want 6", s.Order())
	}
	if s.CanvasSize() != 400 {
		t.Fatalf("size %d, want 400", s.CanvasSize())
	}
	if s.Width() != MaxWidth {
		t.Fatalf("width %v, want %v", s.Width(), MaxWidth)
	}
	if got := s.Image().Bounds().Dx(); got != 400 {
		t.Fatalf("image width %d", got)
	}
}

func TestDefaults(t *testing.T) {
	s := New()
	if s.Order() != DefaultOrder || s.CanvasSize() != DefaultCanvasSize || s.Width() != DefaultWidth {
		t.Fatalf("unexpected defaults: order %d size %d width %v", s.Order(), s.CanvasSize(), s.Width())
	}
	if s.Color() != DefaultColor || s.Background() != DefaultBackground {
		t.Fatal("unexpected default colours")
	}
	if s.Mirror() || s.Kaleidoscope() || s.Rainbow() {
		t.Fatal("modes should start off")
	}
}

func TestGestureDrawsAndRecordsHistory(t *testing.T) {
	s := newTestSession()
	before := s.Snapshot()
	s.PointerDown(symmetry.Pt(250, 150))
	if !s.Drawing() {
		t.Fatal("expected a gesture in progress")
	}
	if !s.PointerMove(symmetry.Pt(260, 150)) {
		t.Fatal("move during a gesture should draw")
	}
	s.PointerUp()
	if s.Drawing() {
		t.Fatal("gesture should have ended")
	}
	if bytes.Equal(before.Pix, s.Image().Pix) {
		t.Fatal("stroke left the canvas unchanged")
	}
	if undo, redo := s.HistoryLen(); undo != 1 || redo != 0 {
		t.Fatalf("history %d/%d, want 1/0", undo, redo)
	}
}

func TestMoveWithoutDownIsIgnored(t *testing.T) {
	s := newTestSession()
	before := s.Snapshot()
	if s.PointerMove(symmetry.Pt(10, 10)) {
		t.Fatal("move without a gesture reported drawing")
	}
	s.PointerDown(symmetry.Pt(250, 150))
	s.PointerLeave()
	s.PointerMove(symmetry.Pt(260, 150))
	s.Undo()
	if !bytes.Equal(before.Pix, s.Image().Pix) {
		t.Fatal("canvas changed without an active gesture")
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	s := newTestSession()
	blank := s.Snapshot()
	stroke(s, symmetry.Pt(250, 150), symmetry.Pt(260, 150))
	drawn := s.Snapshot()

	if !s.Undo() {
		t.Fatal("undo reported nothing to do")
	}
	if !bytes.Equal(blank.Pix, s.Image().Pix) {
		t.Fatal("undo did not restore the blank canvas")
	}
	if !s.Redo() {
		t.Fatal("redo reported nothing to do")
	}
	if !bytes.Equal(drawn.Pix, s.Image().Pix) {
		t.Fatal("redo did not restore the stroke")
	}
	if s.Redo() {
		t.Fatal("second redo should be a no-op")
	}
}

func TestUndoOnEmptyHistory(t *testing.T) {
	s := newTestSession()
	before := s.Snapshot()
	if s.Undo() || s.Redo() {
		t.Fatal("empty history should not undo or redo")
	}
	if !bytes.Equal(before.Pix, s.Image().Pix) {
		t.Fatal("canvas changed")
	}
}

func TestNewGestureClearsRedo(t *testing.T) {
	s := newTestSession()
	stroke(s, symmetry.Pt(250, 150), symmetry.Pt(260, 150))
	s.Undo()
	if !s.CanRedo() {
		t.Fatal("expected redo after undo")
	}
	stroke(s, symmetry.Pt(300, 300), symmetry.Pt(310, 310))
	if s.CanRedo() {
		t.Fatal("new gesture should discard redo")
	}
}

func TestHistoryLimit(t *testing.T) {
	s := newTestSession(WithHistoryLimit(2))
	for i := 0; i < 3; i++ {
		stroke(s, symmetry.Pt(250, float64(100+i*10)), symmetry.Pt(260, float64(100+i*10)))
	}
	if undo, _ := s.HistoryLen(); undo != 2 {
		t.Fatalf("undo depth %d, want 2", undo)
	}
}

func TestMirrorAddsReflectedCopies(t *testing.T) {
	probe := func(mirror bool) color.RGBA {
		s := newTestSession()
		s.SetMirror(mirror)
		stroke(s, symmetry.Pt(250, 150), symmetry.Pt(260, 150))
		return pixel(s, 250, 145)
	}
	if got := probe(false); got != DefaultBackground {
		t.Fatalf("without mirror the probe is %v, want background", got)
	}
	if got := probe(true); got == DefaultBackground {
		t.Fatal("mirror copy missing at the probe")
	}
}

func TestClearIsUndoable(t *testing.T) {
	s := newTestSession()
	blank := s.Snapshot()
	stroke(s, symmetry.Pt(250, 150), symmetry.Pt(260, 150))
	drawn := s.Snapshot()
	s.Clear()
	if !bytes.Equal(blank.Pix, s.Image().Pix) {
		t.Fatal("clear did not repaint background and grid")
	}
	s.Undo()
	if !bytes.Equal(drawn.Pix, s.Image().Pix) {
		t.Fatal("undo after clear did not restore the drawing")
	}
}

func TestSetCanvasSizeResetsHistory(t *testing.T) {
	s := newTestSession()
	stroke(s, symmetry.Pt(250, 150), symmetry.Pt(260, 150))
	if err := s.SetCanvasSize(800); err != nil {
		t.Fatal(err)
	}
	if got := s.Image().Bounds().Size(); got.X != 800 || got.Y != 800 {
		t.Fatalf("size %v", got)
	}
	if s.CanUndo() || s.CanRedo() {
		t.Fatal("history should be empty after a resize")
	}
	if got := pixel(s, 400, 400); got != DefaultGridColor {
		t.Fatalf("centre pixel %v, want grid colour", got)
	}
	if got := pixel(s, 100, 700); got != DefaultBackground {
		t.Fatalf("off-spoke pixel %v, want background", got)
	}
}

func TestInvalidSettings(t *testing.T) {
	s := newTestSession()
	if err := s.SetOrder(7); !errors.Is(err, ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder, got %v", err)
	}
	if err := s.SetCanvasSize(500); !errors.Is(err, ErrInvalidCanvasSize) {
		t.Fatalf("expected ErrInvalidCanvasSize, got %v", err)
	}
	if s.Order() != 4 || s.CanvasSize() != 400 {
		t.Fatal("invalid settings changed the session")
	}
}

func TestSetOrderKeepsHistory(t *testing.T) {
	s := newTestSession()
	stroke(s, symmetry.Pt(250, 150), symmetry.Pt(260, 150))
	if err := s.SetOrder(8); err != nil {
		t.Fatal(err)
	}
	if !s.CanUndo() {
		t.Fatal("order change should not drop history")
	}
	if s.Params().Mode.Order != 8 {
		t.Fatal("render params not updated")
	}
}

func TestSetBackgroundRepaints(t *testing.T) {
	s := newTestSession()
	stroke(s, symmetry.Pt(250, 150), symmetry.Pt(260, 150))
	bg := color.RGBA{0xff, 0xff, 0xff, 0xff}
	s.SetBackground(bg)
	if got := pixel(s, 255, 150); got != bg {
		t.Fatalf("stroke survived background change: %v", got)
	}
	if got := pixel(s, 200, 200); got != DefaultGridColor {
		t.Fatalf("grid missing after background change: %v", got)
	}
}

func TestSteppers(t *testing.T) {
	s := newTestSession(WithOrder(36), WithCanvasSize(1200))
	if n := s.StepOrder(1); n != 4 {
		t.Fatalf("order wrapped to %d, want 4", n)
	}
	if n := s.StepOrder(-1); n != 36 {
		t.Fatalf("order wrapped to %d, want 36", n)
	}
	if n := s.StepCanvasSize(1); n != 400 {
		t.Fatalf("size wrapped to %d, want 400", n)
	}
	if s.Image().Bounds().Dx() != 400 {
		t.Fatal("surface not resized")
	}
}

func TestWidthAndToggles(t *testing.T) {
	s := newTestSession()
	s.SetWidth(0)
	if s.Width() != MinWidth {
		t.Fatalf("width %v, want %v", s.Width(), MinWidth)
	}
	s.SetWidth(12)
	if s.Width() != 12 {
		t.Fatalf("width %v", s.Width())
	}
	if !s.ToggleMirror() || !s.ToggleKaleidoscope() || !s.ToggleRainbow() {
		t.Fatal("toggles should switch modes on")
	}
	if s.ToggleMirror() || s.Mirror() {
		t.Fatal("second toggle should switch mirror off")
	}
	p := s.Params()
	if !p.Mode.Kaleidoscope || !p.Rainbow {
		t.Fatal("params out of sync with toggles")
	}
}

func TestOptionLists(t *testing.T) {
	orders := GridOrders()
	orders[0] = 99
	if GridOrders()[0] == 99 {
		t.Fatal("GridOrders exposed its backing array")
	}
	if got := len(CanvasSizes()); got != 5 {
		t.Fatalf("%d canvas sizes", got)
	}
	for _, n := range GridOrders() {
		if !ValidOrder(n) {
			t.Errorf("order %d rejected", n)
		}
	}
	if ValidOrder(7) || ValidCanvasSize(500) || !ValidCanvasSize(1200) {
		t.Fatal("validators disagree with the option lists")
	}
}
