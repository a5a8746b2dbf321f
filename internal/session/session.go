package session

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math/rand/v2"

	"github.com/example/mandala/internal/canvas"
	"github.com/example/mandala/internal/export"
	"github.com/example/mandala/internal/history"
	"github.com/example/mandala/internal/render"
	"github.com/example/mandala/internal/symmetry"
)

const (
	DefaultOrder        = 25
	DefaultCanvasSize   = 800
	DefaultWidth        = 5
	DefaultHistoryLimit = 50

	MinWidth = 1
	MaxWidth = 50
)

var (
	DefaultColor      = color.RGBA{0x22, 0xd3, 0xee, 0xff}
	DefaultBackground = color.RGBA{0x11, 0x18, 0x27, 0xff}
	DefaultGridColor  = color.RGBA{0x1f, 0x29, 0x37, 0xff}
)

var (
	gridOrders  = []int{4, 6, 8, 10, 12, 16, 20, 25, 30, 36}
	canvasSizes = []int{400, 600, 800, 1000, 1200}
)

var (
	// ErrInvalidOrder is returned for grid orders outside GridOrders.
	ErrInvalidOrder = errors.New("unsupported grid order")
	// ErrInvalidCanvasSize is returned for sizes outside CanvasSizes.
	ErrInvalidCanvasSize = errors.New("unsupported canvas size")
)

// GridOrders returns the selectable symmetry orders.
func GridOrders() []int { return append([]int(nil), gridOrders...) }

// CanvasSizes returns the selectable square canvas dimensions.
func CanvasSizes() []int { return append([]int(nil), canvasSizes...) }

// Session is the drawing state behind one canvas: the surface, its
// history, the render parameters and the pointer gesture in progress.
// It is not safe for concurrent use.
type Session struct {
	surface  *canvas.Surface
	history  *history.Stack
	renderer *render.Renderer
	params   render.Params
	size     int

	historyLimit int
	rng          *rand.Rand

	drawing bool
	last    symmetry.Point
}

// Option modifies a Session during creation.
type Option func(*Session)

// WithColor sets the initial stroke colour.
func WithColor(c color.RGBA) Option { return func(s *Session) { s.params.Color = c } }

// WithBackground sets the canvas background colour.
func WithBackground(c color.RGBA) Option {
	return func(s *Session) { s.surface.SetBackground(c) }
}

// WithGridColor sets the spoke overlay colour.
func WithGridColor(c color.RGBA) Option {
	return func(s *Session) { s.surface.SetGridColor(c) }
}

// WithWidth sets the initial stroke width.
func WithWidth(w float64) Option { return func(s *Session) { s.params.Width = w } }

// WithOrder sets the initial symmetry order. Unsupported values snap to
// the nearest entry of GridOrders.
func WithOrder(n int) Option { return func(s *Session) { s.params.Mode.Order = n } }

// WithCanvasSize sets the initial canvas size. Unsupported values snap to
// the nearest entry of CanvasSizes.
func WithCanvasSize(n int) Option { return func(s *Session) { s.size = n } }

// WithHistoryLimit bounds the number of undo snapshots; zero is unbounded.
func WithHistoryLimit(n int) Option { return func(s *Session) { s.historyLimit = n } }

// WithRand sets the random source used in rainbow mode.
func WithRand(r *rand.Rand) Option { return func(s *Session) { s.rng = r } }

// New creates a Session with a freshly painted canvas.
func New(opts ...Option) *Session {
	s := &Session{
		surface: canvas.New(1, 1, DefaultBackground, DefaultGridColor),
		params: render.Params{
			Mode:  symmetry.Mode{Order: DefaultOrder},
			Color: DefaultColor,
			Width: DefaultWidth,
		},
		size:         DefaultCanvasSize,
		historyLimit: DefaultHistoryLimit,
	}
	for _, o := range opts {
		o(s)
	}
	s.params.Mode.Order = nearest(gridOrders, s.params.Mode.Order)
	s.params.Width = clampWidth(s.params.Width)
	s.size = nearest(canvasSizes, s.size)
	s.renderer = render.NewRenderer(s.rng)
	s.history = history.New(s.historyLimit)
	s.surface.Resize(s.size, s.size)
	s.surface.Repaint(s.params.Mode.Order)
	return s
}

func nearest(options []int, v int) int {
	best := options[0]
	for _, o := range options {
		if abs(o-v) < abs(best-v) {
			best = o
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ValidOrder reports whether n is one of GridOrders.
func ValidOrder(n int) bool { return indexOf(gridOrders, n) >= 0 }

// ValidCanvasSize reports whether n is one of CanvasSizes.
func ValidCanvasSize(n int) bool { return indexOf(canvasSizes, n) >= 0 }

func indexOf(options []int, v int) int {
	for i, o := range options {
		if o == v {
			return i
		}
	}
	return -1
}

func clampWidth(w float64) float64 {
	if w < MinWidth {
		return MinWidth
	}
	if w > MaxWidth {
		return MaxWidth
	}
	return w
}

// PointerDown starts a gesture at p and records an undo snapshot.
func (s *Session) PointerDown(p symmetry.Point) {
	s.drawing = true
	s.last = p
	s.history.Snapshot(s.surface)
}

// PointerMove strokes the segment from the previous pointer position to p
// when a gesture is active. It reports whether anything was drawn.
func (s *Session) PointerMove(p symmetry.Point) bool {
	if !s.drawing {
		return false
	}
	s.renderer.StrokeSegment(s.surface, symmetry.Segment{From: s.last, To: p}, s.params)
	s.last = p
	return true
}

// PointerUp ends the current gesture.
func (s *Session) PointerUp() { s.drawing = false }

// PointerLeave ends the current gesture when the pointer leaves the canvas.
func (s *Session) PointerLeave() { s.drawing = false }

// Drawing reports whether a gesture is in progress.
func (s *Session) Drawing() bool { return s.drawing }

// Params returns the current render parameters.
func (s *Session) Params() render.Params { return s.params }

// Color returns the stroke colour.
func (s *Session) Color() color.RGBA { return s.params.Color }

// SetColor changes the stroke colour.
func (s *Session) SetColor(c color.RGBA) { s.params.Color = c }

// Background returns the canvas background colour.
func (s *Session) Background() color.RGBA { return s.surface.Background() }

// SetBackground repaints the canvas with c and the grid overlay. Like a
// grid change it wipes the drawing without an undo entry.
func (s *Session) SetBackground(c color.RGBA) {
	s.surface.SetBackground(c)
	s.surface.Repaint(s.params.Mode.Order)
}

// SetGridColor changes the spoke colour used by later repaints.
func (s *Session) SetGridColor(c color.RGBA) { s.surface.SetGridColor(c) }

// Width returns the stroke width.
func (s *Session) Width() float64 { return s.params.Width }

// SetWidth changes the stroke width, clamped to [MinWidth, MaxWidth].
func (s *Session) SetWidth(w float64) { s.params.Width = clampWidth(w) }

// Order returns the symmetry order.
func (s *Session) Order() int { return s.params.Mode.Order }

// SetOrder switches the symmetry order and repaints a fresh background and
// grid. History is left alone.
func (s *Session) SetOrder(n int) error {
	if !ValidOrder(n) {
		return fmt.Errorf("%w: %d", ErrInvalidOrder, n)
	}
	s.setOrder(n)
	return nil
}

func (s *Session) setOrder(n int) {
	s.params.Mode.Order = n
	s.surface.Repaint(n)
}

// StepOrder moves delta entries through GridOrders, wrapping around.
func (s *Session) StepOrder(delta int) int {
	n := step(gridOrders, s.params.Mode.Order, delta)
	s.setOrder(n)
	return n
}

// CanvasSize returns the side length of the square canvas.
func (s *Session) CanvasSize() int { return s.size }

// SetCanvasSize reinitialises the surface at n×n, repaints background and
// grid, and drops the history.
func (s *Session) SetCanvasSize(n int) error {
	if !ValidCanvasSize(n) {
		return fmt.Errorf("%w: %d", ErrInvalidCanvasSize, n)
	}
	s.setCanvasSize(n)
	return nil
}

func (s *Session) setCanvasSize(n int) {
	s.size = n
	s.drawing = false
	s.surface.Resize(n, n)
	s.surface.Repaint(s.params.Mode.Order)
	s.history.Reset()
}

// StepCanvasSize moves delta entries through CanvasSizes, wrapping around.
func (s *Session) StepCanvasSize(delta int) int {
	n := step(canvasSizes, s.size, delta)
	s.setCanvasSize(n)
	return n
}

func step(options []int, cur, delta int) int {
	i := indexOf(options, cur)
	if i < 0 {
		return nearest(options, cur)
	}
	n := len(options)
	return options[((i+delta)%n+n)%n]
}

// Mirror reports whether mirror mode is on.
func (s *Session) Mirror() bool { return s.params.Mode.Mirror }

// SetMirror switches mirror mode.
func (s *Session) SetMirror(on bool) { s.params.Mode.Mirror = on }

// ToggleMirror flips mirror mode and returns the new state.
func (s *Session) ToggleMirror() bool {
	s.params.Mode.Mirror = !s.params.Mode.Mirror
	return s.params.Mode.Mirror
}

// Kaleidoscope reports whether kaleidoscope mode is on.
func (s *Session) Kaleidoscope() bool { return s.params.Mode.Kaleidoscope }

// SetKaleidoscope switches kaleidoscope mode.
func (s *Session) SetKaleidoscope(on bool) { s.params.Mode.Kaleidoscope = on }

// ToggleKaleidoscope flips kaleidoscope mode and returns the new state.
func (s *Session) ToggleKaleidoscope() bool {
	s.params.Mode.Kaleidoscope = !s.params.Mode.Kaleidoscope
	return s.params.Mode.Kaleidoscope
}

// Rainbow reports whether rainbow mode is on.
func (s *Session) Rainbow() bool { return s.params.Rainbow }

// SetRainbow switches rainbow mode.
func (s *Session) SetRainbow(on bool) { s.params.Rainbow = on }

// ToggleRainbow flips rainbow mode and returns the new state.
func (s *Session) ToggleRainbow() bool {
	s.params.Rainbow = !s.params.Rainbow
	return s.params.Rainbow
}

// Undo restores the state before the last gesture or clear.
func (s *Session) Undo() bool {
	s.drawing = false
	return s.history.Undo(s.surface)
}

// Redo reapplies the last undone change.
func (s *Session) Redo() bool {
	s.drawing = false
	return s.history.Redo(s.surface)
}

// CanUndo reports whether Undo would change the canvas.
func (s *Session) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports whether Redo would change the canvas.
func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// HistoryLen returns the undo and redo depths.
func (s *Session) HistoryLen() (undo, redo int) { return s.history.Len() }

// Clear records an undo snapshot and repaints background and grid.
func (s *Session) Clear() {
	s.history.Snapshot(s.surface)
	s.surface.Repaint(s.params.Mode.Order)
}

// Image returns the live canvas pixels. The image is replaced by canvas
// size changes and by undo/redo across sizes, so do not hold on to it.
func (s *Session) Image() *image.RGBA { return s.surface.Image() }

// Snapshot returns a copy of the canvas pixels.
func (s *Session) Snapshot() *image.RGBA { return s.surface.Snapshot() }

// Export encodes the canvas into w.
func (s *Session) Export(w io.Writer, f export.Format, opts export.Options) error {
	return export.Encode(w, s.surface.Image(), f, opts)
}
