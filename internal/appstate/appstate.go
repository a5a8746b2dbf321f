package appstate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"

	"github.com/example/mandala/internal/canvas"
	"github.com/example/mandala/internal/session"
	"github.com/example/mandala/internal/theme"
)

const (
	statusHeight = 24
	buttonHeight = 22
	headingGap   = 18
	widthRow     = 16
	swatchSize   = 18
	swatchGap    = 3
	pad          = 6
)

var toolbarWidth = 132

// PaletteColor is a named stroke or background colour offered in the UI.
type PaletteColor struct {
	Name  string
	Color color.RGBA
}

var strokePalette = []PaletteColor{
	{"cyan", session.DefaultColor},
	{"pink", color.RGBA{0xf4, 0x72, 0xb6, 0xff}},
	{"amber", color.RGBA{0xfb, 0xbf, 0x24, 0xff}},
	{"lime", color.RGBA{0xa3, 0xe6, 0x35, 0xff}},
	{"violet", color.RGBA{0xa7, 0x8b, 0xfa, 0xff}},
	{"red", color.RGBA{0xf8, 0x71, 0x71, 0xff}},
	{"blue", color.RGBA{0x60, 0xa5, 0xfa, 0xff}},
	{"emerald", color.RGBA{0x34, 0xd3, 0x99, 0xff}},
	{"orange", color.RGBA{0xfb, 0x92, 0x3c, 0xff}},
	{"white", color.RGBA{0xff, 0xff, 0xff, 0xff}},
	{"slate", color.RGBA{0x94, 0xa3, 0xb8, 0xff}},
	{"black", color.RGBA{0x00, 0x00, 0x00, 0xff}},
}

var backgroundPalette = []PaletteColor{
	{"night", session.DefaultBackground},
	{"black", color.RGBA{0x00, 0x00, 0x00, 0xff}},
	{"indigo", color.RGBA{0x1e, 0x1b, 0x4b, 0xff}},
	{"teal", color.RGBA{0x04, 0x2f, 0x2e, 0xff}},
	{"paper", color.RGBA{0xfe, 0xf3, 0xc7, 0xff}},
	{"white", color.RGBA{0xff, 0xff, 0xff, 0xff}},
}

var widthOptions = []float64{1, 2, 3, 5, 8, 12, 20, 30, 50}

// StrokePalette returns the stroke colours shown in the toolbar.
func StrokePalette() []PaletteColor { return append([]PaletteColor(nil), strokePalette...) }

// BackgroundPalette returns the background colours shown in the toolbar.
func BackgroundPalette() []PaletteColor {
	return append([]PaletteColor(nil), backgroundPalette...)
}

// WidthOptions returns the stroke widths shown in the toolbar.
func WidthOptions() []float64 { return append([]float64(nil), widthOptions...) }

// stepWidth returns the next width option above (delta > 0) or below
// (delta < 0) cur, staying at the ends of the list.
func stepWidth(cur float64, delta int) float64 {
	if delta > 0 {
		for _, w := range widthOptions {
			if w > cur {
				return w
			}
		}
		return widthOptions[len(widthOptions)-1]
	}
	for i := len(widthOptions) - 1; i >= 0; i-- {
		if widthOptions[i] < cur {
			return widthOptions[i]
		}
	}
	return widthOptions[0]
}

var messageFace font.Face

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	messageFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: 13, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
}

// layout places the toolbar, canvas and status bar inside the window.
type layout struct {
	toolbar image.Rectangle
	canvas  image.Rectangle
	status  image.Rectangle
}

// fitZoom returns the largest scale not above 1 that fits a size×size
// canvas into an availW×availH area.
func fitZoom(size, availW, availH int) float64 {
	if size <= 0 || availW <= 0 || availH <= 0 {
		return 1
	}
	z := math.Min(float64(availW)/float64(size), float64(availH)/float64(size))
	return math.Min(z, 1)
}

func computeLayout(winW, winH, canvasSize int) layout {
	l := layout{
		toolbar: image.Rect(0, 0, toolbarWidth, winH-statusHeight),
		status:  image.Rect(0, winH-statusHeight, winW, winH),
	}
	availW := winW - toolbarWidth - 2*pad
	availH := winH - statusHeight - 2*pad
	z := fitZoom(canvasSize, availW, availH)
	side := int(float64(canvasSize) * z)
	x0 := toolbarWidth + pad + (availW-side)/2
	y0 := pad + (availH-side)/2
	l.canvas = image.Rect(x0, y0, x0+side, y0+side)
	return l
}

// toCanvas maps a window position onto surface pixel coordinates for a
// canvas of the given size drawn into dst.
func toCanvas(x, y float64, dst image.Rectangle, size int) (float64, float64) {
	if dst.Dx() == 0 || dst.Dy() == 0 {
		return 0, 0
	}
	sx := float64(size) / float64(dst.Dx())
	sy := float64(size) / float64(dst.Dy())
	return (x - float64(dst.Min.X)) * sx, (y - float64(dst.Min.Y)) * sy
}

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

// shortcutList is a helper to easily satisfy the KeyboardShortcuts interface.
type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// ButtonView is an immutable description of a control, built on the event
// goroutine and drawn on the paint goroutine.
type ButtonView struct {
	Rect    image.Rectangle
	State   ButtonState
	Active  bool
	Heading bool
	Label   string
	Swatch  *color.RGBA
	Stroke  float64
}

// Button represents an interactive toolbar element. Activate performs the
// button's action; alt is set for a secondary (right) click.
type Button interface {
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Height() int
	Activate(alt bool)
	View(state ButtonState) ButtonView
}

// Heading labels a toolbar section.
type Heading struct {
	label string
	rect  image.Rectangle
}

func (h *Heading) Rect() image.Rectangle     { return h.rect }
func (h *Heading) SetRect(r image.Rectangle) { h.rect = r }
func (h *Heading) Height() int               { return headingGap }
func (h *Heading) Activate(bool)             {}
func (h *Heading) View(ButtonState) ButtonView {
	return ButtonView{Rect: h.rect, Heading: true, Label: h.label}
}

// ActionButton runs onActivate when clicked.
type ActionButton struct {
	label      string
	rect       image.Rectangle
	onActivate func()
}

func (b *ActionButton) Rect() image.Rectangle     { return b.rect }
func (b *ActionButton) SetRect(r image.Rectangle) { b.rect = r }
func (b *ActionButton) Height() int               { return buttonHeight }
func (b *ActionButton) Activate(bool) {
	if b.onActivate != nil {
		b.onActivate()
	}
}
func (b *ActionButton) View(state ButtonState) ButtonView {
	return ButtonView{Rect: b.rect, State: state, Label: b.label}
}

// ToggleButton shows an on/off mode and flips it when clicked.
type ToggleButton struct {
	label    string
	rect     image.Rectangle
	on       func() bool
	onToggle func()
}

func (b *ToggleButton) Rect() image.Rectangle     { return b.rect }
func (b *ToggleButton) SetRect(r image.Rectangle) { b.rect = r }
func (b *ToggleButton) Height() int               { return buttonHeight }
func (b *ToggleButton) Activate(bool) {
	if b.onToggle != nil {
		b.onToggle()
	}
}
func (b *ToggleButton) View(state ButtonState) ButtonView {
	return ButtonView{Rect: b.rect, State: state, Label: b.label, Active: b.on != nil && b.on()}
}

// CyclerButton steps through a fixed option list: forward on a primary
// click, backward on a secondary click.
type CyclerButton struct {
	label func() string
	rect  image.Rectangle
	step  func(delta int)
}

func (b *CyclerButton) Rect() image.Rectangle     { return b.rect }
func (b *CyclerButton) SetRect(r image.Rectangle) { b.rect = r }
func (b *CyclerButton) Height() int               { return buttonHeight }
func (b *CyclerButton) Activate(alt bool) {
	if b.step == nil {
		return
	}
	if alt {
		b.step(-1)
		return
	}
	b.step(1)
}
func (b *CyclerButton) View(state ButtonState) ButtonView {
	return ButtonView{Rect: b.rect, State: state, Label: b.label()}
}

// SwatchButton picks a colour. Consecutive swatches flow into rows.
type SwatchButton struct {
	col      color.RGBA
	rect     image.Rectangle
	selected func() bool
	pick     func(color.RGBA)
}

func (b *SwatchButton) Rect() image.Rectangle     { return b.rect }
func (b *SwatchButton) SetRect(r image.Rectangle) { b.rect = r }
func (b *SwatchButton) Height() int               { return swatchSize }
func (b *SwatchButton) Activate(bool) {
	if b.pick != nil {
		b.pick(b.col)
	}
}
func (b *SwatchButton) View(state ButtonState) ButtonView {
	c := b.col
	return ButtonView{Rect: b.rect, State: state, Swatch: &c, Active: b.selected != nil && b.selected()}
}

// WidthButton picks a stroke width and previews it.
type WidthButton struct {
	width    float64
	rect     image.Rectangle
	selected func() bool
	pick     func(float64)
}

func (b *WidthButton) Rect() image.Rectangle     { return b.rect }
func (b *WidthButton) SetRect(r image.Rectangle) { b.rect = r }
func (b *WidthButton) Height() int               { return widthRow }
func (b *WidthButton) Activate(bool) {
	if b.pick != nil {
		b.pick(b.width)
	}
}
func (b *WidthButton) View(state ButtonState) ButtonView {
	return ButtonView{
		Rect:   b.rect,
		State:  state,
		Label:  fmt.Sprintf("%g", b.width),
		Stroke: b.width,
		Active: b.selected != nil && b.selected(),
	}
}

// arrangeToolbar assigns rectangles top to bottom within a toolbar of the
// given width. Runs of swatches wrap into rows. It returns the bottom edge
// of the last control.
func arrangeToolbar(buttons []Button, width int) int {
	y := pad
	x := pad
	inSwatches := false
	for _, b := range buttons {
		if _, ok := b.(*SwatchButton); ok {
			if !inSwatches {
				x = pad
				inSwatches = true
			}
			if x+swatchSize > width-pad {
				x = pad
				y += swatchSize + swatchGap
			}
			b.SetRect(image.Rect(x, y, x+swatchSize, y+swatchSize))
			x += swatchSize + swatchGap
			continue
		}
		if inSwatches {
			y += swatchSize + swatchGap
			inSwatches = false
		}
		h := b.Height()
		b.SetRect(image.Rect(pad, y, width-pad, y+h))
		y += h
		if _, ok := b.(*Heading); !ok {
			y += 2
		}
	}
	if inSwatches {
		y += swatchSize
	}
	return y
}

// hitTest returns the index of the clickable control under p, or -1.
func hitTest(buttons []Button, p image.Point) int {
	for i, b := range buttons {
		if _, ok := b.(*Heading); ok {
			continue
		}
		if p.In(b.Rect()) {
			return i
		}
	}
	return -1
}

func drawButton(dst *image.RGBA, v ButtonView, th *theme.Theme, stroke color.RGBA) {
	switch {
	case v.Heading:
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.SectionText), Face: basicfont.Face7x13,
			Dot: fixed.P(v.Rect.Min.X, v.Rect.Max.Y-4)}
		d.DrawString(v.Label)
		return
	case v.Swatch != nil:
		border := th.SwatchBorder
		if v.Active {
			border = th.SwatchSelected
		}
		draw.Draw(dst, v.Rect, &image.Uniform{border}, image.Point{}, draw.Src)
		draw.Draw(dst, v.Rect.Inset(2), &image.Uniform{*v.Swatch}, image.Point{}, draw.Src)
		if v.State == StateHover {
			draw.Draw(dst, v.Rect.Inset(2), &image.Uniform{color.RGBA{255, 255, 255, 60}}, image.Point{}, draw.Over)
		}
		return
	}

	bg := th.ButtonBackground
	fg := th.ButtonText
	switch {
	case v.Active:
		bg = th.ButtonBackgroundActive
		fg = th.ButtonTextActive
	case v.State == StatePressed:
		bg = th.ButtonBackgroundActive
	case v.State == StateHover:
		bg = th.ButtonBackgroundHover
	}
	draw.Draw(dst, v.Rect, &image.Uniform{bg}, image.Point{}, draw.Src)
	drawRect(dst, v.Rect, th.ButtonBorder, 1)
	baseline := v.Rect.Min.Y + (v.Rect.Dy()+10)/2
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(fg), Face: basicfont.Face7x13,
		Dot: fixed.P(v.Rect.Min.X+4, baseline)}
	d.DrawString(v.Label)

	if v.Stroke > 0 {
		thick := int(math.Max(1, math.Min(v.Stroke, float64(v.Rect.Dy()-4))/2))
		y := v.Rect.Min.Y + v.Rect.Dy()/2
		canvas.DrawLine(dst, v.Rect.Min.X+28, y, v.Rect.Max.X-6, y, stroke, thick)
	}
}

func drawRect(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	canvas.DrawLine(img, rect.Min.X, rect.Min.Y, rect.Max.X-1, rect.Min.Y, col, thick)
	canvas.DrawLine(img, rect.Min.X, rect.Min.Y, rect.Min.X, rect.Max.Y-1, col, thick)
	canvas.DrawLine(img, rect.Max.X-1, rect.Min.Y, rect.Max.X-1, rect.Max.Y-1, col, thick)
	canvas.DrawLine(img, rect.Min.X, rect.Max.Y-1, rect.Max.X-1, rect.Max.Y-1, col, thick)
}


func fillRect(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(dst, r, &image.Uniform{c}, image.Point{}, draw.Src)
}

// drawCanvas scales the surface copy into dst.
func drawCanvas(dst *image.RGBA, r image.Rectangle, img *image.RGBA) {
	if img == nil || r.Empty() {
		return
	}
	if r.Size() == img.Bounds().Size() {
		draw.Draw(dst, r, img, img.Bounds().Min, draw.Src)
		return
	}
	xdraw.ApproxBiLinear.Scale(dst, r, img, img.Bounds(), draw.Src, nil)
}

func drawStatus(dst *image.RGBA, r image.Rectangle, th *theme.Theme, status, message string, isErr bool) {
	draw.Draw(dst, r, &image.Uniform{th.StatusBackground}, image.Point{}, draw.Src)
	baseline := r.Min.Y + (r.Dy()+messageFace.Metrics().Ascent.Ceil())/2 - 1
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.StatusText), Face: messageFace,
		Dot: fixed.P(r.Min.X+pad, baseline)}
	d.DrawString(status)
	if message == "" {
		return
	}
	col := th.Foreground
	if isErr {
		col = th.StatusError
	}
	w := d.MeasureString(message).Ceil()
	d.Src = image.NewUniform(col)
	d.Dot = fixed.P(r.Max.X-pad-w, baseline)
	d.DrawString(message)
}
