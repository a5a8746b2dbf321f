package appstate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log"
	"sync"
	"time"
	"unicode"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/mandala/internal/clipboard"
	"github.com/example/mandala/internal/export"
	"github.com/example/mandala/internal/notify"
	"github.com/example/mandala/internal/session"
	"github.com/example/mandala/internal/symmetry"
	"github.com/example/mandala/internal/theme"
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

const messageDuration = 2 * time.Second

// copyToClipboard is a seam for tests.
var copyToClipboard = clipboard.WriteImage

// AppState holds the drawing window's configuration and the session it
// edits. After Main starts, the session belongs to the event goroutine.
type AppState struct {
	Session  *session.Session
	Theme    *theme.Theme
	Output   string
	SaveDir  string
	Notifier *notify.Notifier
	Title    string

	message      string
	messageErr   bool
	messageUntil time.Time

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithSession sets the session drawn by the window.
func WithSession(s *session.Session) Option { return func(a *AppState) { a.Session = s } }

// WithTheme sets the colours of the window chrome.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.Theme = t } }

// WithOutput sets the file name used when saving.
func WithOutput(out string) Option { return func(a *AppState) { a.Output = out } }

// WithSaveDir sets the directory relative output names are saved into.
func WithSaveDir(dir string) Option { return func(a *AppState) { a.SaveDir = dir } }

// WithNotifier sets the notifier used after save and copy.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.Notifier = n } }

// WithTitle sets the window title.
func WithTitle(title string) Option { return func(a *AppState) { a.Title = title } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{
		Output: export.DefaultFileName,
		Title:  "Mandala",
	}
	for _, o := range opts {
		o(a)
	}
	if a.Session == nil {
		a.Session = session.New()
	}
	if a.Theme == nil {
		a.Theme = theme.Default()
	}
	return a
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

func (a *AppState) flash(msg string, isErr bool) {
	a.message = msg
	a.messageErr = isErr
	a.messageUntil = time.Now().Add(messageDuration)
	log.Print(msg)
}

func (a *AppState) activeMessage(now time.Time) (string, bool) {
	if a.message == "" || !now.Before(a.messageUntil) {
		return "", false
	}
	return a.message, a.messageErr
}

// save writes the canvas to the configured output and returns the absolute
// path written.
func (a *AppState) save() (string, error) {
	path := export.ResolvePath(a.SaveDir, a.Output)
	saved, err := export.WriteFile(path, a.Session.Image(), export.Options{})
	if err != nil {
		return "", err
	}
	a.Notifier.Save(saved)
	return saved, nil
}

// copyImage places a PNG of the canvas on the clipboard.
func (a *AppState) copyImage() error {
	img := a.Session.Snapshot()
	if err := copyToClipboard(img); err != nil {
		return err
	}
	a.Notifier.Copy("", img)
	return nil
}

func (a *AppState) status() string {
	s := a.Session
	undo, redo := s.HistoryLen()
	return fmt.Sprintf("order %d | size %d | width %g | undo %d redo %d",
		s.Order(), s.CanvasSize(), s.Width(), undo, redo)
}

// registerActions wires every named action and its key bindings. quit is
// handled by the event loop itself.
func (a *AppState) registerActions(register func(name string, keys KeyboardShortcuts, fn func())) {
	s := a.Session
	onOff := func(name string, on bool) {
		state := "off"
		if on {
			state = "on"
		}
		a.flash(name+" "+state, false)
	}

	register("mirror", shortcutList{{Rune: 'm'}}, func() { onOff("mirror", s.ToggleMirror()) })
	register("kaleidoscope", shortcutList{{Rune: 'k'}}, func() { onOff("kaleidoscope", s.ToggleKaleidoscope()) })
	register("rainbow", shortcutList{{Rune: 'r'}}, func() { onOff("rainbow", s.ToggleRainbow()) })

	register("undo", shortcutList{{Rune: 'z', Modifiers: key.ModControl}}, func() {
		if !s.Undo() {
			a.flash("nothing to undo", false)
		}
	})
	register("redo", shortcutList{
		{Rune: 'y', Modifiers: key.ModControl},
		{Rune: 'z', Modifiers: key.ModControl | key.ModShift},
	}, func() {
		if !s.Redo() {
			a.flash("nothing to redo", false)
		}
	})
	register("clear", shortcutList{{Rune: 'l', Modifiers: key.ModControl}}, s.Clear)

	register("save", shortcutList{{Rune: 's', Modifiers: key.ModControl}}, func() {
		saved, err := a.save()
		if err != nil {
			a.flash(fmt.Sprintf("save: %v", err), true)
			return
		}
		a.flash(fmt.Sprintf("saved %s", saved), false)
	})
	register("copy", shortcutList{{Rune: 'c', Modifiers: key.ModControl}}, func() {
		if err := a.copyImage(); err != nil {
			a.flash(fmt.Sprintf("copy: %v", err), true)
			return
		}
		a.flash("image copied to clipboard", false)
	})

	register("order-", shortcutList{{Rune: '['}}, func() { s.StepOrder(-1) })
	register("order+", shortcutList{{Rune: ']'}}, func() { s.StepOrder(1) })
	register("size-", shortcutList{{Rune: '{'}}, func() { s.StepCanvasSize(-1) })
	register("size+", shortcutList{{Rune: '}'}}, func() { s.StepCanvasSize(1) })
	register("width-", shortcutList{{Rune: '-'}}, func() { s.SetWidth(stepWidth(s.Width(), -1)) })
	register("width+", shortcutList{{Rune: '+'}, {Rune: '='}}, func() { s.SetWidth(stepWidth(s.Width(), 1)) })
}

// buildToolbar creates the toolbar controls in display order.
func (a *AppState) buildToolbar(trigger func(string)) []Button {
	s := a.Session
	action := func(label, name string) Button {
		return &ActionButton{label: label, onActivate: func() { trigger(name) }}
	}
	buttons := []Button{
		&Heading{label: "Symmetry"},
		&ToggleButton{label: "M: Mirror", on: s.Mirror, onToggle: func() { trigger("mirror") }},
		&ToggleButton{label: "K: Kaleido", on: s.Kaleidoscope, onToggle: func() { trigger("kaleidoscope") }},
		&ToggleButton{label: "R: Rainbow", on: s.Rainbow, onToggle: func() { trigger("rainbow") }},
		&CyclerButton{label: func() string { return fmt.Sprintf("Order  %d", s.Order()) }, step: func(d int) { s.StepOrder(d) }},
		&CyclerButton{label: func() string { return fmt.Sprintf("Size   %d", s.CanvasSize()) }, step: func(d int) { s.StepCanvasSize(d) }},
		&Heading{label: "Colour"},
	}
	for _, p := range strokePalette {
		c := p.Color
		buttons = append(buttons, &SwatchButton{
			col:      c,
			selected: func() bool { return s.Color() == c && !s.Rainbow() },
			pick:     s.SetColor,
		})
	}
	buttons = append(buttons, &Heading{label: "Background"})
	for _, p := range backgroundPalette {
		c := p.Color
		buttons = append(buttons, &SwatchButton{
			col:      c,
			selected: func() bool { return s.Background() == c },
			pick:     s.SetBackground,
		})
	}
	buttons = append(buttons, &Heading{label: "Width"})
	for _, w := range widthOptions {
		w := w
		buttons = append(buttons, &WidthButton{
			width:    w,
			selected: func() bool { return s.Width() == w },
			pick:     s.SetWidth,
		})
	}
	buttons = append(buttons,
		&Heading{label: "History"},
		action("^Z: Undo", "undo"),
		action("^Y: Redo", "redo"),
		action("^L: Clear", "clear"),
		&Heading{label: "Output"},
		action("^S: Save", "save"),
		action("^C: Copy", "copy"),
	)
	return buttons
}

// lookupShortcut resolves a key press. Shifted punctuation such as '+'
// matches a binding registered without ModShift.
func lookupShortcut(bindings map[KeyShortcut]string, e key.Event) (string, bool) {
	ks := KeyShortcut{Rune: unicode.ToLower(e.Rune), Code: e.Code, Modifiers: e.Modifiers}
	if ks.Rune > 0 {
		ks.Code = key.CodeUnknown
	}
	if name, ok := bindings[ks]; ok {
		return name, true
	}
	if ks.Modifiers&key.ModShift != 0 {
		ks.Modifiers &^= key.ModShift
		name, ok := bindings[ks]
		return name, ok
	}
	return "", false
}

// pointer tracks the mouse against the canvas and forwards gestures to the
// session.
type pointer struct {
	pressed bool
}

// handle applies one mouse event inside or outside canvas dst. It reports
// whether the canvas changed.
func (p *pointer) handle(s *session.Session, e mouse.Event, dst image.Rectangle) bool {
	in := image.Pt(int(e.X), int(e.Y)).In(dst)
	x, y := toCanvas(float64(e.X), float64(e.Y), dst, s.CanvasSize())
	pt := symmetry.Pt(x, y)
	switch {
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
		if !in {
			return false
		}
		p.pressed = true
		s.PointerDown(pt)
		return false
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
		p.pressed = false
		if s.Drawing() && in {
			s.PointerMove(pt)
		}
		s.PointerUp()
		return true
	case e.Direction == mouse.DirNone:
		if !s.Drawing() {
			return false
		}
		if !in {
			s.PointerLeave()
			return true
		}
		return s.PointerMove(pt)
	}
	return false
}

type paintState struct {
	width, height int
	layout        layout
	canvas        *image.RGBA
	buttons       []ButtonView
	stroke        color.RGBA
	theme         *theme.Theme
	status        string
	message       string
	messageErr    bool
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

// Main runs the window on screen s until it is closed.
func (a *AppState) Main(s screen.Screen) {
	defer a.notifyClose()
	sess := a.Session

	// Ensure the toolbar is wide enough for every label so the UI is not
	// clipped on start up.
	d := &font.Drawer{Face: basicfont.Face7x13}
	for _, lbl := range []string{"K: Kaleido", "Background", "Size   1200", "^L: Clear"} {
		if w := d.MeasureString(lbl).Ceil() + 2*pad + 8; w > toolbarWidth {
			toolbarWidth = w
		}
	}

	keyboardAction := map[KeyShortcut]string{}
	actions := map[string]func(){}
	register := func(name string, keys KeyboardShortcuts, fn func()) {
		actions[name] = fn
		if keys != nil {
			for _, sc := range keys.KeyboardShortcuts() {
				keyboardAction[sc] = name
			}
		}
	}
	a.registerActions(register)

	var w screen.Window
	trigger := func(name string) {
		if fn, ok := actions[name]; ok {
			fn()
		}
		if w != nil {
			w.Send(paint.Event{})
		}
	}
	buttons := a.buildToolbar(trigger)
	toolbarBottom := arrangeToolbar(buttons, toolbarWidth)

	width := toolbarWidth + sess.CanvasSize() + 2*pad
	height := max(toolbarBottom+pad, sess.CanvasSize()+2*pad) + statusHeight
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: a.Title})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()

	frames := startPainter(func(ctx context.Context, st paintState) { drawFrame(ctx, s, w, st) })
	expiry := &repaintTimer{fire: func() { w.Send(paint.Event{}) }}
	// Runs before w.Release: nothing may touch the window afterwards.
	defer func() {
		expiry.stop()
		frames.close()
	}()

	hover := -1
	pressed := -1
	var ptr pointer

	for {
		e := w.NextEvent()
		switch e := e.(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return
			}
		case size.Event:
			width = e.WidthPx
			height = e.HeightPx
			w.Send(paint.Event{})
		case paint.Event:
			views := make([]ButtonView, len(buttons))
			for i, b := range buttons {
				state := StateDefault
				switch i {
				case pressed:
					state = StatePressed
				case hover:
					state = StateHover
				}
				views[i] = b.View(state)
			}
			msg, msgErr := a.activeMessage(time.Now())
			st := paintState{
				width:      width,
				height:     height,
				layout:     computeLayout(width, height, sess.CanvasSize()),
				canvas:     sess.Snapshot(),
				buttons:    views,
				stroke:     sess.Color(),
				theme:      a.Theme,
				status:     a.status(),
				message:    msg,
				messageErr: msgErr,
			}
			frames.submit(st)
			if msg != "" {
				expiry.schedule(time.Until(a.messageUntil))
			}
		case mouse.Event:
			l := computeLayout(width, height, sess.CanvasSize())
			p := image.Pt(int(e.X), int(e.Y))
			if p.In(l.toolbar) && !ptr.pressed {
				idx := hitTest(buttons, p)
				switch {
				case e.Direction == mouse.DirPress && idx >= 0:
					pressed = idx
				case e.Direction == mouse.DirRelease:
					if idx >= 0 && idx == pressed {
						buttons[idx].Activate(e.Button == mouse.ButtonRight)
					}
					pressed = -1
				}
				if idx != hover || e.Direction != mouse.DirNone {
					hover = idx
					w.Send(paint.Event{})
				}
				continue
			}
			if hover != -1 || pressed != -1 {
				hover, pressed = -1, -1
				w.Send(paint.Event{})
			}
			if ptr.handle(sess, e, l.canvas) {
				w.Send(paint.Event{})
			}
		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			if e.Rune == 'q' || e.Rune == 'Q' || e.Code == key.CodeEscape {
				if e.Modifiers&key.ModControl == 0 {
					return
				}
			}
			if name, ok := lookupShortcut(keyboardAction, e); ok {
				trigger(name)
			}
		case error:
			log.Printf("window: %v", e)
		}
	}
}

// painter renders frames on its own goroutine and keeps at most one frame
// queued.
type painter struct {
	draw func(ctx context.Context, st paintState)
	ch   chan paintState
	done chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	drops  int
}

func startPainter(draw func(ctx context.Context, st paintState)) *painter {
	p := &painter{draw: draw, ch: make(chan paintState, 1), done: make(chan struct{})}
	go p.loop()
	return p
}

func (p *painter) loop() {
	defer close(p.done)
	for st := range p.ch {
		ctx, cancel := context.WithCancel(context.Background())
		p.mu.Lock()
		p.cancel = cancel
		p.mu.Unlock()
		p.draw(ctx, st)
		p.mu.Lock()
		p.cancel = nil
		if ctx.Err() == nil {
			p.drops = 0
		}
		p.mu.Unlock()
		cancel()
	}
}

// submit replaces any queued frame with st. The frame in flight is
// cancelled unless frameDropThreshold frames in a row were already dropped.
// Only the event loop calls submit.
func (p *painter) submit(st paintState) {
	p.mu.Lock()
	if p.cancel != nil && p.drops < frameDropThreshold {
		p.cancel()
		p.drops++
	}
	p.mu.Unlock()
	select {
	case p.ch <- st:
	default:
		select {
		case <-p.ch:
		default:
		}
		p.ch <- st
	}
}

// close cancels the frame in flight and returns once the goroutine is gone.
func (p *painter) close() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()
	close(p.ch)
	<-p.done
}

// repaintTimer requests one repaint when the status message expires. A
// single timer is rescheduled on every paint and stop blocks until no fire
// is in flight.
type repaintTimer struct {
	mu      sync.Mutex
	t       *time.Timer
	stopped bool
	fire    func()
}

func (r *repaintTimer) schedule(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	if r.t == nil {
		r.t = time.AfterFunc(d, r.run)
		return
	}
	r.t.Reset(d)
}

func (r *repaintTimer) run() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.stopped {
		r.fire()
	}
}

func (r *repaintTimer) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	if r.t != nil {
		r.t.Stop()
	}
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	dst := b.RGBA()
	th := st.theme

	fillRect(dst, dst.Bounds(), th.Background)
	drawCanvas(dst, st.layout.canvas, st.canvas)
	if ctx.Err() != nil {
		return
	}

	fillRect(dst, st.layout.toolbar, th.ToolbarBackground)
	for _, v := range st.buttons {
		drawButton(dst, v, th, st.stroke)
	}
	if ctx.Err() != nil {
		return
	}

	drawStatus(dst, st.layout.status, th, st.status, st.message, st.messageErr)
	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
