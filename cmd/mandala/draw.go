package main

import (
	"flag"
	"fmt"

	"github.com/example/mandala/internal/appstate"
	"github.com/example/mandala/internal/export"
	"github.com/example/mandala/internal/session"
	"github.com/example/mandala/internal/theme"
)

// sessionFlags are the starting-state flags shared by draw, script and
// interactive. Unset flags keep the configured values.
type sessionFlags struct {
	fs           *flag.FlagSet
	color        string
	background   string
	width        float64
	order        int
	size         int
	mirror       bool
	kaleidoscope bool
	rainbow      bool
}

func (f *sessionFlags) register(fs *flag.FlagSet, r *root) {
	d := r.config.Draw
	f.fs = fs
	fs.StringVar(&f.color, "color", theme.FormatColor(d.Color), "stroke color name or hex value")
	fs.StringVar(&f.background, "background", theme.FormatColor(d.Background), "background color name or hex value")
	fs.Float64Var(&f.width, "width", d.Width, "stroke width in pixels (1-50)")
	fs.IntVar(&f.order, "order", d.Order, "symmetry order, see `mandala options`")
	fs.IntVar(&f.size, "size", d.Size, "square canvas size in pixels, see `mandala options`")
	fs.BoolVar(&f.mirror, "mirror", false, "start with mirror mode on")
	fs.BoolVar(&f.kaleidoscope, "kaleidoscope", false, "start with kaleidoscope mode on")
	fs.BoolVar(&f.rainbow, "rainbow", false, "start with rainbow colours on")
}

// newSession validates explicitly given flags and builds the session.
func (f *sessionFlags) newSession(r *root) (*session.Session, error) {
	opts := r.sessionOptions()
	if flagSet(f.fs, "color") {
		c, err := parseColor(f.color)
		if err != nil {
			return nil, fmt.Errorf("-color: %w", err)
		}
		opts = append(opts, session.WithColor(c))
	}
	if flagSet(f.fs, "background") {
		c, err := parseColor(f.background)
		if err != nil {
			return nil, fmt.Errorf("-background: %w", err)
		}
		opts = append(opts, session.WithBackground(c))
	}
	if flagSet(f.fs, "width") {
		if f.width < session.MinWidth || f.width > session.MaxWidth {
			return nil, fmt.Errorf("-width %g outside %d-%d", f.width, session.MinWidth, session.MaxWidth)
		}
		opts = append(opts, session.WithWidth(f.width))
	}
	if flagSet(f.fs, "order") {
		if !session.ValidOrder(f.order) {
			return nil, fmt.Errorf("-order: %w: %d", session.ErrInvalidOrder, f.order)
		}
		opts = append(opts, session.WithOrder(f.order))
	}
	if flagSet(f.fs, "size") {
		if !session.ValidCanvasSize(f.size) {
			return nil, fmt.Errorf("-size: %w: %d", session.ErrInvalidCanvasSize, f.size)
		}
		opts = append(opts, session.WithCanvasSize(f.size))
	}
	s := session.New(opts...)
	s.SetMirror(f.mirror)
	s.SetKaleidoscope(f.kaleidoscope)
	s.SetRainbow(f.rainbow)
	return s, nil
}

// runWindow is a seam for tests.
var runWindow = func(a *appstate.AppState) { a.Run() }

// drawCmd opens the drawing window.
type drawCmd struct {
	*root
	fs      *flag.FlagSet
	session sessionFlags
	output  string
	title   string
}

func (d *drawCmd) FlagSet() *flag.FlagSet {
	return d.fs
}

func parseDrawCmd(args []string, r *root) (*drawCmd, error) {
	fs := flag.NewFlagSet("draw", flag.ExitOnError)
	d := &drawCmd{root: r, fs: fs}
	fs.Usage = usageFunc(d)
	d.session.register(fs, r)
	output := r.exportName()
	if output == "" {
		output = export.DefaultFileName
	}
	fs.StringVar(&d.output, "output", output, "file written by ctrl+s; the extension picks the format")
	fs.StringVar(&d.title, "title", "Mandala", "window title")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: d}
	}
	if _, err := export.FormatFromPath(d.output); err != nil {
		return nil, fmt.Errorf("-output: %w", err)
	}
	return d, nil
}

func (d *drawCmd) Run() error {
	sess, err := d.session.newSession(d.root)
	if err != nil {
		return err
	}
	st := appstate.New(
		appstate.WithSession(sess),
		appstate.WithTheme(d.activeTheme),
		appstate.WithOutput(d.output),
		appstate.WithSaveDir(d.saveDir()),
		appstate.WithNotifier(d.notifier),
		appstate.WithTitle(d.title),
	)
	runWindow(st)
	return nil
}
