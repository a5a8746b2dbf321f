package main

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/example/mandala/internal/clipboard"
	"github.com/example/mandala/internal/export"
	"github.com/example/mandala/internal/notify"
	"github.com/example/mandala/internal/session"
	"github.com/example/mandala/internal/symmetry"
	"github.com/example/mandala/internal/theme"
)

// pipeName is the path that selects stdout for save.
const pipeName = "-"

var (
	errUnknownCommand = errors.New("unknown command")
	errArguments      = errors.New("wrong arguments")
)

// Seams for tests.
var (
	copyToClipboard   = clipboard.WriteImage
	clipboardReleased = clipboard.Released
	stdoutIsTerminal  = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
)

// interpreter applies text commands to a headless session.
type interpreter struct {
	sess     *session.Session
	out      io.Writer
	stdout   io.Writer
	saveDir  string
	output   string
	export   export.Options
	notifier *notify.Notifier
	copied   bool
}

func newInterpreter(sess *session.Session, out io.Writer) *interpreter {
	return &interpreter{sess: sess, out: out, stdout: os.Stdout, output: export.DefaultFileName}
}

const commandHelp = `commands:
  down X Y                 start a stroke
  move X Y                 extend the stroke
  up                       end the stroke
  line X0 Y0 X1 Y1 [X Y]…  draw a polyline as one stroke
  color C                  stroke colour (name or #rrggbb)
  background C             repaint the background (clears the drawing)
  grid C                   grid colour for later repaints
  width W                  stroke width 1-50
  order N                  symmetry order
  size N                   canvas size (resets history)
  mirror [on|off]          toggle or set mirror mode
  kaleidoscope [on|off]    toggle or set kaleidoscope mode
  rainbow [on|off]         toggle or set rainbow colours
  undo | redo | clear
  save [PATH]              export the canvas ("-" writes PNG to stdout)
  copy                     copy the canvas to the clipboard
  status                   print the current settings
  exit
`

// execute runs one command line. Blank lines and lines starting with '#'
// are ignored. done is set by exit and quit.
func (in *interpreter) execute(line string) (done bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false, nil
	}
	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	args := fields[1:]
	if err := in.dispatch(name, args); err != nil {
		if errors.Is(err, errExit) {
			return true, nil
		}
		return false, fmt.Errorf("%s: %w", name, err)
	}
	return false, nil
}

var errExit = errors.New("exit")

func (in *interpreter) dispatch(name string, args []string) error {
	s := in.sess
	switch name {
	case "exit", "quit":
		return errExit
	case "help":
		fmt.Fprint(in.out, commandHelp)
	case "down":
		p, err := parsePoint(args)
		if err != nil {
			return err
		}
		s.PointerDown(p)
	case "move":
		p, err := parsePoint(args)
		if err != nil {
			return err
		}
		if !s.Drawing() {
			return errors.New("no stroke in progress")
		}
		s.PointerMove(p)
	case "up":
		if err := expectArgs(args, 0); err != nil {
			return err
		}
		s.PointerUp()
	case "line":
		if len(args) < 4 || len(args)%2 != 0 {
			return fmt.Errorf("%w: need at least two X Y pairs", errArguments)
		}
		pts := make([]symmetry.Point, 0, len(args)/2)
		for i := 0; i < len(args); i += 2 {
			p, err := parsePoint(args[i : i+2])
			if err != nil {
				return err
			}
			pts = append(pts, p)
		}
		s.PointerDown(pts[0])
		for _, p := range pts[1:] {
			s.PointerMove(p)
		}
		s.PointerUp()
	case "color", "colour":
		c, err := parseColorArg(args)
		if err != nil {
			return err
		}
		s.SetColor(c)
	case "background", "bg":
		c, err := parseColorArg(args)
		if err != nil {
			return err
		}
		s.SetBackground(c)
	case "grid":
		c, err := parseColorArg(args)
		if err != nil {
			return err
		}
		s.SetGridColor(c)
	case "width":
		if err := expectArgs(args, 1); err != nil {
			return err
		}
		w, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid width %q", args[0])
		}
		if w < session.MinWidth || w > session.MaxWidth {
			return fmt.Errorf("width %g outside %d-%d", w, session.MinWidth, session.MaxWidth)
		}
		s.SetWidth(w)
	case "order":
		n, err := parseIntArg(args)
		if err != nil {
			return err
		}
		return s.SetOrder(n)
	case "size":
		n, err := parseIntArg(args)
		if err != nil {
			return err
		}
		return s.SetCanvasSize(n)
	case "mirror":
		return setToggle(args, s.Mirror, s.SetMirror)
	case "kaleidoscope", "kaleido":
		return setToggle(args, s.Kaleidoscope, s.SetKaleidoscope)
	case "rainbow":
		return setToggle(args, s.Rainbow, s.SetRainbow)
	case "undo":
		if !s.Undo() {
			fmt.Fprintln(in.out, "nothing to undo")
		}
	case "redo":
		if !s.Redo() {
			fmt.Fprintln(in.out, "nothing to redo")
		}
	case "clear":
		s.Clear()
	case "save":
		if len(args) > 1 {
			return fmt.Errorf("%w: save takes at most one path", errArguments)
		}
		path := in.output
		if len(args) == 1 {
			path = args[0]
		}
		return in.save(path)
	case "copy":
		img := s.Snapshot()
		if err := copyToClipboard(img); err != nil {
			return err
		}
		in.copied = true
		in.notifier.Copy("", img)
		fmt.Fprintln(in.out, "copied to clipboard")
	case "status":
		fmt.Fprintln(in.out, in.status())
	default:
		return errUnknownCommand
	}
	return nil
}

// finishCopy runs when a headless command is done. The clipboard only
// serves a copied image while this process is alive, so with hold it
// blocks until another program takes the clipboard.
func (in *interpreter) finishCopy(hold bool, note io.Writer) {
	if !in.copied {
		return
	}
	if !hold {
		fmt.Fprintln(note, "note: the copied image is dropped when mandala exits; pass -hold to keep serving it")
		return
	}
	fmt.Fprintln(note, "holding the clipboard until another program takes it")
	<-clipboardReleased()
}

func (in *interpreter) save(path string) error {
	if path == pipeName {
		if stdoutIsTerminal() {
			return errors.New("`-` should be used with a pipe for stdout")
		}
		return in.sess.Export(in.stdout, export.PNG, in.export)
	}
	saved, err := export.WriteFile(export.ResolvePath(in.saveDir, path), in.sess.Image(), in.export)
	if err != nil {
		return err
	}
	in.notifier.Save(saved)
	fmt.Fprintf(in.out, "saved %s\n", saved)
	return nil
}

func (in *interpreter) status() string {
	s := in.sess
	undo, redo := s.HistoryLen()
	return fmt.Sprintf("order=%d size=%d width=%g color=%s background=%s mirror=%s kaleidoscope=%s rainbow=%s undo=%d redo=%d",
		s.Order(), s.CanvasSize(), s.Width(),
		theme.FormatColor(s.Color()), theme.FormatColor(s.Background()),
		onOff(s.Mirror()), onOff(s.Kaleidoscope()), onOff(s.Rainbow()),
		undo, redo)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func setToggle(args []string, get func() bool, set func(bool)) error {
	switch len(args) {
	case 0:
		set(!get())
		return nil
	case 1:
		v, err := parseOnOff(args[0])
		if err != nil {
			return err
		}
		set(v)
		return nil
	}
	return fmt.Errorf("%w: expected on or off", errArguments)
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func expectArgs(args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: want %d, got %d", errArguments, n, len(args))
	}
	return nil
}

func parsePoint(args []string) (symmetry.Point, error) {
	if err := expectArgs(args, 2); err != nil {
		return symmetry.Point{}, err
	}
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return symmetry.Point{}, fmt.Errorf("invalid x %q", args[0])
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return symmetry.Point{}, fmt.Errorf("invalid y %q", args[1])
	}
	return symmetry.Pt(x, y), nil
}

func parseIntArg(args []string) (int, error) {
	if err := expectArgs(args, 1); err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", args[0])
	}
	return n, nil
}

func parseColorArg(args []string) (color.RGBA, error) {
	if err := expectArgs(args, 1); err != nil {
		return color.RGBA{}, err
	}
	return parseColor(args[0])
}

// parseColor accepts palette names, CSS colour names and hex values.
func parseColor(s string) (color.RGBA, error) {
	spec := strings.TrimSpace(s)
	if spec == "" {
		return color.RGBA{}, fmt.Errorf("color cannot be empty")
	}
	for _, entry := range paletteColors() {
		if strings.EqualFold(entry.Name, spec) {
			return entry.Color, nil
		}
	}
	return theme.ParseColor(spec)
}
