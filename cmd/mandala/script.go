package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/example/mandala/internal/export"
)

// stdinIsTerminal is a seam for tests.
var stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// scriptCmd runs a command file against a headless session and exports
// the result.
type scriptCmd struct {
	*root
	fs       *flag.FlagSet
	session  sessionFlags
	file     string
	output   string
	noExport bool
	scale    float64
	quality  int
	shadow   bool
	hold     bool
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

func (s *scriptCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func parseScriptCmd(args []string, r *root) (*scriptCmd, error) {
	fs := flag.NewFlagSet("script", flag.ExitOnError)
	s := &scriptCmd{root: r, fs: fs, stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	fs.Usage = usageFunc(s)
	s.session.register(fs, r)
	output := r.exportName()
	if output == "" {
		output = export.DefaultFileName
	}
	fs.StringVar(&s.output, "output", output, "export path after the script finishes (\"-\" for stdout)")
	fs.BoolVar(&s.noExport, "no-export", false, "skip the final export")
	fs.Float64Var(&s.scale, "scale", 1, "resize factor applied when exporting")
	fs.IntVar(&s.quality, "quality", 90, "JPEG quality between 1 and 100")
	fs.BoolVar(&s.shadow, "shadow", false, "frame the export with a drop shadow on a transparent margin")
	fs.BoolVar(&s.hold, "hold", false, "after a copy, keep running until another program takes the clipboard")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: s}
	}
	s.file = fs.Arg(0)
	if s.scale <= 0 {
		return nil, fmt.Errorf("-scale must be positive")
	}
	if s.quality < 1 || s.quality > 100 {
		return nil, fmt.Errorf("-quality must be between 1 and 100")
	}
	if s.output != pipeName {
		if _, err := export.FormatFromPath(s.output); err != nil {
			return nil, fmt.Errorf("-output: %w", err)
		}
	}
	return s, nil
}

func (s *scriptCmd) open() (io.Reader, func(), error) {
	if s.file == pipeName {
		if stdinIsTerminal() {
			return nil, nil, errors.New("`-` should be used with a pipe for stdin")
		}
		return s.stdin, func() {}, nil
	}
	f, err := os.Open(s.file)
	if err != nil {
		return nil, nil, fmt.Errorf("open script: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func (s *scriptCmd) Run() error {
	sess, err := s.session.newSession(s.root)
	if err != nil {
		return err
	}
	src, closeFn, err := s.open()
	if err != nil {
		return err
	}
	defer closeFn()

	in := newInterpreter(sess, s.stderr)
	in.stdout = s.stdout
	in.saveDir = s.saveDir()
	in.output = s.output
	in.notifier = s.notifier
	in.export = export.Options{Scale: s.scale, Quality: s.quality}
	if s.shadow {
		shadow := export.DefaultShadow()
		in.export.Shadow = &shadow
	}

	scanner := bufio.NewScanner(src)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		done, err := in.execute(scanner.Text())
		if err != nil {
			return fmt.Errorf("%s:%d: %w", s.file, lineNo, err)
		}
		if done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	sess.PointerUp()
	if !s.noExport {
		if err := in.save(s.output); err != nil {
			return err
		}
	}
	in.finishCopy(s.hold, s.stderr)
	return nil
}
