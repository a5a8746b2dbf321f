package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/mandala/internal/appstate"
	"github.com/example/mandala/internal/export"
	"github.com/example/mandala/internal/session"
	"github.com/example/mandala/internal/theme"
)

// paletteColors returns the named stroke and background colours accepted
// by color arguments.
func paletteColors() []appstate.PaletteColor {
	return append(appstate.StrokePalette(), appstate.BackgroundPalette()...)
}

// optionsCmd lists the selectable values.
type optionsCmd struct {
	*root
	fs  *flag.FlagSet
	out io.Writer
}

func (o *optionsCmd) FlagSet() *flag.FlagSet {
	return o.fs
}

func parseOptionsCmd(args []string, r *root) (*optionsCmd, error) {
	fs := flag.NewFlagSet("options", flag.ExitOnError)
	o := &optionsCmd{root: r, fs: fs, out: os.Stdout}
	fs.Usage = usageFunc(o)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: o}
	}
	return o, nil
}

func marker(selected bool) string {
	if selected {
		return "*"
	}
	return " "
}

func (o *optionsCmd) Run() error {
	d := o.config.Draw
	w := o.out

	fmt.Fprintln(w, "symmetry orders (* marks the configured order):")
	for _, n := range session.GridOrders() {
		fmt.Fprintf(w, "%s %3d\n", marker(n == d.Order), n)
	}
	fmt.Fprintln(w, "canvas sizes:")
	for _, n := range session.CanvasSizes() {
		fmt.Fprintf(w, "%s %4dpx\n", marker(n == d.Size), n)
	}
	fmt.Fprintln(w, "stroke widths:")
	for _, width := range appstate.WidthOptions() {
		fmt.Fprintf(w, "%s %3gpx\n", marker(width == d.Width), width)
	}
	fmt.Fprintln(w, "stroke colors:")
	for _, p := range appstate.StrokePalette() {
		fmt.Fprintf(w, "%s %-8s %s\n", marker(p.Color == d.Color), p.Name, theme.FormatColor(p.Color))
	}
	fmt.Fprintln(w, "background colors:")
	for _, p := range appstate.BackgroundPalette() {
		fmt.Fprintf(w, "%s %-8s %s\n", marker(p.Color == d.Background), p.Name, theme.FormatColor(p.Color))
	}
	fmt.Fprintln(w, "themes:")
	for _, name := range theme.NewLoader().Names() {
		fmt.Fprintf(w, "  %s\n", name)
	}
	formats := make([]string, 0, len(export.Formats()))
	for _, f := range export.Formats() {
		formats = append(formats, string(f))
	}
	fmt.Fprintf(w, "export formats: %s\n", strings.Join(formats, ", "))
	return nil
}
