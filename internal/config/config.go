package config

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/example/mandala/internal/session"
	"github.com/example/mandala/internal/theme"
)

// Notify holds notification settings.
type Notify struct {
	Save bool
	Copy bool
}

// Draw holds the starting state of new drawing sessions.
type Draw struct {
	Color        color.RGBA
	Background   color.RGBA
	GridColor    color.RGBA
	Width        float64
	Order        int
	Size         int
	HistoryLimit int
}

// SessionOptions converts the settings into session options.
func (d Draw) SessionOptions() []session.Option {
	return []session.Option{
		session.WithColor(d.Color),
		session.WithBackground(d.Background),
		session.WithGridColor(d.GridColor),
		session.WithWidth(d.Width),
		session.WithOrder(d.Order),
		session.WithCanvasSize(d.Size),
		session.WithHistoryLimit(d.HistoryLimit),
	}
}

// DefaultDraw returns the session defaults.
func DefaultDraw() Draw {
	return Draw{
		Color:        session.DefaultColor,
		Background:   session.DefaultBackground,
		GridColor:    session.DefaultGridColor,
		Width:        session.DefaultWidth,
		Order:        session.DefaultOrder,
		Size:         session.DefaultCanvasSize,
		HistoryLimit: session.DefaultHistoryLimit,
	}
}

// Config holds the application configuration.
type Config struct {
	Theme      string
	SaveDir    string
	ExportName string
	Draw       Draw
	Notify     Notify
	Themes     map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme:  "", // Empty falls back to env, then the built-in theme
		Draw:   DefaultDraw(),
		Notify: Notify{},
		Themes: make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	if c.ExportName != "" {
		fmt.Fprintf(&sb, "export_name = %s\n", c.ExportName)
	}
	sb.WriteString("\n")

	sb.WriteString("[draw]\n")
	fmt.Fprintf(&sb, "color = %s\n", theme.FormatColor(c.Draw.Color))
	fmt.Fprintf(&sb, "background = %s\n", theme.FormatColor(c.Draw.Background))
	fmt.Fprintf(&sb, "grid_color = %s\n", theme.FormatColor(c.Draw.GridColor))
	fmt.Fprintf(&sb, "width = %s\n", strconv.FormatFloat(c.Draw.Width, 'g', -1, 64))
	fmt.Fprintf(&sb, "order = %d\n", c.Draw.Order)
	fmt.Fprintf(&sb, "size = %d\n", c.Draw.Size)
	fmt.Fprintf(&sb, "history_limit = %d\n", c.Draw.HistoryLimit)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, f := range t.Fields() {
			fmt.Fprintf(&sb, "%s: %s\n", f.Name, theme.FormatColor(f.Color))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
