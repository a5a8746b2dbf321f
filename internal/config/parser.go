package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/mandala/internal/session"
	"github.com/example/mandala/internal/theme"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var currentSection string
	var currentTheme *theme.Theme
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(line, "["), "]"))
			currentTheme = nil

			if themeName, ok := strings.CutPrefix(currentSection, "theme."); ok {
				// Start with defaults so missing keys are fine
				currentTheme = theme.Default()
				currentTheme.Name = themeName
				cfg.Themes[themeName] = currentTheme
			}
			continue
		}

		// Parse Key = Value or Key: Value
		var key, value string
		var ok bool
		if key, value, ok = strings.Cut(line, "="); !ok {
			if key, value, ok = strings.Cut(line, ":"); !ok {
				continue
			}
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
			value = value[1 : len(value)-1]
		}

		var err error
		switch {
		case currentTheme != nil:
			err = currentTheme.Set(key, value)
		case currentSection == "draw":
			err = setDrawField(&cfg.Draw, key, value)
		case currentSection == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		case currentSection == "":
			err = setRootField(cfg, key, value)
		}
		if err != nil {
			section := currentSection
			if section == "" {
				section = "root"
			}
			return nil, fmt.Errorf("line %d: error in section [%s]: %w", lineNo, section, err)
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "theme":
		cfg.Theme = value
	case "save_dir":
		cfg.SaveDir = value
	case "export_name":
		cfg.ExportName = value
	}
	return nil
}

func setDrawField(d *Draw, key, value string) error {
	switch strings.ToLower(key) {
	case "color", "colour":
		c, err := theme.ParseColor(value)
		if err != nil {
			return fmt.Errorf("color: %w", err)
		}
		d.Color = c
	case "background":
		c, err := theme.ParseColor(value)
		if err != nil {
			return fmt.Errorf("background: %w", err)
		}
		d.Background = c
	case "grid_color", "grid_colour":
		c, err := theme.ParseColor(value)
		if err != nil {
			return fmt.Errorf("grid_color: %w", err)
		}
		d.GridColor = c
	case "width":
		w, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid width %q: %w", value, err)
		}
		if w < session.MinWidth || w > session.MaxWidth {
			return fmt.Errorf("width %v outside %d..%d", w, session.MinWidth, session.MaxWidth)
		}
		d.Width = w
	case "order":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid order %q: %w", value, err)
		}
		if !contains(session.GridOrders(), n) {
			return fmt.Errorf("%w: %d", session.ErrInvalidOrder, n)
		}
		d.Order = n
	case "size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid size %q: %w", value, err)
		}
		if !contains(session.CanvasSizes(), n) {
			return fmt.Errorf("%w: %d", session.ErrInvalidCanvasSize, n)
		}
		d.Size = n
	case "history_limit":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid history_limit %q", value)
		}
		d.HistoryLimit = n
	}
	return nil
}

func contains(options []int, v int) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	}
	return nil
}
