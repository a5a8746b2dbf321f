package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/mandala/internal/session"
)

func TestParse(t *testing.T) {
	input := `
theme = my_custom_theme
save_dir = /tmp/art
export_name = "spiral.png"

[draw]
color = #FF0000
background = black
grid_color = #333
width = 12.5
order = 8
size = 600
history_limit = 10

[notify]
save = false
copy = true

[theme.my_custom_theme]
Background = #111111
Foreground = #FFFFFF
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Theme != "my_custom_theme" {
		t.Errorf("Expected theme 'my_custom_theme', got '%s'", cfg.Theme)
	}
	if cfg.SaveDir != "/tmp/art" {
		t.Errorf("Expected save_dir '/tmp/art', got '%s'", cfg.SaveDir)
	}
	if cfg.ExportName != "spiral.png" {
		t.Errorf("Expected export_name 'spiral.png', got '%s'", cfg.ExportName)
	}

	want := Draw{
		Color:        color.RGBA{0xff, 0, 0, 0xff},
		Background:   color.RGBA{0, 0, 0, 0xff},
		GridColor:    color.RGBA{0x33, 0x33, 0x33, 0xff},
		Width:        12.5,
		Order:        8,
		Size:         600,
		HistoryLimit: 10,
	}
	if cfg.Draw != want {
		t.Errorf("draw section %+v, want %+v", cfg.Draw, want)
	}

	if cfg.Notify.Save {
		t.Error("Expected notify.save to be false")
	}
	if !cfg.Notify.Copy {
		t.Error("Expected notify.copy to be true")
	}

	th, ok := cfg.Themes["my_custom_theme"]
	if !ok {
		t.Fatal("Expected theme 'my_custom_theme' to be loaded")
	}
	if th.Background != (color.RGBA{0x11, 0x11, 0x11, 0xff}) {
		t.Errorf("Unexpected Background color: %+v", th.Background)
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Draw != DefaultDraw() {
		t.Fatalf("empty config draw %+v", cfg.Draw)
	}
	s := session.New(cfg.Draw.SessionOptions()...)
	if s.Order() != session.DefaultOrder || s.CanvasSize() != session.DefaultCanvasSize {
		t.Fatal("default draw options did not produce a default session")
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"[draw]\norder = 7\n",
		"[draw]\nsize = 500\n",
		"[draw]\nwidth = 0\n",
		"[draw]\ncolor = nope\n",
		"[draw]\nhistory_limit = -1\n",
		"[notify]\nsave = maybe\n",
	}
	for _, in := range cases {
		if _, err := Parse(strings.NewReader(in)); err == nil {
			t.Errorf("expected an error for %q", in)
		}
	}
	_, err := Parse(strings.NewReader("[draw]\norder = 7\n"))
	if !errors.Is(err, session.ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder, got %v", err)
	}
}

func TestCircular(t *testing.T) {
	input := `theme = midnight
save_dir = /home/user/art

[draw]
color = #22D3EE80
order = 36
width = 3

[notify]
save = true
copy = false

[theme.custom]
Name = custom
Background = #000000
Foreground = #FFFFFF
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	generated := cfg.String()

	cfg2, err := Parse(strings.NewReader(generated))
	if err != nil {
		t.Fatalf("Circular parse failed: %v\n%s", err, generated)
	}

	if cfg.Theme != cfg2.Theme {
		t.Errorf("Theme mismatch: %q vs %q", cfg.Theme, cfg2.Theme)
	}
	if cfg.SaveDir != cfg2.SaveDir {
		t.Errorf("SaveDir mismatch: %q vs %q", cfg.SaveDir, cfg2.SaveDir)
	}
	if cfg.Draw != cfg2.Draw {
		t.Errorf("Draw mismatch: %+v vs %+v", cfg.Draw, cfg2.Draw)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}

	t1 := cfg.Themes["custom"]
	t2 := cfg2.Themes["custom"]
	if t1 == nil || t2 == nil {
		t.Fatalf("Custom theme missing in one config")
	}
	if *t1 != *t2 {
		t.Errorf("Theme mismatch: %+v vs %+v", t1, t2)
	}
}

func TestLoaderPaths(t *testing.T) {
	dir := t.TempDir()
	old := userConfigDir
	userConfigDir = func() string { return filepath.Join(dir, "xdg") }
	t.Cleanup(func() { userConfigDir = old })

	l := NewLoader("v1.0.0", "")
	if got := l.GetConfigPath(); got != "" {
		t.Fatalf("expected no config, got %q", got)
	}
	cfg, err := l.Load()
	if err != nil || cfg.Draw != DefaultDraw() {
		t.Fatalf("Load without a file: %+v, %v", cfg, err)
	}

	cfg.Draw.Order = 12
	cfg.Notify.Copy = true
	path, err := l.Save(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "xdg", "config.rc") {
		t.Fatalf("saved to %q", path)
	}
	if got := l.GetConfigPath(); got != path {
		t.Fatalf("config path %q, want %q", got, path)
	}
	loaded, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Draw.Order != 12 || !loaded.Notify.Copy {
		t.Fatalf("reloaded %+v", loaded)
	}

	override := filepath.Join(dir, "other.rc")
	if err := os.WriteFile(override, []byte("[draw]\norder = 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l = NewLoader("v1.0.0", override)
	if got := l.GetConfigPath(); got != override {
		t.Fatalf("override ignored: %q", got)
	}
}

func TestLoaderDevMode(t *testing.T) {
	dir := t.TempDir()
	old := userConfigDir
	userConfigDir = func() string { return filepath.Join(dir, "none") }
	t.Cleanup(func() { userConfigDir = old })

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	if err := os.WriteFile(filepath.Join(dir, ".mandalarc"), []byte("theme = light\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewLoader("dev", "").Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Theme != "light" {
		t.Fatalf("dev config not loaded: %+v", cfg)
	}
	if got := NewLoader("v1", "").GetConfigPath(); got != "" {
		t.Fatalf("release build read the local rc: %q", got)
	}
}
