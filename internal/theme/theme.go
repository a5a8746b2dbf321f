package theme

import (
	"image/color"
)

// Theme defines the color palette for the drawing window chrome. The
// canvas itself is painted with the session colours, never the theme.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Window area around the canvas
	Foreground color.RGBA // Label text

	// Toolbar
	ToolbarBackground color.RGBA
	SectionText       color.RGBA // Toolbar group headings

	// Buttons
	ButtonBackground       color.RGBA
	ButtonBackgroundHover  color.RGBA
	ButtonBackgroundActive color.RGBA // Toggles that are switched on
	ButtonText             color.RGBA
	ButtonTextActive       color.RGBA
	ButtonBorder           color.RGBA

	// Palette
	SwatchBorder   color.RGBA
	SwatchSelected color.RGBA

	// Status bar
	StatusBackground color.RGBA
	StatusText       color.RGBA
	StatusError      color.RGBA
}

// Default returns the built-in dark slate theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:                   "Default",
		Background:             color.RGBA{0x03, 0x07, 0x12, 0xff},
		Foreground:             color.RGBA{0xe5, 0xe7, 0xeb, 0xff},
		ToolbarBackground:      color.RGBA{0x1f, 0x29, 0x37, 0xff},
		SectionText:            color.RGBA{0x9c, 0xa3, 0xaf, 0xff},
		ButtonBackground:       color.RGBA{0x37, 0x41, 0x51, 0xff},
		ButtonBackgroundHover:  color.RGBA{0x4b, 0x55, 0x63, 0xff},
		ButtonBackgroundActive: color.RGBA{0x08, 0x91, 0xb2, 0xff},
		ButtonText:             color.RGBA{0xe5, 0xe7, 0xeb, 0xff},
		ButtonTextActive:       color.RGBA{0xff, 0xff, 0xff, 0xff},
		ButtonBorder:           color.RGBA{0x11, 0x18, 0x27, 0xff},
		SwatchBorder:           color.RGBA{0x11, 0x18, 0x27, 0xff},
		SwatchSelected:         color.RGBA{0xff, 0xff, 0xff, 0xff},
		StatusBackground:       color.RGBA{0x11, 0x18, 0x27, 0xff},
		StatusText:             color.RGBA{0x9c, 0xa3, 0xaf, 0xff},
		StatusError:            color.RGBA{0xf8, 0x71, 0x71, 0xff},
	}
}
