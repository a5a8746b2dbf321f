package export

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// Shadow places the artwork on a transparent margin with a soft drop
// shadow beneath it. Formats without alpha flatten the margin onto black.
type Shadow struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// DefaultShadow returns the shadow used by the -shadow flags.
func DefaultShadow() Shadow {
	return Shadow{Radius: 24, Offset: image.Pt(12, 12), Opacity: 0.6}
}

// addShadow returns img on a canvas grown to hold the blurred shadow. The
// artwork keeps its pixels; only the margin and the area under the offset
// shadow are new.
func addShadow(img image.Image, s Shadow) image.Image {
	if s.Opacity <= 0 || img.Bounds().Empty() {
		return img
	}
	if s.Opacity > 1 {
		s.Opacity = 1
	}
	if s.Radius < 0 {
		s.Radius = 0
	}
	src := img.Bounds()
	spread := src.Inset(-s.Radius)
	shadowRect := spread.Add(s.Offset)
	all := src.Union(shadowRect)

	// The artwork is square and opaque, so its silhouette is a filled rect.
	mask := image.NewNRGBA(spread.Sub(spread.Min))
	draw.Draw(mask, image.Rect(s.Radius, s.Radius, s.Radius+src.Dx(), s.Radius+src.Dy()),
		image.NewUniform(color.NRGBA{A: uint8(s.Opacity*255 + 0.5)}), image.Point{}, draw.Src)
	var soft image.Image = mask
	if s.Radius > 0 {
		soft = imaging.Blur(mask, float64(s.Radius)/2)
	}

	out := image.NewNRGBA(all.Sub(all.Min))
	draw.Draw(out, shadowRect.Sub(all.Min), soft, image.Point{}, draw.Over)
	draw.Draw(out, src.Sub(all.Min), img, src.Min, draw.Over)
	return out
}
