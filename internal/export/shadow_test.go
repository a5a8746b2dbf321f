package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestShadowExpandsBounds(t *testing.T) {
	img := testImage()
	s := Shadow{Radius: 4, Offset: image.Pt(8, 6), Opacity: 0.5}
	out := addShadow(img, s)
	// src (0,0)-(32,24) union shadow (4,2)-(40,34)
	if want := image.Rect(0, 0, 40, 34); !out.Bounds().Eq(want) {
		t.Fatalf("bounds %v, want %v", out.Bounds(), want)
	}
	if got := color.NRGBAModel.Convert(out.At(5, 5)).(color.NRGBA); got != (color.NRGBA{40, 50, 128, 255}) {
		t.Fatalf("artwork pixel changed: %v", got)
	}
	_, _, _, a := out.At(36, 28).RGBA()
	if a == 0 {
		t.Fatal("expected shadow alpha below the artwork")
	}
	_, _, _, a = out.At(0, 33).RGBA()
	if a != 0 {
		t.Fatal("corner outside the shadow should stay transparent")
	}
}

func TestShadowDisabledWithoutOpacity(t *testing.T) {
	img := testImage()
	if out := addShadow(img, Shadow{Radius: 10, Offset: image.Pt(5, 5)}); out != image.Image(img) {
		t.Fatal("zero opacity should return the image unchanged")
	}
}

func TestEncodeWithShadow(t *testing.T) {
	s := DefaultShadow()
	var buf bytes.Buffer
	if err := Encode(&buf, testImage(), PNG, Options{Shadow: &s}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	src := image.Rect(0, 0, 32, 24)
	wantW := src.Union(src.Inset(-s.Radius).Add(s.Offset)).Dx()
	if img.Bounds().Dx() != wantW {
		t.Fatalf("width %d, want %d", img.Bounds().Dx(), wantW)
	}
}
