package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// DefaultFileName is used when the user does not name the export.
const DefaultFileName = "mandala_masterpiece.png"

// Format names an output encoding.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	PDF  Format = "pdf"
)

// ErrUnsupportedFormat is returned for unknown format names and extensions.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Formats lists every supported encoding.
func Formats() []Format {
	return []Format{PNG, JPEG, BMP, TIFF, PDF}
}

// ParseFormat accepts a format name or a common alias such as "jpg".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	case "pdf":
		return PDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromPath picks the format from the file extension. Paths without an
// extension are written as PNG.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Options tunes encoding.
type Options struct {
	// Scale resizes the image before encoding. Zero means 1.
	Scale float64
	// Quality is the JPEG quality, 1-100. Zero means 90.
	Quality int
	// Shadow, when set, frames the scaled image with a drop shadow.
	Shadow *Shadow
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format, opts Options) error {
	img, err := scale(img, opts.Scale)
	if err != nil {
		return err
	}
	if opts.Shadow != nil {
		img = addShadow(img, *opts.Shadow)
	}
	switch f {
	case PNG, "":
		return png.Encode(w, img)
	case JPEG:
		q := opts.Quality
		if q <= 0 || q > 100 {
			q = 90
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case PDF:
		return encodePDF(w, img)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
}

func scale(img image.Image, factor float64) (image.Image, error) {
	if factor == 0 || factor == 1 {
		return img, nil
	}
	if factor < 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return nil, fmt.Errorf("invalid scale %v", factor)
	}
	b := img.Bounds()
	w := int(math.Round(float64(b.Dx()) * factor))
	h := int(math.Round(float64(b.Dy()) * factor))
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("scale %v leaves an empty %dx%d image", factor, w, h)
	}
	return imaging.Resize(img, w, h, imaging.Lanczos), nil
}

// encodePDF writes a single page the size of img, in points, with the image
// embedded as PNG.
func encodePDF(w io.Writer, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	b := img.Bounds()
	wd, ht := float64(b.Dx()), float64(b.Dy())
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: wd, Ht: ht},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("mandala", opt, &buf)
	pdf.ImageOptions("mandala", 0, 0, wd, ht, false, opt, 0, "")
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	return pdf.Output(w)
}

// ResolvePath joins a relative name onto dir. Absolute names, and any name
// when dir is empty, are returned unchanged.
func ResolvePath(dir, name string) string {
	if name == "" {
		name = DefaultFileName
	}
	if dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// WriteFile encodes img into path using the format implied by its
// extension and returns the absolute path written.
func WriteFile(path string, img image.Image, opts Options) (string, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return "", err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create %s: %w", dir, err)
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := Encode(out, img, f, opts); err != nil {
		if cerr := out.Close(); cerr != nil {
			log.Printf("error closing %q: %v", out.Name(), cerr)
		}
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	saved := path
	if abs, err := filepath.Abs(path); err == nil {
		saved = abs
	}
	return saved, nil
}
