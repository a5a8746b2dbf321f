// Package clipboard publishes finished mandalas to the system clipboard as
// PNG images.
package clipboard

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
)

var errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// WriteImage encodes img as PNG and places it on the clipboard.
func WriteImage(img image.Image) error {
	if img == nil {
		return errors.New("clipboard: nil image")
	}
	if err := ensureInit(); err != nil {
		return err
	}
	data, err := encodePNG(img)
	if err != nil {
		return err
	}
	return writePNG(data)
}

// Released returns a channel that is closed once the image from the last
// WriteImage is no longer held, usually because another program took the
// clipboard. The image only stays pasteable while this process runs. With
// nothing held the channel is already closed.
func Released() <-chan struct{} {
	return released()
}

var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
