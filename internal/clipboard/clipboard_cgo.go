//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && cgo

package clipboard

import (
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error

	heldMu sync.Mutex
	held   <-chan struct{}
)

func ensureInit() error {
	initOnce.Do(func() {
		if !hasDisplay() {
			initErr = errNoDisplay
			return
		}
		initErr = clipboard.Init()
	})
	return initErr
}

func writePNG(data []byte) error {
	ch := clipboard.Write(clipboard.FmtImage, data)
	heldMu.Lock()
	held = ch
	heldMu.Unlock()
	return nil
}

func released() <-chan struct{} {
	heldMu.Lock()
	defer heldMu.Unlock()
	if held == nil {
		return closedChan
	}
	return held
}
