//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"errors"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

var (
	initOnce sync.Once
	initErr  error
	owner    *selectionOwner
)

var errOwnerGone = errors.New("clipboard: X connection closed")

// changePropertyHeader is the fixed part of a ChangeProperty request.
const changePropertyHeader = 24

// maxChunk bounds a single INCR chunk even when the server accepts more.
const maxChunk = 1 << 16

func ensureInit() error {
	initOnce.Do(func() {
		if !hasDisplay() {
			initErr = errNoDisplay
			return
		}
		o, err := newSelectionOwner()
		if err != nil {
			initErr = err
			return
		}
		owner = o
	})
	return initErr
}

func writePNG(data []byte) error {
	return owner.publish(data)
}

func released() <-chan struct{} {
	if owner == nil {
		return closedChan
	}
	return owner.releasedChan()
}

// xServer is the part of the X protocol the selection owner speaks.
type xServer interface {
	claim(owner xproto.Window, selection xproto.Atom) error
	changeProperty(win xproto.Window, property, typ xproto.Atom, format byte, data []byte)
	watchProperties(win xproto.Window, on bool)
	sendNotify(e xproto.SelectionNotifyEvent)
}

type xConn struct {
	conn *xgb.Conn
}

func (c xConn) claim(owner xproto.Window, selection xproto.Atom) error {
	return xproto.SetSelectionOwnerChecked(c.conn, owner, selection, xproto.TimeCurrentTime).Check()
}

func (c xConn) changeProperty(win xproto.Window, property, typ xproto.Atom, format byte, data []byte) {
	n := len(data)
	if format == 32 {
		n /= 4
	}
	xproto.ChangeProperty(c.conn, xproto.PropModeReplace, win, property, typ, format, uint32(n), data)
}

func (c xConn) watchProperties(win xproto.Window, on bool) {
	mask := uint32(xproto.EventMaskNoEvent)
	if on {
		mask = xproto.EventMaskPropertyChange
	}
	xproto.ChangeWindowAttributes(c.conn, win, xproto.CwEventMask, []uint32{mask})
}

func (c xConn) sendNotify(e xproto.SelectionNotifyEvent) {
	xproto.SendEvent(c.conn, false, e.Requestor, xproto.EventMaskNoEvent, string(e.Bytes()))
}

type transferKey struct {
	requestor xproto.Window
	property  xproto.Atom
}

// incrTransfer is one image being handed over in chunks.
type incrTransfer struct {
	data   []byte
	offset int
}

// selectionOwner keeps a hidden window that owns CLIPBOARD and answers
// requests for image/png until another client takes the selection.
// Payloads above chunk bytes are sent with the ICCCM INCR protocol.
type selectionOwner struct {
	conn   *xgb.Conn
	x      xServer
	window xproto.Window
	chunk  int
	done   chan struct{}

	clipboard xproto.Atom
	targets   xproto.Atom
	png       xproto.Atom
	incr      xproto.Atom

	// transfers is only touched by the event loop.
	transfers map[transferKey]*incrTransfer

	mu       sync.Mutex
	data     []byte
	released chan struct{}
}

func newSelectionOwner() (*selectionOwner, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := xproto.CreateWindowChecked(conn, screen.RootDepth, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOutput, screen.RootVisual, xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange}).Check(); err != nil {
		conn.Close()
		return nil, err
	}
	o := &selectionOwner{
		conn:      conn,
		x:         xConn{conn: conn},
		window:    window,
		chunk:     chunkLimit(int(setup.MaximumRequestLength)),
		done:      make(chan struct{}),
		transfers: map[transferKey]*incrTransfer{},
	}
	for name, dst := range map[string]*xproto.Atom{
		"CLIPBOARD": &o.clipboard,
		"TARGETS":   &o.targets,
		"image/png": &o.png,
		"INCR":      &o.incr,
	} {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			xproto.DestroyWindow(conn, window)
			conn.Close()
			return nil, err
		}
		*dst = reply.Atom
	}
	go o.serve()
	return o, nil
}

// chunkLimit converts the server's maximum request length, counted in
// 4-byte units, into the largest payload one ChangeProperty may carry.
func chunkLimit(maxRequestUnits int) int {
	n := maxRequestUnits*4 - changePropertyHeader
	if n > maxChunk {
		n = maxChunk
	}
	if n < 4 {
		n = 4
	}
	return n
}

func (o *selectionOwner) publish(data []byte) error {
	select {
	case <-o.done:
		return errOwnerGone
	default:
	}
	o.hold(data)
	if err := o.x.claim(o.window, o.clipboard); err != nil {
		o.release()
		return err
	}
	return nil
}

func (o *selectionOwner) hold(data []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.data = append([]byte(nil), data...)
	if o.released == nil || isClosed(o.released) {
		o.released = make(chan struct{})
	}
}

func (o *selectionOwner) release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.data = nil
	if o.released != nil && !isClosed(o.released) {
		close(o.released)
	}
}

func (o *selectionOwner) releasedChan() <-chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.released == nil {
		return closedChan
	}
	return o.released
}

func isClosed(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func (o *selectionOwner) serve() {
	defer close(o.done)
	defer o.release()
	for {
		ev, err := o.conn.WaitForEvent()
		if ev == nil && err == nil {
			return
		}
		if ev != nil {
			o.handle(ev)
		}
	}
}

func (o *selectionOwner) handle(ev xgb.Event) {
	switch e := ev.(type) {
	case xproto.SelectionRequestEvent:
		o.answer(e)
	case xproto.PropertyNotifyEvent:
		o.propertyChanged(e)
	case xproto.SelectionClearEvent:
		o.release()
	}
}

func (o *selectionOwner) answer(e xproto.SelectionRequestEvent) {
	o.mu.Lock()
	data := o.data
	o.mu.Unlock()

	property := e.Property
	if property == xproto.AtomNone {
		property = e.Target
	}
	switch {
	case e.Target == o.targets:
		o.x.changeProperty(e.Requestor, property, xproto.AtomAtom, 32,
			atomsToBytes([]xproto.Atom{o.targets, o.png}))
	case e.Target == o.png && len(data) > o.chunk:
		o.transfers[transferKey{e.Requestor, property}] = &incrTransfer{data: data}
		o.x.watchProperties(e.Requestor, true)
		size := make([]byte, 4)
		xgb.Put32(size, uint32(len(data)))
		o.x.changeProperty(e.Requestor, property, o.incr, 32, size)
	case e.Target == o.png && len(data) > 0:
		o.x.changeProperty(e.Requestor, property, o.png, 8, data)
	default:
		property = xproto.AtomNone
	}

	o.x.sendNotify(xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  property,
	})
}

// propertyChanged feeds the next chunk each time the requestor deletes the
// property. A zero-length write ends the transfer.
func (o *selectionOwner) propertyChanged(e xproto.PropertyNotifyEvent) {
	if e.State != xproto.PropertyDelete {
		return
	}
	k := transferKey{e.Window, e.Atom}
	tr, ok := o.transfers[k]
	if !ok {
		return
	}
	end := min(tr.offset+o.chunk, len(tr.data))
	chunk := tr.data[tr.offset:end]
	tr.offset = end
	o.x.changeProperty(k.requestor, k.property, o.png, 8, chunk)
	if len(chunk) == 0 {
		delete(o.transfers, k)
		o.x.watchProperties(k.requestor, false)
	}
}

func atomsToBytes(atoms []xproto.Atom) []byte {
	buf := make([]byte, len(atoms)*4)
	for i, atom := range atoms {
		xgb.Put32(buf[i*4:], uint32(atom))
	}
	return buf
}
