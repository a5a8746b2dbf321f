//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"bytes"
	"errors"
	"testing"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

type propertyWrite struct {
	win      xproto.Window
	property xproto.Atom
	typ      xproto.Atom
	format   byte
	data     []byte
}

type fakeServer struct {
	claimErr error
	writes   []propertyWrite
	watching map[xproto.Window]bool
	notified []xproto.SelectionNotifyEvent
}

func (f *fakeServer) claim(xproto.Window, xproto.Atom) error { return f.claimErr }

func (f *fakeServer) changeProperty(win xproto.Window, property, typ xproto.Atom, format byte, data []byte) {
	f.writes = append(f.writes, propertyWrite{win, property, typ, format, append([]byte(nil), data...)})
}

func (f *fakeServer) watchProperties(win xproto.Window, on bool) {
	if f.watching == nil {
		f.watching = map[xproto.Window]bool{}
	}
	f.watching[win] = on
}

func (f *fakeServer) sendNotify(e xproto.SelectionNotifyEvent) {
	f.notified = append(f.notified, e)
}

const (
	testRequestor = xproto.Window(77)
	testProperty  = xproto.Atom(90)
)

func newFakeOwner(chunk int) (*selectionOwner, *fakeServer) {
	f := &fakeServer{}
	return &selectionOwner{
		x:         f,
		window:    5,
		chunk:     chunk,
		done:      make(chan struct{}),
		clipboard: 1,
		targets:   2,
		png:       3,
		incr:      4,
		transfers: map[transferKey]*incrTransfer{},
	}, f
}

func pngRequest(o *selectionOwner) xproto.SelectionRequestEvent {
	return xproto.SelectionRequestEvent{
		Requestor: testRequestor,
		Selection: o.clipboard,
		Target:    o.png,
		Property:  testProperty,
	}
}

func TestAnswerSmallImageInOneWrite(t *testing.T) {
	o, f := newFakeOwner(16)
	if err := o.publish([]byte("tiny png")); err != nil {
		t.Fatal(err)
	}
	o.handle(pngRequest(o))
	if len(f.writes) != 1 {
		t.Fatalf("%d writes, want 1", len(f.writes))
	}
	w := f.writes[0]
	if w.typ != o.png || w.format != 8 || string(w.data) != "tiny png" {
		t.Fatalf("write %+v", w)
	}
	if len(f.notified) != 1 || f.notified[0].Property != testProperty {
		t.Fatalf("notify %+v", f.notified)
	}
}

func TestAnswerLargeImageInChunks(t *testing.T) {
	o, f := newFakeOwner(10)
	data := bytes.Repeat([]byte("0123456789abcde"), 5)[:25]
	if err := o.publish(data); err != nil {
		t.Fatal(err)
	}
	o.handle(pngRequest(o))

	if len(f.writes) != 1 {
		t.Fatalf("%d writes before the first delete, want 1", len(f.writes))
	}
	announce := f.writes[0]
	if announce.typ != o.incr || announce.format != 32 || xgb.Get32(announce.data) != 25 {
		t.Fatalf("INCR announcement %+v", announce)
	}
	if !f.watching[testRequestor] {
		t.Fatal("requestor properties not watched")
	}
	if len(f.notified) != 1 || f.notified[0].Property != testProperty {
		t.Fatalf("notify %+v", f.notified)
	}

	// New values written by the requestor are not a request for more.
	o.handle(xproto.PropertyNotifyEvent{Window: testRequestor, Atom: testProperty, State: xproto.PropertyNewValue})
	if len(f.writes) != 1 {
		t.Fatal("chunk sent without a delete")
	}

	var got []byte
	for i, want := range []int{10, 10, 5, 0} {
		o.handle(xproto.PropertyNotifyEvent{Window: testRequestor, Atom: testProperty, State: xproto.PropertyDelete})
		w := f.writes[len(f.writes)-1]
		if len(w.data) != want || w.typ != o.png || w.win != testRequestor || w.property != testProperty {
			t.Fatalf("chunk %d: %d bytes of type %d, want %d", i, len(w.data), w.typ, want)
		}
		got = append(got, w.data...)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("reassembled %q, want %q", got, data)
	}
	if f.watching[testRequestor] {
		t.Fatal("requestor still watched after the final chunk")
	}
	if len(o.transfers) != 0 {
		t.Fatalf("%d transfers left", len(o.transfers))
	}
	o.handle(xproto.PropertyNotifyEvent{Window: testRequestor, Atom: testProperty, State: xproto.PropertyDelete})
	if len(f.writes) != 5 {
		t.Fatal("finished transfer kept writing")
	}
}

func TestAnswerTargetsAndRefusals(t *testing.T) {
	o, f := newFakeOwner(16)
	o.handle(xproto.SelectionRequestEvent{Requestor: testRequestor, Target: o.targets, Property: testProperty})
	w := f.writes[0]
	if w.typ != xproto.AtomAtom || xproto.Atom(xgb.Get32(w.data[4:])) != o.png {
		t.Fatalf("targets %+v", w)
	}

	// Nothing published yet, and unknown targets are refused.
	o.handle(pngRequest(o))
	o.handle(xproto.SelectionRequestEvent{Requestor: testRequestor, Target: 99, Property: testProperty})
	for _, n := range f.notified[1:] {
		if n.Property != xproto.AtomNone {
			t.Fatalf("expected refusal, got %+v", n)
		}
	}
}

func TestReleasedFollowsOwnership(t *testing.T) {
	o, f := newFakeOwner(16)
	if err := o.publish([]byte("a")); err != nil {
		t.Fatal(err)
	}
	ch := o.releasedChan()
	select {
	case <-ch:
		t.Fatal("released while still owning the selection")
	default:
	}
	o.handle(xproto.SelectionClearEvent{Owner: o.window, Selection: o.clipboard})
	select {
	case <-ch:
	default:
		t.Fatal("selection clear did not release")
	}

	f.claimErr = errors.New("denied")
	if err := o.publish([]byte("b")); err == nil {
		t.Fatal("expected claim error")
	}
	select {
	case <-o.releasedChan():
	default:
		t.Fatal("failed claim left the image held")
	}

	close(o.done)
	if err := o.publish([]byte("c")); !errors.Is(err, errOwnerGone) {
		t.Fatalf("expected errOwnerGone, got %v", err)
	}
}

func TestChunkLimit(t *testing.T) {
	if got := chunkLimit(65535); got != maxChunk {
		t.Fatalf("chunk %d, want %d", got, maxChunk)
	}
	if got := chunkLimit(1024); got != 1024*4-changePropertyHeader {
		t.Fatalf("chunk %d", got)
	}
}
