package history

import "image"

// Surface is the pixel state a Stack saves and restores.
type Surface interface {
	Snapshot() *image.RGBA
	Restore(*image.RGBA)
}

// Stack keeps undo and redo snapshots, most recent last. Restoration is a
// synchronous pixel copy so an undo is visible as soon as it returns.
type Stack struct {
	undo  []*image.RGBA
	redo  []*image.RGBA
	limit int
}

// New creates a Stack holding at most limit undo snapshots. A limit of zero
// or less keeps every snapshot.
func New(limit int) *Stack {
	return &Stack{limit: limit}
}

// Snapshot records the current state of s before a destructive action and
// discards the redo sequence.
func (h *Stack) Snapshot(s Surface) {
	h.undo = append(h.undo, s.Snapshot())
	if h.limit > 0 && len(h.undo) > h.limit {
		drop := len(h.undo) - h.limit
		for i := 0; i < drop; i++ {
			h.undo[i] = nil
		}
		h.undo = append(h.undo[:0], h.undo[drop:]...)
	}
	h.clearRedo()
}

// Undo restores the most recent snapshot, saving the current state for
// Redo. It reports false and leaves s untouched when there is nothing to undo.
func (h *Stack) Undo(s Surface) bool {
	if len(h.undo) == 0 {
		return false
	}
	h.redo = append(h.redo, s.Snapshot())
	s.Restore(pop(&h.undo))
	return true
}

// Redo is the inverse of Undo.
func (h *Stack) Redo(s Surface) bool {
	if len(h.redo) == 0 {
		return false
	}
	h.undo = append(h.undo, s.Snapshot())
	s.Restore(pop(&h.redo))
	return true
}

// Reset forgets every snapshot.
func (h *Stack) Reset() {
	h.undo = nil
	h.redo = nil
}

func (h *Stack) clearRedo() {
	for i := range h.redo {
		h.redo[i] = nil
	}
	h.redo = h.redo[:0]
}

// CanUndo reports whether Undo would change anything.
func (h *Stack) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo would change anything.
func (h *Stack) CanRedo() bool { return len(h.redo) > 0 }

// Len returns the number of undo and redo snapshots held.
func (h *Stack) Len() (undo, redo int) { return len(h.undo), len(h.redo) }

// Limit returns the configured undo depth, zero meaning unbounded.
func (h *Stack) Limit() int { return h.limit }

func pop(stack *[]*image.RGBA) *image.RGBA {
	s := *stack
	last := s[len(s)-1]
	s[len(s)-1] = nil
	*stack = s[:len(s)-1]
	return last
}
