package canvas

import (
	"fmt"
	"testing"
)

func TestHistoryPushClearsRedo(t *testing.T) {
	h := NewHistory(10)

	h.Push(Entry{Kind: EntryCreate, Card: Card{ID: "a"}})
	e, ok := h.PopUndo()
	if !ok {
		t.Fatalf("expected undoable entry")
	}
	h.PushRedo(e)
	if h.RedoLen() != 1 {
		t.Fatalf("expected 1 redo entry, got %d", h.RedoLen())
	}

	h.Push(Entry{Kind: EntryCreate, Card: Card{ID: "b"}})
	if h.RedoLen() != 0 {
		t.Fatalf("push must clear redo, got %d entries", h.RedoLen())
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(3)

	for i := 0; i < 4; i++ {
		h.Push(Entry{Kind: EntryCreate, Card: Card{ID: fmt.Sprintf("c%d", i)}})
	}

	if h.UndoLen() != 3 {
		t.Fatalf("expected depth-bounded stack of 3, got %d", h.UndoLen())
	}

	var ids []string
	for {
		e, ok := h.PopUndo()
		if !ok {
			break
		}
		ids = append(ids, e.Card.ID)
	}
	if len(ids) != 3 || ids[0] != "c3" || ids[2] != "c1" {
		t.Fatalf("expected newest-first c3..c1 with c0 evicted, got %v", ids)
	}
}

func TestHistoryDrop(t *testing.T) {
	h := NewHistory(10)

	s1 := h.Push(Entry{Kind: EntryCreate, Card: Card{ID: "a"}})
	s2 := h.Push(Entry{Kind: EntryCreate, Card: Card{ID: "b"}})

	h.Drop(s1)
	if h.UndoLen() != 1 {
		t.Fatalf("expected 1 entry after drop, got %d", h.UndoLen())
	}

	e, _ := h.PopUndo()
	if e.Card.ID != "b" || e.seq != s2 {
		t.Fatalf("wrong entry survived drop: %+v", e)
	}

	// Dropping an already-popped seq is a no-op.
	h.Drop(s2)
}

func TestHistoryDropFromRedo(t *testing.T) {
	h := NewHistory(10)

	seq := h.Push(Entry{Kind: EntryDelete, Card: Card{ID: "a"}})
	e, _ := h.PopUndo()
	h.PushRedo(e)

	h.Drop(seq)
	if h.RedoLen() != 0 {
		t.Fatalf("expected drop to reach the redo stack, got %d entries", h.RedoLen())
	}
}
