package canvas

// DefaultHistoryDepth bounds the undo stack; the oldest entry is evicted
// beyond this depth.
const DefaultHistoryDepth = 50

// EntryKind tags a reversible user action.
type EntryKind string

const (
	EntryCreate     EntryKind = "create"
	EntryDelete     EntryKind = "delete"
	EntryUpdate     EntryKind = "update"
	EntryMove       EntryKind = "move"
	EntryConnect    EntryKind = "connect"
	EntryDisconnect EntryKind = "disconnect"
)

// MoveDelta records one card's position before and after a drag. A move
// entry holds a batch of these, since a drag can move a multi-selection.
type MoveDelta struct {
	ID    string
	FromX float64
	FromY float64
	ToX   float64
	ToY   float64
}

// ParentRef captures a card's structural attachment: its parent reference
// and the two handles. A nil ParentID means detached.
type ParentRef struct {
	ParentID     *string
	ParentHandle Handle
	ChildHandle  Handle
}

// ChildLink remembers how a child was attached to a deleted card so that
// undoing the delete can restore the child's parent reference.
type ChildLink struct {
	ChildID      string
	ParentHandle Handle
	ChildHandle  Handle
}

// UpdateDiff is a field-level before/after pair for an update entry. Only
// the fields present in After were touched; Before carries their
// pre-mutation values.
type UpdateDiff struct {
	CardID string
	Before UpdateCardParams
	After  UpdateCardParams
}

// LinkDiff records a parent-reference change for connect/disconnect.
type LinkDiff struct {
	ChildID string
	Before  ParentRef
	After   ParentRef
}

// Entry is one reversible record on the history stacks. Exactly the
// fields relevant to its Kind are populated.
type Entry struct {
	Kind EntryKind

	// create: the created row. delete: full snapshot for restoration.
	Card Card
	// delete: children that were attached to the deleted card.
	Children []ChildLink

	Update *UpdateDiff
	Moves  []MoveDelta
	Link   *LinkDiff

	seq int64
}

// History holds the bounded undo and redo stacks. It is pure bookkeeping;
// replaying entries against state and store is the engine's job.
type History struct {
	undo  []Entry
	redo  []Entry
	depth int
	seq   int64
}

// NewHistory creates a history bounded to depth entries; depth <= 0 uses
// DefaultHistoryDepth.
func NewHistory(depth int) *History {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	return &History{depth: depth}
}

// Push records a fresh mutation: it appends to the undo stack, evicts the
// oldest entry beyond capacity and clears the redo stack (linear history,
// not a tree). The returned sequence number identifies the entry for a
// later Drop.
func (h *History) Push(e Entry) int64 {
	h.seq++
	e.seq = h.seq
	h.undo = append(h.undo, e)
	if len(h.undo) > h.depth {
		h.undo = h.undo[len(h.undo)-h.depth:]
	}
	h.redo = h.redo[:0]
	return e.seq
}

// Drop removes the entry with the given sequence number from whichever
// stack holds it. Used when a mutation's store call fails after its entry
// was already pushed.
func (h *History) Drop(seq int64) {
	h.undo = dropSeq(h.undo, seq)
	h.redo = dropSeq(h.redo, seq)
}

func dropSeq(stack []Entry, seq int64) []Entry {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].seq == seq {
			return append(stack[:i], stack[i+1:]...)
		}
	}
	return stack
}

// PopUndo removes and returns the most recent undoable entry.
func (h *History) PopUndo() (Entry, bool) {
	if len(h.undo) == 0 {
		return Entry{}, false
	}
	e := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return e, true
}

// PopRedo removes and returns the most recent redoable entry.
func (h *History) PopRedo() (Entry, bool) {
	if len(h.redo) == 0 {
		return Entry{}, false
	}
	e := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return e, true
}

// PushUndo re-appends an entry to the undo stack without clearing redo.
// Used when moving entries between stacks during undo/redo and when
// restoring an entry after a failed replay.
func (h *History) PushUndo(e Entry) {
	h.undo = append(h.undo, e)
	if len(h.undo) > h.depth {
		h.undo = h.undo[len(h.undo)-h.depth:]
	}
}

// PushRedo appends an entry to the redo stack.
func (h *History) PushRedo(e Entry) {
	h.redo = append(h.redo, e)
	if len(h.redo) > h.depth {
		h.redo = h.redo[len(h.redo)-h.depth:]
	}
}

// UndoLen returns the number of undoable entries.
func (h *History) UndoLen() int { return len(h.undo) }

// RedoLen returns the number of redoable entries.
func (h *History) RedoLen() int { return len(h.redo) }
