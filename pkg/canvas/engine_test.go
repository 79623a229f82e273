package canvas

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

var errStoreDown = errors.New("store down")

// fakeStore is an in-memory Store with per-operation failure injection.
type fakeStore struct {
	mu    sync.Mutex
	cards map[string]Card

	failCreate    bool
	failUpdate    bool
	failDelete    bool
	failSize      bool
	failPositions bool

	deletes []string
	updates int
}

func newFakeStore() *fakeStore {
	return &fakeStore{cards: make(map[string]Card)}
}

func (s *fakeStore) seed(cards ...Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cards {
		s.cards[c.ID] = c.Clone()
	}
}

func (s *fakeStore) get(id string) (Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	return c, ok
}

func (s *fakeStore) ListCards(ctx context.Context, canvasID string) ([]Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Card
	for _, c := range s.cards {
		if c.CanvasID == canvasID {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (s *fakeStore) CreateCard(ctx context.Context, params CreateCardParams) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		return Card{}, errStoreDown
	}
	now := time.Now()
	c := Card{
		ID:        params.ID,
		CanvasID:  params.CanvasID,
		Type:      CardTypeStandard,
		X:         params.PositionX,
		Y:         params.PositionY,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if params.ParentID != nil {
		p := *params.ParentID
		c.ParentID = &p
	}
	s.cards[c.ID] = c
	return c.Clone(), nil
}

func (s *fakeStore) UpdateCard(ctx context.Context, params UpdateCardParams) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate {
		return Card{}, errStoreDown
	}
	c, ok := s.cards[params.ID]
	if !ok {
		return Card{}, ErrNotFound
	}
	applyParams(&c, params)
	c.UpdatedAt = time.Now()
	s.cards[params.ID] = c
	s.updates++
	return c.Clone(), nil
}

func (s *fakeStore) DeleteCard(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, id)
	if s.failDelete {
		return errStoreDown
	}
	delete(s.cards, id)
	// Mirror the set-null-on-delete foreign key.
	for cid, c := range s.cards {
		if c.ParentID != nil && *c.ParentID == id {
			c.ParentID = nil
			c.ParentHandle = ""
			c.ChildHandle = ""
			s.cards[cid] = c
		}
	}
	return nil
}

func (s *fakeStore) UpdateCardSize(ctx context.Context, params UpdateCardSizeParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSize {
		return errStoreDown
	}
	c, ok := s.cards[params.ID]
	if !ok {
		return ErrNotFound
	}
	if params.Width != nil {
		w := *params.Width
		c.Width = &w
	}
	if params.Height != nil {
		h := *params.Height
		c.Height = &h
	}
	s.cards[params.ID] = c
	return nil
}

func (s *fakeStore) UpdateCardPositions(ctx context.Context, positions []CardPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPositions {
		return errStoreDown
	}
	for _, p := range positions {
		c, ok := s.cards[p.ID]
		if !ok {
			return ErrNotFound
		}
		c.X = p.X
		c.Y = p.Y
		s.cards[p.ID] = c
	}
	return nil
}

func newTestEngine(t *testing.T, store *fakeStore) *Engine {
	t.Helper()
	e := New(store, "home",
		WithDebounce(0),
		WithNotifier(func(message string, err error) {}),
	)
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return e
}

func TestCreateCardOptimistic(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(t, store)

	card, err := e.CreateCard(context.Background(), 10, 20, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if card.ID == "" {
		t.Fatalf("expected client-assigned id")
	}
	// Visible locally before the store call settles.
	if _, ok := e.Card(card.ID); !ok {
		t.Fatalf("card not applied locally")
	}

	e.Wait()
	if _, ok := store.get(card.ID); !ok {
		t.Fatalf("card not persisted")
	}
	if e.UndoLen() != 1 {
		t.Fatalf("expected 1 history entry, got %d", e.UndoLen())
	}
}

func TestCreateCardRollback(t *testing.T) {
	store := newFakeStore()
	store.failCreate = true

	var notifyMu sync.Mutex
	var notified error
	e := New(store, "home",
		WithDebounce(0),
		WithNotifier(func(message string, err error) {
			notifyMu.Lock()
			notified = err
			notifyMu.Unlock()
		}),
	)
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	card, err := e.CreateCard(context.Background(), 0, 0, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	e.Wait()

	if _, ok := e.Card(card.ID); ok {
		t.Fatalf("failed create must be rolled back locally")
	}
	if e.UndoLen() != 0 {
		t.Fatalf("failed create must retract its history entry, got %d", e.UndoLen())
	}
	notifyMu.Lock()
	defer notifyMu.Unlock()
	if !errors.Is(notified, errStoreDown) {
		t.Fatalf("expected failure notification, got %v", notified)
	}
}

func TestDeleteCardDetachesChildren(t *testing.T) {
	store := newFakeStore()
	store.seed(
		Card{ID: "a", CanvasID: "home"},
		Card{ID: "b", CanvasID: "home", ParentID: strPtr("a"), ParentHandle: HandleRight, ChildHandle: HandleLeft},
	)
	e := newTestEngine(t, store)

	if err := e.DeleteCard(context.Background(), "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	child, ok := e.Card("b")
	if !ok {
		t.Fatalf("child must survive parent deletion")
	}
	if child.ParentID != nil {
		t.Fatalf("child must be detached, still points at %s", *child.ParentID)
	}
	if len(e.Projection().Edges) != 0 {
		t.Fatalf("detached child must lose its edge")
	}

	e.Wait()
	if _, ok := store.get("a"); ok {
		t.Fatalf("card not deleted from store")
	}
}

func TestDeleteCardRollback(t *testing.T) {
	store := newFakeStore()
	store.seed(
		Card{ID: "a", CanvasID: "home"},
		Card{ID: "b", CanvasID: "home", ParentID: strPtr("a"), ParentHandle: HandleBottom, ChildHandle: HandleTop},
	)
	store.failDelete = true
	e := newTestEngine(t, store)

	if err := e.DeleteCard(context.Background(), "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	e.Wait()

	if _, ok := e.Card("a"); !ok {
		t.Fatalf("failed delete must restore the card")
	}
	child, _ := e.Card("b")
	if child.ParentID == nil || *child.ParentID != "a" || child.ParentHandle != HandleBottom {
		t.Fatalf("failed delete must restore child attachment, got %+v", child)
	}
	if e.UndoLen() != 0 {
		t.Fatalf("failed delete must retract its history entry")
	}
}

func TestUpdateCardRollback(t *testing.T) {
	store := newFakeStore()
	store.seed(Card{ID: "a", CanvasID: "home", Title: "old"})
	store.failUpdate = true
	e := newTestEngine(t, store)

	if err := e.UpdateCard(context.Background(), UpdateCardParams{ID: "a", Title: strPtr("new")}); err != nil {
		t.Fatalf("update: %v", err)
	}

	card, _ := e.Card("a")
	if card.Title != "new" {
		t.Fatalf("update not applied optimistically, title %q", card.Title)
	}

	e.Wait()
	card, _ = e.Card("a")
	if card.Title != "old" {
		t.Fatalf("failed update must restore the old value, got %q", card.Title)
	}
	if e.UndoLen() != 0 {
		t.Fatalf("failed update must retract its history entries")
	}
}

func TestUpdateCardDebounceCoalesces(t *testing.T) {
	store := newFakeStore()
	store.seed(Card{ID: "a", CanvasID: "home"})
	e := New(store, "home", WithDebounce(20*time.Millisecond))
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	for _, title := range []string{"d", "dr", "dra", "draft"} {
		if err := e.UpdateCard(context.Background(), UpdateCardParams{ID: "a", Title: strPtr(title)}); err != nil {
			t.Fatalf("update: %v", err)
		}
	}

	e.Flush()
	e.Wait()

	store.mu.Lock()
	updates := store.updates
	store.mu.Unlock()
	if updates != 1 {
		t.Fatalf("expected 1 coalesced store write, got %d", updates)
	}
	c, _ := store.get("a")
	if c.Title != "draft" {
		t.Fatalf("expected final value persisted, got %q", c.Title)
	}
	// Each edit is its own undo step even though the writes coalesced.
	if e.UndoLen() != 4 {
		t.Fatalf("expected 4 history entries, got %d", e.UndoLen())
	}
}

func TestMoveCardsRollback(t *testing.T) {
	store := newFakeStore()
	store.seed(
		Card{ID: "a", CanvasID: "home", X: 1, Y: 1},
		Card{ID: "b", CanvasID: "home", X: 2, Y: 2},
	)
	store.failPositions = true
	e := newTestEngine(t, store)

	err := e.MoveCards(context.Background(), []CardPosition{
		{ID: "a", X: 100, Y: 100},
		{ID: "b", X: 200, Y: 200},
	})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	e.Wait()

	a, _ := e.Card("a")
	b, _ := e.Card("b")
	if a.X != 1 || b.X != 2 {
		t.Fatalf("failed move must restore positions, got %v and %v", a.X, b.X)
	}
	if e.UndoLen() != 0 {
		t.Fatalf("failed move must retract its history entry, got %d", e.UndoLen())
	}
}

func TestConnectDisconnect(t *testing.T) {
	store := newFakeStore()
	store.seed(
		Card{ID: "a", CanvasID: "home"},
		Card{ID: "b", CanvasID: "home"},
	)
	e := newTestEngine(t, store)

	if err := e.Connect(context.Background(), "b", "a", HandleRight, HandleLeft); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if len(e.Projection().Edges) != 1 {
		t.Fatalf("expected derived edge after connect")
	}
	e.Wait()

	stored, _ := store.get("b")
	if stored.ParentID == nil || *stored.ParentID != "a" {
		t.Fatalf("connect not persisted, got %+v", stored)
	}

	if err := e.Disconnect(context.Background(), "b"); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if len(e.Projection().Edges) != 0 {
		t.Fatalf("expected no edge after disconnect")
	}
	e.Wait()

	stored, _ = store.get("b")
	if stored.ParentID != nil {
		t.Fatalf("disconnect not persisted")
	}
}

func TestConnectRejectsSelfAndMissingParent(t *testing.T) {
	store := newFakeStore()
	store.seed(Card{ID: "a", CanvasID: "home"})
	e := newTestEngine(t, store)

	if err := e.Connect(context.Background(), "a", "a", HandleRight, HandleLeft); !errors.Is(err, ErrInvalidParent) {
		t.Fatalf("expected ErrInvalidParent for self-loop, got %v", err)
	}
	if err := e.Connect(context.Background(), "a", "ghost", HandleRight, HandleLeft); !errors.Is(err, ErrInvalidParent) {
		t.Fatalf("expected ErrInvalidParent for missing parent, got %v", err)
	}
	if e.UndoLen() != 0 {
		t.Fatalf("rejected connect must not touch history")
	}
}

func TestUndoRedoCreate(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(t, store)

	card, err := e.CreateCard(context.Background(), 5, 5, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	e.Wait()

	if err := e.Undo(context.Background()); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if _, ok := e.Card(card.ID); ok {
		t.Fatalf("undo of create must remove the card")
	}
	e.Wait()
	if _, ok := store.get(card.ID); ok {
		t.Fatalf("undo of create must delete from store")
	}

	if err := e.Redo(context.Background()); err != nil {
		t.Fatalf("redo: %v", err)
	}
	restored, ok := e.Card(card.ID)
	if !ok {
		t.Fatalf("redo must recreate the card")
	}
	if restored.ID != card.ID || restored.X != 5 {
		t.Fatalf("redo must restore identity and position, got %+v", restored)
	}
	e.Wait()
	if _, ok := store.get(card.ID); !ok {
		t.Fatalf("redo must persist the recreated card")
	}
}

func TestUndoDeleteRestoresChildren(t *testing.T) {
	store := newFakeStore()
	store.seed(
		Card{ID: "a", CanvasID: "home", Title: "parent"},
		Card{ID: "b", CanvasID: "home", ParentID: strPtr("a"), ParentHandle: HandleRight, ChildHandle: HandleLeft},
	)
	e := newTestEngine(t, store)

	if err := e.DeleteCard(context.Background(), "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	e.Wait()

	if err := e.Undo(context.Background()); err != nil {
		t.Fatalf("undo: %v", err)
	}
	e.Wait()

	restored, ok := e.Card("a")
	if !ok || restored.Title != "parent" {
		t.Fatalf("undo must restore the deleted snapshot, got %+v", restored)
	}
	child, _ := e.Card("b")
	if child.ParentID == nil || *child.ParentID != "a" {
		t.Fatalf("undo must re-attach the child")
	}

	stored, ok := store.get("a")
	if !ok || stored.Title != "parent" {
		t.Fatalf("undo must recreate the row in the store, got %+v", stored)
	}
	storedChild, _ := store.get("b")
	if storedChild.ParentID == nil || *storedChild.ParentID != "a" {
		t.Fatalf("undo must re-attach the child in the store")
	}
}

func TestUndoUpdateAndMove(t *testing.T) {
	store := newFakeStore()
	store.seed(Card{ID: "a", CanvasID: "home", Title: "old", X: 1, Y: 1})
	e := newTestEngine(t, store)

	if err := e.UpdateCard(context.Background(), UpdateCardParams{ID: "a", Title: strPtr("new")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := e.MoveCards(context.Background(), []CardPosition{{ID: "a", X: 9, Y: 9}}); err != nil {
		t.Fatalf("move: %v", err)
	}
	e.Wait()

	// Undo the move, then the update.
	if err := e.Undo(context.Background()); err != nil {
		t.Fatalf("undo move: %v", err)
	}
	card, _ := e.Card("a")
	if card.X != 1 || card.Y != 1 {
		t.Fatalf("undo must restore position, got %v,%v", card.X, card.Y)
	}

	if err := e.Undo(context.Background()); err != nil {
		t.Fatalf("undo update: %v", err)
	}
	card, _ = e.Card("a")
	if card.Title != "old" {
		t.Fatalf("undo must restore title, got %q", card.Title)
	}
	e.Wait()

	if err := e.Redo(context.Background()); err != nil {
		t.Fatalf("redo: %v", err)
	}
	card, _ = e.Card("a")
	if card.Title != "new" {
		t.Fatalf("redo must reapply title, got %q", card.Title)
	}
}

func TestUndoFailureRestoresEntry(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(t, store)

	card, err := e.CreateCard(context.Background(), 0, 0, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	e.Wait()

	store.mu.Lock()
	store.failDelete = true
	store.mu.Unlock()

	if err := e.Undo(context.Background()); err != nil {
		t.Fatalf("undo: %v", err)
	}
	e.Wait()

	// The store rejected the undo: the card is back and the entry is
	// undoable again.
	if _, ok := e.Card(card.ID); !ok {
		t.Fatalf("failed undo must revert the local replay")
	}
	if e.UndoLen() != 1 || e.RedoLen() != 0 {
		t.Fatalf("failed undo must restore the entry, undo=%d redo=%d", e.UndoLen(), e.RedoLen())
	}
}

func TestRedoClearedByNewMutation(t *testing.T) {
	store := newFakeStore()
	store.seed(Card{ID: "a", CanvasID: "home", Title: "old"})
	e := newTestEngine(t, store)

	if err := e.UpdateCard(context.Background(), UpdateCardParams{ID: "a", Title: strPtr("new")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	e.Wait()
	if err := e.Undo(context.Background()); err != nil {
		t.Fatalf("undo: %v", err)
	}
	e.Wait()
	if e.RedoLen() != 1 {
		t.Fatalf("expected a redoable entry")
	}

	if err := e.UpdateCard(context.Background(), UpdateCardParams{ID: "a", Title: strPtr("other")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if e.RedoLen() != 0 {
		t.Fatalf("new mutation must clear redo, got %d", e.RedoLen())
	}
}

func TestUndoMissingTargetIsSilentNoop(t *testing.T) {
	store := newFakeStore()
	store.seed(Card{ID: "a", CanvasID: "home"})
	e := newTestEngine(t, store)

	if err := e.UpdateCard(context.Background(), UpdateCardParams{ID: "a", Title: strPtr("x")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := e.DeleteCard(context.Background(), "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	e.Wait()

	// Undo the delete's entry away first, leaving the update entry whose
	// target we then remove again out-of-band.
	e.mu.Lock()
	e.history = NewHistory(0)
	e.history.Push(Entry{Kind: EntryUpdate, Update: &UpdateDiff{
		CardID: "ghost",
		Before: UpdateCardParams{ID: "ghost", Title: strPtr("a")},
		After:  UpdateCardParams{ID: "ghost", Title: strPtr("b")},
	}})
	e.mu.Unlock()

	if err := e.Undo(context.Background()); err != nil {
		t.Fatalf("undo of missing target must be silent, got %v", err)
	}
	e.Wait()
	if e.UndoLen() != 0 || e.RedoLen() != 0 {
		t.Fatalf("no-op undo must consume the entry, undo=%d redo=%d", e.UndoLen(), e.RedoLen())
	}
}

func TestDuplicate(t *testing.T) {
	store := newFakeStore()
	store.seed(
		Card{ID: "p", CanvasID: "home"},
		Card{ID: "a", CanvasID: "home", Title: "orig", Description: "text", X: 3, Y: 4,
			ParentID: strPtr("p"), ParentHandle: HandleRight, ChildHandle: HandleLeft,
			Width: floatPtr(300)},
	)
	e := newTestEngine(t, store)

	copied, err := e.Duplicate(context.Background(), "a")
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if copied.ID == "a" || copied.ID == "" {
		t.Fatalf("copy must get a fresh id, got %q", copied.ID)
	}
	if copied.Title != "orig" || copied.X != 3 || copied.Y != 4 {
		t.Fatalf("copy must inherit fields and position, got %+v", copied)
	}
	if copied.ParentID == nil || *copied.ParentID != "p" {
		t.Fatalf("copy must inherit the parent reference")
	}

	e.Wait()
	stored, ok := store.get(copied.ID)
	if !ok {
		t.Fatalf("copy not persisted")
	}
	if stored.Title != "orig" || stored.Width == nil || *stored.Width != 300 {
		t.Fatalf("copy persistence incomplete: %+v", stored)
	}
	// Children of the original still point at the original only.
	orig, _ := store.get("a")
	if orig.ParentID == nil || *orig.ParentID != "p" {
		t.Fatalf("original must be untouched")
	}
	if e.UndoLen() != 1 {
		t.Fatalf("successful duplicate must push one create entry, got %d", e.UndoLen())
	}
}

func TestDuplicateTotalFailure(t *testing.T) {
	store := newFakeStore()
	store.seed(Card{ID: "a", CanvasID: "home", Title: "orig"})
	store.failUpdate = true
	e := newTestEngine(t, store)

	copied, err := e.Duplicate(context.Background(), "a")
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	e.Wait()

	if _, ok := e.Card(copied.ID); ok {
		t.Fatalf("failed duplicate must remove the optimistic copy")
	}
	if e.UndoLen() != 0 {
		t.Fatalf("failed duplicate must not leave a history entry")
	}
	// The created row was cleaned up again.
	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.deletes) == 0 || store.deletes[len(store.deletes)-1] != copied.ID {
		t.Fatalf("failed duplicate must delete the created row, deletes %v", store.deletes)
	}
}

func TestResizeNotUndoable(t *testing.T) {
	store := newFakeStore()
	store.seed(Card{ID: "a", CanvasID: "home"})
	e := newTestEngine(t, store)

	if err := e.ResizeCard(context.Background(), UpdateCardSizeParams{ID: "a", Width: floatPtr(500)}); err != nil {
		t.Fatalf("resize: %v", err)
	}
	e.Wait()

	if e.UndoLen() != 0 {
		t.Fatalf("resize must not enter history, got %d entries", e.UndoLen())
	}
	card, _ := e.Card("a")
	if card.Width == nil || *card.Width != 500 {
		t.Fatalf("resize not applied, got %+v", card.Width)
	}
}

func TestResizeRollback(t *testing.T) {
	store := newFakeStore()
	store.seed(Card{ID: "a", CanvasID: "home", Width: floatPtr(256)})
	store.failSize = true
	e := newTestEngine(t, store)

	if err := e.ResizeCard(context.Background(), UpdateCardSizeParams{ID: "a", Width: floatPtr(500)}); err != nil {
		t.Fatalf("resize: %v", err)
	}
	e.Wait()

	card, _ := e.Card("a")
	if card.Width == nil || *card.Width != 256 {
		t.Fatalf("failed resize must restore size, got %v", card.Width)
	}
}

func TestReadOnlyRejectsMutations(t *testing.T) {
	store := newFakeStore()
	store.seed(Card{ID: "a", CanvasID: "home"})
	e := New(store, "home", WithReadOnly())
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if _, err := e.CreateCard(context.Background(), 0, 0, nil); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if err := e.DeleteCard(context.Background(), "a"); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if err := e.UpdateCard(context.Background(), UpdateCardParams{ID: "a"}); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if _, ok := e.Card("a"); !ok {
		t.Fatalf("read-only engine must still serve reads")
	}

	// Collapse is view state and stays available.
	e.ToggleCollapse("a")
	if !e.Collapsed("a") {
		t.Fatalf("collapse must work in read-only mode")
	}
}

func TestToggleCollapseHidesSubtree(t *testing.T) {
	store := newFakeStore()
	store.seed(
		Card{ID: "a", CanvasID: "home"},
		Card{ID: "b", CanvasID: "home", ParentID: strPtr("a")},
		Card{ID: "c", CanvasID: "home", ParentID: strPtr("b")},
	)
	e := newTestEngine(t, store)

	e.ToggleCollapse("a")
	hidden := e.Hidden()
	if hidden["a"] || !hidden["b"] || !hidden["c"] {
		t.Fatalf("expected b,c hidden under collapsed a, got %v", hidden)
	}

	e.ToggleCollapse("a")
	if len(e.Hidden()) != 0 {
		t.Fatalf("expand must reveal the subtree")
	}
}
