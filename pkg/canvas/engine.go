package canvas

import (
	"context"
	"errors"
	"sync"
	"time"

	"atelier/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidParent is returned when a connect targets the card itself or
// a card that does not exist.
var ErrInvalidParent = errors.New("canvas: invalid parent reference")

// Notifier receives user-facing failure notices (the toast equivalent).
type Notifier func(message string, err error)

// DefaultDebounce is how long field edits are held back before the store
// write fires, so rapid edits collapse into one call.
const DefaultDebounce = 500 * time.Millisecond

// Engine is the optimistic mutation engine for one canvas. Every mutation
// is applied to local state first, recorded on the history stack, and
// persisted in the background; a failed store call rolls the local change
// back and retracts its history entry.
//
// All state is guarded by one mutex, the equivalent of the single UI
// thread: mutations enter synchronously, store-call completions re-enter
// under the same lock. Store calls are never cancelled or retried; the
// store's per-row last-write-wins is the final arbiter.
type Engine struct {
	store    Store
	canvasID string

	mu        sync.Mutex
	cards     []Card
	collapsed map[string]bool
	history   *History
	inFlight  int
	readOnly  bool
	notify    Notifier

	debounce time.Duration
	pending  map[string]*pendingUpdate

	wg sync.WaitGroup
}

// pendingUpdate coalesces debounced field edits for one card.
type pendingUpdate struct {
	timer  *time.Timer
	params UpdateCardParams // merged patch, later edits win
	before UpdateCardParams // preimage of the first edit per field
	seqs   []int64          // history entries covered by this batch
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets the failure notifier. The default logs the failure.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notify = n }
}

// WithReadOnly makes every mutation fail with ErrReadOnly before any
// local state is touched. Used for non-owner sessions.
func WithReadOnly() Option {
	return func(e *Engine) { e.readOnly = true }
}

// WithHistoryDepth bounds the undo stack.
func WithHistoryDepth(depth int) Option {
	return func(e *Engine) { e.history = NewHistory(depth) }
}

// WithDebounce sets the field-edit debounce delay. Zero or negative fires
// the store call immediately.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) { e.debounce = d }
}

// New creates an engine for one canvas backed by the given store.
func New(store Store, canvasID string, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		canvasID:  canvasID,
		collapsed: make(map[string]bool),
		history:   NewHistory(DefaultHistoryDepth),
		debounce:  DefaultDebounce,
		pending:   make(map[string]*pendingUpdate),
		notify: func(message string, err error) {
			logger.Error(message, "err", err)
		},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Load replaces local state with the store's view of the canvas. History
// and the collapsed set are client-local and reset, mirroring a reload.
func (e *Engine) Load(ctx context.Context) error {
	cards, err := e.store.ListCards(ctx, e.canvasID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.cards = cards
	e.collapsed = make(map[string]bool)
	e.history = NewHistory(e.history.depth)
	return nil
}

// Cards returns a snapshot of the local card list.
func (e *Engine) Cards() []Card {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Card, len(e.cards))
	for i, c := range e.cards {
		out[i] = c.Clone()
	}
	return out
}

// Card returns a snapshot of one card.
func (e *Engine) Card(id string) (Card, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.findIndex(id); i >= 0 {
		return e.cards[i].Clone(), true
	}
	return Card{}, false
}

// Projection derives the current nodes and edges.
func (e *Engine) Projection() Projection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Project(e.cards)
}

// Hidden computes the currently hidden card set from the derived edges
// and the collapsed set.
func (e *Engine) Hidden() map[string]bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	proj := Project(e.cards)
	return HiddenCards(proj.Edges, e.collapsed)
}

// Collapsed reports whether a card's subtree is collapsed.
func (e *Engine) Collapsed(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.collapsed[id]
}

// ToggleCollapse flips a card's collapse state. Collapse is view state:
// it is local, never persisted, and not part of history.
func (e *Engine) ToggleCollapse(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.collapsed[id] {
		delete(e.collapsed, id)
	} else {
		e.collapsed[id] = true
	}
}

// InFlight returns the number of store calls still pending; non-zero
// drives the syncing indicator.
func (e *Engine) InFlight() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight
}

// UndoLen returns the undo stack depth.
func (e *Engine) UndoLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.UndoLen()
}

// RedoLen returns the redo stack depth.
func (e *Engine) RedoLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.RedoLen()
}

// Flush fires all debounced updates immediately.
func (e *Engine) Flush() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, p := range e.pending {
		if p.timer != nil {
			p.timer.Stop()
		}
		e.flushUpdateLocked(id)
	}
}

// Wait blocks until every dispatched store call has settled. Callers that
// need debounced edits included should Flush first.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// dispatch arms one background store call. Must be called with e.mu held.
// On failure the rollback runs under the lock, then the notifier fires.
func (e *Engine) dispatch(ctx context.Context, message string, call func(context.Context) error, rollback func()) {
	e.inFlight++
	e.wg.Add(1)
	bg := context.WithoutCancel(ctx)
	go func() {
		defer e.wg.Done()
		err := call(bg)
		e.mu.Lock()
		e.inFlight--
		if err != nil && rollback != nil {
			rollback()
		}
		e.mu.Unlock()
		if err != nil {
			e.notify(message, err)
		}
	}()
}

// CreateCard places a new card and persists it. The id is assigned
// client-side so undo/redo can recreate the card under the same identity.
func (e *Engine) CreateCard(ctx context.Context, x, y float64, parentID *string) (Card, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.readOnly {
		return Card{}, ErrReadOnly
	}
	if parentID != nil && e.findIndex(*parentID) < 0 {
		return Card{}, ErrInvalidParent
	}

	id, err := gonanoid.New()
	if err != nil {
		return Card{}, err
	}

	now := time.Now()
	card := Card{
		ID:        id,
		CanvasID:  e.canvasID,
		Type:      CardTypeStandard,
		X:         x,
		Y:         y,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if parentID != nil {
		p := *parentID
		card.ParentID = &p
	}

	e.cards = append(e.cards, card)
	seq := e.history.Push(Entry{Kind: EntryCreate, Card: card.Clone()})

	e.dispatch(ctx, "failed to create card", func(ctx context.Context) error {
		created, err := e.store.CreateCard(ctx, CreateCardParams{
			ID:        id,
			CanvasID:  e.canvasID,
			ParentID:  card.ParentID,
			PositionX: x,
			PositionY: y,
		})
		if err != nil {
			return err
		}
		e.reconcile(created)
		return nil
	}, func() {
		e.removeCardLocked(id)
		e.history.Drop(seq)
	})

	return card.Clone(), nil
}

// reconcile folds server-assigned fields back into local state without
// clobbering newer optimistic edits. Only the timestamps come from the
// server today.
func (e *Engine) reconcile(server Card) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.findIndex(server.ID); i >= 0 {
		e.cards[i].CreatedAt = server.CreatedAt
		e.cards[i].UpdatedAt = server.UpdatedAt
	}
}

// DeleteCard removes a card. Children are detached, not deleted: their
// parent references are cleared locally, mirroring the store's
// set-null-on-delete foreign key.
func (e *Engine) DeleteCard(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.readOnly {
		return ErrReadOnly
	}
	i := e.findIndex(id)
	if i < 0 {
		return ErrNotFound
	}

	snapshot := e.cards[i].Clone()
	children := e.detachChildrenLocked(id)
	e.cards = append(e.cards[:i], e.cards[i+1:]...)

	seq := e.history.Push(Entry{Kind: EntryDelete, Card: snapshot, Children: children})

	e.dispatch(ctx, "failed to delete card", func(ctx context.Context) error {
		return e.store.DeleteCard(ctx, id)
	}, func() {
		e.cards = append(e.cards, snapshot.Clone())
		e.attachChildrenLocked(id, children)
		e.history.Drop(seq)
	})

	return nil
}

// UpdateCard applies a field-level edit. Local state and the history
// entry are recorded per change event; the store write is debounced so
// rapid edits collapse into a single call.
func (e *Engine) UpdateCard(ctx context.Context, params UpdateCardParams) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.readOnly {
		return ErrReadOnly
	}
	i := e.findIndex(params.ID)
	if i < 0 {
		return ErrNotFound
	}

	before := beforeOf(e.cards[i], params)
	applyParams(&e.cards[i], params)
	e.cards[i].UpdatedAt = time.Now()

	seq := e.history.Push(Entry{Kind: EntryUpdate, Update: &UpdateDiff{
		CardID: params.ID,
		Before: before,
		After:  params,
	}})

	e.queueUpdateLocked(params, before, seq)
	return nil
}

func (e *Engine) queueUpdateLocked(params, before UpdateCardParams, seq int64) {
	p := e.pending[params.ID]
	if p == nil {
		p = &pendingUpdate{
			params: UpdateCardParams{ID: params.ID},
			before: UpdateCardParams{ID: params.ID},
		}
		e.pending[params.ID] = p
	}
	mergeParams(&p.params, params)
	mergeMissing(&p.before, before)
	p.seqs = append(p.seqs, seq)

	if e.debounce <= 0 {
		e.flushUpdateLocked(params.ID)
		return
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(e.debounce, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.flushUpdateLocked(params.ID)
	})
}

// flushUpdateLocked fires the coalesced store write for one card. Must be
// called with e.mu held.
func (e *Engine) flushUpdateLocked(id string) {
	p := e.pending[id]
	if p == nil {
		return
	}
	delete(e.pending, id)

	params := p.params
	before := p.before
	seqs := append([]int64(nil), p.seqs...)

	e.dispatch(context.Background(), "failed to update card", func(ctx context.Context) error {
		_, err := e.store.UpdateCard(ctx, params)
		return err
	}, func() {
		if i := e.findIndex(id); i >= 0 {
			applyParams(&e.cards[i], before)
		}
		for _, seq := range seqs {
			e.history.Drop(seq)
		}
	})
}

// ResizeCard persists a manual size. Sizes are not part of history; they
// are written through the dedicated size operation.
func (e *Engine) ResizeCard(ctx context.Context, params UpdateCardSizeParams) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.readOnly {
		return ErrReadOnly
	}
	i := e.findIndex(params.ID)
	if i < 0 {
		return ErrNotFound
	}

	beforeW := e.cards[i].Width
	beforeH := e.cards[i].Height
	if params.Width != nil {
		w := *params.Width
		e.cards[i].Width = &w
	}
	if params.Height != nil {
		h := *params.Height
		e.cards[i].Height = &h
	}

	e.dispatch(ctx, "failed to resize card", func(ctx context.Context) error {
		return e.store.UpdateCardSize(ctx, params)
	}, func() {
		if j := e.findIndex(params.ID); j >= 0 {
			e.cards[j].Width = beforeW
			e.cards[j].Height = beforeH
		}
	})

	return nil
}

// MoveCards applies a batch of drag positions and persists them in one
// store call, so a multi-selection drag cannot partially fail.
func (e *Engine) MoveCards(ctx context.Context, targets []CardPosition) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.readOnly {
		return ErrReadOnly
	}

	moves := make([]MoveDelta, 0, len(targets))
	positions := make([]CardPosition, 0, len(targets))
	for _, t := range targets {
		i := e.findIndex(t.ID)
		if i < 0 {
			continue
		}
		moves = append(moves, MoveDelta{
			ID:    t.ID,
			FromX: e.cards[i].X,
			FromY: e.cards[i].Y,
			ToX:   t.X,
			ToY:   t.Y,
		})
		e.cards[i].X = t.X
		e.cards[i].Y = t.Y
		positions = append(positions, t)
	}
	if len(moves) == 0 {
		return nil
	}

	seq := e.history.Push(Entry{Kind: EntryMove, Moves: moves})

	e.dispatch(ctx, "failed to move cards", func(ctx context.Context) error {
		return e.store.UpdateCardPositions(ctx, positions)
	}, func() {
		e.applyMovesLocked(moves, true)
		e.history.Drop(seq)
	})

	return nil
}

// Connect sets a card's parent reference. A card has at most one parent,
// so connecting replaces any previous reference.
func (e *Engine) Connect(ctx context.Context, childID, parentID string, parentHandle, childHandle Handle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.readOnly {
		return ErrReadOnly
	}
	if childID == parentID {
		return ErrInvalidParent
	}
	if e.findIndex(parentID) < 0 {
		return ErrInvalidParent
	}
	i := e.findIndex(childID)
	if i < 0 {
		return ErrNotFound
	}

	before := parentRefOf(e.cards[i])
	after := ParentRef{ParentID: &parentID, ParentHandle: parentHandle, ChildHandle: childHandle}
	e.applyParentRefLocked(childID, after)

	seq := e.history.Push(Entry{Kind: EntryConnect, Link: &LinkDiff{
		ChildID: childID,
		Before:  before,
		After:   after,
	}})

	e.dispatch(ctx, "failed to connect cards", func(ctx context.Context) error {
		_, err := e.store.UpdateCard(ctx, refParams(childID, after))
		return err
	}, func() {
		e.applyParentRefLocked(childID, before)
		e.history.Drop(seq)
	})

	return nil
}

// Disconnect clears a card's parent reference, removing its incoming
// edge. A card without a parent is left alone.
func (e *Engine) Disconnect(ctx context.Context, childID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.readOnly {
		return ErrReadOnly
	}
	i := e.findIndex(childID)
	if i < 0 {
		return ErrNotFound
	}
	if e.cards[i].ParentID == nil {
		return nil
	}

	before := parentRefOf(e.cards[i])
	after := ParentRef{}
	e.applyParentRefLocked(childID, after)

	seq := e.history.Push(Entry{Kind: EntryDisconnect, Link: &LinkDiff{
		ChildID: childID,
		Before:  before,
		After:   after,
	}})

	e.dispatch(ctx, "failed to disconnect cards", func(ctx context.Context) error {
		_, err := e.store.UpdateCard(ctx, refParams(childID, after))
		return err
	}, func() {
		e.applyParentRefLocked(childID, before)
		e.history.Drop(seq)
	})

	return nil
}

// Duplicate is the drag-copy: a clone of the card under a fresh id at the
// same position, inheriting the original's parent reference. (Children
// keep the original as their parent: a card has exactly one incoming
// edge, so outgoing edges cannot be copied.) Persistence is a create
// followed by a fan-out of field and size writes; any rejection is total
// failure and removes the optimistic copy.
func (e *Engine) Duplicate(ctx context.Context, id string) (Card, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.readOnly {
		return Card{}, ErrReadOnly
	}
	i := e.findIndex(id)
	if i < 0 {
		return Card{}, ErrNotFound
	}

	newID, err := gonanoid.New()
	if err != nil {
		return Card{}, err
	}

	now := time.Now()
	copied := e.cards[i].Clone()
	copied.ID = newID
	copied.CreatedAt = now
	copied.UpdatedAt = now
	e.cards = append(e.cards, copied)

	snapshot := copied.Clone()
	e.dispatch(ctx, "failed to copy card", func(ctx context.Context) error {
		if err := e.persistCard(ctx, snapshot); err != nil {
			return err
		}
		e.mu.Lock()
		e.history.Push(Entry{Kind: EntryCreate, Card: snapshot.Clone()})
		e.mu.Unlock()
		return nil
	}, func() {
		e.removeCardLocked(newID)
	})

	return copied.Clone(), nil
}

// persistCard writes a full card row: create, then field and size writes
// joined by an errgroup. Any rejection fails the whole persist and the
// created row is removed again, so the store never keeps a partial copy.
func (e *Engine) persistCard(ctx context.Context, c Card) error {
	_, err := e.store.CreateCard(ctx, CreateCardParams{
		ID:        c.ID,
		CanvasID:  c.CanvasID,
		ParentID:  c.ParentID,
		PositionX: c.X,
		PositionY: c.Y,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := e.store.UpdateCard(gctx, fieldParams(c))
		return err
	})
	if c.Width != nil || c.Height != nil {
		g.Go(func() error {
			return e.store.UpdateCardSize(gctx, UpdateCardSizeParams{
				ID:     c.ID,
				Width:  c.Width,
				Height: c.Height,
			})
		})
	}
	if err := g.Wait(); err != nil {
		_ = e.store.DeleteCard(ctx, c.ID)
		return err
	}
	return nil
}

// Undo pops the most recent entry, replays its inverse locally and against
// the store, and moves it to the redo stack. A missing target is a silent
// no-op and consumes the entry. If the store call fails, the local replay
// is reverted and the entry goes back onto the undo stack.
func (e *Engine) Undo(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.history.PopUndo()
	if !ok {
		return nil
	}

	applied, call, revert := e.replayLocked(entry, true)
	if !applied {
		return nil
	}
	e.history.PushRedo(entry)

	e.dispatch(ctx, "failed to undo", call, func() {
		revert()
		e.history.Drop(entry.seq)
		e.history.PushUndo(entry)
	})
	return nil
}

// Redo pops the most recent undone entry, replays it forward, and moves
// it back to the undo stack. Failure semantics mirror Undo.
func (e *Engine) Redo(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.history.PopRedo()
	if !ok {
		return nil
	}

	applied, call, revert := e.replayLocked(entry, false)
	if !applied {
		return nil
	}
	e.history.PushUndo(entry)

	e.dispatch(ctx, "failed to redo", call, func() {
		revert()
		e.history.Drop(entry.seq)
		e.history.PushRedo(entry)
	})
	return nil
}

// replayLocked applies one history entry to local state, inverted for
// undo or forward for redo, and returns the matching store call plus a
// revert of the local change. applied is false when the entry's target no
// longer exists; nothing is touched in that case.
func (e *Engine) replayLocked(entry Entry, inverse bool) (applied bool, call func(context.Context) error, revert func()) {
	switch entry.Kind {
	case EntryCreate:
		if inverse {
			// Undo a create: the card disappears again.
			if e.findIndex(entry.Card.ID) < 0 {
				return false, nil, nil
			}
			e.removeCardLocked(entry.Card.ID)
			snapshot := entry.Card.Clone()
			return true,
				func(ctx context.Context) error { return e.store.DeleteCard(ctx, entry.Card.ID) },
				func() { e.cards = append(e.cards, snapshot) }
		}
		// Redo a create: the card comes back under its original id.
		if e.findIndex(entry.Card.ID) >= 0 {
			return false, nil, nil
		}
		snapshot := entry.Card.Clone()
		e.cards = append(e.cards, snapshot.Clone())
		return true,
			func(ctx context.Context) error { return e.persistCard(ctx, snapshot) },
			func() { e.removeCardLocked(entry.Card.ID) }

	case EntryDelete:
		if inverse {
			// Undo a delete: restore the snapshot and re-attach children.
			if e.findIndex(entry.Card.ID) >= 0 {
				return false, nil, nil
			}
			snapshot := entry.Card.Clone()
			e.cards = append(e.cards, snapshot.Clone())
			e.attachChildrenLocked(entry.Card.ID, entry.Children)
			children := entry.Children
			return true,
				func(ctx context.Context) error {
					if err := e.persistCard(ctx, snapshot); err != nil {
						return err
					}
					g, gctx := errgroup.WithContext(ctx)
					for _, child := range children {
						ref := ParentRef{
							ParentID:     &snapshot.ID,
							ParentHandle: child.ParentHandle,
							ChildHandle:  child.ChildHandle,
						}
						params := refParams(child.ChildID, ref)
						g.Go(func() error {
							_, err := e.store.UpdateCard(gctx, params)
							return err
						})
					}
					return g.Wait()
				},
				func() {
					e.detachChildrenLocked(entry.Card.ID)
					e.removeCardLocked(entry.Card.ID)
				}
		}
		// Redo a delete: remove the card and detach children again.
		if e.findIndex(entry.Card.ID) < 0 {
			return false, nil, nil
		}
		children := e.detachChildrenLocked(entry.Card.ID)
		e.removeCardLocked(entry.Card.ID)
		snapshot := entry.Card.Clone()
		return true,
			func(ctx context.Context) error { return e.store.DeleteCard(ctx, entry.Card.ID) },
			func() {
				e.cards = append(e.cards, snapshot)
				e.attachChildrenLocked(entry.Card.ID, children)
			}

	case EntryUpdate:
		diff := entry.Update
		i := e.findIndex(diff.CardID)
		if i < 0 {
			return false, nil, nil
		}
		apply, other := diff.Before, diff.After
		if !inverse {
			apply, other = diff.After, diff.Before
		}
		applyParams(&e.cards[i], apply)
		return true,
			func(ctx context.Context) error {
				_, err := e.store.UpdateCard(ctx, apply)
				return err
			},
			func() {
				if j := e.findIndex(diff.CardID); j >= 0 {
					applyParams(&e.cards[j], other)
				}
			}

	case EntryMove:
		if !e.applyMovesLocked(entry.Moves, inverse) {
			return false, nil, nil
		}
		positions := make([]CardPosition, 0, len(entry.Moves))
		for _, m := range entry.Moves {
			x, y := m.FromX, m.FromY
			if !inverse {
				x, y = m.ToX, m.ToY
			}
			positions = append(positions, CardPosition{ID: m.ID, X: x, Y: y})
		}
		moves := entry.Moves
		return true,
			func(ctx context.Context) error { return e.store.UpdateCardPositions(ctx, positions) },
			func() { e.applyMovesLocked(moves, !inverse) }

	case EntryConnect, EntryDisconnect:
		diff := entry.Link
		if e.findIndex(diff.ChildID) < 0 {
			return false, nil, nil
		}
		apply, other := diff.Before, diff.After
		if !inverse {
			apply, other = diff.After, diff.Before
		}
		e.applyParentRefLocked(diff.ChildID, apply)
		return true,
			func(ctx context.Context) error {
				_, err := e.store.UpdateCard(ctx, refParams(diff.ChildID, apply))
				return err
			},
			func() { e.applyParentRefLocked(diff.ChildID, other) }
	}

	return false, nil, nil
}

// ---- local-state helpers, all with e.mu held ----

func (e *Engine) findIndex(id string) int {
	for i := range e.cards {
		if e.cards[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) removeCardLocked(id string) {
	if i := e.findIndex(id); i >= 0 {
		e.cards = append(e.cards[:i], e.cards[i+1:]...)
	}
}

// detachChildrenLocked clears the parent reference of every child of id
// and returns how they were attached.
func (e *Engine) detachChildrenLocked(id string) []ChildLink {
	var links []ChildLink
	for i := range e.cards {
		if e.cards[i].ParentID == nil || *e.cards[i].ParentID != id {
			continue
		}
		links = append(links, ChildLink{
			ChildID:      e.cards[i].ID,
			ParentHandle: e.cards[i].ParentHandle,
			ChildHandle:  e.cards[i].ChildHandle,
		})
		e.cards[i].ParentID = nil
		e.cards[i].ParentHandle = ""
		e.cards[i].ChildHandle = ""
	}
	return links
}

// attachChildrenLocked restores child parent references recorded by
// detachChildrenLocked. Children that no longer exist are skipped.
func (e *Engine) attachChildrenLocked(parentID string, links []ChildLink) {
	for _, link := range links {
		i := e.findIndex(link.ChildID)
		if i < 0 {
			continue
		}
		p := parentID
		e.cards[i].ParentID = &p
		e.cards[i].ParentHandle = link.ParentHandle
		e.cards[i].ChildHandle = link.ChildHandle
	}
}

// applyMovesLocked applies move deltas; restore=true applies the From
// positions, restore=false the To positions. Returns false when no
// target still exists.
func (e *Engine) applyMovesLocked(moves []MoveDelta, restore bool) bool {
	any := false
	for _, m := range moves {
		i := e.findIndex(m.ID)
		if i < 0 {
			continue
		}
		any = true
		if restore {
			e.cards[i].X = m.FromX
			e.cards[i].Y = m.FromY
		} else {
			e.cards[i].X = m.ToX
			e.cards[i].Y = m.ToY
		}
	}
	return any
}

func (e *Engine) applyParentRefLocked(childID string, ref ParentRef) {
	i := e.findIndex(childID)
	if i < 0 {
		return
	}
	if ref.ParentID != nil {
		p := *ref.ParentID
		e.cards[i].ParentID = &p
	} else {
		e.cards[i].ParentID = nil
	}
	e.cards[i].ParentHandle = ref.ParentHandle
	e.cards[i].ChildHandle = ref.ChildHandle
}

func parentRefOf(c Card) ParentRef {
	ref := ParentRef{ParentHandle: c.ParentHandle, ChildHandle: c.ChildHandle}
	if c.ParentID != nil {
		p := *c.ParentID
		ref.ParentID = &p
	}
	return ref
}

// refParams converts a parent reference into the partial update that
// persists it. Handles travel with the reference: clearing the parent
// clears both handles.
func refParams(childID string, ref ParentRef) UpdateCardParams {
	params := UpdateCardParams{ID: childID, SetParent: true}
	if ref.ParentID != nil {
		p := *ref.ParentID
		params.ParentID = &p
		ph, ch := ref.ParentHandle, ref.ChildHandle
		params.ParentHandle = &ph
		params.ChildHandle = &ch
	}
	return params
}

// fieldParams builds the full display-field patch for a card, used when
// recreating a row (drag-copy, undo of delete, redo of create).
func fieldParams(c Card) UpdateCardParams {
	title, icon, desc := c.Title, c.Icon, c.Description
	image, link := c.ImageURL, c.LinkURL
	typ := c.Type
	params := UpdateCardParams{
		ID:          c.ID,
		Title:       &title,
		Icon:        &icon,
		Description: &desc,
		ImageURL:    &image,
		Type:        &typ,
		LinkURL:     &link,
	}
	if c.ParentID != nil {
		params.SetParent = true
		p := *c.ParentID
		params.ParentID = &p
		ph, ch := c.ParentHandle, c.ChildHandle
		params.ParentHandle = &ph
		params.ChildHandle = &ch
	}
	return params
}

// beforeOf captures the current values of exactly the fields the patch
// touches, for the history diff and debounce preimage.
func beforeOf(c Card, p UpdateCardParams) UpdateCardParams {
	before := UpdateCardParams{ID: p.ID}
	if p.Title != nil {
		v := c.Title
		before.Title = &v
	}
	if p.Icon != nil {
		v := c.Icon
		before.Icon = &v
	}
	if p.Description != nil {
		v := c.Description
		before.Description = &v
	}
	if p.ImageURL != nil {
		v := c.ImageURL
		before.ImageURL = &v
	}
	if p.Type != nil {
		v := c.Type
		before.Type = &v
	}
	if p.LinkURL != nil {
		v := c.LinkURL
		before.LinkURL = &v
	}
	if p.SetParent {
		before.SetParent = true
		if c.ParentID != nil {
			v := *c.ParentID
			before.ParentID = &v
			ph, ch := c.ParentHandle, c.ChildHandle
			before.ParentHandle = &ph
			before.ChildHandle = &ch
		}
	}
	return before
}

// applyParams applies a partial update to a card in place.
func applyParams(c *Card, p UpdateCardParams) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.ImageURL != nil {
		c.ImageURL = *p.ImageURL
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.LinkURL != nil {
		c.LinkURL = *p.LinkURL
	}
	if p.SetParent {
		if p.ParentID != nil {
			v := *p.ParentID
			c.ParentID = &v
		} else {
			c.ParentID = nil
		}
		c.ParentHandle = ""
		c.ChildHandle = ""
		if p.ParentHandle != nil {
			c.ParentHandle = *p.ParentHandle
		}
		if p.ChildHandle != nil {
			c.ChildHandle = *p.ChildHandle
		}
	}
}

// mergeParams folds src into dst; later edits win per field.
func mergeParams(dst *UpdateCardParams, src UpdateCardParams) {
	if src.Title != nil {
		dst.Title = src.Title
	}
	if src.Icon != nil {
		dst.Icon = src.Icon
	}
	if src.Description != nil {
		dst.Description = src.Description
	}
	if src.ImageURL != nil {
		dst.ImageURL = src.ImageURL
	}
	if src.Type != nil {
		dst.Type = src.Type
	}
	if src.LinkURL != nil {
		dst.LinkURL = src.LinkURL
	}
	if src.SetParent {
		dst.SetParent = true
		dst.ParentID = src.ParentID
		dst.ParentHandle = src.ParentHandle
		dst.ChildHandle = src.ChildHandle
	}
}

// mergeMissing folds src into dst keeping dst's values: the preimage of a
// debounce batch is the value before the first edit of each field.
func mergeMissing(dst *UpdateCardParams, src UpdateCardParams) {
	if dst.Title == nil {
		dst.Title = src.Title
	}
	if dst.Icon == nil {
		dst.Icon = src.Icon
	}
	if dst.Description == nil {
		dst.Description = src.Description
	}
	if dst.ImageURL == nil {
		dst.ImageURL = src.ImageURL
	}
	if dst.Type == nil {
		dst.Type = src.Type
	}
	if dst.LinkURL == nil {
		dst.LinkURL = src.LinkURL
	}
	if !dst.SetParent && src.SetParent {
		dst.SetParent = true
		dst.ParentID = src.ParentID
		dst.ParentHandle = src.ParentHandle
		dst.ChildHandle = src.ChildHandle
	}
}
