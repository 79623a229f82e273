package canvas

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores when a card id does not exist.
var ErrNotFound = errors.New("canvas: card not found")

// ErrReadOnly is returned by the engine when a mutation is attempted
// without mutation rights. No local state is touched in that case.
var ErrReadOnly = errors.New("canvas: engine is read-only")

// CreateCardParams creates a card. ID may be left empty, in which case the
// store assigns one; the engine always supplies an id so that undo/redo
// can recreate a card under its original identity.
type CreateCardParams struct {
	ID        string  `json:"id,omitempty"`
	CanvasID  string  `json:"canvas_id"`
	ParentID  *string `json:"parent_id,omitempty"`
	PositionX float64 `json:"position_x"`
	PositionY float64 `json:"position_y"`
}

// UpdateCardParams is a partial update: nil fields are left untouched.
// The parent reference is tri-state (keep / set / clear), so it is guarded
// by SetParent; when SetParent is true a nil ParentID clears the reference
// and both handles.
type UpdateCardParams struct {
	ID          string    `json:"id"`
	Title       *string   `json:"title,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Type        *CardType `json:"card_type,omitempty"`
	LinkURL     *string   `json:"link_url,omitempty"`

	SetParent    bool    `json:"set_parent,omitempty"`
	ParentID     *string `json:"parent_id,omitempty"`
	ParentHandle *Handle `json:"parent_handle,omitempty"`
	ChildHandle  *Handle `json:"child_handle,omitempty"`
}

// UpdateCardSizeParams writes a card's manual size. Nil dimensions are
// left untouched.
type UpdateCardSizeParams struct {
	ID     string   `json:"id"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

// CardPosition is one element of a batch position write.
type CardPosition struct {
	ID string  `json:"id"`
	X  float64 `json:"position_x"`
	Y  float64 `json:"position_y"`
}

// Store is the persistence boundary of the engine. Every call is
// independently atomic; the engine never assumes cross-call transactions.
// Implementations: the REST client in canvas/rest, the Postgres layer on
// the server, and in-memory fakes in tests.
type Store interface {
	ListCards(ctx context.Context, canvasID string) ([]Card, error)
	CreateCard(ctx context.Context, params CreateCardParams) (Card, error)
	UpdateCard(ctx context.Context, params UpdateCardParams) (Card, error)
	DeleteCard(ctx context.Context, id string) error
	UpdateCardSize(ctx context.Context, params UpdateCardSizeParams) error
	UpdateCardPositions(ctx context.Context, positions []CardPosition) error
}
