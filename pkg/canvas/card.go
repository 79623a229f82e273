package canvas

import "time"

// CardType classifies how a card is rendered.
type CardType string

const (
	CardTypeStandard CardType = "standard"
	CardTypeTitle    CardType = "title"
	CardTypeLink     CardType = "link"
)

// Handle is an attachment point on a card's border.
type Handle string

const (
	HandleTop    Handle = "top"
	HandleLeft   Handle = "left"
	HandleRight  Handle = "right"
	HandleBottom Handle = "bottom"
)

// DefaultWidth is used for cards without an explicit width. Height stays
// zero, which renders as "auto".
const DefaultWidth = 256.0

// Card is a positioned rectangle on a canvas. A card may reference one
// other card on the same canvas as its parent; that reference is what
// edges are derived from.
type Card struct {
	ID          string   `json:"id"`
	CanvasID    string   `json:"canvas_id"`
	Title       string   `json:"title"`
	Icon        string   `json:"icon,omitempty"`
	Description string   `json:"description,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Type        CardType `json:"card_type"`
	LinkURL     string   `json:"link_url,omitempty"`

	X      float64  `json:"position_x"`
	Y      float64  `json:"position_y"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`

	ParentID     *string `json:"parent_id,omitempty"`
	ParentHandle Handle  `json:"parent_handle,omitempty"`
	ChildHandle  Handle  `json:"child_handle,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the card. Pointer fields are duplicated so
// snapshots held in history entries cannot alias live state.
func (c Card) Clone() Card {
	out := c
	if c.Width != nil {
		w := *c.Width
		out.Width = &w
	}
	if c.Height != nil {
		h := *c.Height
		out.Height = &h
	}
	if c.ParentID != nil {
		p := *c.ParentID
		out.ParentID = &p
	}
	return out
}

// Edge is the derived connector for a card's parent reference. Edges are
// never stored; they are recomputed from the card set.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle Handle `json:"source_handle"`
	TargetHandle Handle `json:"target_handle"`
}

// EdgeID builds the identifier for the edge between a parent and a child.
func EdgeID(parentID, childID string) string {
	return "e-" + parentID + "-" + childID
}
