package db

import "time"

// Card is one row of the cards table. Display fields are empty-string
// defaulted rather than nullable, so a partial update can clear them by
// writing "". The parent reference and the manual size are genuinely
// optional and stay nullable.
type Card struct {
	ID           string    `json:"id"`
	CanvasID     string    `json:"canvas_id"`
	Title        string    `json:"title"`
	Icon         string    `json:"icon,omitempty"`
	Description  string    `json:"description,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	CardType     string    `json:"card_type"`
	LinkURL      string    `json:"link_url,omitempty"`
	PositionX    float64   `json:"position_x"`
	PositionY    float64   `json:"position_y"`
	Width        *float64  `json:"width,omitempty"`
	Height       *float64  `json:"height,omitempty"`
	ParentID     *string   `json:"parent_id,omitempty"`
	ParentHandle string    `json:"parent_handle,omitempty"`
	ChildHandle  string    `json:"child_handle,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
