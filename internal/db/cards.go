package db

import (
	"context"
)

const cardColumns = `id, canvas_id, title, icon, description, image_url, card_type, link_url,
	position_x, position_y, width, height, parent_id, parent_handle, child_handle,
	created_at, updated_at`

func scanCard(row interface{ Scan(dest ...any) error }) (Card, error) {
	var c Card
	err := row.Scan(
		&c.ID,
		&c.CanvasID,
		&c.Title,
		&c.Icon,
		&c.Description,
		&c.ImageURL,
		&c.CardType,
		&c.LinkURL,
		&c.PositionX,
		&c.PositionY,
		&c.Width,
		&c.Height,
		&c.ParentID,
		&c.ParentHandle,
		&c.ChildHandle,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

const listCards = `SELECT ` + cardColumns + `
FROM cards
WHERE canvas_id = $1
ORDER BY created_at, id`

// ListCards returns all cards of a canvas in stable creation order.
func (q *Queries) ListCards(ctx context.Context, canvasID string) ([]Card, error) {
	rows, err := q.db.Query(ctx, listCards, canvasID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

const getCard = `SELECT ` + cardColumns + `
FROM cards
WHERE id = $1`

func (q *Queries) GetCard(ctx context.Context, id string) (Card, error) {
	return scanCard(q.db.QueryRow(ctx, getCard, id))
}

const createCard = `INSERT INTO cards (id, canvas_id, position_x, position_y, parent_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + cardColumns

type CreateCardParams struct {
	ID        string
	CanvasID  string
	PositionX float64
	PositionY float64
	ParentID  *string
}

func (q *Queries) CreateCard(ctx context.Context, arg CreateCardParams) (Card, error) {
	return scanCard(q.db.QueryRow(ctx, createCard,
		arg.ID,
		arg.CanvasID,
		arg.PositionX,
		arg.PositionY,
		arg.ParentID,
	))
}

// The parent triple is guarded by a boolean so the update can distinguish
// keep (false) from set and clear (true with value or NULL). Plain fields
// use coalesce: nil keeps, empty string clears.
const updateCard = `UPDATE cards SET
	title = COALESCE($2, title),
	icon = COALESCE($3, icon),
	description = COALESCE($4, description),
	image_url = COALESCE($5, image_url),
	card_type = COALESCE($6, card_type),
	link_url = COALESCE($7, link_url),
	parent_id = CASE WHEN $8::boolean THEN $9 ELSE parent_id END,
	parent_handle = CASE WHEN $8::boolean THEN COALESCE($10, '') ELSE parent_handle END,
	child_handle = CASE WHEN $8::boolean THEN COALESCE($11, '') ELSE child_handle END,
	updated_at = now()
WHERE id = $1
RETURNING ` + cardColumns

type UpdateCardParams struct {
	ID          string
	Title       *string
	Icon        *string
	Description *string
	ImageURL    *string
	CardType    *string
	LinkURL     *string

	SetParent    bool
	ParentID     *string
	ParentHandle *string
	ChildHandle  *string
}

func (q *Queries) UpdateCard(ctx context.Context, arg UpdateCardParams) (Card, error) {
	return scanCard(q.db.QueryRow(ctx, updateCard,
		arg.ID,
		arg.Title,
		arg.Icon,
		arg.Description,
		arg.ImageURL,
		arg.CardType,
		arg.LinkURL,
		arg.SetParent,
		arg.ParentID,
		arg.ParentHandle,
		arg.ChildHandle,
	))
}

const updateCardSize = `UPDATE cards SET
	width = COALESCE($2, width),
	height = COALESCE($3, height),
	updated_at = now()
WHERE id = $1`

type UpdateCardSizeParams struct {
	ID     string
	Width  *float64
	Height *float64
}

func (q *Queries) UpdateCardSize(ctx context.Context, arg UpdateCardSizeParams) error {
	_, err := q.db.Exec(ctx, updateCardSize, arg.ID, arg.Width, arg.Height)
	return err
}

// Children are detached by the set-null foreign key; deleting the row is
// all that is needed.
const deleteCard = `DELETE FROM cards WHERE id = $1`

func (q *Queries) DeleteCard(ctx context.Context, id string) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteCard, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const updateCardPositions = `UPDATE cards AS c SET
	position_x = p.x,
	position_y = p.y,
	updated_at = now()
FROM (
	SELECT unnest($1::text[]) AS id, unnest($2::float8[]) AS x, unnest($3::float8[]) AS y
) AS p
WHERE c.id = p.id`

type UpdateCardPositionsParams struct {
	Ids []string
	Xs  []float64
	Ys  []float64
}

// UpdateCardPositions writes a batch of drag positions in one statement,
// so a multi-card drag cannot partially apply.
func (q *Queries) UpdateCardPositions(ctx context.Context, arg UpdateCardPositionsParams) error {
	_, err := q.db.Exec(ctx, updateCardPositions, arg.Ids, arg.Xs, arg.Ys)
	return err
}

const listCardCanvases = `SELECT DISTINCT canvas_id FROM cards WHERE id = ANY($1::text[])`

// ListCardCanvases returns the distinct canvases a set of card ids belong
// to; used to authorize batch operations.
func (q *Queries) ListCardCanvases(ctx context.Context, ids []string) ([]string, error) {
	rows, err := q.db.Query(ctx, listCardCanvases, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var canvases []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		canvases = append(canvases, c)
	}
	return canvases, rows.Err()
}
