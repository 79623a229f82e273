package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"atelier/internal/db"
	"atelier/internal/server/middleware"
)

func CreateCardHandler(c echo.Context) error {
	type createCardData struct {
		Canvas    string  `param:"canvas" validate:"required"`
		ID        string  `json:"id" validate:"omitempty,max=64"`
		PositionX float64 `json:"position_x"`
		PositionY float64 `json:"position_y"`
		ParentID  *string `json:"parent_id"`
	}

	type createCardResponse struct {
		Message string   `json:"message"`
		Card    *db.Card `json:"card,omitempty"`
	}

	data := new(createCardData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createCardResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createCardResponse{
			Message: "Invalid request params",
		})
	}

	app := c.(*middleware.AppContext).App
	user := c.(*middleware.AppContext).User
	if !middleware.CanMutateCanvas(app, user, data.Canvas) {
		return c.JSON(http.StatusForbidden, createCardResponse{Message: "You are not allowed to modify this canvas"})
	}

	ctx := c.Request().Context()
	q := db.New(app.DBConn)

	// Clients assign ids so undo can recreate a card under the same
	// identity; a missing id is filled in server-side.
	if data.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, createCardResponse{Message: "Internal server error"})
		}
		data.ID = id
	}

	if data.ParentID != nil {
		parent, err := q.GetCard(ctx, *data.ParentID)
		if err != nil || parent.CanvasID != data.Canvas {
			return c.JSON(http.StatusBadRequest, createCardResponse{Message: "Parent card not found on this canvas"})
		}
	}

	card, err := q.CreateCard(ctx, db.CreateCardParams{
		ID:        data.ID,
		CanvasID:  data.Canvas,
		PositionX: data.PositionX,
		PositionY: data.PositionY,
		ParentID:  data.ParentID,
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, createCardResponse{Message: "Failed to create card"})
	}

	return c.JSON(http.StatusCreated, createCardResponse{
		Message: "Card created successfully",
		Card:    &card,
	})
}
