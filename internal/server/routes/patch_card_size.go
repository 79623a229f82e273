package routes

import (
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"atelier/internal/db"
	"atelier/internal/server/middleware"
)

func EditCardSizeHandler(c echo.Context) error {
	type editCardSizeData struct {
		ID     string   `param:"id" validate:"required"`
		Width  *float64 `json:"width" validate:"omitempty,gt=0"`
		Height *float64 `json:"height" validate:"omitempty,gt=0"`
	}

	type editCardSizeResponse struct {
		Message string `json:"message"`
	}

	data := new(editCardSizeData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, editCardSizeResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, editCardSizeResponse{
			Message: "Invalid request params",
		})
	}

	app := c.(*middleware.AppContext).App
	user := c.(*middleware.AppContext).User

	ctx := c.Request().Context()
	q := db.New(app.DBConn)

	existing, err := q.GetCard(ctx, data.ID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.JSON(http.StatusNotFound, editCardSizeResponse{Message: "Card not found"})
		}
		return c.JSON(http.StatusInternalServerError, editCardSizeResponse{Message: "Internal server error"})
	}

	if !middleware.CanMutateCanvas(app, user, existing.CanvasID) {
		return c.JSON(http.StatusForbidden, editCardSizeResponse{Message: "You are not allowed to modify this canvas"})
	}

	if err := q.UpdateCardSize(ctx, db.UpdateCardSizeParams{
		ID:     data.ID,
		Width:  data.Width,
		Height: data.Height,
	}); err != nil {
		return c.JSON(http.StatusInternalServerError, editCardSizeResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, editCardSizeResponse{
		Message: "Card size updated successfully",
	})
}
