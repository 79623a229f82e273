package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"atelier/internal/db"
	"atelier/internal/server/middleware"
)

func MoveCardsHandler(c echo.Context) error {
	type cardPosition struct {
		ID        string  `json:"id" validate:"required"`
		PositionX float64 `json:"position_x"`
		PositionY float64 `json:"position_y"`
	}

	type moveCardsData struct {
		Positions []cardPosition `json:"positions" validate:"required,min=1,max=500,dive"`
	}

	type moveCardsResponse struct {
		Message string `json:"message"`
	}

	data := new(moveCardsData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, moveCardsResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, moveCardsResponse{
			Message: "Invalid request params",
		})
	}

	app := c.(*middleware.AppContext).App
	user := c.(*middleware.AppContext).User

	ctx := c.Request().Context()
	q := db.New(app.DBConn)

	ids := make([]string, 0, len(data.Positions))
	xs := make([]float64, 0, len(data.Positions))
	ys := make([]float64, 0, len(data.Positions))
	for _, p := range data.Positions {
		ids = append(ids, p.ID)
		xs = append(xs, p.PositionX)
		ys = append(ys, p.PositionY)
	}

	// A batch may only touch canvases the caller can mutate.
	canvases, err := q.ListCardCanvases(ctx, ids)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, moveCardsResponse{Message: "Internal server error"})
	}
	for _, canvasID := range canvases {
		if !middleware.CanMutateCanvas(app, user, canvasID) {
			return c.JSON(http.StatusForbidden, moveCardsResponse{Message: "You are not allowed to modify this canvas"})
		}
	}

	if err := q.UpdateCardPositions(ctx, db.UpdateCardPositionsParams{
		Ids: ids,
		Xs:  xs,
		Ys:  ys,
	}); err != nil {
		return c.JSON(http.StatusInternalServerError, moveCardsResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, moveCardsResponse{
		Message: "Positions updated successfully",
	})
}
