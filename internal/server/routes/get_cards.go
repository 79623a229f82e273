package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"atelier/internal/db"
	"atelier/internal/server/middleware"
)

func GetCardsHandler(c echo.Context) error {
	type getCardsData struct {
		Canvas string `param:"canvas" validate:"required"`
	}

	type getCardsResponse struct {
		Message string    `json:"message"`
		Cards   []db.Card `json:"cards"`
	}

	data := new(getCardsData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, getCardsResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, getCardsResponse{
			Message: "Invalid request params",
		})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := db.New(conn)

	cards, err := q.ListCards(ctx, data.Canvas)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, getCardsResponse{Message: "Internal server error"})
	}
	if cards == nil {
		cards = []db.Card{}
	}

	return c.JSON(http.StatusOK, getCardsResponse{
		Message: "Cards fetched successfully",
		Cards:   cards,
	})
}
