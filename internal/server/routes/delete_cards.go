package routes

import (
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"atelier/internal/db"
	"atelier/internal/queue"
	"atelier/internal/server/middleware"
	"atelier/internal/storage"
	"atelier/internal/util"
	"atelier/pkg/logger"
)

// CleanupMessage is the payload published to the cleanup queue when a
// deleted card owned an uploaded image.
type CleanupMessage struct {
	Key string `json:"key"`
}

func DeleteCardHandler(c echo.Context) error {
	type deleteCardData struct {
		ID string `param:"id" validate:"required"`
	}

	type deleteCardResponse struct {
		Message string `json:"message"`
	}

	data := new(deleteCardData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, deleteCardResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, deleteCardResponse{
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
			return c.JSON(http.StatusNotFound, deleteCardResponse{Message: "Card not found"})
		}
		return c.JSON(http.StatusInternalServerError, deleteCardResponse{Message: "Internal server error"})
	}

	if !middleware.CanMutateCanvas(app, user, existing.CanvasID) {
		return c.JSON(http.StatusForbidden, deleteCardResponse{Message: "You are not allowed to modify this canvas"})
	}

	// Children are detached by the schema, not deleted.
	if _, err := q.DeleteCard(ctx, data.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, deleteCardResponse{Message: "Internal server error"})
	}

	// Queue removal of an uploaded image the card owned.
	if key := storage.ObjectKeyFromURL(existing.ImageURL); key != "" {
		payload := util.ConvertStructToJson(CleanupMessage{Key: key})
		if err := queue.PublishFIFO(app.Queue, "cleanup_queue", []byte(payload)); err != nil {
			logger.Error("Failed to queue upload cleanup", "key", key, "err", err)
		}
	}

	return c.JSON(http.StatusOK, deleteCardResponse{
		Message: "Card deleted successfully",
	})
}
