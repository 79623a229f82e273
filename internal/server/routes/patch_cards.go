package routes

import (
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"atelier/internal/db"
	"atelier/internal/queue"
	"atelier/internal/server/middleware"
	"atelier/internal/util"
	"atelier/pkg/logger"
)

// LinkMetaMessage is the payload published to the link metadata queue
// when a link card is saved without an icon.
type LinkMetaMessage struct {
	CardID string `json:"card_id"`
	URL    string `json:"url"`
}

func EditCardHandler(c echo.Context) error {
	type editCardData struct {
		ID          string  `param:"id" validate:"required"`
		Title       *string `json:"title"`
		Icon        *string `json:"icon"`
		Description *string `json:"description"`
		ImageURL    *string `json:"image_url"`
		CardType    *string `json:"card_type" validate:"omitempty,oneof=standard title link"`
		LinkURL     *string `json:"link_url" validate:"omitempty,max=2048"`

		SetParent    bool    `json:"set_parent"`
		ParentID     *string `json:"parent_id"`
		ParentHandle *string `json:"parent_handle" validate:"omitempty,oneof=top left right bottom"`
		ChildHandle  *string `json:"child_handle" validate:"omitempty,oneof=top left right bottom"`
	}

	type editCardResponse struct {
		Message string   `json:"message"`
		Card    *db.Card `json:"card,omitempty"`
	}

	data := new(editCardData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, editCardResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, editCardResponse{
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
			return c.JSON(http.StatusNotFound, editCardResponse{Message: "Card not found"})
		}
		return c.JSON(http.StatusInternalServerError, editCardResponse{Message: "Internal server error"})
	}

	if !middleware.CanMutateCanvas(app, user, existing.CanvasID) {
		return c.JSON(http.StatusForbidden, editCardResponse{Message: "You are not allowed to modify this canvas"})
	}

	if data.SetParent && data.ParentID != nil {
		if *data.ParentID == data.ID {
			return c.JSON(http.StatusBadRequest, editCardResponse{Message: "A card cannot be its own parent"})
		}
		parent, err := q.GetCard(ctx, *data.ParentID)
		if err != nil || parent.CanvasID != existing.CanvasID {
			return c.JSON(http.StatusBadRequest, editCardResponse{Message: "Parent card not found on this canvas"})
		}
	}

	card, err := q.UpdateCard(ctx, db.UpdateCardParams{
		ID:          data.ID,
		Title:       data.Title,
		Icon:        data.Icon,
		Description: data.Description,
		ImageURL:    data.ImageURL,
		CardType:    data.CardType,
		LinkURL:     data.LinkURL,

		SetParent:    data.SetParent,
		ParentID:     data.ParentID,
		ParentHandle: data.ParentHandle,
		ChildHandle:  data.ChildHandle,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, editCardResponse{Message: "Internal server error"})
	}

	// A link card without an icon gets enriched asynchronously; the
	// worker fills in favicon and title from the page itself.
	if card.CardType == "link" && card.LinkURL != "" && card.Icon == "" {
		payload := util.ConvertStructToJson(LinkMetaMessage{CardID: card.ID, URL: card.LinkURL})
		if err := queue.PublishFIFO(app.Queue, "linkmeta_queue", []byte(payload)); err != nil {
			logger.Error("Failed to queue link enrichment", "card", card.ID, "err", err)
		}
	}

	return c.JSON(http.StatusOK, editCardResponse{
		Message: "Card updated successfully",
		Card:    &card,
	})
}
