package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"atelier/internal/db"
	"atelier/internal/server/middleware"
	"atelier/pkg/ai"
	"atelier/pkg/logger"
)

// CanvasChatHandler streams an assistant conversation about one canvas
// as NDJSON. The conversation is stateless: the client sends the full
// history every turn and nothing is persisted.
func CanvasChatHandler(c echo.Context) error {
	type chatMessage struct {
		Role    string `json:"role" validate:"required,oneof=user assistant"`
		Message string `json:"message" validate:"required"`
	}

	type chatData struct {
		Canvas   string        `param:"canvas" validate:"required"`
		Messages []chatMessage `json:"messages" validate:"required,min=1,max=50,dive"`
		Suggest  bool          `json:"suggest"`
	}

	type chatErrorResponse struct {
		Message string `json:"message"`
	}

	data := new(chatData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, chatErrorResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, chatErrorResponse{
			Message: "Invalid request params",
		})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()
	q := db.New(app.DBConn)

	cards, err := q.ListCards(ctx, data.Canvas)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, chatErrorResponse{Message: "Internal server error"})
	}

	systemPrompt := ai.CanvasAssistantPrompt(renderCanvasText(cards))

	messages := make([]ai.ChatMessage, 0, len(data.Messages))
	for _, m := range data.Messages {
		messages = append(messages, ai.ChatMessage{Role: m.Role, Message: m.Message})
	}

	stream, err := app.AiClient.GenerateChatStream(ctx, messages, ai.WithSystemPrompts(systemPrompt))
	if err != nil {
		return c.JSON(http.StatusBadGateway, chatErrorResponse{Message: "Assistant unavailable"})
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "application/x-ndjson")
	resp.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(resp)
	writeEvent := func(event any) bool {
		if err := enc.Encode(event); err != nil {
			return false
		}
		resp.Flush()
		return true
	}

	type streamLine struct {
		Type    string              `json:"type"`
		Content string              `json:"content,omitempty"`
		Cards   []ai.CardSuggestion `json:"cards,omitempty"`
	}

	for event := range stream {
		if event.Type != "content" {
			continue
		}
		if !writeEvent(streamLine{Type: "content", Content: event.Content}) {
			return nil
		}
	}

	if data.Suggest {
		var suggestions ai.CardSuggestions
		request := data.Messages[len(data.Messages)-1].Message
		err := app.AiClient.GenerateChatWithFormat(
			ctx,
			"card_suggestions",
			"Cards to add to the canvas",
			append(messages, ai.ChatMessage{Role: "user", Message: ai.SuggestionPrompt(request)}),
			&suggestions,
			ai.WithSystemPrompts(systemPrompt),
		)
		if err != nil {
			logger.Error("Failed to generate card suggestions", "err", err)
		} else if len(suggestions.Cards) > 0 {
			writeEvent(streamLine{Type: "suggestions", Cards: suggestions.Cards})
		}
	}

	writeEvent(streamLine{Type: "done"})
	return nil
}

// renderCanvasText flattens the canvas into prompt text: one line per
// card plus its parent attachment, so the model can reason about the
// board structure.
func renderCanvasText(cards []db.Card) string {
	titles := make(map[string]string, len(cards))
	for _, card := range cards {
		titles[card.ID] = card.Title
	}

	var b strings.Builder
	for _, card := range cards {
		title := card.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(&b, "- %s", title)
		if card.Description != "" {
			fmt.Fprintf(&b, ": %s", card.Description)
		}
		if card.CardType == "link" && card.LinkURL != "" {
			fmt.Fprintf(&b, " [%s]", card.LinkURL)
		}
		if card.ParentID != nil {
			parent := titles[*card.ParentID]
			if parent == "" {
				parent = *card.ParentID
			}
			fmt.Fprintf(&b, " (under %q)", parent)
		}
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "(the canvas is empty)"
	}
	return b.String()
}
