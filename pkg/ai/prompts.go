package ai

import "fmt"

// CardSuggestion is one card the assistant proposes to add to the canvas.
type CardSuggestion struct {
	Title       string `json:"title" jsonschema_description:"Short card title"`
	Description string `json:"description" jsonschema_description:"One or two sentences of card body text"`
	ParentTitle string `json:"parent_title,omitempty" jsonschema_description:"Title of an existing card this one should hang under, if any"`
}

// CardSuggestions is the structured-output envelope for suggestion
// requests.
type CardSuggestions struct {
	Cards []CardSuggestion `json:"cards" jsonschema_description:"Cards to add to the canvas"`
}

// CanvasAssistantPrompt is the system prompt for the canvas chat
// assistant. The canvas content is rendered into the prompt so the
// assistant can answer questions about what is on the board.
func CanvasAssistantPrompt(canvasText string) string {
	return fmt.Sprintf(`You are an assistant embedded in a personal canvas board.
The canvas holds cards with titles, descriptions and parent/child connections.

Current canvas content:
---
%s
---

Answer questions about the canvas content concisely. When the user asks you
to add or propose content, describe the cards you would add.`, canvasText)
}

// SuggestionPrompt asks the model to turn its advice into concrete cards.
func SuggestionPrompt(request string) string {
	return fmt.Sprintf(`Propose cards for the following request. Keep titles under six
words and descriptions under two sentences. Reference an existing card by
title in parent_title when a suggestion belongs under it.

Request: %s`, request)
}
