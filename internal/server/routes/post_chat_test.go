package routes

import (
	"strings"
	"testing"

	"atelier/internal/db"
)

func TestRenderCanvasText(t *testing.T) {
	parent := "p1"
	cards := []db.Card{
		{ID: "p1", Title: "Projects", Description: "Things I build"},
		{ID: "c1", Title: "Atelier", ParentID: &parent},
		{ID: "l1", Title: "Blog", CardType: "link", LinkURL: "https://example.com"},
	}

	text := renderCanvasText(cards)

	if !strings.Contains(text, "- Projects: Things I build") {
		t.Fatalf("missing card line in %q", text)
	}
	if !strings.Contains(text, `(under "Projects")`) {
		t.Fatalf("missing parent attachment in %q", text)
	}
	if !strings.Contains(text, "[https://example.com]") {
		t.Fatalf("missing link url in %q", text)
	}
}

func TestRenderCanvasTextEmpty(t *testing.T) {
	if got := renderCanvasText(nil); got != "(the canvas is empty)" {
		t.Fatalf("unexpected empty canvas text %q", got)
	}
}

func TestRenderCanvasTextUntitled(t *testing.T) {
	text := renderCanvasText([]db.Card{{ID: "a"}})
	if !strings.Contains(text, "(untitled)") {
		t.Fatalf("expected untitled placeholder in %q", text)
	}
}
