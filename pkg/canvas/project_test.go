package canvas

import "testing"

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestProjectDerivesEdgeFromParentRef(t *testing.T) {
	cards := []Card{
		{ID: "a", CanvasID: "home", Title: "Parent", Type: CardTypeStandard},
		{ID: "b", CanvasID: "home", Title: "Child", Type: CardTypeStandard, ParentID: strPtr("a"), ParentHandle: HandleBottom, ChildHandle: HandleTop},
	}

	proj := Project(cards)

	if len(proj.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(proj.Nodes))
	}
	if len(proj.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(proj.Edges))
	}

	e := proj.Edges[0]
	if e.ID != "e-a-b" {
		t.Fatalf("expected edge id e-a-b, got %s", e.ID)
	}
	if e.Source != "a" || e.Target != "b" {
		t.Fatalf("expected edge a -> b, got %s -> %s", e.Source, e.Target)
	}
	if e.SourceHandle != HandleBottom || e.TargetHandle != HandleTop {
		t.Fatalf("unexpected handles %s/%s", e.SourceHandle, e.TargetHandle)
	}
}

func TestProjectDefaults(t *testing.T) {
	cards := []Card{
		{ID: "a", CanvasID: "home"},
		{ID: "b", CanvasID: "home", ParentID: strPtr("a")},
	}

	proj := Project(cards)

	if proj.Nodes[0].Type != CardTypeStandard {
		t.Fatalf("expected empty type to default to standard, got %s", proj.Nodes[0].Type)
	}
	if proj.Nodes[0].Width != DefaultWidth {
		t.Fatalf("expected default width %v, got %v", DefaultWidth, proj.Nodes[0].Width)
	}
	if proj.Nodes[0].Height != 0 {
		t.Fatalf("expected auto height 0, got %v", proj.Nodes[0].Height)
	}

	e := proj.Edges[0]
	if e.SourceHandle != HandleRight || e.TargetHandle != HandleLeft {
		t.Fatalf("expected default handles right/left, got %s/%s", e.SourceHandle, e.TargetHandle)
	}
}

func TestProjectManualSize(t *testing.T) {
	cards := []Card{
		{ID: "a", CanvasID: "home", Width: floatPtr(420), Height: floatPtr(180)},
	}

	proj := Project(cards)

	if proj.Nodes[0].Width != 420 || proj.Nodes[0].Height != 180 {
		t.Fatalf("expected manual size 420x180, got %vx%v", proj.Nodes[0].Width, proj.Nodes[0].Height)
	}
}

func TestProjectIsDeterministic(t *testing.T) {
	cards := []Card{
		{ID: "a", CanvasID: "home"},
		{ID: "b", CanvasID: "home", ParentID: strPtr("a")},
		{ID: "c", CanvasID: "home", ParentID: strPtr("a")},
	}

	first := Project(cards)
	second := Project(cards)

	if len(first.Nodes) != len(second.Nodes) || len(first.Edges) != len(second.Edges) {
		t.Fatalf("projection sizes differ between runs")
	}
	for i := range first.Edges {
		if first.Edges[i] != second.Edges[i] {
			t.Fatalf("edge %d differs between runs: %+v vs %+v", i, first.Edges[i], second.Edges[i])
		}
	}

	children := first.Children("a")
	if len(children) != 2 || children[0] != "b" || children[1] != "c" {
		t.Fatalf("expected children [b c], got %v", children)
	}
}

func TestProjectDoesNotModifyInput(t *testing.T) {
	cards := []Card{
		{ID: "a", CanvasID: "home"},
	}

	Project(cards)

	if cards[0].Type != "" {
		t.Fatalf("input card was modified: type %s", cards[0].Type)
	}
}
