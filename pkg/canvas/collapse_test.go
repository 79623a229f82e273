package canvas

import "testing"

func chainEdges(ids ...string) []Edge {
	edges := make([]Edge, 0, len(ids)-1)
	for i := 1; i < len(ids); i++ {
		edges = append(edges, Edge{
			ID:     EdgeID(ids[i-1], ids[i]),
			Source: ids[i-1],
			Target: ids[i],
		})
	}
	return edges
}

func TestHiddenCardsTransitive(t *testing.T) {
	edges := chainEdges("a", "b", "c")

	hidden := HiddenCards(edges, map[string]bool{"a": true})

	if hidden["a"] {
		t.Fatalf("collapsed card itself must stay visible")
	}
	if !hidden["b"] || !hidden["c"] {
		t.Fatalf("expected b and c hidden, got %v", hidden)
	}
}

func TestHiddenCardsExpandClears(t *testing.T) {
	edges := chainEdges("a", "b", "c")

	hidden := HiddenCards(edges, map[string]bool{})
	if len(hidden) != 0 {
		t.Fatalf("expected nothing hidden, got %v", hidden)
	}
}

func TestHiddenCardsNestedCollapse(t *testing.T) {
	// a -> b -> c, both a and b collapsed: expanding a later would still
	// leave c hidden under b, so both descendants are in the set now.
	edges := chainEdges("a", "b", "c")

	hidden := HiddenCards(edges, map[string]bool{"a": true, "b": true})

	if !hidden["b"] || !hidden["c"] {
		t.Fatalf("expected b and c hidden, got %v", hidden)
	}

	hidden = HiddenCards(edges, map[string]bool{"b": true})
	if hidden["b"] {
		t.Fatalf("b should be visible once a is expanded")
	}
	if !hidden["c"] {
		t.Fatalf("c should stay hidden under collapsed b")
	}
}

func TestHiddenCardsCycleSafe(t *testing.T) {
	// Defensive: the single-parent schema cannot produce a cycle, but a
	// stale in-memory view might. The walk must terminate.
	edges := []Edge{
		{ID: EdgeID("a", "b"), Source: "a", Target: "b"},
		{ID: EdgeID("b", "a"), Source: "b", Target: "a"},
	}

	hidden := HiddenCards(edges, map[string]bool{"a": true})

	if !hidden["b"] {
		t.Fatalf("expected b hidden, got %v", hidden)
	}
}

func TestEdgeHidden(t *testing.T) {
	hidden := map[string]bool{"b": true}

	if !EdgeHidden(Edge{Source: "a", Target: "b"}, hidden) {
		t.Fatalf("edge into hidden target must be hidden")
	}
	if !EdgeHidden(Edge{Source: "b", Target: "c"}, hidden) {
		t.Fatalf("edge out of hidden source must be hidden")
	}
	if EdgeHidden(Edge{Source: "a", Target: "c"}, hidden) {
		t.Fatalf("edge between visible cards must stay visible")
	}
}
