package canvas

// HiddenCards computes the transitive descendant set of every collapsed
// card. A collapsed card itself stays visible; only what hangs below it
// is hidden. The walk is iterative and cycle-safe: a card already in the
// hidden set is not expanded again.
func HiddenCards(edges []Edge, collapsed map[string]bool) map[string]bool {
	children := make(map[string][]string, len(edges))
	for _, e := range edges {
		children[e.Source] = append(children[e.Source], e.Target)
	}

	hidden := make(map[string]bool)
	for root := range collapsed {
		if !collapsed[root] {
			continue
		}
		stack := append([]string(nil), children[root]...)
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if hidden[id] {
				continue
			}
			hidden[id] = true
			stack = append(stack, children[id]...)
		}
	}
	return hidden
}

// EdgeHidden reports whether an edge should be hidden: true when either
// endpoint is in the hidden set.
func EdgeHidden(e Edge, hidden map[string]bool) bool {
	return hidden[e.Source] || hidden[e.Target]
}
