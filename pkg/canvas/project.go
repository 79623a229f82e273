package canvas

// Node is the visual form of a card: resolved size plus display data.
// Width falls back to DefaultWidth when the card has no manual width;
// Height zero means auto.
type Node struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Icon        string   `json:"icon,omitempty"`
	Description string   `json:"description,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Type        CardType `json:"card_type"`
	LinkURL     string   `json:"link_url,omitempty"`
	X           float64  `json:"position_x"`
	Y           float64  `json:"position_y"`
	Width       float64  `json:"width"`
	Height      float64  `json:"height"`
}

// Projection is the derived view of a card list: visual nodes, derived
// edges and a parent -> children adjacency map built once so hot paths
// (collapse walks, child lookups) avoid linear scans.
type Projection struct {
	Nodes []Node
	Edges []Edge

	children map[string][]string
}

// Project derives nodes and edges from a card list. It is pure: the same
// card list always yields the same projection, and the input is not
// modified. One edge exists per card with a non-nil parent reference,
// with handles defaulted to right (source) and left (target).
func Project(cards []Card) Projection {
	p := Projection{
		Nodes:    make([]Node, 0, len(cards)),
		Edges:    make([]Edge, 0),
		children: make(map[string][]string),
	}

	for _, c := range cards {
		node := Node{
			ID:          c.ID,
			Title:       c.Title,
			Icon:        c.Icon,
			Description: c.Description,
			ImageURL:    c.ImageURL,
			Type:        c.Type,
			LinkURL:     c.LinkURL,
			X:           c.X,
			Y:           c.Y,
			Width:       DefaultWidth,
		}
		if c.Type == "" {
			node.Type = CardTypeStandard
		}
		if c.Width != nil {
			node.Width = *c.Width
		}
		if c.Height != nil {
			node.Height = *c.Height
		}
		p.Nodes = append(p.Nodes, node)

		if c.ParentID == nil {
			continue
		}
		parent := *c.ParentID

		sourceHandle := c.ParentHandle
		if sourceHandle == "" {
			sourceHandle = HandleRight
		}
		targetHandle := c.ChildHandle
		if targetHandle == "" {
			targetHandle = HandleLeft
		}

		p.Edges = append(p.Edges, Edge{
			ID:           EdgeID(parent, c.ID),
			Source:       parent,
			Target:       c.ID,
			SourceHandle: sourceHandle,
			TargetHandle: targetHandle,
		})
		p.children[parent] = append(p.children[parent], c.ID)
	}

	return p
}

// Children returns the direct children of a card, in card-list order.
func (p Projection) Children(id string) []string {
	return p.children[id]
}
