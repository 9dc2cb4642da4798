// Package graph turns a resolved family into a renderable node/edge graph.
// Co-parents are joined through synthetic partnership nodes rather than a
// direct spouse edge.
package graph

// Graph holds nodes and edges in insertion order. Adding a node or edge whose
// id already exists is a no-op.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []Edge  `json:"edges"`

	byID  map[string]*Node
	edges map[string]bool
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: []*Node{},
		Edges: []Edge{},
		byID:  make(map[string]*Node),
		edges: make(map[string]bool),
	}
}

// AddNode adds n unless a node with the same id exists. It returns the node
// stored under that id.
func (g *Graph) AddNode(n *Node) *Node {
	if existing, ok := g.byID[n.ID]; ok {
		return existing
	}
	g.byID[n.ID] = n
	g.Nodes = append(g.Nodes, n)
	return n
}

// AddEdge adds a from->to edge of the given kind. Both endpoints must
// already be nodes; otherwise the edge is dropped and false is returned.
func (g *Graph) AddEdge(from, to string, kind EdgeKind) bool {
	if !g.HasNode(from) || !g.HasNode(to) {
		return false
	}
	id := from + "->" + to
	if g.edges[id] {
		return false
	}
	g.edges[id] = true
	g.Edges = append(g.Edges, Edge{ID: id, From: from, To: to, Kind: kind})
	return true
}

func (g *Graph) HasNode(id string) bool {
	_, ok := g.byID[id]
	return ok
}

func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Outgoing returns edges leaving id.
func (g *Graph) Outgoing(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// Incoming returns edges entering id.
func (g *Graph) Incoming(id string) []Edge {
	var in []Edge
	for _, e := range g.Edges {
		if e.To == id {
			in = append(in, e)
		}
	}
	return in
}

// Partnerships returns the partnership nodes in creation order.
func (g *Graph) Partnerships() []*Node {
	var out []*Node
	for _, n := range g.Nodes {
		if n.Kind == NodePartnership {
			out = append(out, n)
		}
	}
	return out
}
