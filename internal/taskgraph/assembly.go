package taskgraph

import "github.com/HendryAvila/taskgraph/internal/graph"

// Position is a 2D layout coordinate. The service does not compute
// layout; every node carries the {0,0} placeholder and the presentation
// layer positions nodes itself.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one positioned task in the caller-facing graph view.
type Node struct {
	Task     graph.Task `json:"task"`
	Position Position   `json:"position"`
}

// GraphView is the nodes+edges shape consumed by graph-view clients.
// Nodes and Edges are always non-nil so the JSON contract emits arrays,
// never null.
type GraphView struct {
	Nodes []Node               `json:"nodes"`
	Edges []graph.Relationship `json:"edges"`
}

// assemble turns raw store output into the caller-facing view.
//
// Edges whose source or target no longer resolves to a live node (a
// stale read racing a delete) are filtered out: an edge without both
// endpoints in the node set is invalid output. Duplicate edges are NOT
// deduplicated — parallel edges are a valid store state the caller may
// want to see.
func assemble(tasks []graph.Task, edges []graph.Relationship) *GraphView {
	nodes := make([]Node, 0, len(tasks))
	live := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		nodes = append(nodes, Node{Task: t})
		live[t.ID] = true
	}

	kept := make([]graph.Relationship, 0, len(edges))
	for _, e := range edges {
		if !live[e.SourceID] || !live[e.TargetID] {
			continue
		}
		kept = append(kept, e)
	}

	return &GraphView{Nodes: nodes, Edges: kept}
}
