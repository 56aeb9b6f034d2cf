package processor

// Edge connects the output of stage From to input InputIdx of stage To.
type Edge struct {
	From     int
	To       int
	InputIdx int
}

// ExecutingGraph is a compiled stage tree. Stages are stored inputs-first;
// the last stage is the root. Every stage has exactly one consumer.
type ExecutingGraph struct {
	Stages []*Stage
	Edges  []Edge

	upstreamOf [][]int // for each stage, its input stages in input order
}

// NewExecutingGraph indexes stages and edges.
func NewExecutingGraph(stages []*Stage, edges []Edge) *ExecutingGraph {
	g := &ExecutingGraph{
		Stages:     stages,
		Edges:      edges,
		upstreamOf: make([][]int, len(stages)),
	}
	for _, e := range edges {
		up := g.upstreamOf[e.To]
		for len(up) <= e.InputIdx {
			up = append(up, -1)
		}
		up[e.InputIdx] = e.From
		g.upstreamOf[e.To] = up
	}
	return g
}

// Upstream returns the stages feeding stageIdx, in input order.
func (g *ExecutingGraph) Upstream(stageIdx int) []int {
	return g.upstreamOf[stageIdx]
}

// Root returns the index of the final stage.
func (g *ExecutingGraph) Root() int { return len(g.Stages) - 1 }
