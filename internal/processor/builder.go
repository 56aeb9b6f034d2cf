package processor

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/harshithgowdakt/lazyframe/internal/operator"
	"github.com/harshithgowdakt/lazyframe/internal/plan"
	"github.com/harshithgowdakt/lazyframe/internal/types"
)

// Pipeline is a compiled, reusable plan. Each Run executes fresh clones of
// the stage prototypes, so one Pipeline may be run many times.
type Pipeline struct {
	Graph  *ExecutingGraph
	Schema []types.DataType
	// Length is the statically inferred row count; LengthKnown is false
	// when it cannot be computed without executing.
	Length      int64
	LengthKnown bool

	opts Options
	log  *zap.Logger
}

// Compile validates the plan rooted at root and lays it out as a stage
// tree:
//
//	[Sequence] ──┐
//	             ├── [Append] ── [Limit] ── sink
//	[Sequence] ──┘
//
// Every distinct node is validated and instantiated once. A node with
// several consumers gets one stage per consumer, each running its own
// clone, so a slow consumer never stalls a sibling through a shared queue.
// Deeply shared plans multiply stages; Compile rejects a plan needing more
// than Options.MaxStages before building any of them.
func Compile(root *plan.Node, opts Options) (*Pipeline, error) {
	return CompileWith(root, opts, NewAnalyzer())
}

// CompileWith is Compile reusing an existing analysis memo.
func CompileWith(root *plan.Node, opts Options, analyzer *Analyzer) (*Pipeline, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, plan.Invalidf(plan.KindInvalid, "", "nil plan node")
	}

	if countStages(root, opts.MaxStages) > opts.MaxStages {
		return nil, plan.Invalidf(root.Kind(), "", "plan expands to more than %d stages", opts.MaxStages)
	}

	protos := make(map[*plan.Node]operator.Instance)
	var stages []*Stage
	var edges []Edge

	var build func(n *plan.Node) (int, error)
	build = func(n *plan.Node) (int, error) {
		inputIDs := make([]int, n.NumInputs())
		for i, in := range n.Inputs() {
			id, err := build(in)
			if err != nil {
				return 0, err
			}
			inputIDs[i] = id
		}

		proto, ok := protos[n]
		if !ok {
			if _, err := analyzer.InferType(n); err != nil {
				return 0, err
			}
			inst, err := operator.FromPlanNode(n)
			if err != nil {
				return 0, err
			}
			proto = inst
			protos[n] = proto
		}

		id := len(stages)
		stages = append(stages, &Stage{ID: id, Node: n, proto: proto})
		for i, from := range inputIDs {
			edges = append(edges, Edge{From: from, To: id, InputIdx: i})
		}
		return id, nil
	}

	if _, err := build(root); err != nil {
		return nil, errors.Wrap(err, "compile")
	}

	schema, err := analyzer.InferType(root)
	if err != nil {
		return nil, errors.Wrap(err, "compile")
	}
	length, known, err := analyzer.InferLength(root)
	if err != nil {
		return nil, errors.Wrap(err, "compile")
	}

	p := &Pipeline{
		Graph:       NewExecutingGraph(stages, edges),
		Schema:      schema,
		Length:      length,
		LengthKnown: known,
		opts:        opts,
		log:         opts.Logger.Named("pipeline"),
	}
	p.log.Debug("compiled plan",
		zap.Int("stages", len(stages)),
		zap.Int("distinct_nodes", len(protos)),
		zap.Int64("length", length),
		zap.Bool("length_known", known))
	return p, nil
}

// countStages returns how many stages root compiles to, saturating at
// limit+1. Each distinct node is visited once.
func countStages(root *plan.Node, limit int) int {
	memo := make(map[*plan.Node]int)
	var count func(n *plan.Node) int
	count = func(n *plan.Node) int {
		if c, ok := memo[n]; ok {
			return c
		}
		c := 1
		for _, in := range n.Inputs() {
			c += count(in)
			if c > limit {
				c = limit + 1
				break
			}
		}
		memo[n] = c
		return c
	}
	return count(root)
}
