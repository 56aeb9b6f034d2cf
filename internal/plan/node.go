package plan

import (
	"sort"

	"github.com/harshithgowdakt/lazyframe/internal/types"
)

// Params maps parameter names to values.
type Params map[string]types.Scalar

// Clone returns an independent copy of p.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Names returns the parameter names in sorted order.
func (p Params) Names() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Node is one vertex of a logical plan DAG: an operator kind, its named
// parameters, and its ordered inputs. Nodes are immutable; a node's inputs
// must exist before it does, so the graph cannot contain cycles. Subgraphs
// may be shared by several consumers.
type Node struct {
	kind   Kind
	params Params
	inputs []*Node
}

// NewNode builds a node. params and inputs are copied.
func NewNode(kind Kind, params Params, inputs ...*Node) *Node {
	in := make([]*Node, len(inputs))
	copy(in, inputs)
	return &Node{kind: kind, params: params.Clone(), inputs: in}
}

func (n *Node) Kind() Kind { return n.kind }

// Param returns the named parameter.
func (n *Node) Param(name string) (types.Scalar, bool) {
	v, ok := n.params[name]
	return v, ok
}

// Params returns a copy of the parameter mapping.
func (n *Node) Params() Params { return n.params.Clone() }

func (n *Node) NumInputs() int { return len(n.inputs) }

func (n *Node) Input(i int) *Node { return n.inputs[i] }

// Inputs returns a copy of the input list.
func (n *Node) Inputs() []*Node {
	out := make([]*Node, len(n.inputs))
	copy(out, n.inputs)
	return out
}

// WithParams returns a new node with the same kind and inputs whose
// parameters are n's overlaid with p.
func (n *Node) WithParams(p Params) *Node {
	merged := n.params.Clone()
	for k, v := range p {
		merged[k] = v
	}
	return &Node{kind: n.kind, params: merged, inputs: n.Inputs()}
}

// Walk visits every node reachable from root exactly once, inputs before
// consumers.
func Walk(root *Node, fn func(*Node) error) error {
	seen := make(map[*Node]bool)
	var visit func(*Node) error
	visit = func(n *Node) error {
		if seen[n] {
			return nil
		}
		seen[n] = true
		for _, in := range n.inputs {
			if err := visit(in); err != nil {
				return err
			}
		}
		return fn(n)
	}
	return visit(root)
}
