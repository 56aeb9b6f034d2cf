package operator

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/btree"

	"github.com/harshithgowdakt/lazyframe/internal/plan"
	"github.com/harshithgowdakt/lazyframe/internal/types"
)

// registry is filled by init functions in this package and only read
// afterwards.
var registry btree.Map[plan.Kind, Contract]

func register(c Contract) {
	if _, dup := registry.Get(c.Kind()); dup {
		panic(fmt.Sprintf("operator: kind %s registered twice", c.Kind()))
	}
	registry.Set(c.Kind(), c)
}

// Lookup returns the contract for kind.
func Lookup(kind plan.Kind) (Contract, error) {
	c, ok := registry.Get(kind)
	if !ok {
		return nil, plan.Invalidf(kind, "", "no operator registered for kind")
	}
	return c, nil
}

// Contracts returns every registered contract in kind order.
func Contracts() []Contract {
	out := make([]Contract, 0, registry.Len())
	registry.Scan(func(_ plan.Kind, c Contract) bool {
		out = append(out, c)
		return true
	})
	return out
}

func lookupNode(node *plan.Node) (Contract, error) {
	if node == nil {
		return nil, plan.Invalidf(plan.KindInvalid, "", "nil plan node")
	}
	c, err := Lookup(node.Kind())
	if err != nil {
		return nil, err
	}
	if want := c.Attributes().NumInputs; node.NumInputs() != want {
		return nil, plan.Invalidf(node.Kind(), "", "expected %d inputs, got %d", want, node.NumInputs())
	}
	return c, nil
}

// FromPlanNode builds an instance for node using its kind's contract.
func FromPlanNode(node *plan.Node) (Instance, error) {
	c, err := lookupNode(node)
	if err != nil {
		return nil, err
	}
	return c.FromPlanNode(node)
}

// InferType returns node's output schema.
func InferType(node *plan.Node) ([]types.DataType, error) {
	return NewMemo().InferType(node)
}

// InferLength returns node's row count, if it is statically known.
func InferLength(node *plan.Node) (int64, bool, error) {
	return NewMemo().InferLength(node)
}

// InferTypeWith answers through the contract of node's kind, with inputs
// resolved by a.
func InferTypeWith(node *plan.Node, a Analysis) ([]types.DataType, error) {
	c, err := lookupNode(node)
	if err != nil {
		return nil, err
	}
	return c.InferType(node, a)
}

// InferLengthWith is InferTypeWith for row counts.
func InferLengthWith(node *plan.Node, a Analysis) (int64, bool, error) {
	c, err := lookupNode(node)
	if err != nil {
		return 0, false, err
	}
	return c.InferLength(node, a)
}

// Repr renders node through its contract.
func Repr(node *plan.Node, tagger *plan.Tagger) (string, error) {
	c, err := lookupNode(node)
	if err != nil {
		return "", err
	}
	return c.Repr(node, tagger)
}

// Slice narrows a source node to rows [begin, end) of its output.
func Slice(node *plan.Node, begin, end int64) (*plan.Node, error) {
	c, err := lookupNode(node)
	if err != nil {
		return nil, err
	}
	s, ok := c.(Slicer)
	if !ok {
		return nil, plan.Invalidf(node.Kind(), "", "kind does not support slicing")
	}
	return s.Slice(node, begin, end)
}

// inputRepr renders an input inline, or by tag when several consumers
// share it.
func inputRepr(node *plan.Node, tagger *plan.Tagger) (string, error) {
	if tagger != nil && tagger.Shared(node) {
		return tagger.Tag(node), nil
	}
	return Repr(node, tagger)
}

// Explain renders the plan rooted at root. Shared subgraphs are printed
// once as "Nk = ..." lines ahead of the root and referred to by tag.
func Explain(root *plan.Node) (string, error) {
	if root == nil {
		return "", plan.Invalidf(plan.KindInvalid, "", "nil plan node")
	}
	tagger := plan.NewTagger()
	tagger.CountRefs(root)

	var lines []string
	err := plan.Walk(root, func(n *plan.Node) error {
		if n == root || !tagger.Shared(n) {
			return nil
		}
		s, err := Repr(n, tagger)
		if err != nil {
			return err
		}
		lines = append(lines, tagger.Tag(n)+" = "+s)
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "explain")
	}
	s, err := Repr(root, tagger)
	if err != nil {
		return "", errors.Wrap(err, "explain")
	}
	return strings.Join(append(lines, s), "\n"), nil
}
