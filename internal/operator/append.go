package operator

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/harshithgowdakt/lazyframe/internal/plan"
	"github.com/harshithgowdakt/lazyframe/internal/types"
)

func init() { register(appendContract{}) }

// NewAppendNode returns a node emitting every row of a followed by every
// row of b. Both inputs must have the same schema.
func NewAppendNode(a, b *plan.Node) (*plan.Node, error) {
	if a == nil || b == nil {
		return nil, plan.Invalidf(plan.KindAppend, "", "nil input")
	}
	if _, err := appendSchema(a, b, NewMemo()); err != nil {
		return nil, err
	}
	return plan.NewNode(plan.KindAppend, nil, a, b), nil
}

func appendSchema(a, b *plan.Node, inputs Analysis) ([]types.DataType, error) {
	ta, err := inputs.InferType(a)
	if err != nil {
		return nil, err
	}
	tb, err := inputs.InferType(b)
	if err != nil {
		return nil, err
	}
	return appendSchemaOf(ta, tb)
}

func appendSchemaOf(ta, tb []types.DataType) ([]types.DataType, error) {
	if !types.EqualSchemas(ta, tb) {
		return nil, errors.Mark(errors.Newf("append: input schemas differ: %v vs %v", ta, tb),
			types.ErrTypeMismatch)
	}
	return ta, nil
}

// Append forwards its inputs' blocks in input order.
type Append struct{}

func (*Append) Kind() plan.Kind { return plan.KindAppend }
func (*Append) Clone() Instance { return &Append{} }

func (*Append) Execute(ctx Context) error {
	for i := 0; i < 2; i++ {
		for {
			b, err := ctx.Pull(i)
			if err != nil {
				return err
			}
			if b == nil {
				break
			}
			if b.NumRows() == 0 {
				continue
			}
			if err := ctx.Emit(b); err != nil {
				return err
			}
		}
	}
	return nil
}

type appendContract struct{}

func (appendContract) Kind() plan.Kind { return plan.KindAppend }
func (appendContract) Name() string    { return "append" }

func (appendContract) Attributes() Attributes {
	return Attributes{NumInputs: 2}
}

func (appendContract) Construct(plan.Params) (Instance, error) {
	return &Append{}, nil
}

func (appendContract) FromPlanNode(node *plan.Node) (Instance, error) {
	if err := plan.ExpectKind(node, plan.KindAppend); err != nil {
		return nil, err
	}
	if node.NumInputs() != 2 {
		return nil, plan.Invalidf(plan.KindAppend, "", "expected 2 inputs, got %d", node.NumInputs())
	}
	return &Append{}, nil
}

func (appendContract) InferType(node *plan.Node, inputs Analysis) ([]types.DataType, error) {
	if err := plan.ExpectKind(node, plan.KindAppend); err != nil {
		return nil, err
	}
	if node.NumInputs() != 2 {
		return nil, plan.Invalidf(plan.KindAppend, "", "expected 2 inputs, got %d", node.NumInputs())
	}
	return appendSchema(node.Input(0), node.Input(1), inputs)
}

func (appendContract) InferLength(node *plan.Node, inputs Analysis) (int64, bool, error) {
	if err := plan.ExpectKind(node, plan.KindAppend); err != nil {
		return 0, false, err
	}
	if node.NumInputs() != 2 {
		return 0, false, plan.Invalidf(plan.KindAppend, "", "expected 2 inputs, got %d", node.NumInputs())
	}
	var total int64
	for _, in := range node.Inputs() {
		n, ok, err := inputs.InferLength(in)
		if err != nil || !ok {
			return 0, false, err
		}
		if total > math.MaxInt64-n {
			return 0, false, nil
		}
		total += n
	}
	return total, true, nil
}

func (appendContract) Repr(node *plan.Node, tagger *plan.Tagger) (string, error) {
	if err := plan.ExpectKind(node, plan.KindAppend); err != nil {
		return "", err
	}
	if node.NumInputs() != 2 {
		return "", plan.Invalidf(plan.KindAppend, "", "expected 2 inputs, got %d", node.NumInputs())
	}
	a, err := inputRepr(node.Input(0), tagger)
	if err != nil {
		return "", err
	}
	b, err := inputRepr(node.Input(1), tagger)
	if err != nil {
		return "", err
	}
	return "Append(" + a + ", " + b + ")", nil
}
