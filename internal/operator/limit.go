package operator

import (
	"fmt"

	"github.com/harshithgowdakt/lazyframe/internal/plan"
	"github.com/harshithgowdakt/lazyframe/internal/types"
)

const ParamLimit = "limit"

func init() { register(limitContract{}) }

// NewLimitNode returns a node passing through at most n rows of input.
func NewLimitNode(input *plan.Node, n int64) (*plan.Node, error) {
	if input == nil {
		return nil, plan.Invalidf(plan.KindLimit, "", "nil input")
	}
	if n < 0 {
		return nil, plan.Invalidf(plan.KindLimit, ParamLimit, "negative limit %d", n)
	}
	return plan.NewNode(plan.KindLimit, plan.Params{ParamLimit: types.Int(n)}, input), nil
}

// Limit passes through up to limit rows, then closes its input.
type Limit struct {
	limit   int64
	emitted int64
}

func (l *Limit) Kind() plan.Kind { return plan.KindLimit }
func (l *Limit) Clone() Instance { return &Limit{limit: l.limit} }

func (l *Limit) Execute(ctx Context) error {
	defer ctx.Close(0)
	for l.emitted < l.limit {
		b, err := ctx.Pull(0)
		if err != nil {
			return err
		}
		if b == nil {
			return nil
		}
		remaining := l.limit - l.emitted
		if int64(b.NumRows()) > remaining {
			b = b.SliceRows(0, int(remaining))
		}
		if b.NumRows() == 0 {
			continue
		}
		l.emitted += int64(b.NumRows())
		if err := ctx.Emit(b); err != nil {
			return err
		}
	}
	return nil
}

type limitContract struct{}

func (limitContract) Kind() plan.Kind { return plan.KindLimit }
func (limitContract) Name() string    { return "limit" }

func (limitContract) Attributes() Attributes {
	return Attributes{NumInputs: 1}
}

func (c limitContract) Construct(params plan.Params) (Instance, error) {
	v, ok := params[ParamLimit]
	if !ok {
		return nil, plan.Invalidf(plan.KindLimit, ParamLimit, "missing")
	}
	n, err := v.AsInt64()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, plan.Invalidf(plan.KindLimit, ParamLimit, "negative limit %d", n)
	}
	return &Limit{limit: n}, nil
}

func (c limitContract) FromPlanNode(node *plan.Node) (Instance, error) {
	n, err := limitParam(node)
	if err != nil {
		return nil, err
	}
	return &Limit{limit: n}, nil
}

func (limitContract) InferType(node *plan.Node, inputs Analysis) ([]types.DataType, error) {
	if _, err := limitParam(node); err != nil {
		return nil, err
	}
	return inputs.InferType(node.Input(0))
}

func (limitContract) InferLength(node *plan.Node, inputs Analysis) (int64, bool, error) {
	n, err := limitParam(node)
	if err != nil {
		return 0, false, err
	}
	in, ok, err := inputs.InferLength(node.Input(0))
	if err != nil || !ok {
		return 0, false, err
	}
	return min(n, in), true, nil
}

func (limitContract) Repr(node *plan.Node, tagger *plan.Tagger) (string, error) {
	n, err := limitParam(node)
	if err != nil {
		return "", err
	}
	in, err := inputRepr(node.Input(0), tagger)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Limit(%s, %d)", in, n), nil
}

func limitParam(node *plan.Node) (int64, error) {
	if err := plan.ExpectKind(node, plan.KindLimit); err != nil {
		return 0, err
	}
	if node.NumInputs() != 1 {
		return 0, plan.Invalidf(plan.KindLimit, "", "expected 1 input, got %d", node.NumInputs())
	}
	n, err := plan.Int64Param(node, ParamLimit)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, plan.Invalidf(plan.KindLimit, ParamLimit, "negative limit %d", n)
	}
	return n, nil
}
