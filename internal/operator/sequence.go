package operator

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/harshithgowdakt/lazyframe/internal/column"
	"github.com/harshithgowdakt/lazyframe/internal/plan"
	"github.com/harshithgowdakt/lazyframe/internal/types"
)

// Sequence node parameters. The node stores the logical range as a base
// value plus a [begin_index, end_index) slice of it, so a node can be
// narrowed (limit pushdown, partitioning) without rederiving its start.
const (
	ParamStart      = "start"
	ParamBeginIndex = "begin_index"
	ParamEndIndex   = "end_index"
)

var sequenceSchema = []types.DataType{types.TypeInt64}

func init() { register(sequenceContract{}) }

// NewSequenceNode returns a plan node generating start, start+1, ..., end-1.
func NewSequenceNode(start, end int64) (*plan.Node, error) {
	if start > end {
		return nil, plan.Invalidf(plan.KindSequence, ParamStart, "start %d is greater than end %d", start, end)
	}
	if start < 0 && end > math.MaxInt64+start {
		return nil, plan.Invalidf(plan.KindSequence, ParamStart, "range [%d, %d) is too long", start, end)
	}
	return plan.NewNode(plan.KindSequence, plan.Params{
		ParamStart:      types.Int(start),
		ParamBeginIndex: types.Int(0),
		ParamEndIndex:   types.Int(end - start),
	}), nil
}

// Sequence generates a contiguous integer range in blocks.
type Sequence struct {
	start  int64 // first value, restored by Clone
	cursor int64 // next value to emit
	bound  int64 // exclusive
}

// NewSequence returns an instance generating [start, end).
func NewSequence(start, end int64) (*Sequence, error) {
	if start > end {
		return nil, plan.Invalidf(plan.KindSequence, ParamStart, "start %d is greater than end %d", start, end)
	}
	if start < 0 && end > math.MaxInt64+start {
		return nil, plan.Invalidf(plan.KindSequence, ParamStart, "range [%d, %d) is too long", start, end)
	}
	return &Sequence{start: start, cursor: start, bound: end}, nil
}

func (s *Sequence) Kind() plan.Kind { return plan.KindSequence }

func (s *Sequence) Clone() Instance {
	return &Sequence{start: s.start, cursor: s.start, bound: s.bound}
}

func (s *Sequence) Execute(ctx Context) error {
	size := int64(ctx.BlockSize())
	if size <= 0 {
		return errors.Mark(errors.Newf("sequence: block size %d", size), column.ErrAllocationFailure)
	}
	for {
		remaining := s.bound - s.cursor
		if remaining <= 0 {
			return nil
		}
		n := min(remaining, size)

		buf := ctx.OutputBuffer()
		if err := buf.Resize(sequenceSchema, int(n)); err != nil {
			return errors.Wrap(err, "sequence")
		}
		data, err := buf.Int64s(0)
		if err != nil {
			return errors.Wrap(err, "sequence")
		}
		for i := range data {
			data[i] = s.cursor
			s.cursor++
		}
		if err := ctx.Emit(buf); err != nil {
			return err
		}
	}
}

type sequenceContract struct{}

func (sequenceContract) Kind() plan.Kind { return plan.KindSequence }
func (sequenceContract) Name() string    { return "sequence" }

func (sequenceContract) Attributes() Attributes {
	return Attributes{Source: true, NumInputs: 0}
}

func (c sequenceContract) Construct(params plan.Params) (Instance, error) {
	return c.FromPlanNode(plan.NewNode(plan.KindSequence, params))
}

func (sequenceContract) FromPlanNode(node *plan.Node) (Instance, error) {
	start, begin, end, err := sequenceParams(node)
	if err != nil {
		return nil, err
	}
	return NewSequence(start+begin, start+end)
}

func (sequenceContract) InferType(node *plan.Node, _ Analysis) ([]types.DataType, error) {
	if err := plan.ExpectKind(node, plan.KindSequence); err != nil {
		return nil, err
	}
	return []types.DataType{types.TypeInt64}, nil
}

func (sequenceContract) InferLength(node *plan.Node, _ Analysis) (int64, bool, error) {
	_, begin, end, err := sequenceParams(node)
	if err != nil {
		return 0, false, err
	}
	return end - begin, true, nil
}

func (sequenceContract) Repr(node *plan.Node, _ *plan.Tagger) (string, error) {
	start, begin, end, err := sequenceParams(node)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Sequence(%d)[%d:%d]", start, begin, end), nil
}

func (sequenceContract) Slice(node *plan.Node, begin, end int64) (*plan.Node, error) {
	_, b0, e0, err := sequenceParams(node)
	if err != nil {
		return nil, err
	}
	if begin < 0 || begin > end || end > e0-b0 {
		return nil, plan.Invalidf(plan.KindSequence, ParamBeginIndex,
			"slice [%d:%d] outside [0:%d]", begin, end, e0-b0)
	}
	return node.WithParams(plan.Params{
		ParamBeginIndex: types.Int(b0 + begin),
		ParamEndIndex:   types.Int(b0 + end),
	}), nil
}

// sequenceParams validates a sequence node and returns its start and slice.
func sequenceParams(node *plan.Node) (start, begin, end int64, err error) {
	if err = plan.ExpectKind(node, plan.KindSequence); err != nil {
		return 0, 0, 0, err
	}
	if start, err = plan.Int64Param(node, ParamStart); err != nil {
		return 0, 0, 0, err
	}
	if begin, err = plan.Int64Param(node, ParamBeginIndex); err != nil {
		return 0, 0, 0, err
	}
	if end, err = plan.Int64Param(node, ParamEndIndex); err != nil {
		return 0, 0, 0, err
	}
	if begin < 0 {
		return 0, 0, 0, plan.Invalidf(plan.KindSequence, ParamBeginIndex, "negative index %d", begin)
	}
	if begin > end {
		return 0, 0, 0, plan.Invalidf(plan.KindSequence, ParamEndIndex,
			"end_index %d is less than begin_index %d", end, begin)
	}
	if start > 0 && end > math.MaxInt64-start {
		return 0, 0, 0, plan.Invalidf(plan.KindSequence, ParamEndIndex,
			"start %d + end_index %d overflows", start, end)
	}
	return start, begin, end, nil
}
