package operator

import (
	"fmt"
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshithgowdakt/lazyframe/internal/column"
	"github.com/harshithgowdakt/lazyframe/internal/plan"
	"github.com/harshithgowdakt/lazyframe/internal/types"
)

func runNode(t *testing.T, node *plan.Node, blockSize int) *fakeContext {
	t.Helper()
	inst, err := FromPlanNode(node)
	require.NoError(t, err)
	ctx := newFakeContext(blockSize)
	require.NoError(t, inst.Execute(ctx))
	return ctx
}

func TestSequenceBlocks(t *testing.T) {
	node, err := NewSequenceNode(0, 10)
	require.NoError(t, err)

	ctx := runNode(t, node, 4)
	require.Len(t, ctx.emitted, 3)
	assert.Equal(t, []int64{0, 1, 2, 3}, ctx.emitted[0].Columns[0].(*column.Int64Column).Data)
	assert.Equal(t, []int64{4, 5, 6, 7}, ctx.emitted[1].Columns[0].(*column.Int64Column).Data)
	assert.Equal(t, []int64{8, 9}, ctx.emitted[2].Columns[0].(*column.Int64Column).Data)
}

func TestSequenceProperties(t *testing.T) {
	cases := []struct{ start, end int64 }{
		{0, 0}, {0, 1}, {-5, 5}, {100, 1000}, {-3, -1}, {7, 7}, {math.MaxInt64 - 3, math.MaxInt64},
	}
	for _, c := range cases {
		for _, bs := range []int{1, 3, 4, 64, 1000} {
			t.Run(fmt.Sprintf("%d_%d_b%d", c.start, c.end, bs), func(t *testing.T) {
				node, err := NewSequenceNode(c.start, c.end)
				require.NoError(t, err)

				ctx := runNode(t, node, bs)
				var total int64
				for _, b := range ctx.emitted {
					require.NoError(t, b.Validate())
					assert.LessOrEqual(t, b.NumRows(), bs)
					assert.Positive(t, b.NumRows())
					total += int64(b.NumRows())
				}
				assert.Equal(t, seqValues(c.start, c.end), ctx.values())

				n, ok, err := InferLength(node)
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, c.end-c.start, n)
				assert.Equal(t, n, total)
			})
		}
	}
}

func TestSequenceDegenerate(t *testing.T) {
	node, err := NewSequenceNode(42, 42)
	require.NoError(t, err)
	ctx := runNode(t, node, 8)
	assert.Empty(t, ctx.emitted)

	n, ok, err := InferLength(node)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, n)
}

func TestSequenceRejectsReversedRange(t *testing.T) {
	node, err := NewSequenceNode(5, 4)
	require.Error(t, err)
	assert.Nil(t, node)
	assert.True(t, errors.Is(err, plan.ErrInvalidPlan))

	inst, err := NewSequence(5, 4)
	assert.Nil(t, inst)
	assert.True(t, errors.Is(err, plan.ErrInvalidPlan))

	_, err = NewSequenceNode(math.MinInt64, math.MaxInt64)
	assert.True(t, errors.Is(err, plan.ErrInvalidPlan))
}

func TestSequenceInferTypeIgnoresParams(t *testing.T) {
	for _, r := range [][2]int64{{0, 0}, {-100, 3}, {1 << 40, 1<<40 + 5}} {
		node, err := NewSequenceNode(r[0], r[1])
		require.NoError(t, err)
		dts, err := InferType(node)
		require.NoError(t, err)
		assert.Equal(t, []types.DataType{types.TypeInt64}, dts)
	}
}

func TestSequenceRoundTrip(t *testing.T) {
	node, err := NewSequenceNode(-7, 13)
	require.NoError(t, err)
	fromNode := runNode(t, node, 5)

	direct, err := NewSequence(-7, 13)
	require.NoError(t, err)
	ctx := newFakeContext(5)
	require.NoError(t, direct.Execute(ctx))

	assert.Equal(t, ctx.values(), fromNode.values())
	assert.Equal(t, len(ctx.emitted), len(fromNode.emitted))
}

func TestSequenceNarrowedSlice(t *testing.T) {
	node, err := NewSequenceNode(10, 20)
	require.NoError(t, err)
	narrowed := node.WithParams(plan.Params{
		ParamBeginIndex: types.Int(2),
		ParamEndIndex:   types.Int(5),
	})

	ctx := runNode(t, narrowed, 4)
	assert.Equal(t, []int64{12, 13, 14}, ctx.values())

	n, _, err := InferLength(narrowed)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	s, err := Repr(narrowed, nil)
	require.NoError(t, err)
	assert.Equal(t, "Sequence(10)[2:5]", s)
}

func TestSequenceSlice(t *testing.T) {
	node, err := NewSequenceNode(100, 110)
	require.NoError(t, err)

	first, err := Slice(node, 2, 8)
	require.NoError(t, err)
	second, err := Slice(first, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{103, 104}, runNode(t, second, 16).values())

	_, err = Slice(first, 0, 7)
	assert.True(t, errors.Is(err, plan.ErrInvalidPlan))
	_, err = Slice(first, 3, 2)
	assert.True(t, errors.Is(err, plan.ErrInvalidPlan))
}

func TestSequenceFromPlanNodeValidation(t *testing.T) {
	base := plan.Params{
		ParamStart:      types.Int(0),
		ParamBeginIndex: types.Int(0),
		ParamEndIndex:   types.Int(3),
	}
	for _, missing := range []string{ParamStart, ParamBeginIndex, ParamEndIndex} {
		p := base.Clone()
		delete(p, missing)
		_, err := FromPlanNode(plan.NewNode(plan.KindSequence, p))
		require.Error(t, err, missing)
		var ipe *plan.InvalidPlanError
		require.True(t, errors.As(err, &ipe))
		assert.Equal(t, plan.KindSequence, ipe.Kind)
		assert.Equal(t, missing, ipe.Param)
	}

	p := base.Clone()
	p[ParamStart] = types.String("zero")
	_, err := FromPlanNode(plan.NewNode(plan.KindSequence, p))
	assert.True(t, errors.Is(err, types.ErrTypeMismatch))

	p = base.Clone()
	p[ParamBeginIndex] = types.Int(4)
	_, err = FromPlanNode(plan.NewNode(plan.KindSequence, p))
	assert.True(t, errors.Is(err, plan.ErrInvalidPlan))

	c, err := Lookup(plan.KindSequence)
	require.NoError(t, err)
	limitNode := plan.NewNode(plan.KindLimit, plan.Params{ParamLimit: types.Int(1)})
	_, err = c.FromPlanNode(limitNode)
	assert.True(t, errors.Is(err, plan.ErrInvalidPlan))

	inst, err := c.Construct(base)
	require.NoError(t, err)
	ctx := newFakeContext(2)
	require.NoError(t, inst.Execute(ctx))
	assert.Equal(t, []int64{0, 1, 2}, ctx.values())
}

func TestSequenceCloneIsIndependent(t *testing.T) {
	seq, err := NewSequence(0, 5)
	require.NoError(t, err)
	clone := seq.Clone()

	require.NoError(t, seq.Execute(newFakeContext(2)))

	ctx := newFakeContext(2)
	require.NoError(t, clone.Execute(ctx))
	assert.Equal(t, []int64{0, 1, 2, 3, 4}, ctx.values())

	again := newFakeContext(2)
	require.NoError(t, seq.Execute(again))
	assert.Empty(t, again.emitted, "execute is not resumable")
}

func TestSequenceStopsOnEmitError(t *testing.T) {
	seq, err := NewSequence(0, 100)
	require.NoError(t, err)
	ctx := newFakeContext(10)
	ctx.emitErr = errors.Mark(errors.New("cancelled"), ErrExecutionAborted)
	ctx.failAfter = 2

	err = seq.Execute(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExecutionAborted))
	assert.Len(t, ctx.emitted, 2)
}

func TestSequenceRejectsBadBlockSize(t *testing.T) {
	seq, err := NewSequence(0, 3)
	require.NoError(t, err)
	err = seq.Execute(newFakeContext(0))
	assert.True(t, errors.Is(err, column.ErrAllocationFailure))
}

func BenchmarkSequenceExecute(b *testing.B) {
	seq, err := NewSequence(0, 1<<20)
	require.NoError(b, err)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ctx := newFakeContext(8192)
		if err := seq.Clone().Execute(ctx); err != nil {
			b.Fatal(err)
		}
	}
}
