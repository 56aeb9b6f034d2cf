package processor_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshithgowdakt/lazyframe/internal/column"
	"github.com/harshithgowdakt/lazyframe/internal/operator"
	"github.com/harshithgowdakt/lazyframe/internal/plan"
	"github.com/harshithgowdakt/lazyframe/internal/processor"
	"github.com/harshithgowdakt/lazyframe/internal/types"
)

func mustSeq(t testing.TB, start, end int64) *plan.Node {
	t.Helper()
	n, err := operator.NewSequenceNode(start, end)
	require.NoError(t, err)
	return n
}

func values(t testing.TB, blocks []*column.Block) []int64 {
	t.Helper()
	var out []int64
	for _, b := range blocks {
		data, err := b.Int64s(0)
		require.NoError(t, err)
		out = append(out, data...)
	}
	return out
}

func rangeOf(start, end int64) []int64 {
	var out []int64
	for v := start; v < end; v++ {
		out = append(out, v)
	}
	return out
}

func TestPipelineSequence(t *testing.T) {
	p, err := processor.Compile(mustSeq(t, 0, 10), processor.Options{BlockSize: 4})
	require.NoError(t, err)
	assert.Equal(t, []types.DataType{types.TypeInt64}, p.Schema)
	assert.True(t, p.LengthKnown)
	assert.Equal(t, int64(10), p.Length)

	blocks, err := p.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	assert.Equal(t, []int64{0, 1, 2, 3}, values(t, blocks[:1]))
	assert.Equal(t, []int64{4, 5, 6, 7}, values(t, blocks[1:2]))
	assert.Equal(t, []int64{8, 9}, values(t, blocks[2:]))
}

func TestPipelineRowAccounting(t *testing.T) {
	for _, bs := range []int{1, 7, 8192} {
		node := mustSeq(t, -50, 333)
		p, err := processor.Compile(node, processor.Options{BlockSize: bs, QueueDepth: 2})
		require.NoError(t, err)

		out := processor.NewOutput()
		require.NoError(t, p.Run(context.Background(), out.Consume))
		assert.Equal(t, p.Length, out.NumRows())
		for _, b := range out.ResultBlocks() {
			assert.LessOrEqual(t, b.NumRows(), bs)
		}
		assert.Equal(t, rangeOf(-50, 333), values(t, out.ResultBlocks()))
	}
}

func TestPipelineAppendLimitSharedSubgraph(t *testing.T) {
	leaf := mustSeq(t, 0, 10)
	lim, err := operator.NewLimitNode(leaf, 3)
	require.NoError(t, err)
	root, err := operator.NewAppendNode(leaf, lim)
	require.NoError(t, err)

	p, err := processor.Compile(root, processor.Options{BlockSize: 4, QueueDepth: 1})
	require.NoError(t, err)
	assert.Len(t, p.Graph.Stages, 4, "shared leaf gets one stage per consumer")
	assert.Equal(t, int64(13), p.Length)

	want := append(rangeOf(0, 10), 0, 1, 2)
	for run := 0; run < 2; run++ {
		blocks, err := p.Collect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, values(t, blocks))
	}
}

func TestPipelineSelfAppend(t *testing.T) {
	leaf := mustSeq(t, 0, 100)
	root, err := operator.NewAppendNode(leaf, leaf)
	require.NoError(t, err)
	p, err := processor.Compile(root, processor.Options{BlockSize: 3, QueueDepth: 1})
	require.NoError(t, err)

	blocks, err := p.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, append(rangeOf(0, 100), rangeOf(0, 100)...), values(t, blocks))
}

func TestLimitStopsUpstreamEarly(t *testing.T) {
	huge := mustSeq(t, 0, math.MaxInt64)
	lim, err := operator.NewLimitNode(huge, 5)
	require.NoError(t, err)
	p, err := processor.Compile(lim, processor.Options{BlockSize: 2})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	blocks, err := p.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2, 3, 4}, values(t, blocks))
}

func TestRunCancellation(t *testing.T) {
	p, err := processor.Compile(mustSeq(t, 0, math.MaxInt64), processor.Options{BlockSize: 16})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	seen := 0
	err = p.Run(ctx, func(b *column.Block) error {
		seen++
		if seen == 3 {
			cancel()
		}
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, operator.ErrExecutionAborted))
	assert.GreaterOrEqual(t, seen, 3)
}

func TestRunSinkError(t *testing.T) {
	boom := errors.New("boom")
	p, err := processor.Compile(mustSeq(t, 0, 1000), processor.Options{BlockSize: 10})
	require.NoError(t, err)
	err = p.Run(context.Background(), func(*column.Block) error { return boom })
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestCompileRejectsInvalidPlan(t *testing.T) {
	bad := plan.NewNode(plan.KindSequence, plan.Params{operator.ParamStart: types.Int(0)})
	_, err := processor.Compile(bad, processor.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, plan.ErrInvalidPlan))

	_, err = processor.Compile(nil, processor.Options{})
	assert.True(t, errors.Is(err, plan.ErrInvalidPlan))

	_, err = processor.Compile(mustSeq(t, 0, 1), processor.Options{BlockSize: -1})
	assert.Error(t, err)
}

func TestAnalyzerMemoizesSharedNodes(t *testing.T) {
	leaf := mustSeq(t, 0, 10)
	root, err := operator.NewAppendNode(leaf, leaf)
	require.NoError(t, err)

	a := processor.NewAnalyzer()
	_, err = processor.CompileWith(root, processor.Options{}, a)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Len())

	n, ok, err := a.InferLength(root)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(20), n)
}

func nestedSelfAppend(t testing.TB, leaf *plan.Node, depth int) *plan.Node {
	t.Helper()
	n := leaf
	for i := 0; i < depth; i++ {
		var err error
		n, err = operator.NewAppendNode(n, n)
		require.NoError(t, err)
	}
	return n
}

func TestCompileDeeplySharedPlan(t *testing.T) {
	root := nestedSelfAppend(t, mustSeq(t, 0, 10), 16)

	a := processor.NewAnalyzer()
	n, ok, err := a.InferLength(root)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(10<<16), n)
	assert.Equal(t, 17, a.Len())

	_, err = processor.CompileWith(root, processor.Options{}, a)
	require.Error(t, err)
	assert.True(t, errors.Is(err, plan.ErrInvalidPlan))

	_, err = processor.Compile(root, processor.Options{MaxStages: 1 << 17})
	require.NoError(t, err)
}

func TestCompileSharedPlanWithinBudget(t *testing.T) {
	root := nestedSelfAppend(t, mustSeq(t, 0, 3), 4)
	p, err := processor.Compile(root, processor.Options{BlockSize: 2, QueueDepth: 1, MaxStages: 31})
	require.NoError(t, err)
	assert.Len(t, p.Graph.Stages, 31)

	blocks, err := p.Collect(context.Background())
	require.NoError(t, err)
	var want []int64
	for i := 0; i < 16; i++ {
		want = append(want, 0, 1, 2)
	}
	assert.Equal(t, want, values(t, blocks))
}
