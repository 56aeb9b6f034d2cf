package operator

import (
	"github.com/harshithgowdakt/lazyframe/internal/column"
)

// fakeContext records emitted blocks and serves canned input blocks.
type fakeContext struct {
	blockSize int
	inputs    [][]*column.Block
	closed    map[int]bool

	emitted []*column.Block
	// emitErr is returned by the Emit call after failAfter successful emits.
	emitErr   error
	failAfter int
}

func newFakeContext(blockSize int, inputs ...[]*column.Block) *fakeContext {
	return &fakeContext{blockSize: blockSize, inputs: inputs, closed: make(map[int]bool)}
}

func (c *fakeContext) BlockSize() int { return c.blockSize }

func (c *fakeContext) OutputBuffer() *column.Block { return column.NewBuffer(c.blockSize) }

func (c *fakeContext) Emit(b *column.Block) error {
	if c.emitErr != nil && len(c.emitted) >= c.failAfter {
		return c.emitErr
	}
	c.emitted = append(c.emitted, b)
	return nil
}

func (c *fakeContext) Pull(i int) (*column.Block, error) {
	if c.closed[i] || len(c.inputs[i]) == 0 {
		return nil, nil
	}
	b := c.inputs[i][0]
	c.inputs[i] = c.inputs[i][1:]
	return b, nil
}

func (c *fakeContext) Close(i int) { c.closed[i] = true }

func (c *fakeContext) values() []int64 {
	var out []int64
	for _, b := range c.emitted {
		out = append(out, b.Columns[0].(*column.Int64Column).Data...)
	}
	return out
}

func int64Block(vals ...int64) *column.Block {
	d := make([]int64, len(vals))
	copy(d, vals)
	return column.NewBlock(nil, []column.Column{&column.Int64Column{Data: d}})
}

func seqValues(start, end int64) []int64 {
	var out []int64
	for v := start; v < end; v++ {
		out = append(out, v)
	}
	return out
}
