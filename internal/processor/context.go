package processor

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/harshithgowdakt/lazyframe/internal/column"
	"github.com/harshithgowdakt/lazyframe/internal/operator"
)

// execContext is the operator.Context handed to one executing instance.
// It is used by a single goroutine and needs no locking.
type execContext struct {
	ctx       context.Context
	blockSize int
	inputs    []*InputPort
	output    *OutputPort

	rows   int64
	blocks int64
}

var _ operator.Context = (*execContext)(nil)

func newExecContext(ctx context.Context, blockSize int, inputs []*InputPort, output *OutputPort) *execContext {
	return &execContext{ctx: ctx, blockSize: blockSize, inputs: inputs, output: output}
}

func (c *execContext) BlockSize() int { return c.blockSize }

func (c *execContext) OutputBuffer() *column.Block { return column.NewBuffer(c.blockSize) }

func (c *execContext) Emit(b *column.Block) error {
	if err := c.ctx.Err(); err != nil {
		return aborted(c.ctx, "emit")
	}
	if b == nil {
		return errors.AssertionFailedf("emit of nil block")
	}
	if err := b.Validate(); err != nil {
		return errors.Wrap(err, "emit")
	}
	if n := b.NumRows(); n > c.blockSize {
		return errors.Mark(
			errors.Newf("emitted block of %d rows exceeds block size %d", n, c.blockSize),
			column.ErrAllocationFailure)
	}
	err := c.output.Push(c.ctx, b)
	if errors.Is(err, errPortClosed) {
		return operator.ErrOutputClosed
	}
	if err != nil {
		return err
	}
	c.rows += int64(b.NumRows())
	c.blocks++
	return nil
}

func (c *execContext) Pull(i int) (*column.Block, error) {
	if i < 0 || i >= len(c.inputs) {
		return nil, errors.AssertionFailedf("pull from input %d of %d", i, len(c.inputs))
	}
	return c.inputs[i].Pull(c.ctx)
}

func (c *execContext) Close(i int) {
	if i >= 0 && i < len(c.inputs) {
		c.inputs[i].SetFinished()
	}
}

// finish releases both sides after Execute returns.
func (c *execContext) finish() {
	c.output.SetFinished()
	for _, in := range c.inputs {
		in.SetFinished()
	}
}
