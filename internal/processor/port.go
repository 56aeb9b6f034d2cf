package processor

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/harshithgowdakt/lazyframe/internal/column"
	"github.com/harshithgowdakt/lazyframe/internal/operator"
)

// errPortClosed is returned by Push once the consumer has called
// SetFinished on its side.
var errPortClosed = errors.New("port closed by consumer")

// portData is shared between a connected OutputPort and InputPort. The
// buffered channel bounds how many blocks can be in flight on one edge.
type portData struct {
	blocks chan *column.Block
	// closed by the consumer when it stops reading
	done     chan struct{}
	doneOnce sync.Once
	// guards close(blocks) by the producer
	finishOnce sync.Once
}

// OutputPort is the producer side of an edge.
type OutputPort struct {
	data *portData
}

// InputPort is the consumer side of an edge.
type InputPort struct {
	data *portData
}

// Connect creates an edge that buffers up to depth blocks.
func Connect(depth int) (*OutputPort, *InputPort) {
	if depth < 1 {
		depth = 1
	}
	shared := &portData{
		blocks: make(chan *column.Block, depth),
		done:   make(chan struct{}),
	}
	return &OutputPort{data: shared}, &InputPort{data: shared}
}

// Push places a block on the edge, blocking while the buffer is full.
func (p *OutputPort) Push(ctx context.Context, b *column.Block) error {
	select {
	case <-p.data.done:
		return errPortClosed
	default:
	}
	select {
	case <-ctx.Done():
		return aborted(ctx, "emit")
	case <-p.data.done:
		return errPortClosed
	case p.data.blocks <- b:
		return nil
	}
}

// SetFinished signals that no more blocks will be pushed.
func (p *OutputPort) SetFinished() {
	p.data.finishOnce.Do(func() { close(p.data.blocks) })
}

// Pull returns the next block, or nil once the producer has finished and
// the buffer is drained.
func (p *InputPort) Pull(ctx context.Context) (*column.Block, error) {
	select {
	case <-ctx.Done():
		return nil, aborted(ctx, "pull")
	case b, ok := <-p.data.blocks:
		if !ok {
			return nil, nil
		}
		return b, nil
	}
}

// SetFinished tells the producer that this input will not be read again.
func (p *InputPort) SetFinished() {
	p.data.doneOnce.Do(func() { close(p.data.done) })
}

func aborted(ctx context.Context, op string) error {
	cause := context.Cause(ctx)
	if cause == nil {
		cause = ctx.Err()
	}
	return errors.Mark(errors.Wrapf(cause, "%s", op), operator.ErrExecutionAborted)
}
