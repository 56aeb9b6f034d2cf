package processor

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harshithgowdakt/lazyframe/internal/operator"
	"github.com/harshithgowdakt/lazyframe/internal/plan"
)

// Partition is one contiguous slice of a partitioned source.
type Partition struct {
	Index int
	Begin int64 // row offset into the source, inclusive
	End   int64 // exclusive
	Node  *plan.Node
}

// SplitSource cuts a sliceable source node into at most parts contiguous,
// non-empty partitions of near-equal size, in row order.
func SplitSource(node *plan.Node, parts int) ([]Partition, error) {
	if parts < 1 {
		return nil, errors.Newf("partition count must be positive, got %d", parts)
	}
	c, err := operator.Lookup(node.Kind())
	if err != nil {
		return nil, err
	}
	if !c.Attributes().Source {
		return nil, plan.Invalidf(node.Kind(), "", "only source kinds can be partitioned")
	}
	total, ok, err := operator.InferLength(node)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, plan.Invalidf(node.Kind(), "", "row count unknown; cannot partition")
	}
	if total == 0 {
		return nil, nil
	}
	if int64(parts) > total {
		parts = int(total)
	}

	out := make([]Partition, 0, parts)
	base, extra := total/int64(parts), total%int64(parts)
	var begin int64
	for i := 0; i < parts; i++ {
		size := base
		if int64(i) < extra {
			size++
		}
		sliced, err := operator.Slice(node, begin, begin+size)
		if err != nil {
			return nil, err
		}
		out = append(out, Partition{Index: i, Begin: begin, End: begin + size, Node: sliced})
		begin += size
	}
	return out, nil
}

// RunPartitioned executes a source node as parts independent instances,
// each on its own goroutine with its own context, and delivers their blocks
// to sink in row order. Later partitions run ahead only as far as their
// port buffers allow.
func RunPartitioned(ctx context.Context, node *plan.Node, parts int, opts Options, sink Sink) error {
	opts, err := opts.withDefaults()
	if err != nil {
		return err
	}
	partitions, err := SplitSource(node, parts)
	if err != nil {
		return errors.Wrap(err, "partition")
	}
	if len(partitions) == 0 {
		return nil
	}

	insts := make([]operator.Instance, len(partitions))
	for i, part := range partitions {
		if insts[i], err = operator.FromPlanNode(part.Node); err != nil {
			return err
		}
	}
	log := opts.Logger.Named("partitioned")
	log.Debug("running partitions", zap.Stringer("kind", node.Kind()), zap.Int("partitions", len(partitions)))

	eg, egCtx := errgroup.WithContext(ctx)
	ins := make([]*InputPort, len(partitions))
	for i, part := range partitions {
		inst := insts[i]
		out, in := Connect(opts.QueueDepth)
		ins[i] = in
		ec := newExecContext(egCtx, opts.BlockSize, nil, out)
		eg.Go(func() error {
			defer ec.finish()
			err := inst.Execute(ec)
			if errors.Is(err, operator.ErrOutputClosed) {
				return nil
			}
			if err != nil {
				return errors.Wrapf(err, "partition %d [%d:%d]", part.Index, part.Begin, part.End)
			}
			log.Debug("partition finished", zap.Int("partition", part.Index), zap.Int64("rows", ec.rows))
			return nil
		})
	}

	eg.Go(func() error {
		defer func() {
			for _, in := range ins {
				in.SetFinished()
			}
		}()
		for _, in := range ins {
			for {
				b, err := in.Pull(egCtx)
				if err != nil {
					return err
				}
				if b == nil {
					break
				}
				if err := sink(b); err != nil {
					return errors.Wrap(err, "sink")
				}
			}
		}
		return nil
	})

	return eg.Wait()
}
