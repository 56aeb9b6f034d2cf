package processor

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harshithgowdakt/lazyframe/internal/column"
	"github.com/harshithgowdakt/lazyframe/internal/operator"
)

// Sink receives the pipeline's output blocks in order. Returning an error
// aborts the run.
type Sink func(b *column.Block) error

// Run executes the pipeline to completion, delivering every output block to
// sink. The first failing stage cancels every other stage.
func (p *Pipeline) Run(ctx context.Context, sink Sink) error {
	g := p.Graph
	n := len(g.Stages)
	if n == 0 {
		return nil
	}

	outputs := make([]*OutputPort, n)
	inputs := make([][]*InputPort, n)
	for i := range g.Stages {
		inputs[i] = make([]*InputPort, len(g.Upstream(i)))
	}
	for _, e := range g.Edges {
		out, in := Connect(p.opts.QueueDepth)
		outputs[e.From] = out
		inputs[e.To][e.InputIdx] = in
	}
	rootOut, sinkIn := Connect(p.opts.QueueDepth)
	outputs[g.Root()] = rootOut

	eg, egCtx := errgroup.WithContext(ctx)
	for i, st := range g.Stages {
		inst := st.proto.Clone()
		ec := newExecContext(egCtx, p.opts.BlockSize, inputs[i], outputs[i])
		eg.Go(func() error {
			return p.runStage(st, inst, ec)
		})
	}

	eg.Go(func() error {
		defer sinkIn.SetFinished()
		for {
			b, err := sinkIn.Pull(egCtx)
			if err != nil {
				return err
			}
			if b == nil {
				return nil
			}
			if err := sink(b); err != nil {
				return errors.Wrap(err, "sink")
			}
		}
	})

	return eg.Wait()
}

func (p *Pipeline) runStage(st *Stage, inst operator.Instance, ec *execContext) error {
	defer ec.finish()
	log := p.log.With(zap.Int("stage", st.ID), zap.Stringer("kind", st.Node.Kind()))
	log.Debug("stage started")

	err := inst.Execute(ec)
	if errors.Is(err, operator.ErrOutputClosed) {
		log.Debug("stage stopped early", zap.Int64("rows", ec.rows), zap.Int64("blocks", ec.blocks))
		return nil
	}
	if err != nil {
		if errors.Is(err, operator.ErrExecutionAborted) {
			log.Debug("stage aborted", zap.Error(err))
		} else {
			log.Warn("stage failed", zap.Error(err))
		}
		return errors.Wrapf(err, "stage %d (%s)", st.ID, st.Name())
	}
	log.Debug("stage finished", zap.Int64("rows", ec.rows), zap.Int64("blocks", ec.blocks))
	return nil
}

// Collect runs the pipeline and returns every output block.
func (p *Pipeline) Collect(ctx context.Context) ([]*column.Block, error) {
	out := NewOutput()
	if err := p.Run(ctx, out.Consume); err != nil {
		return nil, err
	}
	return out.ResultBlocks(), nil
}
