// Package processor compiles plan graphs into pipelines of operator
// instances and drives them: one goroutine per stage, stages joined by
// bounded ports so memory stays proportional to block size and queue depth
// rather than to row count.
package processor

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/harshithgowdakt/lazyframe/internal/operator"
	"github.com/harshithgowdakt/lazyframe/internal/plan"
)

const (
	DefaultBlockSize  = 8192
	DefaultQueueDepth = 4
	DefaultMaxStages  = 4096
)

// Options configure compilation and execution.
type Options struct {
	// BlockSize is the maximum rows per block.
	BlockSize int
	// QueueDepth is the number of blocks buffered on each edge.
	QueueDepth int
	// MaxStages caps the stages one compiled plan may run.
	MaxStages int
	Logger    *zap.Logger
}

func (o Options) withDefaults() (Options, error) {
	if o.BlockSize == 0 {
		o.BlockSize = DefaultBlockSize
	}
	if o.QueueDepth == 0 {
		o.QueueDepth = DefaultQueueDepth
	}
	if o.MaxStages == 0 {
		o.MaxStages = DefaultMaxStages
	}
	if o.MaxStages < 0 {
		return o, errors.Newf("max stages must be positive, got %d", o.MaxStages)
	}
	if o.BlockSize < 0 {
		return o, errors.Newf("block size must be positive, got %d", o.BlockSize)
	}
	if o.QueueDepth < 0 {
		return o, errors.Newf("queue depth must be positive, got %d", o.QueueDepth)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o, nil
}

// Stage is one executing position in a pipeline.
type Stage struct {
	ID   int
	Node *plan.Node
	// proto is never executed; every run clones it.
	proto operator.Instance
}

// Name returns a label for logs.
func (s *Stage) Name() string { return s.Node.Kind().String() }
