// Package operator defines the contract every physical operator kind
// implements and the process-wide registry that maps plan kinds to those
// contracts.
//
// A Contract is stateless: it builds Instances from plan nodes and answers
// static questions (result schema, row count, textual form) about a node
// without running anything. An Instance is the stateful executor. Execute
// runs one full pass over the instance's domain, pulling upstream blocks
// and emitting output blocks through a Context, and is called exactly once
// per instance. Clone produces a fresh instance for another worker.
package operator

import (
	"github.com/cockroachdb/errors"

	"github.com/harshithgowdakt/lazyframe/internal/column"
	"github.com/harshithgowdakt/lazyframe/internal/plan"
	"github.com/harshithgowdakt/lazyframe/internal/types"
)

var (
	// ErrExecutionAborted marks errors returned when an execution was
	// cancelled or a neighbouring stage failed.
	ErrExecutionAborted = errors.New("execution aborted")

	// ErrOutputClosed is returned by Emit once every consumer has stopped
	// reading. Operators should return it unchanged; drivers treat it as a
	// normal early finish.
	ErrOutputClosed = errors.New("output closed by consumer")
)

// Attributes describes the shape of an operator kind.
type Attributes struct {
	Source    bool // no inputs; generates data
	NumInputs int
}

// Contract is the stateless descriptor of one operator kind.
type Contract interface {
	Kind() plan.Kind
	Name() string
	Attributes() Attributes

	// Construct builds an instance directly from a parameter mapping.
	Construct(params plan.Params) (Instance, error)
	// FromPlanNode validates node and builds an instance for it.
	FromPlanNode(node *plan.Node) (Instance, error)

	// InferType returns the output schema of node. Questions about
	// node's inputs go through inputs.
	InferType(node *plan.Node, inputs Analysis) ([]types.DataType, error)
	// InferLength returns the number of rows node produces. ok is false
	// when the count cannot be known without executing.
	InferLength(node *plan.Node, inputs Analysis) (n int64, ok bool, err error)
	// Repr renders node for plan explanation. Inputs are rendered through
	// tagger so shared subgraphs appear once.
	Repr(node *plan.Node, tagger *plan.Tagger) (string, error)
}

// Analysis answers static questions about plan nodes. Implementations
// memoize by node, so a subgraph shared by several consumers is analyzed
// once.
type Analysis interface {
	InferType(node *plan.Node) ([]types.DataType, error)
	InferLength(node *plan.Node) (int64, bool, error)
}

// Slicer is implemented by source contracts that can narrow a node to a
// sub-range of the rows it produces, without executing it.
type Slicer interface {
	// Slice returns a node producing rows [begin, end) of node's output.
	Slice(node *plan.Node, begin, end int64) (*plan.Node, error)
}

// Instance is a stateful executor compiled from a plan node.
type Instance interface {
	Kind() plan.Kind
	// Clone returns an independent instance with the same constructed
	// parameters and fresh progress state.
	Clone() Instance
	// Execute runs the operator to completion against ctx.
	Execute(ctx Context) error
}

// Context is everything an executing instance may use.
type Context interface {
	// BlockSize is the maximum rows per emitted block. Positive, and fixed
	// for one execution.
	BlockSize() int
	// OutputBuffer returns a fresh block with capacity BlockSize(), to be
	// sized with Resize before filling.
	OutputBuffer() *column.Block
	// Emit hands b to every downstream consumer. The caller must not use
	// b afterwards. It blocks while downstream is full.
	Emit(b *column.Block) error
	// Pull returns the next block from input i, or nil when that input is
	// exhausted.
	Pull(i int) (*column.Block, error)
	// Close tells input i that no more blocks will be pulled from it.
	Close(i int)
}
