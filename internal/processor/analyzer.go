package processor

import (
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/harshithgowdakt/lazyframe/internal/operator"
	"github.com/harshithgowdakt/lazyframe/internal/plan"
	"github.com/harshithgowdakt/lazyframe/internal/types"
)

type analysis struct {
	schema    []types.DataType
	schemaErr error

	length      int64
	lengthKnown bool
	lengthErr   error
}

// Analyzer memoizes static analysis per plan node. Shared subgraphs are
// analyzed once. Safe for concurrent use.
type Analyzer struct {
	cache *xsync.MapOf[*plan.Node, *analysis]
}

var _ operator.Analysis = (*Analyzer)(nil)

func NewAnalyzer() *Analyzer {
	return &Analyzer{cache: xsync.NewMapOf[*plan.Node, *analysis]()}
}

// get analyzes n's inputs before n itself, so the contract's questions
// about its inputs are answered from the cache. The compute step runs
// outside the map's locks; two goroutines racing on one node both compute
// and the first store wins.
func (a *Analyzer) get(n *plan.Node) *analysis {
	if v, ok := a.cache.Load(n); ok {
		return v
	}
	if n != nil {
		for _, in := range n.Inputs() {
			a.get(in)
		}
	}
	r := &analysis{}
	r.schema, r.schemaErr = operator.InferTypeWith(n, a)
	r.length, r.lengthKnown, r.lengthErr = operator.InferLengthWith(n, a)
	v, _ := a.cache.LoadOrStore(n, r)
	return v
}

// InferType returns n's output column types.
func (a *Analyzer) InferType(n *plan.Node) ([]types.DataType, error) {
	r := a.get(n)
	if r.schemaErr != nil {
		return nil, r.schemaErr
	}
	out := make([]types.DataType, len(r.schema))
	copy(out, r.schema)
	return out, nil
}

// InferLength returns n's row count if it is statically known.
func (a *Analyzer) InferLength(n *plan.Node) (int64, bool, error) {
	r := a.get(n)
	return r.length, r.lengthKnown, r.lengthErr
}

// Len reports how many nodes have been analyzed.
func (a *Analyzer) Len() int { return a.cache.Size() }
