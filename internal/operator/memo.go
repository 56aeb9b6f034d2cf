package operator

import (
	"github.com/harshithgowdakt/lazyframe/internal/plan"
	"github.com/harshithgowdakt/lazyframe/internal/types"
)

type typeResult struct {
	schema []types.DataType
	err    error
}

type lengthResult struct {
	n   int64
	ok  bool
	err error
}

// Memo is a single-goroutine Analysis. Each node is analyzed at most once
// per Memo, however many consumers reference it.
type Memo struct {
	types   map[*plan.Node]typeResult
	lengths map[*plan.Node]lengthResult
}

var _ Analysis = (*Memo)(nil)

func NewMemo() *Memo {
	return &Memo{
		types:   make(map[*plan.Node]typeResult),
		lengths: make(map[*plan.Node]lengthResult),
	}
}

func (m *Memo) InferType(node *plan.Node) ([]types.DataType, error) {
	r, ok := m.types[node]
	if !ok {
		r.schema, r.err = InferTypeWith(node, m)
		m.types[node] = r
	}
	return r.schema, r.err
}

func (m *Memo) InferLength(node *plan.Node) (int64, bool, error) {
	r, ok := m.lengths[node]
	if !ok {
		r.n, r.ok, r.err = InferLengthWith(node, m)
		m.lengths[node] = r
	}
	return r.n, r.ok, r.err
}

