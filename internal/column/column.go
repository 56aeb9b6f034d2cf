package column

import (
	"github.com/cockroachdb/errors"

	"github.com/harshithgowdakt/lazyframe/internal/types"
)

// ErrAllocationFailure marks errors where a block or column could not be
// sized as requested.
var ErrAllocationFailure = errors.New("allocation failure")

// Column is an in-memory columnar array of a single type.
type Column interface {
	DataType() types.DataType
	Len() int
	Value(i int) types.Scalar
	// Resize sets the length to n, zero-filling new rows.
	Resize(n int)
	// Slice returns a copy of rows [from, to).
	Slice(from, to int) Column
}

// NewColumnWithCapacity creates a column pre-allocated for n rows.
func NewColumnWithCapacity(dt types.DataType, n int) (Column, error) {
	if n < 0 {
		return nil, errors.Mark(errors.Newf("negative column capacity %d", n), ErrAllocationFailure)
	}
	switch dt {
	case types.TypeInt64:
		return &Int64Column{Data: make([]int64, 0, n)}, nil
	case types.TypeFloat64:
		return &Float64Column{Data: make([]float64, 0, n)}, nil
	case types.TypeString:
		return &StringColumn{Data: make([]string, 0, n)}, nil
	case types.TypeUndefined:
		return nil, errors.Mark(errors.New("cannot allocate a column of type Undefined"), ErrAllocationFailure)
	default:
		return nil, errors.Mark(errors.Newf("unsupported data type %d", dt), ErrAllocationFailure)
	}
}

func resizeSlice[T any](data []T, n int) []T {
	if n <= cap(data) {
		old := len(data)
		data = data[:n]
		var zero T
		for i := old; i < n; i++ {
			data[i] = zero
		}
		return data
	}
	d := make([]T, n)
	copy(d, data)
	return d
}

func cloneSlice[T any](data []T) []T {
	d := make([]T, len(data))
	copy(d, data)
	return d
}

// --- Int64Column ---

type Int64Column struct{ Data []int64 }

func (c *Int64Column) DataType() types.DataType { return types.TypeInt64 }
func (c *Int64Column) Len() int                 { return len(c.Data) }
func (c *Int64Column) Value(i int) types.Scalar { return types.Int(c.Data[i]) }
func (c *Int64Column) Resize(n int)             { c.Data = resizeSlice(c.Data, n) }
func (c *Int64Column) Slice(from, to int) Column {
	return &Int64Column{Data: cloneSlice(c.Data[from:to])}
}

// --- Float64Column ---

type Float64Column struct{ Data []float64 }

func (c *Float64Column) DataType() types.DataType { return types.TypeFloat64 }
func (c *Float64Column) Len() int                 { return len(c.Data) }
func (c *Float64Column) Value(i int) types.Scalar { return types.Float(c.Data[i]) }
func (c *Float64Column) Resize(n int)             { c.Data = resizeSlice(c.Data, n) }
func (c *Float64Column) Slice(from, to int) Column {
	return &Float64Column{Data: cloneSlice(c.Data[from:to])}
}

// --- StringColumn ---

type StringColumn struct{ Data []string }

func (c *StringColumn) DataType() types.DataType { return types.TypeString }
func (c *StringColumn) Len() int                 { return len(c.Data) }
func (c *StringColumn) Value(i int) types.Scalar { return types.String(c.Data[i]) }
func (c *StringColumn) Resize(n int)             { c.Data = resizeSlice(c.Data, n) }
func (c *StringColumn) Slice(from, to int) Column {
	return &StringColumn{Data: cloneSlice(c.Data[from:to])}
}
