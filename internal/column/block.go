package column

import (
	"github.com/cockroachdb/errors"

	"github.com/harshithgowdakt/lazyframe/internal/types"
)

// Block is a chunk of columnar data, all columns the same length. It is the
// unit of data movement between operators. Once a block has been emitted
// downstream its producer must not touch it again.
type Block struct {
	ColumnNames []string
	Columns     []Column

	// maxRows caps Resize; 0 means unbounded.
	maxRows int
}

// NewBlock creates a block from parallel slices of names and columns.
// names may be nil.
func NewBlock(names []string, cols []Column) *Block {
	return &Block{ColumnNames: names, Columns: cols}
}

// NewBuffer returns an empty, mutable block that can hold at most maxRows
// rows once resized.
func NewBuffer(maxRows int) *Block {
	return &Block{maxRows: maxRows}
}

// Resize allocates one column per schema entry, each holding rows
// zero-valued rows. Existing columns are dropped.
func (b *Block) Resize(schema []types.DataType, rows int) error {
	if rows < 0 {
		return errors.Mark(errors.Newf("cannot size block to %d rows", rows), ErrAllocationFailure)
	}
	if b.maxRows > 0 && rows > b.maxRows {
		return errors.Mark(
			errors.Newf("block of %d rows exceeds capacity %d", rows, b.maxRows), ErrAllocationFailure)
	}
	cols := make([]Column, len(schema))
	for i, dt := range schema {
		c, err := NewColumnWithCapacity(dt, rows)
		if err != nil {
			return errors.Wrapf(err, "column %d", i)
		}
		c.Resize(rows)
		cols[i] = c
	}
	b.Columns = cols
	b.ColumnNames = nil
	return nil
}

// NumRows returns the number of rows in the block.
func (b *Block) NumRows() int {
	if len(b.Columns) == 0 {
		return 0
	}
	return b.Columns[0].Len()
}

// NumColumns returns the number of columns.
func (b *Block) NumColumns() int {
	return len(b.Columns)
}

// ColumnTypes returns the data types of all columns.
func (b *Block) ColumnTypes() []types.DataType {
	dts := make([]types.DataType, len(b.Columns))
	for i, c := range b.Columns {
		dts[i] = c.DataType()
	}
	return dts
}

// Int64s returns the backing slice of column i, which must be Int64.
func (b *Block) Int64s(i int) ([]int64, error) {
	if i < 0 || i >= len(b.Columns) {
		return nil, errors.Newf("column %d out of range [0, %d)", i, len(b.Columns))
	}
	c, ok := b.Columns[i].(*Int64Column)
	if !ok {
		return nil, errors.Mark(
			errors.Newf("column %d is %s, not Int64", i, b.Columns[i].DataType().Name()),
			types.ErrTypeMismatch)
	}
	return c.Data, nil
}

// Validate checks that every column has the same length and that the block
// fits its capacity.
func (b *Block) Validate() error {
	n := b.NumRows()
	for i, c := range b.Columns {
		if c.Len() != n {
			return errors.AssertionFailedf("column %d has %d rows, column 0 has %d", i, c.Len(), n)
		}
	}
	if b.maxRows > 0 && n > b.maxRows {
		return errors.Mark(errors.Newf("block of %d rows exceeds capacity %d", n, b.maxRows), ErrAllocationFailure)
	}
	return nil
}

// SliceRows returns a new block with rows [from, to).
func (b *Block) SliceRows(from, to int) *Block {
	cols := make([]Column, len(b.Columns))
	for i, c := range b.Columns {
		cols[i] = c.Slice(from, to)
	}
	var names []string
	if b.ColumnNames != nil {
		names = make([]string, len(b.ColumnNames))
		copy(names, b.ColumnNames)
	}
	return NewBlock(names, cols)
}
