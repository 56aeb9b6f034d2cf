package processor

import "github.com/harshithgowdakt/lazyframe/internal/column"

// Output is a terminal sink that collects every block it is given.
type Output struct {
	Blocks []*column.Block
	rows   int64
}

// NewOutput creates an output sink.
func NewOutput() *Output {
	return &Output{}
}

// Consume is a Sink.
func (o *Output) Consume(b *column.Block) error {
	o.Blocks = append(o.Blocks, b)
	o.rows += int64(b.NumRows())
	return nil
}

// NumRows returns the total rows collected.
func (o *Output) NumRows() int64 { return o.rows }

// ResultBlocks returns the collected non-empty blocks.
func (o *Output) ResultBlocks() []*column.Block {
	blocks := make([]*column.Block, 0, len(o.Blocks))
	for _, b := range o.Blocks {
		if b != nil && b.NumRows() > 0 {
			blocks = append(blocks, b)
		}
	}
	return blocks
}
