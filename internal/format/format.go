// Package format renders result blocks as text.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/harshithgowdakt/lazyframe/internal/column"
	"github.com/harshithgowdakt/lazyframe/internal/types"
)

// Format selects the output encoding.
type Format string

const (
	TabSeparated Format = "TabSeparated"
	JSON         Format = "JSON"
	CSV          Format = "CSV"
)

// Parse resolves a format name (case-insensitive).
func Parse(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "tsv", "tabseparated", "":
		return TabSeparated, nil
	default:
		return "", errors.Newf("unknown output format %q", s)
	}
}

// ColumnNames returns names for n columns, taking them from the first named
// block or falling back to c0, c1, ...
func ColumnNames(blocks []*column.Block, n int) []string {
	for _, b := range blocks {
		if len(b.ColumnNames) == n {
			return b.ColumnNames
		}
	}
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("c%d", i)
	}
	return names
}

// Writer streams blocks in one format. Call Close after the last block.
type Writer struct {
	w      io.Writer
	format Format
	names  []string
	rows   int

	// JSON buffers rows; the others stream
	data   []map[string]any
	meta   []map[string]string
	schema []types.DataType
	head   bool
}

func NewWriter(w io.Writer, f Format, names []string, schema []types.DataType) *Writer {
	fw := &Writer{w: w, format: f, names: names, schema: schema}
	for i, name := range names {
		m := map[string]string{"name": name}
		if i < len(schema) {
			m["type"] = schema[i].Name()
		}
		fw.meta = append(fw.meta, m)
	}
	return fw
}

// WriteBlock appends every row of b.
func (fw *Writer) WriteBlock(b *column.Block) error {
	if b.NumColumns() != len(fw.names) {
		return errors.Newf("block has %d columns, writer expects %d", b.NumColumns(), len(fw.names))
	}
	if got := b.ColumnTypes(); fw.schema != nil && !types.EqualSchemas(got, fw.schema) {
		return errors.Mark(errors.Newf("block schema %v, writer expects %v", got, fw.schema),
			types.ErrTypeMismatch)
	}
	if err := fw.writeHeader(); err != nil {
		return err
	}
	for row := range b.NumRows() {
		fw.rows++
		if fw.format == JSON {
			rec := make(map[string]any, len(fw.names))
			for c, name := range fw.names {
				rec[name] = jsonValue(b.Columns[c].Value(row))
			}
			fw.data = append(fw.data, rec)
			continue
		}
		vals := make([]string, b.NumColumns())
		for c := range vals {
			v := b.Columns[c].Value(row)
			s := v.String()
			if fw.format == CSV && v.Type() == types.TypeString {
				s = `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
			}
			vals[c] = s
		}
		sep := "\t"
		if fw.format == CSV {
			sep = ","
		}
		if _, err := fmt.Fprintln(fw.w, strings.Join(vals, sep)); err != nil {
			return err
		}
	}
	return nil
}

// Rows returns the number of rows written so far.
func (fw *Writer) Rows() int { return fw.rows }

// writeHeader prints the column names line once, for TSV and CSV.
func (fw *Writer) writeHeader() error {
	if fw.head {
		return nil
	}
	fw.head = true
	var err error
	switch fw.format {
	case TabSeparated:
		_, err = fmt.Fprintln(fw.w, strings.Join(fw.names, "\t"))
	case CSV:
		_, err = fmt.Fprintln(fw.w, strings.Join(quoteCSV(fw.names), ","))
	}
	return err
}

// Close flushes buffered output. A result with no rows still gets its
// header.
func (fw *Writer) Close() error {
	if fw.format != JSON {
		return fw.writeHeader()
	}
	out := struct {
		Meta []map[string]string `json:"meta"`
		Data []map[string]any    `json:"data"`
		Rows int                 `json:"rows"`
	}{fw.meta, fw.data, fw.rows}
	enc := json.NewEncoder(fw.w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func jsonValue(v types.Scalar) any {
	switch v.Type() {
	case types.TypeInt64:
		i, _ := v.AsInt64()
		return i
	case types.TypeFloat64:
		f, _ := v.AsFloat64()
		return f
	case types.TypeString:
		s, _ := v.AsString()
		return s
	case types.TypeUndefined:
		return nil
	default:
		return v.String()
	}
}

func quoteCSV(vals []string) []string {
	result := make([]string, len(vals))
	for i, v := range vals {
		if strings.ContainsAny(v, ",\"\n") {
			result[i] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
		} else {
			result[i] = v
		}
	}
	return result
}
