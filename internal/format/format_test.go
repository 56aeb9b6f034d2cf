package format

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshithgowdakt/lazyframe/internal/column"
	"github.com/harshithgowdakt/lazyframe/internal/types"
)

func testBlock() *column.Block {
	return column.NewBlock([]string{"n", "s"}, []column.Column{
		&column.Int64Column{Data: []int64{1, 2}},
		&column.StringColumn{Data: []string{"a", `b"c`}},
	})
}

var testSchema = []types.DataType{types.TypeInt64, types.TypeString}

func TestTabSeparated(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, TabSeparated, []string{"n", "s"}, testSchema)
	require.NoError(t, w.WriteBlock(testBlock()))
	require.NoError(t, w.Close())
	assert.Equal(t, "n\ts\n1\ta\n2\tb\"c\n", buf.String())
	assert.Equal(t, 2, w.Rows())
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, CSV, []string{"n", "s,x"}, testSchema)
	require.NoError(t, w.WriteBlock(testBlock()))
	require.NoError(t, w.Close())
	assert.Equal(t, "n,\"s,x\"\n1,\"a\"\n2,\"b\"\"c\"\n", buf.String())
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, JSON, []string{"n", "s"}, testSchema)
	require.NoError(t, w.WriteBlock(testBlock()))
	require.NoError(t, w.Close())

	var got struct {
		Meta []map[string]string `json:"meta"`
		Data []map[string]any    `json:"data"`
		Rows int                 `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 2, got.Rows)
	assert.Equal(t, "Int64", got.Meta[0]["type"])
	assert.Equal(t, float64(2), got.Data[1]["n"])
	assert.Equal(t, `b"c`, got.Data[1]["s"])
}

func TestWriteBlockColumnMismatch(t *testing.T) {
	w := NewWriter(&bytes.Buffer{}, TabSeparated, []string{"n"}, testSchema[:1])
	assert.Error(t, w.WriteBlock(testBlock()))

	w = NewWriter(&bytes.Buffer{}, TabSeparated, []string{"n", "s"},
		[]types.DataType{types.TypeInt64, types.TypeInt64})
	err := w.WriteBlock(testBlock())
	assert.True(t, errors.Is(err, types.ErrTypeMismatch))
}

func TestEmptyResultKeepsHeader(t *testing.T) {
	for f, want := range map[Format]string{TabSeparated: "n\ts\n", CSV: "n,s\n"} {
		var buf bytes.Buffer
		w := NewWriter(&buf, f, []string{"n", "s"}, testSchema)
		require.NoError(t, w.Close())
		assert.Equal(t, want, buf.String(), string(f))
		assert.Equal(t, 0, w.Rows())
	}
}

func TestParseAndColumnNames(t *testing.T) {
	f, err := Parse("JSON")
	require.NoError(t, err)
	assert.Equal(t, JSON, f)
	f, err = Parse("")
	require.NoError(t, err)
	assert.Equal(t, TabSeparated, f)
	_, err = Parse("xml")
	assert.Error(t, err)

	assert.Equal(t, []string{"c0", "c1"}, ColumnNames(nil, 2))
	assert.Equal(t, []string{"n", "s"}, ColumnNames([]*column.Block{testBlock()}, 2))
}
