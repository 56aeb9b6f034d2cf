package types

// DataType is the type tag of a scalar value or a column.
type DataType uint8

const (
	TypeUndefined DataType = iota
	TypeInt64
	TypeFloat64
	TypeString
)

var typeNames = [...]string{
	TypeUndefined: "Undefined",
	TypeInt64:     "Int64",
	TypeFloat64:   "Float64",
	TypeString:    "String",
}

// Name returns the string name of the DataType.
func (dt DataType) Name() string {
	if int(dt) < len(typeNames) {
		return typeNames[dt]
	}
	return "Unknown"
}

func (dt DataType) String() string { return dt.Name() }

// EqualSchemas reports whether two column type lists are identical.
func EqualSchemas(a, b []DataType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
