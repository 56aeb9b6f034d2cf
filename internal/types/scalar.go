package types

import (
	"math"
	"strconv"

	"github.com/cockroachdb/errors"
)

// ErrTypeMismatch marks errors where a value is not convertible to the
// type a consumer requires.
var ErrTypeMismatch = errors.New("type mismatch")

// Scalar is a single plan parameter or cell value. It is a closed tagged
// union: the tag selects which one of the payload fields is meaningful.
// The zero Scalar is Undefined.
type Scalar struct {
	tag DataType
	i   int64
	f   float64
	s   string
}

// Int returns an Int64 scalar.
func Int(v int64) Scalar { return Scalar{tag: TypeInt64, i: v} }

// Float returns a Float64 scalar.
func Float(v float64) Scalar { return Scalar{tag: TypeFloat64, f: v} }

// String returns a String scalar.
func String(v string) Scalar { return Scalar{tag: TypeString, s: v} }

// Undefined returns the missing-value scalar.
func Undefined() Scalar { return Scalar{} }

// Type returns the scalar's tag.
func (v Scalar) Type() DataType { return v.tag }

// IsUndefined reports whether v carries no value.
func (v Scalar) IsUndefined() bool { return v.tag == TypeUndefined }

// AsInt64 extracts v as an integer. Floats convert only when integral.
func (v Scalar) AsInt64() (int64, error) {
	switch v.tag {
	case TypeInt64:
		return v.i, nil
	case TypeFloat64:
		// float64(math.MaxInt64) rounds up to 2^63, so the upper bound is exclusive.
		if v.f != math.Trunc(v.f) || math.IsInf(v.f, 0) || v.f >= 0x1p63 || v.f < math.MinInt64 {
			return 0, errors.Mark(errors.Newf("float %v is not an integer", v.f), ErrTypeMismatch)
		}
		return int64(v.f), nil
	case TypeString, TypeUndefined:
		return 0, errors.Mark(errors.Newf("cannot convert %s to Int64", v.tag.Name()), ErrTypeMismatch)
	default:
		return 0, errors.AssertionFailedf("unknown scalar tag %d", v.tag)
	}
}

// AsFloat64 extracts v as a float.
func (v Scalar) AsFloat64() (float64, error) {
	switch v.tag {
	case TypeInt64:
		return float64(v.i), nil
	case TypeFloat64:
		return v.f, nil
	case TypeString, TypeUndefined:
		return 0, errors.Mark(errors.Newf("cannot convert %s to Float64", v.tag.Name()), ErrTypeMismatch)
	default:
		return 0, errors.AssertionFailedf("unknown scalar tag %d", v.tag)
	}
}

// AsString extracts a String scalar.
func (v Scalar) AsString() (string, error) {
	switch v.tag {
	case TypeString:
		return v.s, nil
	case TypeInt64, TypeFloat64, TypeUndefined:
		return "", errors.Mark(errors.Newf("cannot convert %s to String", v.tag.Name()), ErrTypeMismatch)
	default:
		return "", errors.AssertionFailedf("unknown scalar tag %d", v.tag)
	}
}

// Compare orders v against w. Returns -1 if v < w, 0 if equal, 1 if v > w.
// Int64 and Float64 compare numerically with each other; Undefined sorts
// before everything. Strings only compare with strings.
func (v Scalar) Compare(w Scalar) (int, error) {
	if v.tag == TypeUndefined || w.tag == TypeUndefined {
		switch {
		case v.tag == w.tag:
			return 0, nil
		case v.tag == TypeUndefined:
			return -1, nil
		default:
			return 1, nil
		}
	}
	switch v.tag {
	case TypeInt64:
		switch w.tag {
		case TypeInt64:
			return cmpOrdered(v.i, w.i), nil
		case TypeFloat64:
			return cmpOrdered(float64(v.i), w.f), nil
		}
	case TypeFloat64:
		switch w.tag {
		case TypeInt64:
			return cmpOrdered(v.f, float64(w.i)), nil
		case TypeFloat64:
			return cmpOrdered(v.f, w.f), nil
		}
	case TypeString:
		if w.tag == TypeString {
			return cmpOrdered(v.s, w.s), nil
		}
	}
	return 0, errors.Mark(
		errors.Newf("cannot compare %s with %s", v.tag.Name(), w.tag.Name()), ErrTypeMismatch)
}

func (v Scalar) String() string {
	switch v.tag {
	case TypeInt64:
		return strconv.FormatInt(v.i, 10)
	case TypeFloat64:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case TypeString:
		return v.s
	default:
		return "NULL"
	}
}

type ordered interface {
	~int64 | ~float64 | ~string
}

func cmpOrdered[T ordered](a, b T) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
