package plan

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrInvalidPlan is matched (errors.Is) by every InvalidPlanError.
var ErrInvalidPlan = errors.New("invalid plan")

// InvalidPlanError reports a plan node that cannot be built or compiled.
// Param is empty when the problem is not tied to one parameter.
type InvalidPlanError struct {
	Kind   Kind
	Param  string
	Reason string
}

func (e *InvalidPlanError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("invalid %s plan: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("invalid %s plan: parameter %q: %s", e.Kind, e.Param, e.Reason)
}

func (e *InvalidPlanError) Is(target error) bool { return target == ErrInvalidPlan }

// Invalidf builds an InvalidPlanError.
func Invalidf(kind Kind, param, format string, args ...interface{}) error {
	return &InvalidPlanError{Kind: kind, Param: param, Reason: fmt.Sprintf(format, args...)}
}

// Int64Param reads an integer parameter. A missing parameter is an
// InvalidPlanError; a present but non-integer one is a type mismatch.
func Int64Param(n *Node, name string) (int64, error) {
	v, ok := n.Param(name)
	if !ok {
		return 0, Invalidf(n.Kind(), name, "missing")
	}
	x, err := v.AsInt64()
	if err != nil {
		return 0, errors.Wrapf(err, "%s parameter %q", n.Kind(), name)
	}
	return x, nil
}

// ExpectKind fails unless n is non-nil and of kind want.
func ExpectKind(n *Node, want Kind) error {
	if n == nil {
		return Invalidf(want, "", "nil plan node")
	}
	if n.Kind() != want {
		return Invalidf(want, "", "got a %s node", n.Kind())
	}
	return nil
}
