package plan

import "strconv"

// Kind tags the operator a node describes. New kinds are appended; values
// are part of the plan wire format and never reused.
type Kind uint16

const (
	KindInvalid Kind = iota
	KindSequence
	KindAppend
	KindLimit
)

var kindNames = map[Kind]string{
	KindInvalid:  "invalid",
	KindSequence: "sequence",
	KindAppend:   "append",
	KindLimit:    "limit",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}
