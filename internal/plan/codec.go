package plan

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/harshithgowdakt/lazyframe/internal/compression"
	"github.com/harshithgowdakt/lazyframe/internal/types"
)

// Wire format (before framing):
//
//	version uvarint
//	count   uvarint
//	count × node:
//	    kind     uvarint
//	    nparams  uvarint, then nparams × (name string, tag byte, payload)
//	    ninputs  uvarint, then ninputs × index uvarint
//
// Nodes are written inputs-first, so every input index refers to an
// earlier node and the decoded graph is acyclic by construction. A shared
// subgraph is written once. The last node is the root. Only kind,
// parameters and edges are serialized.
const wireVersion = 1

// Marshal serializes the plan rooted at root into a compressed frame.
func Marshal(root *Node, codec compression.Codec) ([]byte, error) {
	if root == nil {
		return nil, errors.New("marshal: nil plan")
	}
	index := make(map[*Node]uint64)
	var order []*Node
	_ = Walk(root, func(n *Node) error {
		index[n] = uint64(len(order))
		order = append(order, n)
		return nil
	})

	buf := binary.AppendUvarint(nil, wireVersion)
	buf = binary.AppendUvarint(buf, uint64(len(order)))
	for _, n := range order {
		buf = binary.AppendUvarint(buf, uint64(n.kind))
		names := n.params.Names()
		buf = binary.AppendUvarint(buf, uint64(len(names)))
		for _, name := range names {
			buf = appendString(buf, name)
			var err error
			buf, err = appendScalar(buf, n.params[name])
			if err != nil {
				return nil, errors.Wrapf(err, "marshal %s parameter %q", n.kind, name)
			}
		}
		buf = binary.AppendUvarint(buf, uint64(len(n.inputs)))
		for _, in := range n.inputs {
			buf = binary.AppendUvarint(buf, index[in])
		}
	}
	return compression.EncodeFrame(codec, buf)
}

// Unmarshal decodes a frame produced by Marshal and returns the root node.
func Unmarshal(frame []byte) (*Node, error) {
	raw, err := compression.DecodeFrame(frame)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshal plan")
	}
	r := bytes.NewReader(raw)
	version, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshal plan: version")
	}
	if version != wireVersion {
		return nil, errors.Newf("unmarshal plan: unsupported version %d", version)
	}
	count, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshal plan: node count")
	}
	if count == 0 || count > uint64(len(raw)) {
		return nil, errors.Newf("unmarshal plan: bad node count %d", count)
	}
	nodes := make([]*Node, 0, count)
	for i := uint64(0); i < count; i++ {
		n, err := readNode(r, nodes)
		if err != nil {
			return nil, errors.Wrapf(err, "unmarshal plan: node %d", i)
		}
		nodes = append(nodes, n)
	}
	if r.Len() != 0 {
		return nil, errors.Newf("unmarshal plan: %d trailing bytes", r.Len())
	}
	return nodes[len(nodes)-1], nil
}

func readNode(r *bytes.Reader, prior []*Node) (*Node, error) {
	kind, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	if kind > math.MaxUint16 {
		return nil, errors.Newf("kind %d out of range", kind)
	}
	np, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	if np > uint64(r.Len()) {
		return nil, errors.Newf("bad parameter count %d", np)
	}
	params := make(Params, np)
	for j := uint64(0); j < np; j++ {
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		v, err := readScalar(r)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %q", name)
		}
		params[name] = v
	}
	ni, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	if ni > uint64(r.Len()) {
		return nil, errors.Newf("bad input count %d", ni)
	}
	inputs := make([]*Node, ni)
	for j := range inputs {
		idx, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, err
		}
		if idx >= uint64(len(prior)) {
			return nil, errors.Newf("input %d refers to node %d which is not yet defined", j, idx)
		}
		inputs[j] = prior[idx]
	}
	return &Node{kind: Kind(kind), params: params, inputs: inputs}, nil
}

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func readString(r *bytes.Reader) (string, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return "", err
	}
	if n > uint64(r.Len()) {
		return "", io.ErrUnexpectedEOF
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func appendScalar(buf []byte, v types.Scalar) ([]byte, error) {
	buf = append(buf, byte(v.Type()))
	switch v.Type() {
	case types.TypeInt64:
		x, err := v.AsInt64()
		if err != nil {
			return nil, err
		}
		return binary.AppendVarint(buf, x), nil
	case types.TypeFloat64:
		x, err := v.AsFloat64()
		if err != nil {
			return nil, err
		}
		return binary.LittleEndian.AppendUint64(buf, math.Float64bits(x)), nil
	case types.TypeString:
		s, err := v.AsString()
		if err != nil {
			return nil, err
		}
		return appendString(buf, s), nil
	case types.TypeUndefined:
		return buf, nil
	default:
		return nil, errors.AssertionFailedf("unknown scalar tag %d", v.Type())
	}
}

func readScalar(r *bytes.Reader) (types.Scalar, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return types.Scalar{}, err
	}
	switch types.DataType(tag) {
	case types.TypeInt64:
		x, err := binary.ReadVarint(r)
		if err != nil {
			return types.Scalar{}, err
		}
		return types.Int(x), nil
	case types.TypeFloat64:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return types.Scalar{}, err
		}
		return types.Float(math.Float64frombits(binary.LittleEndian.Uint64(b[:]))), nil
	case types.TypeString:
		s, err := readString(r)
		if err != nil {
			return types.Scalar{}, err
		}
		return types.String(s), nil
	case types.TypeUndefined:
		return types.Undefined(), nil
	default:
		return types.Scalar{}, errors.Newf("unknown scalar tag %d", tag)
	}
}
