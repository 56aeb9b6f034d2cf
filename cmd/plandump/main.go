package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/harshithgowdakt/lazyframe/internal/compression"
	"github.com/harshithgowdakt/lazyframe/internal/operator"
	"github.com/harshithgowdakt/lazyframe/internal/plan"
)

type frameJSON struct {
	MethodByte       uint8  `json:"method_byte"`
	FrameBytes       uint32 `json:"frame_bytes_with_header"`
	UncompressedSize uint32 `json:"uncompressed_bytes"`
}

type nodeJSON struct {
	Tag    string            `json:"tag"`
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
	Inputs []string          `json:"inputs,omitempty"`
	Repr   string            `json:"repr"`
	Schema []string          `json:"schema"`
	Length *int64            `json:"length,omitempty"`
}

type operatorJSON struct {
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Source    bool   `json:"source"`
	NumInputs int    `json:"num_inputs"`
	Used      int    `json:"used"`
}

type dumpJSON struct {
	File      string         `json:"file"`
	Frame     frameJSON      `json:"frame"`
	Nodes     []nodeJSON     `json:"nodes"`
	Operators []operatorJSON `json:"operators"`
	Explain   string         `json:"explain"`
}

func main() {
	planPath := flag.String("plan", "", "Serialized plan file (written by lazyframe -plan-out)")
	flag.Parse()

	if *planPath == "" {
		fatalf("missing required -plan")
	}
	data, err := os.ReadFile(*planPath)
	if err != nil {
		fatalf("read plan: %v", err)
	}

	method, size, raw, err := compression.ReadHeader(data)
	if err != nil {
		fatalf("read frame header: %v", err)
	}
	root, err := plan.Unmarshal(data)
	if err != nil {
		fatalf("decode plan: %v", err)
	}

	out := dumpJSON{
		File:  *planPath,
		Frame: frameJSON{MethodByte: method, FrameBytes: size, UncompressedSize: raw},
	}

	tagger := plan.NewTagger()
	tagger.CountRefs(root)
	used := make(map[plan.Kind]int)
	memo := operator.NewMemo()
	err = plan.Walk(root, func(n *plan.Node) error {
		used[n.Kind()]++
		nj := nodeJSON{Tag: tagger.Tag(n), Kind: n.Kind().String()}
		params := n.Params()
		if len(params) > 0 {
			nj.Params = make(map[string]string, len(params))
			for _, name := range params.Names() {
				nj.Params[name] = params[name].Type().Name() + ":" + params[name].String()
			}
		}
		for _, in := range n.Inputs() {
			nj.Inputs = append(nj.Inputs, tagger.Tag(in))
		}
		repr, err := operator.Repr(n, tagger)
		if err != nil {
			return err
		}
		nj.Repr = repr
		schema, err := memo.InferType(n)
		if err != nil {
			return err
		}
		for _, dt := range schema {
			nj.Schema = append(nj.Schema, dt.Name())
		}
		if length, ok, err := memo.InferLength(n); err != nil {
			return err
		} else if ok {
			nj.Length = &length
		}
		out.Nodes = append(out.Nodes, nj)
		return nil
	})
	if err != nil {
		fatalf("analyze plan: %v", err)
	}
	for _, c := range operator.Contracts() {
		attrs := c.Attributes()
		out.Operators = append(out.Operators, operatorJSON{
			Kind:      c.Kind().String(),
			Name:      c.Name(),
			Source:    attrs.Source,
			NumInputs: attrs.NumInputs,
			Used:      used[c.Kind()],
		})
	}
	if out.Explain, err = operator.Explain(root); err != nil {
		fatalf("explain plan: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fatalf("encode json: %v", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
