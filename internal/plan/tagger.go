package plan

import "strconv"

// Tagger hands out stable short labels for nodes so that textual plans can
// refer to a shared subgraph by name instead of repeating it.
type Tagger struct {
	tags map[*Node]string
	refs map[*Node]int
}

func NewTagger() *Tagger {
	return &Tagger{tags: make(map[*Node]string), refs: make(map[*Node]int)}
}

// Tag returns n's label, assigning the next one on first use.
func (t *Tagger) Tag(n *Node) string {
	if s, ok := t.tags[n]; ok {
		return s
	}
	s := "N" + strconv.Itoa(len(t.tags))
	t.tags[n] = s
	return s
}

// CountRefs records how many consumers reference each node under root.
func (t *Tagger) CountRefs(root *Node) {
	_ = Walk(root, func(n *Node) error {
		for _, in := range n.inputs {
			t.refs[in]++
		}
		return nil
	})
}

// Shared reports whether n has more than one consumer under the last
// counted root.
func (t *Tagger) Shared(n *Node) bool { return t.refs[n] > 1 }
