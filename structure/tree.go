package structure

import (
	"sort"

	"github.com/pilosa/edxdk"
	"github.com/pkg/errors"
)

// Errors reported while building or collapsing a tree.
const (
	ErrDuplicateKey    = edxdk.Error("duplicate block key")
	ErrOrphan          = edxdk.Error("removable block has no parent")
	ErrMultipleParents = edxdk.Error("block has more than one parent")
)

// Tree holds the blocks of one course structure in a flat table keyed by
// block id. Parent relationships are only expressed through Children; the
// operations needing the reverse direction build an index on demand.
type Tree struct {
	nodes map[string]*Node
}

// NewTree returns an empty Tree.
func NewTree() *Tree {
	return &Tree{nodes: make(map[string]*Node)}
}

// Add inserts n. Adding a second node with the same id fails with
// ErrDuplicateKey.
func (t *Tree) Add(n *Node) error {
	if _, ok := t.nodes[n.ID]; ok {
		return errors.Wrapf(ErrDuplicateKey, "'%s'", n.ID)
	}
	t.nodes[n.ID] = n
	return nil
}

// Node returns the node with the given id.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Delete removes the node with the given id. References to it in other
// nodes' children are left alone.
func (t *Tree) Delete(id string) {
	delete(t.nodes, id)
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// IDs returns every node id in ascending order.
func (t *Tree) IDs() []string {
	ids := make([]string, 0, len(t.nodes))
	for id := range t.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Nodes returns every node, ordered by id.
func (t *Tree) Nodes() []*Node {
	ids := t.IDs()
	nodes := make([]*Node, len(ids))
	for i, id := range ids {
		nodes[i] = t.nodes[id]
	}
	return nodes
}

// Walk returns, in display order, the ids reachable from id which have no
// children of their own. Child references which do not resolve are reported
// as leaves.
func (t *Tree) Walk(id string) []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(id string)
	walk = func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		n, ok := t.nodes[id]
		if !ok || len(n.Children) == 0 {
			out = append(out, id)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(id)
	return out
}

// parentIndex maps every referenced child id to the id of the node listing
// it. Children listed more than once (by one or several parents) are also
// returned in multi.
func (t *Tree) parentIndex() (parents map[string]string, multi map[string]bool) {
	parents = make(map[string]string, len(t.nodes))
	multi = make(map[string]bool)
	for _, n := range t.Nodes() {
		for _, c := range n.Children {
			if _, ok := parents[c]; ok {
				multi[c] = true
			}
			parents[c] = n.ID
		}
	}
	return parents, multi
}
