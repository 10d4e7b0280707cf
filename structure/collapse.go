package structure

import (
	"github.com/pkg/errors"
)

// RemovableCategories are collapsed by default, in this order. A wrapper may
// only become directly attached to its real parent once the conditionals
// around it are gone, so each category gets its own pass.
var RemovableCategories = []string{CategoryConditional, CategoryWrapper}

// Collapse removes every node of the given categories (RemovableCategories if
// none are given), splicing each removed node's children into its parent's
// children at the removed node's position. It returns the number of removed
// nodes.
//
// A removable node must have exactly one parent. A removable node without a
// parent fails with ErrOrphan, one listed more than once fails with
// ErrMultipleParents. The tree may then be partially collapsed, and removed
// counts the nodes already taken out of it.
func Collapse(t *Tree, categories ...string) (removed int, err error) {
	if len(categories) == 0 {
		categories = RemovableCategories
	}
	for _, category := range categories {
		n, err := collapseCategory(t, category)
		removed += n
		if err != nil {
			return removed, errors.Wrapf(err, "collapsing %s blocks", category)
		}
	}
	return removed, nil
}

// collapseCategory removes the nodes of one category. On error the nodes
// already spliced out are still deleted and counted.
func collapseCategory(t *Tree, category string) (removed int, err error) {
	parents, multi := t.parentIndex()
	var marked []string
	defer func() {
		for _, id := range marked {
			t.Delete(id)
		}
		removed = len(marked)
	}()
	for _, n := range t.Nodes() {
		if n.Category != category {
			continue
		}
		if multi[n.ID] {
			return 0, errors.Wrapf(ErrMultipleParents, "'%s'", n.ID)
		}
		pid, ok := parents[n.ID]
		if !ok {
			return 0, errors.Wrapf(ErrOrphan, "'%s'", n.ID)
		}
		p, ok := t.nodes[pid]
		if !ok || indexOf(p.Children, n.ID) < 0 {
			return 0, errors.Errorf("parent index out of date for '%s' (parent '%s')", n.ID, pid)
		}
		p.Children = splice(p.Children, indexOf(p.Children, n.ID), n.Children)
		// nested removable nodes are now attached to p
		for _, c := range n.Children {
			parents[c] = pid
		}
		marked = append(marked, n.ID)
	}
	return len(marked), nil
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// splice returns a copy of ids with the element at i replaced by repl.
func splice(ids []string, i int, repl []string) []string {
	out := make([]string, 0, len(ids)-1+len(repl))
	out = append(out, ids[:i]...)
	out = append(out, repl...)
	return append(out, ids[i+1:]...)
}
