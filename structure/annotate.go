package structure

// Report summarizes an annotation run.
type Report struct {
	Nodes   int // nodes in the annotated tree
	Removed int // nodes removed by Collapse, filled in by Importer
	Edges   int // attempted parent to child attachments

	// Dangling counts child references which did not resolve to a node.
	Dangling int

	// Unresolved lists, in the order found, the nodes whose ancestor chain
	// could not be followed. They keep their immediate parent data.
	Unresolved []string
}

// Annotate fills in ParentData on every node of t. Each node first receives
// the order, id and display name of its immediate parent, keyed by the
// parent's category. Ancestor data is then pulled down one level at a time:
// chapters into sequentials, sequentials into verticals, and verticals into
// every other non structural block.
//
// Only that fixed chain is followed; deeper or reordered hierarchies are not
// handled.
func Annotate(t *Tree) Report {
	r := Report{Nodes: t.Len()}

	for _, p := range t.Nodes() {
		for i, c := range p.Children {
			r.Edges++
			child, ok := t.nodes[c]
			if !ok {
				r.Dangling++
				continue
			}
			pd := NewParentData()
			pd.Set(p.Category+"_order", i)
			pd.Set(p.Category+"_id", p.ID)
			pd.Set(p.Category+"_display_name", p.DisplayName())
			child.ParentData = pd
		}
	}

	r.Unresolved = append(r.Unresolved, propagate(t, isCategory(CategorySequential), CategoryChapter)...)
	r.Unresolved = append(r.Unresolved, propagate(t, isCategory(CategoryVertical), CategorySequential)...)
	r.Unresolved = append(r.Unresolved, propagate(t, isLeaf, CategoryVertical)...)
	return r
}

// propagate merges, for every node matching sel, the parent data of the
// ancestor referenced by its "<ancestor>_id" entry. It returns the ids of the
// nodes for which that ancestor could not be found.
func propagate(t *Tree, sel func(*Node) bool, ancestor string) (unresolved []string) {
	key := ancestor + "_id"
	for _, n := range t.Nodes() {
		if !sel(n) {
			continue
		}
		v, _ := n.ParentData.Get(key)
		id, _ := v.(string)
		a, ok := t.nodes[id]
		if !ok {
			unresolved = append(unresolved, n.ID)
			continue
		}
		n.ParentData.Merge(a.ParentData)
	}
	return unresolved
}

func isCategory(category string) func(*Node) bool {
	return func(n *Node) bool { return n.Category == category }
}

func isLeaf(n *Node) bool {
	switch n.Category {
	case CategoryVertical, CategorySequential, CategoryChapter, CategoryCourse:
		return false
	}
	return true
}
