package tree

import (
	"sort"

	"inkwell/internal/domain/repositories"
)

// Forest is one node of a nested tree response.
type Forest[T repositories.TreeEntity] struct {
	Item     T
	Children []*Forest[T]
}

// BuildForest nests a flat node list into root trees. A node whose declared
// parent is missing from the input is promoted to a root, so a partial view
// of the tree still renders. Sibling lists are sorted by sort key ascending
// with a stable sort, preserving the input's relative order on ties.
func BuildForest[T repositories.TreeEntity](nodes []T) []*Forest[T] {
	wrapped := make(map[string]*Forest[T], len(nodes))
	order := make([]*Forest[T], 0, len(nodes))
	for _, n := range nodes {
		f := &Forest[T]{Item: n, Children: []*Forest[T]{}}
		wrapped[n.Meta().ID] = f
		order = append(order, f)
	}

	var roots []*Forest[T]
	for _, f := range order {
		meta := f.Item.Meta()
		if meta.ParentID == nil {
			roots = append(roots, f)
			continue
		}
		parent, ok := wrapped[*meta.ParentID]
		if !ok {
			// Parent absent from the input set: promote to root.
			roots = append(roots, f)
			continue
		}
		parent.Children = append(parent.Children, f)
	}

	sortForest(roots)
	return roots
}

func sortForest[T repositories.TreeEntity](siblings []*Forest[T]) {
	sort.SliceStable(siblings, func(i, j int) bool {
		return siblings[i].Item.Meta().Order < siblings[j].Item.Meta().Order
	})
	for _, f := range siblings {
		sortForest(f.Children)
	}
}
