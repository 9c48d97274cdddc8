package models

// Category is a node in the post category tree.
//
// PostCount is a denormalized counter maintained by the post lifecycle via
// increment/decrement only; it is an eventually-corrected cache, not a strict
// invariant.
type Category struct {
	TreeMeta
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Color       string `json:"color,omitempty"`
	PostCount   int    `json:"postCount"`
}

// Meta exposes the embedded tree bookkeeping to the generic tree service.
func (c *Category) Meta() *TreeMeta { return &c.TreeMeta }

// CategoryTree is a category with its resolved children, as returned by the
// forest-building endpoint.
type CategoryTree struct {
	*Category
	Children []*CategoryTree `json:"children"`
}
