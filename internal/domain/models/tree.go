package models

import "time"

// MaxDepth is the deepest allowed node position: depth 0 (root) through 4,
// five levels in total. Shared by categories and vault folders.
const MaxDepth = 4

// TreeMeta is the hierarchical bookkeeping embedded in every tree-shaped
// entity (Category, VaultFolder).
//
// Ancestors is the materialized root-to-parent path of ids, excluding the
// node itself; Depth always equals len(Ancestors). Both are recomputed by the
// tree service on create and move, never written directly.
type TreeMeta struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	ParentID  *string   `json:"parentId"`
	Ancestors []string  `json:"ancestors"`
	Depth     int       `json:"depth"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
