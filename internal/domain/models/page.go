package models

// PageRequest is a zero-based page with a bounded size.
type PageRequest struct {
	Page int
	Size int
}

// Offset returns the SQL offset for the page.
func (p PageRequest) Offset() int { return p.Page * p.Size }

// Page is one page of results plus totals, mirroring the shape the frontend
// pager expects.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPage assembles a page envelope from a slice and the total row count.
func NewPage[T any](content []T, req PageRequest, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return &Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}
