package models

import "time"

// VaultFolder is a node in the vault folder tree.
//
// NoteCount mirrors Category.PostCount: a denormalized counter mutated only
// through increment/decrement by the note lifecycle.
type VaultFolder struct {
	TreeMeta
	NoteCount int `json:"noteCount"`
}

// Meta exposes the embedded tree bookkeeping to the generic tree service.
func (f *VaultFolder) Meta() *TreeMeta { return &f.TreeMeta }

// VaultFolderTree is a folder with its resolved children.
type VaultFolderTree struct {
	*VaultFolder
	Children []*VaultFolderTree `json:"children"`
}

// VaultNote is a wiki-style markdown note.
//
// OutgoingLinks is always a pure function of Content: it is recomputed
// wholesale on every content write and never edited independently. Targets
// referenced before they exist are dropped, and are only picked up the next
// time the content is saved.
type VaultNote struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Content       string     `json:"content"`
	FolderID      string     `json:"folderId"`
	Author        AuthorInfo `json:"author"`
	OutgoingLinks []string   `json:"outgoingLinks"`
	Tags          []string   `json:"tags"`
	Views         int        `json:"views"`
	CommentsCount int        `json:"commentsCount"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// VaultNoteComment is a flat comment on a note.
type VaultNoteComment struct {
	ID        string     `json:"id"`
	NoteID    string     `json:"noteId"`
	Author    AuthorInfo `json:"author"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
}

// GraphData is the whole-vault reference graph for visualization.
type GraphData struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// GraphNode is one note in the graph. Size is len(outgoingLinks)+1 so a note
// with no links still renders with a visible radius.
type GraphNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Size int    `json:"size"`
}

// GraphLink is one directed reference between two notes. Duplicate links are
// preserved, matching the non-deduplicated outgoing link lists.
type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}
