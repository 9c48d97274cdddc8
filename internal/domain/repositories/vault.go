package repositories

import (
	"context"

	"inkwell/internal/domain/models"
)

// VaultNoteRepository persists wiki notes and answers the reverse-reference
// query over their denormalized forward links.
type VaultNoteRepository interface {
	Create(ctx context.Context, note *models.VaultNote) error
	Update(ctx context.Context, note *models.VaultNote) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.VaultNote, error)
	GetBySlug(ctx context.Context, slug string) (*models.VaultNote, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, page models.PageRequest) ([]models.VaultNote, int64, error)
	ListByFolder(ctx context.Context, folderID string, page models.PageRequest) ([]models.VaultNote, int64, error)
	ListAll(ctx context.Context) ([]models.VaultNote, error)
	Search(ctx context.Context, query string, page models.PageRequest) ([]models.VaultNote, int64, error)
	// FindByOutgoingLink returns every note whose forward-link list contains
	// the given note id. No inverted index is kept; this is a filtered scan.
	FindByOutgoingLink(ctx context.Context, noteID string) ([]models.VaultNote, error)
	IncrementViews(ctx context.Context, id string) error
	AdjustCommentsCount(ctx context.Context, id string, delta int) error
}

// VaultNoteCommentRepository persists comments on notes.
type VaultNoteCommentRepository interface {
	Create(ctx context.Context, comment *models.VaultNoteComment) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.VaultNoteComment, error)
	ListByNote(ctx context.Context, noteID string) ([]models.VaultNoteComment, error)
	DeleteAllByNote(ctx context.Context, noteID string) error
}
