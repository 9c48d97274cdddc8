package repositories

import (
	"context"

	"inkwell/internal/domain/models"
)

// TreeEntity is anything carrying embedded tree bookkeeping.
type TreeEntity interface {
	Meta() *models.TreeMeta
}

// TreeRepository is the persistence contract for one kind of tree node.
// Slug uniqueness is scoped to the kind: two folders cannot share a slug,
// but a folder and a category can.
type TreeRepository[T TreeEntity] interface {
	Create(ctx context.Context, node T) error
	Update(ctx context.Context, node T) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (T, error)
	GetBySlug(ctx context.Context, slug string) (T, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// ListRoots and ListChildren return siblings ordered by sort key ascending.
	ListRoots(ctx context.Context) ([]T, error)
	ListChildren(ctx context.Context, parentID string) ([]T, error)
	ListAll(ctx context.Context) ([]T, error)
}

// CategoryRepository adds the denormalized post counter to the tree contract.
type CategoryRepository interface {
	TreeRepository[*models.Category]
	// AdjustPostCount adds delta to the counter, flooring at zero.
	AdjustPostCount(ctx context.Context, id string, delta int) error
}

// VaultFolderRepository adds the denormalized note counter.
type VaultFolderRepository interface {
	TreeRepository[*models.VaultFolder]
	// AdjustNoteCount adds delta to the counter, flooring at zero.
	AdjustNoteCount(ctx context.Context, id string, delta int) error
}
