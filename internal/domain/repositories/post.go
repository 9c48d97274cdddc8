package repositories

import (
	"context"

	"inkwell/internal/domain/models"
)

// PostRepository persists blog posts. Listing methods return the page rows
// plus the total row count for the same filter.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListByStatus(ctx context.Context, status string, page models.PageRequest) ([]models.Post, int64, error)
	ListFeatured(ctx context.Context, limit int) ([]models.Post, error)
	ListByCategory(ctx context.Context, categoryID string, page models.PageRequest) ([]models.Post, int64, error)
	ListByTag(ctx context.Context, tagID string, page models.PageRequest) ([]models.Post, int64, error)
	Search(ctx context.Context, query string, page models.PageRequest) ([]models.Post, int64, error)
	IncrementViews(ctx context.Context, id string) error
}

// TagRepository persists tags.
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Tag, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tag, error)
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	ListAll(ctx context.Context) ([]models.Tag, error)
	AdjustPostCount(ctx context.Context, id string, delta int) error
}
