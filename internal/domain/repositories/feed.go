package repositories

import (
	"context"

	"inkwell/internal/domain/models"
)

// FeedRepository persists social feed entries.
type FeedRepository interface {
	Create(ctx context.Context, feed *models.Feed) error
	Update(ctx context.Context, feed *models.Feed) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Feed, error)
	ListByVisibility(ctx context.Context, visibility string, page models.PageRequest) ([]models.Feed, int64, error)
	ListAll(ctx context.Context, page models.PageRequest) ([]models.Feed, int64, error)
	IncrementViews(ctx context.Context, id string) error
	AdjustCommentsCount(ctx context.Context, id string, delta int) error
}

// FeedCommentRepository persists comments on feeds.
type FeedCommentRepository interface {
	Create(ctx context.Context, comment *models.FeedComment) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.FeedComment, error)
	ListByFeed(ctx context.Context, feedID string) ([]models.FeedComment, error)
	DeleteAllByFeed(ctx context.Context, feedID string) error
}
