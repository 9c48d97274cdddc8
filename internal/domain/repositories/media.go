package repositories

import (
	"context"

	"inkwell/internal/domain/models"
)

// MediaRepository persists upload records.
type MediaRepository interface {
	Create(ctx context.Context, media *models.Media) error
	Delete(ctx context.Context, id string) error
	GetByFileURL(ctx context.Context, fileURL string) (*models.Media, error)
}
