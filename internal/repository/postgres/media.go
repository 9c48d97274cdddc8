package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

// PostgresMediaRepository implements the MediaRepository interface
type PostgresMediaRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewMediaRepository creates a new media repository
func NewMediaRepository(config *RepositoryConfig) repositories.MediaRepository {
	return &PostgresMediaRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts an upload record
func (r *PostgresMediaRepository) Create(ctx context.Context, media *models.Media) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (original_filename, saved_filename, file_path, file_url,
			content_type, file_size, uploader_id, uploader_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, r.tables.Media)

	db := GetExecutor(ctx, r.pool)
	err := db.QueryRow(ctx, query,
		media.OriginalFilename,
		media.SavedFilename,
		media.FilePath,
		media.FileURL,
		media.ContentType,
		media.FileSize,
		media.Uploader.ID,
		media.Uploader.Name,
	).Scan(&media.ID, &media.CreatedAt)

	if err != nil {
		return fmt.Errorf("create media: %w", err)
	}
	return nil
}

// Delete removes an upload record
func (r *PostgresMediaRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Media)

	db := GetExecutor(ctx, r.pool)
	result, err := db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("media %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// GetByFileURL retrieves an upload record by its public URL
func (r *PostgresMediaRepository) GetByFileURL(ctx context.Context, fileURL string) (*models.Media, error) {
	query := fmt.Sprintf(`
		SELECT id, original_filename, saved_filename, file_path, file_url,
			content_type, file_size, uploader_id, uploader_name, created_at
		FROM %s WHERE file_url = $1
	`, r.tables.Media)

	db := GetExecutor(ctx, r.pool)
	var m models.Media
	err := db.QueryRow(ctx, query, fileURL).Scan(
		&m.ID,
		&m.OriginalFilename,
		&m.SavedFilename,
		&m.FilePath,
		&m.FileURL,
		&m.ContentType,
		&m.FileSize,
		&m.Uploader.ID,
		&m.Uploader.Name,
		&m.CreatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("media %s: %w", fileURL, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get media: %w", err)
	}
	return &m, nil
}
