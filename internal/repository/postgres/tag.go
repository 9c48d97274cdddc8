package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

// PostgresTagRepository implements the TagRepository interface
type PostgresTagRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewTagRepository creates a new tag repository
func NewTagRepository(config *RepositoryConfig) repositories.TagRepository {
	return &PostgresTagRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const tagColumns = `id, name, slug, post_count, created_at, updated_at`

func (r *PostgresTagRepository) scan(row interface{ Scan(...any) error }) (*models.Tag, error) {
	var t models.Tag
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.PostCount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a tag
func (r *PostgresTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, slug)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, r.tables.Tags)

	db := GetExecutor(ctx, r.pool)
	err := db.QueryRow(ctx, query, tag.Name, tag.Slug).Scan(&tag.ID, &tag.CreatedAt, &tag.UpdatedAt)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("tag '%s': %w", tag.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create tag: %w", err)
	}
	return nil
}

// Update rewrites the tag's mutable columns
func (r *PostgresTagRepository) Update(ctx context.Context, tag *models.Tag) error {
	query := fmt.Sprintf(`
		UPDATE %s SET name = $1, slug = $2, updated_at = NOW() WHERE id = $3
	`, r.tables.Tags)

	db := GetExecutor(ctx, r.pool)
	result, err := db.Exec(ctx, query, tag.Name, tag.Slug, tag.ID)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("tag '%s': %w", tag.Name, domain.ErrConflict)
		}
		return fmt.Errorf("update tag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("tag %s: %w", tag.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a tag
func (r *PostgresTagRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Tags)

	db := GetExecutor(ctx, r.pool)
	result, err := db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// GetByID retrieves a tag by ID
func (r *PostgresTagRepository) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, tagColumns, r.tables.Tags)

	db := GetExecutor(ctx, r.pool)
	tag, err := r.scan(db.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return tag, nil
}

// GetBySlug retrieves a tag by slug
func (r *PostgresTagRepository) GetBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1`, tagColumns, r.tables.Tags)

	db := GetExecutor(ctx, r.pool)
	tag, err := r.scan(db.QueryRow(ctx, query, slug))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("tag %s: %w", slug, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get tag by slug: %w", err)
	}
	return tag, nil
}

// GetByName retrieves a tag by exact name
func (r *PostgresTagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE name = $1`, tagColumns, r.tables.Tags)

	db := GetExecutor(ctx, r.pool)
	tag, err := r.scan(db.QueryRow(ctx, query, name))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("tag %s: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get tag by name: %w", err)
	}
	return tag, nil
}

// ListAll lists every tag alphabetically
func (r *PostgresTagRepository) ListAll(ctx context.Context) ([]models.Tag, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY name ASC`, tagColumns, r.tables.Tags)

	db := GetExecutor(ctx, r.pool)
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		tag, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, *tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, nil
}

// AdjustPostCount adds delta to the denormalized counter, flooring at zero
func (r *PostgresTagRepository) AdjustPostCount(ctx context.Context, id string, delta int) error {
	query := fmt.Sprintf(`
		UPDATE %s SET post_count = GREATEST(post_count + $2, 0), updated_at = NOW()
		WHERE id = $1
	`, r.tables.Tags)

	db := GetExecutor(ctx, r.pool)
	result, err := db.Exec(ctx, query, id, delta)
	if err != nil {
		return fmt.Errorf("adjust tag post count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("tag %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
