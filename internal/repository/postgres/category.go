package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

// PostgresCategoryRepository implements the CategoryRepository interface.
// Ancestors is stored as a TEXT[] column holding the root-to-parent id path.
type PostgresCategoryRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(config *RepositoryConfig) repositories.CategoryRepository {
	return &PostgresCategoryRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const categoryColumns = `id, name, slug, parent_id, ancestors, depth, sort_order,
	description, icon, color, post_count, created_at, updated_at`

func (r *PostgresCategoryRepository) scan(row interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.ParentID,
		&c.Ancestors,
		&c.Depth,
		&c.Order,
		&c.Description,
		&c.Icon,
		&c.Color,
		&c.PostCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if c.Ancestors == nil {
		c.Ancestors = []string{}
	}
	return &c, nil
}

// Create inserts a category
func (r *PostgresCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, slug, parent_id, ancestors, depth, sort_order, description, icon, color)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, r.tables.Categories)

	db := GetExecutor(ctx, r.pool)
	err := db.QueryRow(ctx, query,
		category.Name,
		category.Slug,
		category.ParentID,
		category.Ancestors,
		category.Depth,
		category.Order,
		category.Description,
		category.Icon,
		category.Color,
	).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("category '%s': %w", category.Slug, domain.ErrConflict)
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Update rewrites all mutable columns, the tree bookkeeping included
func (r *PostgresCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, slug = $2, parent_id = $3, ancestors = $4, depth = $5,
			sort_order = $6, description = $7, icon = $8, color = $9, updated_at = NOW()
		WHERE id = $10
	`, r.tables.Categories)

	db := GetExecutor(ctx, r.pool)
	result, err := db.Exec(ctx, query,
		category.Name,
		category.Slug,
		category.ParentID,
		category.Ancestors,
		category.Depth,
		category.Order,
		category.Description,
		category.Icon,
		category.Color,
		category.ID,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("category '%s': %w", category.Slug, domain.ErrConflict)
		}
		return fmt.Errorf("update category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", category.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a category
func (r *PostgresCategoryRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Categories)

	db := GetExecutor(ctx, r.pool)
	result, err := db.Exec(ctx, query, id)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("category %s is referenced: %w", id, domain.ErrConflict)
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// GetByID retrieves a category by ID
func (r *PostgresCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, categoryColumns, r.tables.Categories)

	db := GetExecutor(ctx, r.pool)
	category, err := r.scan(db.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

// GetBySlug retrieves a category by slug
func (r *PostgresCategoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1`, categoryColumns, r.tables.Categories)

	db := GetExecutor(ctx, r.pool)
	category, err := r.scan(db.QueryRow(ctx, query, slug))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("category %s: %w", slug, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	return category, nil
}

// SlugExists reports whether any category carries the slug
func (r *PostgresCategoryRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE slug = $1)`, r.tables.Categories)

	db := GetExecutor(ctx, r.pool)
	var exists bool
	if err := db.QueryRow(ctx, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("check category slug: %w", err)
	}
	return exists, nil
}

// ListRoots lists root categories ordered by sort key
func (r *PostgresCategoryRepository) ListRoots(ctx context.Context) ([]*models.Category, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE parent_id IS NULL ORDER BY sort_order ASC, name ASC
	`, categoryColumns, r.tables.Categories)
	return r.list(ctx, query)
}

// ListChildren lists immediate children ordered by sort key
func (r *PostgresCategoryRepository) ListChildren(ctx context.Context, parentID string) ([]*models.Category, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE parent_id = $1 ORDER BY sort_order ASC, name ASC
	`, categoryColumns, r.tables.Categories)
	return r.list(ctx, query, parentID)
}

// ListAll lists every category
func (r *PostgresCategoryRepository) ListAll(ctx context.Context) ([]*models.Category, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s ORDER BY depth ASC, sort_order ASC, name ASC
	`, categoryColumns, r.tables.Categories)
	return r.list(ctx, query)
}

func (r *PostgresCategoryRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Category, error) {
	db := GetExecutor(ctx, r.pool)
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// AdjustPostCount adds delta to the denormalized counter, flooring at zero
func (r *PostgresCategoryRepository) AdjustPostCount(ctx context.Context, id string, delta int) error {
	query := fmt.Sprintf(`
		UPDATE %s SET post_count = GREATEST(post_count + $2, 0), updated_at = NOW()
		WHERE id = $1
	`, r.tables.Categories)

	db := GetExecutor(ctx, r.pool)
	result, err := db.Exec(ctx, query, id, delta)
	if err != nil {
		return fmt.Errorf("adjust category post count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
