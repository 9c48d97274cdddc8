package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

// PostgresVaultFolderRepository implements the VaultFolderRepository
// interface. Same column layout as categories, with the note counter in
// place of the category-only fields.
type PostgresVaultFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewVaultFolderRepository creates a new vault folder repository
func NewVaultFolderRepository(config *RepositoryConfig) repositories.VaultFolderRepository {
	return &PostgresVaultFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const vaultFolderColumns = `id, name, slug, parent_id, ancestors, depth, sort_order,
	note_count, created_at, updated_at`

func (r *PostgresVaultFolderRepository) scan(row interface{ Scan(...any) error }) (*models.VaultFolder, error) {
	var f models.VaultFolder
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Slug,
		&f.ParentID,
		&f.Ancestors,
		&f.Depth,
		&f.Order,
		&f.NoteCount,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if f.Ancestors == nil {
		f.Ancestors = []string{}
	}
	return &f, nil
}

// Create inserts a folder
func (r *PostgresVaultFolderRepository) Create(ctx context.Context, folder *models.VaultFolder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, slug, parent_id, ancestors, depth, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.tables.VaultFolders)

	db := GetExecutor(ctx, r.pool)
	err := db.QueryRow(ctx, query,
		folder.Name,
		folder.Slug,
		folder.ParentID,
		folder.Ancestors,
		folder.Depth,
		folder.Order,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("folder '%s': %w", folder.Slug, domain.ErrConflict)
		}
		return fmt.Errorf("create vault folder: %w", err)
	}
	return nil
}

// Update rewrites all mutable columns, the tree bookkeeping included
func (r *PostgresVaultFolderRepository) Update(ctx context.Context, folder *models.VaultFolder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, slug = $2, parent_id = $3, ancestors = $4, depth = $5,
			sort_order = $6, updated_at = NOW()
		WHERE id = $7
	`, r.tables.VaultFolders)

	db := GetExecutor(ctx, r.pool)
	result, err := db.Exec(ctx, query,
		folder.Name,
		folder.Slug,
		folder.ParentID,
		folder.Ancestors,
		folder.Depth,
		folder.Order,
		folder.ID,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("folder '%s': %w", folder.Slug, domain.ErrConflict)
		}
		return fmt.Errorf("update vault folder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a folder
func (r *PostgresVaultFolderRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.VaultFolders)

	db := GetExecutor(ctx, r.pool)
	result, err := db.Exec(ctx, query, id)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("folder %s is referenced: %w", id, domain.ErrConflict)
		}
		return fmt.Errorf("delete vault folder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresVaultFolderRepository) GetByID(ctx context.Context, id string) (*models.VaultFolder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, vaultFolderColumns, r.tables.VaultFolders)

	db := GetExecutor(ctx, r.pool)
	folder, err := r.scan(db.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get vault folder: %w", err)
	}
	return folder, nil
}

// GetBySlug retrieves a folder by slug
func (r *PostgresVaultFolderRepository) GetBySlug(ctx context.Context, slug string) (*models.VaultFolder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1`, vaultFolderColumns, r.tables.VaultFolders)

	db := GetExecutor(ctx, r.pool)
	folder, err := r.scan(db.QueryRow(ctx, query, slug))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", slug, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get vault folder by slug: %w", err)
	}
	return folder, nil
}

// SlugExists reports whether any folder carries the slug
func (r *PostgresVaultFolderRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE slug = $1)`, r.tables.VaultFolders)

	db := GetExecutor(ctx, r.pool)
	var exists bool
	if err := db.QueryRow(ctx, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("check vault folder slug: %w", err)
	}
	return exists, nil
}

// ListRoots lists root folders ordered by sort key
func (r *PostgresVaultFolderRepository) ListRoots(ctx context.Context) ([]*models.VaultFolder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE parent_id IS NULL ORDER BY sort_order ASC, name ASC
	`, vaultFolderColumns, r.tables.VaultFolders)
	return r.list(ctx, query)
}

// ListChildren lists immediate children ordered by sort key
func (r *PostgresVaultFolderRepository) ListChildren(ctx context.Context, parentID string) ([]*models.VaultFolder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE parent_id = $1 ORDER BY sort_order ASC, name ASC
	`, vaultFolderColumns, r.tables.VaultFolders)
	return r.list(ctx, query, parentID)
}

// ListAll lists every folder
func (r *PostgresVaultFolderRepository) ListAll(ctx context.Context) ([]*models.VaultFolder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s ORDER BY depth ASC, sort_order ASC, name ASC
	`, vaultFolderColumns, r.tables.VaultFolders)
	return r.list(ctx, query)
}

func (r *PostgresVaultFolderRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.VaultFolder, error) {
	db := GetExecutor(ctx, r.pool)
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vault folders: %w", err)
	}
	defer rows.Close()

	var folders []*models.VaultFolder
	for rows.Next() {
		folder, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vault folder: %w", err)
		}
		folders = append(folders, folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vault folders: %w", err)
	}
	return folders, nil
}

// AdjustNoteCount adds delta to the denormalized counter, flooring at zero
func (r *PostgresVaultFolderRepository) AdjustNoteCount(ctx context.Context, id string, delta int) error {
	query := fmt.Sprintf(`
		UPDATE %s SET note_count = GREATEST(note_count + $2, 0), updated_at = NOW()
		WHERE id = $1
	`, r.tables.VaultFolders)

	db := GetExecutor(ctx, r.pool)
	result, err := db.Exec(ctx, query, id, delta)
	if err != nil {
		return fmt.Errorf("adjust vault folder note count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
