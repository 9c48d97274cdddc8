package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

// PostgresVaultNoteRepository implements the VaultNoteRepository interface.
// Forward links live in the outgoing_links TEXT[] column; the reverse query
// is an ANY() scan over it, kept fast by a GIN index.
type PostgresVaultNoteRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewVaultNoteRepository creates a new vault note repository
func NewVaultNoteRepository(config *RepositoryConfig) repositories.VaultNoteRepository {
	return &PostgresVaultNoteRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const vaultNoteColumns = `id, title, slug, content, folder_id, author_id, author_name,
	outgoing_links, tags, views, comments_count, created_at, updated_at`

func (r *PostgresVaultNoteRepository) scan(row interface{ Scan(...any) error }) (*models.VaultNote, error) {
	var n models.VaultNote
	err := row.Scan(
		&n.ID,
		&n.Title,
		&n.Slug,
		&n.Content,
		&n.FolderID,
		&n.Author.ID,
		&n.Author.Name,
		&n.OutgoingLinks,
		&n.Tags,
		&n.Views,
		&n.CommentsCount,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if n.OutgoingLinks == nil {
		n.OutgoingLinks = []string{}
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return &n, nil
}

// Create inserts a note
func (r *PostgresVaultNoteRepository) Create(ctx context.Context, note *models.VaultNote) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, slug, content, folder_id, author_id, author_name, outgoing_links, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.VaultNotes)

	db := GetExecutor(ctx, r.pool)
	err := db.QueryRow(ctx, query,
		note.Title,
		note.Slug,
		note.Content,
		note.FolderID,
		note.Author.ID,
		note.Author.Name,
		note.OutgoingLinks,
		note.Tags,
	).Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("note '%s': %w", note.Slug, domain.ErrConflict)
		}
		return fmt.Errorf("create vault note: %w", err)
	}
	return nil
}

// Update rewrites all mutable columns, the forward-link list included
func (r *PostgresVaultNoteRepository) Update(ctx context.Context, note *models.VaultNote) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, slug = $2, content = $3, folder_id = $4,
			outgoing_links = $5, tags = $6, updated_at = NOW()
		WHERE id = $7
	`, r.tables.VaultNotes)

	db := GetExecutor(ctx, r.pool)
	result, err := db.Exec(ctx, query,
		note.Title,
		note.Slug,
		note.Content,
		note.FolderID,
		note.OutgoingLinks,
		note.Tags,
		note.ID,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("note '%s': %w", note.Slug, domain.ErrConflict)
		}
		return fmt.Errorf("update vault note: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("note %s: %w", note.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a note
func (r *PostgresVaultNoteRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.VaultNotes)

	db := GetExecutor(ctx, r.pool)
	result, err := db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete vault note: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// GetByID retrieves a note by ID
func (r *PostgresVaultNoteRepository) GetByID(ctx context.Context, id string) (*models.VaultNote, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, vaultNoteColumns, r.tables.VaultNotes)

	db := GetExecutor(ctx, r.pool)
	note, err := r.scan(db.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get vault note: %w", err)
	}
	return note, nil
}

// GetBySlug retrieves a note by slug
func (r *PostgresVaultNoteRepository) GetBySlug(ctx context.Context, slug string) (*models.VaultNote, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1`, vaultNoteColumns, r.tables.VaultNotes)

	db := GetExecutor(ctx, r.pool)
	note, err := r.scan(db.QueryRow(ctx, query, slug))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("note %s: %w", slug, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get vault note by slug: %w", err)
	}
	return note, nil
}

// SlugExists reports whether any note carries the slug
func (r *PostgresVaultNoteRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE slug = $1)`, r.tables.VaultNotes)

	db := GetExecutor(ctx, r.pool)
	var exists bool
	if err := db.QueryRow(ctx, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("check vault note slug: %w", err)
	}
	return exists, nil
}

// List returns a page of notes, newest first, plus the total count
func (r *PostgresVaultNoteRepository) List(ctx context.Context, page models.PageRequest) ([]models.VaultNote, int64, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.tables.VaultNotes)
	query := fmt.Sprintf(`
		SELECT %s FROM %s ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, vaultNoteColumns, r.tables.VaultNotes)

	return r.page(ctx, countQuery, nil, query, page.Size, page.Offset())
}

// ListByFolder returns a page of the folder's notes
func (r *PostgresVaultNoteRepository) ListByFolder(ctx context.Context, folderID string, page models.PageRequest) ([]models.VaultNote, int64, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE folder_id = $1`, r.tables.VaultNotes)
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE folder_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, vaultNoteColumns, r.tables.VaultNotes)

	return r.page(ctx, countQuery, []interface{}{folderID}, query, folderID, page.Size, page.Offset())
}

// ListAll returns every note; the graph assembler consumes this
func (r *PostgresVaultNoteRepository) ListAll(ctx context.Context) ([]models.VaultNote, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at ASC`, vaultNoteColumns, r.tables.VaultNotes)

	notes, err := r.list(ctx, query)
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// Search matches the query against title and content, case-insensitively
func (r *PostgresVaultNoteRepository) Search(ctx context.Context, query string, page models.PageRequest) ([]models.VaultNote, int64, error) {
	pattern := "%" + query + "%"
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s WHERE title ILIKE $1 OR content ILIKE $1
	`, r.tables.VaultNotes)
	listQuery := fmt.Sprintf(`
		SELECT %s FROM %s WHERE title ILIKE $1 OR content ILIKE $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, vaultNoteColumns, r.tables.VaultNotes)

	return r.page(ctx, countQuery, []interface{}{pattern}, listQuery, pattern, page.Size, page.Offset())
}

// FindByOutgoingLink returns every note whose forward-link list contains the
// given note id
func (r *PostgresVaultNoteRepository) FindByOutgoingLink(ctx context.Context, noteID string) ([]models.VaultNote, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE $1 = ANY(outgoing_links) ORDER BY created_at ASC
	`, vaultNoteColumns, r.tables.VaultNotes)

	return r.list(ctx, query, noteID)
}

// IncrementViews bumps the view counter
func (r *PostgresVaultNoteRepository) IncrementViews(ctx context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET views = views + 1 WHERE id = $1`, r.tables.VaultNotes)

	db := GetExecutor(ctx, r.pool)
	result, err := db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment vault note views: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// AdjustCommentsCount adds delta to the counter, flooring at zero
func (r *PostgresVaultNoteRepository) AdjustCommentsCount(ctx context.Context, id string, delta int) error {
	query := fmt.Sprintf(`
		UPDATE %s SET comments_count = GREATEST(comments_count + $2, 0) WHERE id = $1
	`, r.tables.VaultNotes)

	db := GetExecutor(ctx, r.pool)
	result, err := db.Exec(ctx, query, id, delta)
	if err != nil {
		return fmt.Errorf("adjust vault note comment count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresVaultNoteRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.VaultNote, error) {
	db := GetExecutor(ctx, r.pool)
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vault notes: %w", err)
	}
	defer rows.Close()

	notes := []models.VaultNote{}
	for rows.Next() {
		note, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vault note: %w", err)
		}
		notes = append(notes, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vault notes: %w", err)
	}
	return notes, nil
}

func (r *PostgresVaultNoteRepository) page(ctx context.Context, countQuery string, countArgs []interface{}, listQuery string, listArgs ...interface{}) ([]models.VaultNote, int64, error) {
	db := GetExecutor(ctx, r.pool)
	var total int64
	if err := db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count vault notes: %w", err)
	}
	notes, err := r.list(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}
