package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

// PostgresFeedCommentRepository implements the FeedCommentRepository
// interface
type PostgresFeedCommentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFeedCommentRepository creates a new feed comment repository
func NewFeedCommentRepository(config *RepositoryConfig) repositories.FeedCommentRepository {
	return &PostgresFeedCommentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a comment
func (r *PostgresFeedCommentRepository) Create(ctx context.Context, comment *models.FeedComment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (feed_id, author_id, author_name, author_avatar, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, r.tables.FeedComments)

	db := GetExecutor(ctx, r.pool)
	err := db.QueryRow(ctx, query,
		comment.FeedID,
		comment.Author.ID,
		comment.Author.Name,
		comment.Author.Avatar,
		comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("feed %s: %w", comment.FeedID, domain.ErrNotFound)
		}
		return fmt.Errorf("create feed comment: %w", err)
	}
	return nil
}

// Delete removes a comment
func (r *PostgresFeedCommentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.FeedComments)

	db := GetExecutor(ctx, r.pool)
	result, err := db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete feed comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// GetByID retrieves a comment by ID
func (r *PostgresFeedCommentRepository) GetByID(ctx context.Context, id string) (*models.FeedComment, error) {
	query := fmt.Sprintf(`
		SELECT id, feed_id, author_id, author_name, author_avatar, content, created_at
		FROM %s WHERE id = $1
	`, r.tables.FeedComments)

	db := GetExecutor(ctx, r.pool)
	var c models.FeedComment
	err := db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.FeedID, &c.Author.ID, &c.Author.Name, &c.Author.Avatar, &c.Content, &c.CreatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get feed comment: %w", err)
	}
	return &c, nil
}

// ListByFeed lists the feed's comments oldest first
func (r *PostgresFeedCommentRepository) ListByFeed(ctx context.Context, feedID string) ([]models.FeedComment, error) {
	query := fmt.Sprintf(`
		SELECT id, feed_id, author_id, author_name, author_avatar, content, created_at
		FROM %s WHERE feed_id = $1 ORDER BY created_at ASC
	`, r.tables.FeedComments)

	db := GetExecutor(ctx, r.pool)
	rows, err := db.Query(ctx, query, feedID)
	if err != nil {
		return nil, fmt.Errorf("list feed comments: %w", err)
	}
	defer rows.Close()

	comments := []models.FeedComment{}
	for rows.Next() {
		var c models.FeedComment
		err := rows.Scan(&c.ID, &c.FeedID, &c.Author.ID, &c.Author.Name, &c.Author.Avatar, &c.Content, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan feed comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feed comments: %w", err)
	}
	return comments, nil
}

// DeleteAllByFeed removes every comment on the feed
func (r *PostgresFeedCommentRepository) DeleteAllByFeed(ctx context.Context, feedID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE feed_id = $1`, r.tables.FeedComments)

	db := GetExecutor(ctx, r.pool)
	if _, err := db.Exec(ctx, query, feedID); err != nil {
		return fmt.Errorf("delete feed comments: %w", err)
	}
	return nil
}

// PostgresVaultNoteCommentRepository implements the
// VaultNoteCommentRepository interface
type PostgresVaultNoteCommentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewVaultNoteCommentRepository creates a new note comment repository
func NewVaultNoteCommentRepository(config *RepositoryConfig) repositories.VaultNoteCommentRepository {
	return &PostgresVaultNoteCommentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a comment
func (r *PostgresVaultNoteCommentRepository) Create(ctx context.Context, comment *models.VaultNoteComment) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (note_id, author_id, author_name, author_avatar, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, r.tables.VaultNoteComments)

	db := GetExecutor(ctx, r.pool)
	err := db.QueryRow(ctx, query,
		comment.NoteID,
		comment.Author.ID,
		comment.Author.Name,
		comment.Author.Avatar,
		comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("note %s: %w", comment.NoteID, domain.ErrNotFound)
		}
		return fmt.Errorf("create note comment: %w", err)
	}
	return nil
}

// Delete removes a comment
func (r *PostgresVaultNoteCommentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.VaultNoteComments)

	db := GetExecutor(ctx, r.pool)
	result, err := db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete note comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// GetByID retrieves a comment by ID
func (r *PostgresVaultNoteCommentRepository) GetByID(ctx context.Context, id string) (*models.VaultNoteComment, error) {
	query := fmt.Sprintf(`
		SELECT id, note_id, author_id, author_name, author_avatar, content, created_at
		FROM %s WHERE id = $1
	`, r.tables.VaultNoteComments)

	db := GetExecutor(ctx, r.pool)
	var c models.VaultNoteComment
	err := db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.NoteID, &c.Author.ID, &c.Author.Name, &c.Author.Avatar, &c.Content, &c.CreatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get note comment: %w", err)
	}
	return &c, nil
}

// ListByNote lists the note's comments oldest first
func (r *PostgresVaultNoteCommentRepository) ListByNote(ctx context.Context, noteID string) ([]models.VaultNoteComment, error) {
	query := fmt.Sprintf(`
		SELECT id, note_id, author_id, author_name, author_avatar, content, created_at
		FROM %s WHERE note_id = $1 ORDER BY created_at ASC
	`, r.tables.VaultNoteComments)

	db := GetExecutor(ctx, r.pool)
	rows, err := db.Query(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("list note comments: %w", err)
	}
	defer rows.Close()

	comments := []models.VaultNoteComment{}
	for rows.Next() {
		var c models.VaultNoteComment
		err := rows.Scan(&c.ID, &c.NoteID, &c.Author.ID, &c.Author.Name, &c.Author.Avatar, &c.Content, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan note comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate note comments: %w", err)
	}
	return comments, nil
}

// DeleteAllByNote removes every comment on the note
func (r *PostgresVaultNoteCommentRepository) DeleteAllByNote(ctx context.Context, noteID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE note_id = $1`, r.tables.VaultNoteComments)

	db := GetExecutor(ctx, r.pool)
	if _, err := db.Exec(ctx, query, noteID); err != nil {
		return fmt.Errorf("delete note comments: %w", err)
	}
	return nil
}
