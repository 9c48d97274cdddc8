package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

// PostgresFeedRepository implements the FeedRepository interface. The link
// preview is a nullable JSONB column; liked_by is a TEXT[] of user ids.
type PostgresFeedRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(config *RepositoryConfig) repositories.FeedRepository {
	return &PostgresFeedRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const feedColumns = `id, content, images, author_id, author_name, author_avatar,
	visibility, link_preview, likes_count, liked_by, comments_count, views,
	created_at, updated_at`

func (r *PostgresFeedRepository) scan(row interface{ Scan(...any) error }) (*models.Feed, error) {
	var f models.Feed
	err := row.Scan(
		&f.ID,
		&f.Content,
		&f.Images,
		&f.Author.ID,
		&f.Author.Name,
		&f.Author.Avatar,
		&f.Visibility,
		&f.LinkPreview,
		&f.LikesCount,
		&f.LikedBy,
		&f.CommentsCount,
		&f.Views,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if f.Images == nil {
		f.Images = []string{}
	}
	if f.LikedBy == nil {
		f.LikedBy = []string{}
	}
	return &f, nil
}

// Create inserts a feed entry
func (r *PostgresFeedRepository) Create(ctx context.Context, feed *models.Feed) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (content, images, author_id, author_name, author_avatar,
			visibility, link_preview, liked_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.Feeds)

	db := GetExecutor(ctx, r.pool)
	err := db.QueryRow(ctx, query,
		feed.Content,
		feed.Images,
		feed.Author.ID,
		feed.Author.Name,
		feed.Author.Avatar,
		feed.Visibility,
		feed.LinkPreview,
		feed.LikedBy,
	).Scan(&feed.ID, &feed.CreatedAt, &feed.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create feed: %w", err)
	}
	return nil
}

// Update rewrites all mutable columns, the like list included
func (r *PostgresFeedRepository) Update(ctx context.Context, feed *models.Feed) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET content = $1, images = $2, visibility = $3, link_preview = $4,
			likes_count = $5, liked_by = $6, updated_at = NOW()
		WHERE id = $7
	`, r.tables.Feeds)

	db := GetExecutor(ctx, r.pool)
	result, err := db.Exec(ctx, query,
		feed.Content,
		feed.Images,
		feed.Visibility,
		feed.LinkPreview,
		feed.LikesCount,
		feed.LikedBy,
		feed.ID,
	)
	if err != nil {
		return fmt.Errorf("update feed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("feed %s: %w", feed.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a feed entry
func (r *PostgresFeedRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Feeds)

	db := GetExecutor(ctx, r.pool)
	result, err := db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("feed %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// GetByID retrieves a feed entry by ID
func (r *PostgresFeedRepository) GetByID(ctx context.Context, id string) (*models.Feed, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, feedColumns, r.tables.Feeds)

	db := GetExecutor(ctx, r.pool)
	feed, err := r.scan(db.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("feed %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get feed: %w", err)
	}
	return feed, nil
}

// ListByVisibility returns a page of entries with the given visibility
func (r *PostgresFeedRepository) ListByVisibility(ctx context.Context, visibility string, page models.PageRequest) ([]models.Feed, int64, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE visibility = $1`, r.tables.Feeds)
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE visibility = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, feedColumns, r.tables.Feeds)

	return r.page(ctx, countQuery, []interface{}{visibility}, query, visibility, page.Size, page.Offset())
}

// ListAll returns a page of every entry regardless of visibility
func (r *PostgresFeedRepository) ListAll(ctx context.Context, page models.PageRequest) ([]models.Feed, int64, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.tables.Feeds)
	query := fmt.Sprintf(`
		SELECT %s FROM %s ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, feedColumns, r.tables.Feeds)

	return r.page(ctx, countQuery, nil, query, page.Size, page.Offset())
}

// IncrementViews bumps the view counter
func (r *PostgresFeedRepository) IncrementViews(ctx context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET views = views + 1 WHERE id = $1`, r.tables.Feeds)

	db := GetExecutor(ctx, r.pool)
	result, err := db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment feed views: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("feed %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// AdjustCommentsCount adds delta to the counter, flooring at zero
func (r *PostgresFeedRepository) AdjustCommentsCount(ctx context.Context, id string, delta int) error {
	query := fmt.Sprintf(`
		UPDATE %s SET comments_count = GREATEST(comments_count + $2, 0) WHERE id = $1
	`, r.tables.Feeds)

	db := GetExecutor(ctx, r.pool)
	result, err := db.Exec(ctx, query, id, delta)
	if err != nil {
		return fmt.Errorf("adjust feed comment count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("feed %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresFeedRepository) page(ctx context.Context, countQuery string, countArgs []interface{}, listQuery string, listArgs ...interface{}) ([]models.Feed, int64, error) {
	db := GetExecutor(ctx, r.pool)
	var total int64
	if err := db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count feeds: %w", err)
	}

	rows, err := db.Query(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list feeds: %w", err)
	}
	defer rows.Close()

	feeds := []models.Feed{}
	for rows.Next() {
		feed, err := r.scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan feed: %w", err)
		}
		feeds = append(feeds, *feed)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate feeds: %w", err)
	}
	return feeds, total, nil
}
