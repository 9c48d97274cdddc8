package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

// PostgresPostRepository implements the PostRepository interface. The
// category and author stamps live in flat columns; the tag stamps and SEO
// block are JSONB.
type PostgresPostRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewPostRepository creates a new post repository
func NewPostRepository(config *RepositoryConfig) repositories.PostRepository {
	return &PostgresPostRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const postColumns = `id, title, slug, content, excerpt, cover_image,
	category_id, category_name, category_slug, tags,
	author_id, author_name, author_avatar,
	status, featured, seo, views, likes, published_at, created_at, updated_at`

func (r *PostgresPostRepository) scan(row interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&p.Content,
		&p.Excerpt,
		&p.CoverImage,
		&p.Category.ID,
		&p.Category.Name,
		&p.Category.Slug,
		&p.Tags,
		&p.Author.ID,
		&p.Author.Name,
		&p.Author.Avatar,
		&p.Status,
		&p.Featured,
		&p.SEO,
		&p.Views,
		&p.Likes,
		&p.PublishedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Tags == nil {
		p.Tags = []models.TagInfo{}
	}
	return &p, nil
}

// Create inserts a post
func (r *PostgresPostRepository) Create(ctx context.Context, post *models.Post) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, slug, content, excerpt, cover_image,
			category_id, category_name, category_slug, tags,
			author_id, author_name, author_avatar,
			status, featured, seo, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at
	`, r.tables.Posts)

	db := GetExecutor(ctx, r.pool)
	err := db.QueryRow(ctx, query,
		post.Title,
		post.Slug,
		post.Content,
		post.Excerpt,
		post.CoverImage,
		post.Category.ID,
		post.Category.Name,
		post.Category.Slug,
		post.Tags,
		post.Author.ID,
		post.Author.Name,
		post.Author.Avatar,
		post.Status,
		post.Featured,
		post.SEO,
		post.PublishedAt,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("post '%s': %w", post.Slug, domain.ErrConflict)
		}
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// Update rewrites all mutable columns
func (r *PostgresPostRepository) Update(ctx context.Context, post *models.Post) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, slug = $2, content = $3, excerpt = $4, cover_image = $5,
			category_id = $6, category_name = $7, category_slug = $8, tags = $9,
			status = $10, featured = $11, seo = $12, published_at = $13, updated_at = NOW()
		WHERE id = $14
	`, r.tables.Posts)

	db := GetExecutor(ctx, r.pool)
	result, err := db.Exec(ctx, query,
		post.Title,
		post.Slug,
		post.Content,
		post.Excerpt,
		post.CoverImage,
		post.Category.ID,
		post.Category.Name,
		post.Category.Slug,
		post.Tags,
		post.Status,
		post.Featured,
		post.SEO,
		post.PublishedAt,
		post.ID,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("post '%s': %w", post.Slug, domain.ErrConflict)
		}
		return fmt.Errorf("update post: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("post %s: %w", post.ID, domain.ErrNotFound)
	}
	return nil
}

// GetByID retrieves a post by ID
func (r *PostgresPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, postColumns, r.tables.Posts)

	db := GetExecutor(ctx, r.pool)
	post, err := r.scan(db.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

// GetBySlug retrieves a post by slug
func (r *PostgresPostRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1`, postColumns, r.tables.Posts)

	db := GetExecutor(ctx, r.pool)
	post, err := r.scan(db.QueryRow(ctx, query, slug))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("post %s: %w", slug, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get post by slug: %w", err)
	}
	return post, nil
}

// SlugExists reports whether any post carries the slug
func (r *PostgresPostRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE slug = $1)`, r.tables.Posts)

	db := GetExecutor(ctx, r.pool)
	var exists bool
	if err := db.QueryRow(ctx, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("check post slug: %w", err)
	}
	return exists, nil
}

// ListByStatus returns a page of posts in the given state, newest first.
// Published posts order by publication time, the rest by creation time.
func (r *PostgresPostRepository) ListByStatus(ctx context.Context, status string, page models.PageRequest) ([]models.Post, int64, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE status = $1`, r.tables.Posts)
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE status = $1
		ORDER BY COALESCE(published_at, created_at) DESC
		LIMIT $2 OFFSET $3
	`, postColumns, r.tables.Posts)

	return r.page(ctx, countQuery, []interface{}{status}, query, status, page.Size, page.Offset())
}

// ListFeatured returns up to limit featured published posts
func (r *PostgresPostRepository) ListFeatured(ctx context.Context, limit int) ([]models.Post, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE featured = TRUE AND status = 'published'
		ORDER BY published_at DESC LIMIT $1
	`, postColumns, r.tables.Posts)

	return r.list(ctx, query, limit)
}

// ListByCategory returns a page of published posts in the category
func (r *PostgresPostRepository) ListByCategory(ctx context.Context, categoryID string, page models.PageRequest) ([]models.Post, int64, error) {
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s WHERE category_id = $1 AND status = 'published'
	`, r.tables.Posts)
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE category_id = $1 AND status = 'published'
		ORDER BY published_at DESC LIMIT $2 OFFSET $3
	`, postColumns, r.tables.Posts)

	return r.page(ctx, countQuery, []interface{}{categoryID}, query, categoryID, page.Size, page.Offset())
}

// ListByTag returns a page of published posts carrying the tag. The tag
// stamps are JSONB, so membership is a containment check.
func (r *PostgresPostRepository) ListByTag(ctx context.Context, tagID string, page models.PageRequest) ([]models.Post, int64, error) {
	filter := `tags @> jsonb_build_array(jsonb_build_object('id', $1::text)) AND status = 'published'`
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, r.tables.Posts, filter)
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s
		ORDER BY published_at DESC LIMIT $2 OFFSET $3
	`, postColumns, r.tables.Posts, filter)

	return r.page(ctx, countQuery, []interface{}{tagID}, query, tagID, page.Size, page.Offset())
}

// Search matches published posts against title and content
func (r *PostgresPostRepository) Search(ctx context.Context, query string, page models.PageRequest) ([]models.Post, int64, error) {
	pattern := "%" + query + "%"
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s
		WHERE (title ILIKE $1 OR content ILIKE $1) AND status = 'published'
	`, r.tables.Posts)
	listQuery := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE (title ILIKE $1 OR content ILIKE $1) AND status = 'published'
		ORDER BY published_at DESC LIMIT $2 OFFSET $3
	`, postColumns, r.tables.Posts)

	return r.page(ctx, countQuery, []interface{}{pattern}, listQuery, pattern, page.Size, page.Offset())
}

// IncrementViews bumps the view counter
func (r *PostgresPostRepository) IncrementViews(ctx context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET views = views + 1 WHERE id = $1`, r.tables.Posts)

	db := GetExecutor(ctx, r.pool)
	result, err := db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment post views: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresPostRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Post, error) {
	db := GetExecutor(ctx, r.pool)
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		post, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

func (r *PostgresPostRepository) page(ctx context.Context, countQuery string, countArgs []interface{}, listQuery string, listArgs ...interface{}) ([]models.Post, int64, error) {
	db := GetExecutor(ctx, r.pool)
	var total int64
	if err := db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}
	posts, err := r.list(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}
