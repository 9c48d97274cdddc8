package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"inkwell/internal/config"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
	"inkwell/internal/utils"
)

// PostService owns blog posts: publication state, the denormalized category
// and tag stamps, and the per-category/per-tag counters.
type PostService struct {
	posts      repositories.PostRepository
	categories *CategoryService
	tags       *TagService
	users      repositories.UserRepository
	logger     *slog.Logger
}

// NewPostService creates a post service.
func NewPostService(
	posts repositories.PostRepository,
	categories *CategoryService,
	tags *TagService,
	users repositories.UserRepository,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		posts:      posts,
		categories: categories,
		tags:       tags,
		users:      users,
		logger:     logger,
	}
}

// CreatePostRequest is the payload for creating a post.
type CreatePostRequest struct {
	Title      string         `json:"title"`
	Slug       string         `json:"slug"`
	Content    string         `json:"content"`
	Excerpt    string         `json:"excerpt"`
	CoverImage string         `json:"coverImage"`
	CategoryID string         `json:"categoryId"`
	Tags       []string       `json:"tags"`
	Status     string         `json:"status"`
	Featured   bool           `json:"featured"`
	SEO        models.SEOInfo `json:"seo"`
}

// UpdatePostRequest applies only the fields that are present.
type UpdatePostRequest struct {
	Title      *string         `json:"title"`
	Slug       *string         `json:"slug"`
	Content    *string         `json:"content"`
	Excerpt    *string         `json:"excerpt"`
	CoverImage *string         `json:"coverImage"`
	CategoryID *string         `json:"categoryId"`
	Tags       *[]string       `json:"tags"`
	Status     *string         `json:"status"`
	Featured   *bool           `json:"featured"`
	SEO        *models.SEOInfo `json:"seo"`
}

func validStatus(status string) bool {
	switch status {
	case models.PostDraft, models.PostPublished, models.PostArchived:
		return true
	}
	return false
}

// autoExcerpt takes the leading run of content when no excerpt is supplied.
func autoExcerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= config.MaxExcerptLength {
		return content
	}
	return string(runes[:config.MaxExcerptLength])
}

// Create creates a post, stamping the category, resolving tags through
// find-or-create, and bumping the relevant counters.
func (s *PostService) Create(ctx context.Context, req *CreatePostRequest, userID string) (*models.Post, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, config.MaxTitleLength)),
		validation.Field(&req.CategoryID, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	status := req.Status
	if status == "" {
		status = models.PostDraft
	}
	if !validStatus(status) {
		return nil, fmt.Errorf("status %q: %w", req.Status, domain.ErrValidation)
	}

	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Title)
	}
	if slug == "" {
		return nil, fmt.Errorf("title %q yields an empty slug: %w", req.Title, domain.ErrValidation)
	}
	exists, err := s.posts.SlugExists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("post slug %q: %w", slug, domain.ErrDuplicateSlug)
	}

	category, err := s.categories.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("category: %w", err)
	}
	author, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("author: %w", err)
	}
	tags, err := s.tags.FindOrCreate(ctx, req.Tags)
	if err != nil {
		return nil, fmt.Errorf("tags: %w", err)
	}

	excerpt := req.Excerpt
	if excerpt == "" {
		excerpt = autoExcerpt(req.Content)
	}

	post := &models.Post{
		Title:      req.Title,
		Slug:       slug,
		Content:    req.Content,
		Excerpt:    excerpt,
		CoverImage: req.CoverImage,
		Category: models.CategoryInfo{
			ID:   category.ID,
			Name: category.Name,
			Slug: category.Slug,
		},
		Tags: tagStamps(tags),
		Author: models.AuthorInfo{
			ID:     author.ID,
			Name:   author.DisplayName(),
			Avatar: author.Profile.Avatar,
		},
		Status:   status,
		Featured: req.Featured,
		SEO:      req.SEO,
	}
	if status == models.PostPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	if err := s.categories.IncrementPostCount(ctx, category.ID); err != nil {
		s.logger.Warn("post count increment failed", "category_id", category.ID, "error", err)
	}
	for _, tag := range tags {
		if err := s.tags.IncrementPostCount(ctx, tag.ID); err != nil {
			s.logger.Warn("post count increment failed", "tag_id", tag.ID, "error", err)
		}
	}

	s.logger.Info("post created", "id", post.ID, "slug", post.Slug, "status", post.Status)
	return post, nil
}

func tagStamps(tags []models.Tag) []models.TagInfo {
	stamps := make([]models.TagInfo, 0, len(tags))
	for _, t := range tags {
		stamps = append(stamps, models.TagInfo{ID: t.ID, Name: t.Name})
	}
	return stamps
}

// Update edits a post. Category and tag changes re-stamp the denormalized
// info and rebalance the counters; the first transition to published sets
// PublishedAt once and later transitions leave it alone.
func (s *PostService) Update(ctx context.Context, id string, req *UpdatePostRequest) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, fmt.Errorf("title cannot be empty: %w", domain.ErrValidation)
		}
		post.Title = *req.Title
	}
	if req.Slug != nil && *req.Slug != post.Slug {
		if *req.Slug == "" {
			return nil, fmt.Errorf("slug cannot be empty: %w", domain.ErrValidation)
		}
		exists, err := s.posts.SlugExists(ctx, *req.Slug)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("post slug %q: %w", *req.Slug, domain.ErrDuplicateSlug)
		}
		post.Slug = *req.Slug
	}
	if req.Content != nil {
		post.Content = *req.Content
		if req.Excerpt == nil && post.Excerpt == "" {
			post.Excerpt = autoExcerpt(*req.Content)
		}
	}
	if req.Excerpt != nil {
		post.Excerpt = *req.Excerpt
	}
	if req.CoverImage != nil {
		post.CoverImage = *req.CoverImage
	}
	if req.Featured != nil {
		post.Featured = *req.Featured
	}
	if req.SEO != nil {
		post.SEO = *req.SEO
	}

	if req.CategoryID != nil && *req.CategoryID != post.Category.ID {
		category, err := s.categories.GetByID(ctx, *req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("category: %w", err)
		}
		if err := s.categories.DecrementPostCount(ctx, post.Category.ID); err != nil {
			s.logger.Warn("post count decrement failed", "category_id", post.Category.ID, "error", err)
		}
		if err := s.categories.IncrementPostCount(ctx, category.ID); err != nil {
			s.logger.Warn("post count increment failed", "category_id", category.ID, "error", err)
		}
		post.Category = models.CategoryInfo{ID: category.ID, Name: category.Name, Slug: category.Slug}
	}

	if req.Tags != nil {
		tags, err := s.tags.FindOrCreate(ctx, *req.Tags)
		if err != nil {
			return nil, fmt.Errorf("tags: %w", err)
		}
		old := map[string]bool{}
		for _, t := range post.Tags {
			old[t.ID] = true
		}
		kept := map[string]bool{}
		for _, t := range tags {
			kept[t.ID] = true
			if !old[t.ID] {
				if err := s.tags.IncrementPostCount(ctx, t.ID); err != nil {
					s.logger.Warn("post count increment failed", "tag_id", t.ID, "error", err)
				}
			}
		}
		for id := range old {
			if !kept[id] {
				if err := s.tags.DecrementPostCount(ctx, id); err != nil {
					s.logger.Warn("post count decrement failed", "tag_id", id, "error", err)
				}
			}
		}
		post.Tags = tagStamps(tags)
	}

	if req.Status != nil && *req.Status != post.Status {
		if !validStatus(*req.Status) {
			return nil, fmt.Errorf("status %q: %w", *req.Status, domain.ErrValidation)
		}
		post.Status = *req.Status
		if post.Status == models.PostPublished && post.PublishedAt == nil {
			now := time.Now()
			post.PublishedAt = &now
		}
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete archives the post. Rows are never removed; archived posts drop out
// of public listings but stay addressable to admins.
func (s *PostService) Delete(ctx context.Context, id string) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.Status == models.PostArchived {
		return nil
	}

	post.Status = models.PostArchived
	if err := s.posts.Update(ctx, post); err != nil {
		return err
	}

	if err := s.categories.DecrementPostCount(ctx, post.Category.ID); err != nil {
		s.logger.Warn("post count decrement failed", "category_id", post.Category.ID, "error", err)
	}
	for _, tag := range post.Tags {
		if err := s.tags.DecrementPostCount(ctx, tag.ID); err != nil {
			s.logger.Warn("post count decrement failed", "tag_id", tag.ID, "error", err)
		}
	}

	s.logger.Info("post archived", "id", id, "slug", post.Slug)
	return nil
}

// GetByID retrieves a post without counting a view.
func (s *PostService) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// GetBySlug retrieves a published post by slug and counts the view.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.posts.IncrementViews(ctx, post.ID); err != nil {
		s.logger.Warn("view increment failed", "post_id", post.ID, "error", err)
	} else {
		post.Views++
	}
	return post, nil
}

// ListPublished returns a page of published posts, newest first.
func (s *PostService) ListPublished(ctx context.Context, page models.PageRequest) (*models.Page[models.Post], error) {
	posts, total, err := s.posts.ListByStatus(ctx, models.PostPublished, page)
	if err != nil {
		return nil, err
	}
	return models.NewPage(posts, page, total), nil
}

// ListByStatus returns a page of posts in any state; admin-only surface.
func (s *PostService) ListByStatus(ctx context.Context, status string, page models.PageRequest) (*models.Page[models.Post], error) {
	if !validStatus(status) {
		return nil, fmt.Errorf("status %q: %w", status, domain.ErrValidation)
	}
	posts, total, err := s.posts.ListByStatus(ctx, status, page)
	if err != nil {
		return nil, err
	}
	return models.NewPage(posts, page, total), nil
}

// ListFeatured returns up to limit featured published posts.
func (s *PostService) ListFeatured(ctx context.Context, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.posts.ListFeatured(ctx, limit)
}

// ListByCategory returns a page of published posts in the category.
func (s *PostService) ListByCategory(ctx context.Context, categoryID string, page models.PageRequest) (*models.Page[models.Post], error) {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return nil, err
	}
	posts, total, err := s.posts.ListByCategory(ctx, categoryID, page)
	if err != nil {
		return nil, err
	}
	return models.NewPage(posts, page, total), nil
}

// ListByTag returns a page of published posts carrying the tag.
func (s *PostService) ListByTag(ctx context.Context, tagID string, page models.PageRequest) (*models.Page[models.Post], error) {
	if _, err := s.tags.GetByID(ctx, tagID); err != nil {
		return nil, err
	}
	posts, total, err := s.posts.ListByTag(ctx, tagID, page)
	if err != nil {
		return nil, err
	}
	return models.NewPage(posts, page, total), nil
}

// Search returns published posts matching the query in title or content.
func (s *PostService) Search(ctx context.Context, query string, page models.PageRequest) (*models.Page[models.Post], error) {
	posts, total, err := s.posts.Search(ctx, query, page)
	if err != nil {
		return nil, err
	}
	return models.NewPage(posts, page, total), nil
}
