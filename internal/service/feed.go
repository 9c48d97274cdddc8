package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

// FeedService owns the social feed: short posts with images, likes and a
// scraped link preview.
type FeedService struct {
	feeds    repositories.FeedRepository
	comments repositories.FeedCommentRepository
	users    repositories.UserRepository
	previews *LinkPreviewService
	logger   *slog.Logger
}

// NewFeedService creates a feed service.
func NewFeedService(
	feeds repositories.FeedRepository,
	comments repositories.FeedCommentRepository,
	users repositories.UserRepository,
	previews *LinkPreviewService,
	logger *slog.Logger,
) *FeedService {
	return &FeedService{
		feeds:    feeds,
		comments: comments,
		users:    users,
		previews: previews,
		logger:   logger,
	}
}

// CreateFeedRequest is the payload for creating a feed entry. LinkURL, when
// present, is scraped for a preview at write time.
type CreateFeedRequest struct {
	Content    string   `json:"content"`
	Images     []string `json:"images"`
	Visibility string   `json:"visibility"`
	LinkURL    string   `json:"linkUrl"`
}

// UpdateFeedRequest applies only the fields that are present. A present
// LinkURL re-scrapes; an explicit empty string clears the preview.
type UpdateFeedRequest struct {
	Content    *string   `json:"content"`
	Images     *[]string `json:"images"`
	Visibility *string   `json:"visibility"`
	LinkURL    *string   `json:"linkUrl"`
}

func validVisibility(v string) bool {
	return v == models.FeedPublic || v == models.FeedPrivate
}

// Create creates a feed entry. Preview scraping is best-effort and never
// fails the write.
func (s *FeedService) Create(ctx context.Context, req *CreateFeedRequest, userID string) (*models.Feed, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Content, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = models.FeedPublic
	}
	if !validVisibility(visibility) {
		return nil, fmt.Errorf("visibility %q: %w", req.Visibility, domain.ErrValidation)
	}

	author, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("author: %w", err)
	}

	images := req.Images
	if images == nil {
		images = []string{}
	}

	feed := &models.Feed{
		Content: req.Content,
		Images:  images,
		Author: models.AuthorInfo{
			ID:     author.ID,
			Name:   author.DisplayName(),
			Avatar: author.Profile.Avatar,
		},
		Visibility: visibility,
		LikedBy:    []string{},
	}

	if req.LinkURL != "" {
		preview, err := s.previews.Fetch(ctx, req.LinkURL)
		if err != nil {
			return nil, err
		}
		feed.LinkPreview = preview
	}

	if err := s.feeds.Create(ctx, feed); err != nil {
		return nil, err
	}
	s.logger.Info("feed created", "id", feed.ID, "visibility", feed.Visibility)
	return feed, nil
}

// Update edits a feed entry; only the author may edit.
func (s *FeedService) Update(ctx context.Context, id string, req *UpdateFeedRequest, identity models.Identity) (*models.Feed, error) {
	feed, err := s.feeds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if feed.Author.ID != identity.UserID && !identity.IsAdmin() {
		return nil, fmt.Errorf("feed %s: %w", id, domain.ErrForbidden)
	}

	if req.Content != nil {
		if *req.Content == "" {
			return nil, fmt.Errorf("content cannot be empty: %w", domain.ErrValidation)
		}
		feed.Content = *req.Content
	}
	if req.Images != nil {
		feed.Images = *req.Images
	}
	if req.Visibility != nil {
		if !validVisibility(*req.Visibility) {
			return nil, fmt.Errorf("visibility %q: %w", *req.Visibility, domain.ErrValidation)
		}
		feed.Visibility = *req.Visibility
	}
	if req.LinkURL != nil {
		if *req.LinkURL == "" {
			feed.LinkPreview = nil
		} else {
			preview, err := s.previews.Fetch(ctx, *req.LinkURL)
			if err != nil {
				return nil, err
			}
			feed.LinkPreview = preview
		}
	}

	if err := s.feeds.Update(ctx, feed); err != nil {
		return nil, err
	}
	return feed, nil
}

// Delete removes a feed entry and its comments; only the author or an admin.
func (s *FeedService) Delete(ctx context.Context, id string, identity models.Identity) error {
	feed, err := s.feeds.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if feed.Author.ID != identity.UserID && !identity.IsAdmin() {
		return fmt.Errorf("feed %s: %w", id, domain.ErrForbidden)
	}

	if err := s.comments.DeleteAllByFeed(ctx, id); err != nil {
		return fmt.Errorf("delete feed comments: %w", err)
	}
	if err := s.feeds.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("feed deleted", "id", id)
	return nil
}

// GetByID retrieves a feed entry and counts the view. Private entries are
// visible only to their author and admins.
func (s *FeedService) GetByID(ctx context.Context, id string, identity models.Identity) (*models.Feed, error) {
	feed, err := s.feeds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if feed.Visibility == models.FeedPrivate && feed.Author.ID != identity.UserID && !identity.IsAdmin() {
		return nil, fmt.Errorf("feed %s: %w", id, domain.ErrNotFound)
	}
	if err := s.feeds.IncrementViews(ctx, id); err != nil {
		s.logger.Warn("view increment failed", "feed_id", id, "error", err)
	} else {
		feed.Views++
	}
	return feed, nil
}

// List returns a page of feed entries. Anonymous callers and plain users see
// only public entries; admins see everything.
func (s *FeedService) List(ctx context.Context, identity models.Identity, page models.PageRequest) (*models.Page[models.Feed], error) {
	var (
		feeds []models.Feed
		total int64
		err   error
	)
	if identity.IsAdmin() {
		feeds, total, err = s.feeds.ListAll(ctx, page)
	} else {
		feeds, total, err = s.feeds.ListByVisibility(ctx, models.FeedPublic, page)
	}
	if err != nil {
		return nil, err
	}
	return models.NewPage(feeds, page, total), nil
}

// ToggleLike likes the feed for the user, or unlikes when already liked.
// Returns the updated feed and whether it is now liked.
func (s *FeedService) ToggleLike(ctx context.Context, id, userID string) (*models.Feed, bool, error) {
	feed, err := s.feeds.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	liked := slices.Contains(feed.LikedBy, userID)
	if liked {
		feed.LikedBy = slices.DeleteFunc(feed.LikedBy, func(id string) bool { return id == userID })
	} else {
		feed.LikedBy = append(feed.LikedBy, userID)
	}
	feed.LikesCount = len(feed.LikedBy)

	if err := s.feeds.Update(ctx, feed); err != nil {
		return nil, false, err
	}
	return feed, !liked, nil
}

// IncrementCommentCount bumps the feed's comment counter.
func (s *FeedService) IncrementCommentCount(ctx context.Context, feedID string) error {
	return s.feeds.AdjustCommentsCount(ctx, feedID, 1)
}

// DecrementCommentCount lowers the counter, flooring at zero.
func (s *FeedService) DecrementCommentCount(ctx context.Context, feedID string) error {
	return s.feeds.AdjustCommentsCount(ctx, feedID, -1)
}
