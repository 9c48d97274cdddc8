package service

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"inkwell/internal/config"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

// FeedCommentService owns flat comments on feed entries and keeps the feed's
// denormalized comment counter in step.
type FeedCommentService struct {
	comments repositories.FeedCommentRepository
	feeds    *FeedService
	users    repositories.UserRepository
	logger   *slog.Logger
}

// NewFeedCommentService creates a feed comment service.
func NewFeedCommentService(
	comments repositories.FeedCommentRepository,
	feeds *FeedService,
	users repositories.UserRepository,
	logger *slog.Logger,
) *FeedCommentService {
	return &FeedCommentService{comments: comments, feeds: feeds, users: users, logger: logger}
}

// CreateCommentRequest is the payload for creating a comment on either
// surface.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

func validateComment(req *CreateCommentRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Content, validation.Required, validation.Length(1, config.MaxCommentLength)),
	); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// Create adds a comment to the feed and bumps its counter.
func (s *FeedCommentService) Create(ctx context.Context, feedID string, req *CreateCommentRequest, userID string) (*models.FeedComment, error) {
	if err := validateComment(req); err != nil {
		return nil, err
	}
	if _, err := s.feeds.feeds.GetByID(ctx, feedID); err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	author, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("author: %w", err)
	}

	comment := &models.FeedComment{
		FeedID:  feedID,
		Content: req.Content,
		Author: models.AuthorInfo{
			ID:     author.ID,
			Name:   author.DisplayName(),
			Avatar: author.Profile.Avatar,
		},
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	if err := s.feeds.IncrementCommentCount(ctx, feedID); err != nil {
		s.logger.Warn("comment count increment failed", "feed_id", feedID, "error", err)
	}
	return comment, nil
}

// ListByFeed returns the feed's comments oldest first.
func (s *FeedCommentService) ListByFeed(ctx context.Context, feedID string) ([]models.FeedComment, error) {
	if _, err := s.feeds.feeds.GetByID(ctx, feedID); err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	return s.comments.ListByFeed(ctx, feedID)
}

// Delete removes a comment; only its author or an admin.
func (s *FeedCommentService) Delete(ctx context.Context, id string, identity models.Identity) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.Author.ID != identity.UserID && !identity.IsAdmin() {
		return fmt.Errorf("comment %s: %w", id, domain.ErrForbidden)
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.feeds.DecrementCommentCount(ctx, comment.FeedID); err != nil {
		s.logger.Warn("comment count decrement failed", "feed_id", comment.FeedID, "error", err)
	}
	return nil
}

// VaultNoteCommentService owns flat comments on vault notes.
type VaultNoteCommentService struct {
	comments repositories.VaultNoteCommentRepository
	notes    *VaultNoteService
	users    repositories.UserRepository
	logger   *slog.Logger
}

// NewVaultNoteCommentService creates a note comment service.
func NewVaultNoteCommentService(
	comments repositories.VaultNoteCommentRepository,
	notes *VaultNoteService,
	users repositories.UserRepository,
	logger *slog.Logger,
) *VaultNoteCommentService {
	return &VaultNoteCommentService{comments: comments, notes: notes, users: users, logger: logger}
}

// Create adds a comment to the note and bumps its counter.
func (s *VaultNoteCommentService) Create(ctx context.Context, noteID string, req *CreateCommentRequest, userID string) (*models.VaultNoteComment, error) {
	if err := validateComment(req); err != nil {
		return nil, err
	}
	if _, err := s.notes.notes.GetByID(ctx, noteID); err != nil {
		return nil, fmt.Errorf("note: %w", err)
	}
	author, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("author: %w", err)
	}

	comment := &models.VaultNoteComment{
		NoteID:  noteID,
		Content: req.Content,
		Author: models.AuthorInfo{
			ID:     author.ID,
			Name:   author.DisplayName(),
			Avatar: author.Profile.Avatar,
		},
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	if err := s.notes.IncrementCommentCount(ctx, noteID); err != nil {
		s.logger.Warn("comment count increment failed", "note_id", noteID, "error", err)
	}
	return comment, nil
}

// ListByNote returns the note's comments oldest first.
func (s *VaultNoteCommentService) ListByNote(ctx context.Context, noteID string) ([]models.VaultNoteComment, error) {
	if _, err := s.notes.notes.GetByID(ctx, noteID); err != nil {
		return nil, fmt.Errorf("note: %w", err)
	}
	return s.comments.ListByNote(ctx, noteID)
}

// Delete removes a comment; only its author or an admin.
func (s *VaultNoteCommentService) Delete(ctx context.Context, id string, identity models.Identity) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.Author.ID != identity.UserID && !identity.IsAdmin() {
		return fmt.Errorf("comment %s: %w", id, domain.ErrForbidden)
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.notes.DecrementCommentCount(ctx, comment.NoteID); err != nil {
		s.logger.Warn("comment count decrement failed", "note_id", comment.NoteID, "error", err)
	}
	return nil
}
