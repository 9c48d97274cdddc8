package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"inkwell/internal/config"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
	"inkwell/internal/utils"
)

// TagService owns tags. Tags are mostly created implicitly through
// FindOrCreate while saving posts.
type TagService struct {
	repo   repositories.TagRepository
	logger *slog.Logger
}

// NewTagService creates a tag service.
func NewTagService(repo repositories.TagRepository, logger *slog.Logger) *TagService {
	return &TagService{repo: repo, logger: logger}
}

// CreateTagRequest is the payload for creating a tag explicitly.
type CreateTagRequest struct {
	Name string `json:"name"`
}

// Create creates a tag with a derived slug. Name collisions are conflicts.
func (s *TagService) Create(ctx context.Context, req *CreateTagRequest) (*models.Tag, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxTagNameLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if existing, err := s.repo.GetByName(ctx, req.Name); err == nil {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("tag %q already exists", req.Name),
			ResourceType: "tag",
			ResourceID:   existing.ID,
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	slug := utils.Slugify(req.Name)
	if slug == "" {
		return nil, fmt.Errorf("name %q yields an empty slug: %w", req.Name, domain.ErrValidation)
	}

	tag := &models.Tag{Name: req.Name, Slug: slug}
	if err := s.repo.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// FindOrCreate resolves each name to an existing tag or creates it, keeping
// input order. Names that slug to nothing are skipped.
func (s *TagService) FindOrCreate(ctx context.Context, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		tag, err := s.repo.GetByName(ctx, name)
		if err == nil {
			tags = append(tags, *tag)
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}

		slug := utils.Slugify(name)
		if slug == "" {
			continue
		}
		created := &models.Tag{Name: name, Slug: slug}
		if err := s.repo.Create(ctx, created); err != nil {
			// Lost a race with a concurrent create; re-read.
			if errors.Is(err, domain.ErrConflict) {
				tag, err := s.repo.GetByName(ctx, name)
				if err != nil {
					return nil, err
				}
				tags = append(tags, *tag)
				continue
			}
			return nil, err
		}
		tags = append(tags, *created)
	}
	return tags, nil
}

// GetByID retrieves a tag.
func (s *TagService) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBySlug retrieves a tag by slug.
func (s *TagService) GetBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// GetAll returns every tag.
func (s *TagService) GetAll(ctx context.Context) ([]models.Tag, error) {
	return s.repo.ListAll(ctx)
}

// Delete removes a tag.
func (s *TagService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// IncrementPostCount bumps the denormalized counter.
func (s *TagService) IncrementPostCount(ctx context.Context, id string) error {
	return s.repo.AdjustPostCount(ctx, id, 1)
}

// DecrementPostCount lowers the counter, flooring at zero.
func (s *TagService) DecrementPostCount(ctx context.Context, id string) error {
	return s.repo.AdjustPostCount(ctx, id, -1)
}
