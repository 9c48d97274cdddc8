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
	"inkwell/internal/service/tree"
)

// CategoryService owns the post category tree. Structural work is delegated
// to the generic tree service; this layer adds the category-specific fields
// and the denormalized post counter.
type CategoryService struct {
	tree   *tree.Service[*models.Category]
	repo   repositories.CategoryRepository
	logger *slog.Logger
}

// NewCategoryService creates a category service.
func NewCategoryService(
	repo repositories.CategoryRepository,
	tx repositories.TransactionManager,
	logger *slog.Logger,
) *CategoryService {
	return &CategoryService{
		tree:   tree.NewService[*models.Category](repo, tx, "category", logger),
		repo:   repo,
		logger: logger,
	}
}

// CreateCategoryRequest is the payload for creating a category.
type CreateCategoryRequest struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	ParentID    *string `json:"parentId"`
	Order       *int    `json:"order"`
	Icon        string  `json:"icon"`
	Color       string  `json:"color"`
}

// UpdateCategoryRequest applies only the fields that are present.
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Order       *int    `json:"order"`
	Icon        *string `json:"icon"`
	Color       *string `json:"color"`
}

// Create creates a category, deriving the slug from the name when omitted.
func (s *CategoryService) Create(ctx context.Context, req *CreateCategoryRequest) (*models.Category, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxNameLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	category := &models.Category{
		TreeMeta: models.TreeMeta{
			Name:     req.Name,
			Slug:     req.Slug,
			ParentID: req.ParentID,
		},
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
	}
	if req.Order != nil {
		category.Order = *req.Order
	}

	return s.tree.Create(ctx, category)
}

// GetByID retrieves a category.
func (s *CategoryService) GetByID(ctx context.Context, id string) (*models.Category, error) {
	return s.tree.GetByID(ctx, id)
}

// GetBySlug retrieves a category by slug.
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.tree.GetBySlug(ctx, slug)
}

// GetAll returns every category as a flat list.
func (s *CategoryService) GetAll(ctx context.Context) ([]*models.Category, error) {
	return s.tree.ListAll(ctx)
}

// GetRoots returns root categories ordered by sort key.
func (s *CategoryService) GetRoots(ctx context.Context) ([]*models.Category, error) {
	return s.tree.ListRoots(ctx)
}

// GetChildren returns the immediate children of a category.
func (s *CategoryService) GetChildren(ctx context.Context, parentID string) ([]*models.Category, error) {
	return s.tree.ListChildren(ctx, parentID)
}

// GetTree returns the whole category forest as nested trees.
func (s *CategoryService) GetTree(ctx context.Context) ([]*models.CategoryTree, error) {
	all, err := s.tree.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return categoryForest(tree.BuildForest(all)), nil
}

func categoryForest(forest []*tree.Forest[*models.Category]) []*models.CategoryTree {
	out := make([]*models.CategoryTree, 0, len(forest))
	for _, f := range forest {
		out = append(out, &models.CategoryTree{
			Category: f.Item,
			Children: categoryForest(f.Children),
		})
	}
	return out
}

// Update edits local fields only; parent and structural fields are move-only.
func (s *CategoryService) Update(ctx context.Context, id string, req *UpdateCategoryRequest) (*models.Category, error) {
	category, err := s.tree.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("name cannot be empty: %w", domain.ErrValidation)
		}
		category.Name = *req.Name
	}
	if req.Slug != nil && *req.Slug != category.Slug {
		slug, err := s.tree.ResolveSlug(ctx, category.Name, *req.Slug)
		if err != nil {
			return nil, err
		}
		category.Slug = slug
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Order != nil {
		category.Order = *req.Order
	}
	if req.Icon != nil {
		category.Icon = *req.Icon
	}
	if req.Color != nil {
		category.Color = *req.Color
	}

	return s.tree.Save(ctx, category)
}

// Delete removes a childless category.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return s.tree.Delete(ctx, id)
}

// Move re-parents a category and cascades ancestors/depth over its subtree.
func (s *CategoryService) Move(ctx context.Context, id string, newParentID *string) (*models.Category, error) {
	return s.tree.Move(ctx, id, newParentID)
}

// IncrementPostCount bumps the denormalized counter. Called by the post
// lifecycle, never by tree operations.
func (s *CategoryService) IncrementPostCount(ctx context.Context, id string) error {
	return s.repo.AdjustPostCount(ctx, id, 1)
}

// DecrementPostCount lowers the counter, flooring at zero.
func (s *CategoryService) DecrementPostCount(ctx context.Context, id string) error {
	return s.repo.AdjustPostCount(ctx, id, -1)
}
