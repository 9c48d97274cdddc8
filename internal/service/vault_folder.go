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

// VaultFolderService owns the vault folder tree. Same shape as the category
// service; the note counter is driven by the note lifecycle.
type VaultFolderService struct {
	tree   *tree.Service[*models.VaultFolder]
	repo   repositories.VaultFolderRepository
	logger *slog.Logger
}

// NewVaultFolderService creates a vault folder service.
func NewVaultFolderService(
	repo repositories.VaultFolderRepository,
	tx repositories.TransactionManager,
	logger *slog.Logger,
) *VaultFolderService {
	return &VaultFolderService{
		tree:   tree.NewService[*models.VaultFolder](repo, tx, "folder", logger),
		repo:   repo,
		logger: logger,
	}
}

// CreateFolderRequest is the payload for creating a folder.
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ParentID *string `json:"parentId"`
	Order    *int    `json:"order"`
}

// UpdateFolderRequest applies only the fields that are present.
type UpdateFolderRequest struct {
	Name  *string `json:"name"`
	Slug  *string `json:"slug"`
	Order *int    `json:"order"`
}

// Create creates a folder under the given parent (nil for a root).
func (s *VaultFolderService) Create(ctx context.Context, req *CreateFolderRequest) (*models.VaultFolder, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxNameLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folder := &models.VaultFolder{
		TreeMeta: models.TreeMeta{
			Name:     req.Name,
			Slug:     req.Slug,
			ParentID: req.ParentID,
		},
	}
	if req.Order != nil {
		folder.Order = *req.Order
	}

	return s.tree.Create(ctx, folder)
}

// GetByID retrieves a folder.
func (s *VaultFolderService) GetByID(ctx context.Context, id string) (*models.VaultFolder, error) {
	return s.tree.GetByID(ctx, id)
}

// GetBySlug retrieves a folder by slug.
func (s *VaultFolderService) GetBySlug(ctx context.Context, slug string) (*models.VaultFolder, error) {
	return s.tree.GetBySlug(ctx, slug)
}

// GetAll returns every folder as a flat list.
func (s *VaultFolderService) GetAll(ctx context.Context) ([]*models.VaultFolder, error) {
	return s.tree.ListAll(ctx)
}

// GetTree returns the folder forest as nested trees.
func (s *VaultFolderService) GetTree(ctx context.Context) ([]*models.VaultFolderTree, error) {
	all, err := s.tree.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return folderForest(tree.BuildForest(all)), nil
}

func folderForest(forest []*tree.Forest[*models.VaultFolder]) []*models.VaultFolderTree {
	out := make([]*models.VaultFolderTree, 0, len(forest))
	for _, f := range forest {
		out = append(out, &models.VaultFolderTree{
			VaultFolder: f.Item,
			Children:    folderForest(f.Children),
		})
	}
	return out
}

// Update edits local fields only.
func (s *VaultFolderService) Update(ctx context.Context, id string, req *UpdateFolderRequest) (*models.VaultFolder, error) {
	folder, err := s.tree.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("name cannot be empty: %w", domain.ErrValidation)
		}
		folder.Name = *req.Name
	}
	if req.Slug != nil && *req.Slug != folder.Slug {
		slug, err := s.tree.ResolveSlug(ctx, folder.Name, *req.Slug)
		if err != nil {
			return nil, err
		}
		folder.Slug = slug
	}
	if req.Order != nil {
		folder.Order = *req.Order
	}

	return s.tree.Save(ctx, folder)
}

// Delete removes a childless folder. Folders containing notes are guarded by
// the note counter at the handler's service layer; structurally only child
// folders block deletion here.
func (s *VaultFolderService) Delete(ctx context.Context, id string) error {
	folder, err := s.tree.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if folder.NoteCount > 0 {
		return fmt.Errorf("folder %q holds %d notes: %w", folder.Name, folder.NoteCount, domain.ErrHasChildren)
	}
	return s.tree.Delete(ctx, id)
}

// Move re-parents a folder and cascades ancestors/depth over its subtree.
func (s *VaultFolderService) Move(ctx context.Context, id string, newParentID *string) (*models.VaultFolder, error) {
	return s.tree.Move(ctx, id, newParentID)
}

// IncrementNoteCount bumps the denormalized counter; called by the note
// lifecycle.
func (s *VaultFolderService) IncrementNoteCount(ctx context.Context, id string) error {
	return s.repo.AdjustNoteCount(ctx, id, 1)
}

// DecrementNoteCount lowers the counter, flooring at zero.
func (s *VaultFolderService) DecrementNoteCount(ctx context.Context, id string) error {
	return s.repo.AdjustNoteCount(ctx, id, -1)
}
