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

// VaultNoteService owns wiki notes and the reference graph between them.
//
// A note's outgoing links are recomputed from its content on every content
// write against the slug index as it exists at that moment. References to
// notes that do not exist yet are dropped and only picked up the next time
// the referencing note's content is saved.
type VaultNoteService struct {
	notes    repositories.VaultNoteRepository
	comments repositories.VaultNoteCommentRepository
	folders  *VaultFolderService
	users    repositories.UserRepository
	logger   *slog.Logger
}

// NewVaultNoteService creates a vault note service.
func NewVaultNoteService(
	notes repositories.VaultNoteRepository,
	comments repositories.VaultNoteCommentRepository,
	folders *VaultFolderService,
	users repositories.UserRepository,
	logger *slog.Logger,
) *VaultNoteService {
	return &VaultNoteService{
		notes:    notes,
		comments: comments,
		folders:  folders,
		users:    users,
		logger:   logger,
	}
}

// CreateNoteRequest is the payload for creating a note.
type CreateNoteRequest struct {
	Title    string   `json:"title"`
	Slug     string   `json:"slug"`
	Content  string   `json:"content"`
	FolderID string   `json:"folderId"`
	Tags     []string `json:"tags"`
}

// UpdateNoteRequest applies only the fields that are present. A present
// Content always triggers a backlink re-parse, even when the text is
// unchanged.
type UpdateNoteRequest struct {
	Title    *string   `json:"title"`
	Slug     *string   `json:"slug"`
	Content  *string   `json:"content"`
	FolderID *string   `json:"folderId"`
	Tags     *[]string `json:"tags"`
}

// Create creates a note, resolving its outgoing links and bumping the owning
// folder's note counter.
func (s *VaultNoteService) Create(ctx context.Context, req *CreateNoteRequest, userID string) (*models.VaultNote, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, config.MaxTitleLength)),
		validation.Field(&req.FolderID, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Title)
	}
	if slug == "" {
		return nil, fmt.Errorf("title %q yields an empty slug: %w", req.Title, domain.ErrValidation)
	}
	exists, err := s.notes.SlugExists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("note slug %q: %w", slug, domain.ErrDuplicateSlug)
	}

	// Folder must exist before we attach the note to it.
	if _, err := s.folders.GetByID(ctx, req.FolderID); err != nil {
		return nil, fmt.Errorf("folder: %w", err)
	}

	author, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("author: %w", err)
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	note := &models.VaultNote{
		Title:    req.Title,
		Slug:     slug,
		Content:  req.Content,
		FolderID: req.FolderID,
		Author: models.AuthorInfo{
			ID:   author.ID,
			Name: author.DisplayName(),
		},
		OutgoingLinks: s.resolveOutgoingLinks(ctx, req.Content),
		Tags:          tags,
	}

	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}
	if err := s.folders.IncrementNoteCount(ctx, req.FolderID); err != nil {
		s.logger.Warn("note count increment failed", "folder_id", req.FolderID, "error", err)
	}

	s.logger.Info("note created",
		"id", note.ID,
		"slug", note.Slug,
		"folder_id", note.FolderID,
		"outgoing_links", len(note.OutgoingLinks),
	)
	return note, nil
}

// Update edits a note. A present content field replaces the outgoing link
// list wholesale; a folder change adjusts both folders' counters.
func (s *VaultNoteService) Update(ctx context.Context, id string, req *UpdateNoteRequest) (*models.VaultNote, error) {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, fmt.Errorf("title cannot be empty: %w", domain.ErrValidation)
		}
		note.Title = *req.Title
	}
	if req.Slug != nil && *req.Slug != note.Slug {
		if *req.Slug == "" {
			return nil, fmt.Errorf("slug cannot be empty: %w", domain.ErrValidation)
		}
		exists, err := s.notes.SlugExists(ctx, *req.Slug)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("note slug %q: %w", *req.Slug, domain.ErrDuplicateSlug)
		}
		note.Slug = *req.Slug
	}
	if req.Content != nil {
		note.Content = *req.Content
		note.OutgoingLinks = s.resolveOutgoingLinks(ctx, *req.Content)
	}
	if req.FolderID != nil && *req.FolderID != note.FolderID {
		if _, err := s.folders.GetByID(ctx, *req.FolderID); err != nil {
			return nil, fmt.Errorf("folder: %w", err)
		}
		if err := s.folders.DecrementNoteCount(ctx, note.FolderID); err != nil {
			s.logger.Warn("note count decrement failed", "folder_id", note.FolderID, "error", err)
		}
		if err := s.folders.IncrementNoteCount(ctx, *req.FolderID); err != nil {
			s.logger.Warn("note count increment failed", "folder_id", *req.FolderID, "error", err)
		}
		note.FolderID = *req.FolderID
	}
	if req.Tags != nil {
		note.Tags = *req.Tags
	}

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Delete removes a note, its comments, and decrements the folder counter.
func (s *VaultNoteService) Delete(ctx context.Context, id string) error {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.comments.DeleteAllByNote(ctx, id); err != nil {
		return fmt.Errorf("delete note comments: %w", err)
	}
	if err := s.notes.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.folders.DecrementNoteCount(ctx, note.FolderID); err != nil {
		s.logger.Warn("note count decrement failed", "folder_id", note.FolderID, "error", err)
	}

	s.logger.Info("note deleted", "id", id, "slug", note.Slug)
	return nil
}

// GetByID retrieves a note and counts the view.
func (s *VaultNoteService) GetByID(ctx context.Context, id string) (*models.VaultNote, error) {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.notes.IncrementViews(ctx, id); err != nil {
		s.logger.Warn("view increment failed", "note_id", id, "error", err)
	} else {
		note.Views++
	}
	return note, nil
}

// GetBySlug retrieves a note by slug and counts the view.
func (s *VaultNoteService) GetBySlug(ctx context.Context, slug string) (*models.VaultNote, error) {
	note, err := s.notes.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.notes.IncrementViews(ctx, note.ID); err != nil {
		s.logger.Warn("view increment failed", "note_id", note.ID, "error", err)
	} else {
		note.Views++
	}
	return note, nil
}

// List returns a page of notes.
func (s *VaultNoteService) List(ctx context.Context, page models.PageRequest) (*models.Page[models.VaultNote], error) {
	notes, total, err := s.notes.List(ctx, page)
	if err != nil {
		return nil, err
	}
	return models.NewPage(notes, page, total), nil
}

// ListByFolder returns a page of the folder's notes.
func (s *VaultNoteService) ListByFolder(ctx context.Context, folderID string, page models.PageRequest) (*models.Page[models.VaultNote], error) {
	notes, total, err := s.notes.ListByFolder(ctx, folderID, page)
	if err != nil {
		return nil, err
	}
	return models.NewPage(notes, page, total), nil
}

// Search returns notes matching the query in title or content.
func (s *VaultNoteService) Search(ctx context.Context, query string, page models.PageRequest) (*models.Page[models.VaultNote], error) {
	notes, total, err := s.notes.Search(ctx, query, page)
	if err != nil {
		return nil, err
	}
	return models.NewPage(notes, page, total), nil
}

// GetBackreferences returns every note that links to the given note: the
// reverse of the persisted forward-link lists, computed at query time.
func (s *VaultNoteService) GetBackreferences(ctx context.Context, noteID string) ([]models.VaultNote, error) {
	if _, err := s.notes.GetByID(ctx, noteID); err != nil {
		return nil, err
	}
	return s.notes.FindByOutgoingLink(ctx, noteID)
}

// GetGraphData assembles the whole-vault reference graph. Node size is the
// outgoing link count plus one so an unlinked note still renders; duplicate
// links become duplicate edges.
func (s *VaultNoteService) GetGraphData(ctx context.Context) (*models.GraphData, error) {
	all, err := s.notes.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make([]models.GraphNode, 0, len(all))
	links := make([]models.GraphLink, 0)
	for _, note := range all {
		nodes = append(nodes, models.GraphNode{
			ID:   note.ID,
			Name: note.Title,
			Slug: note.Slug,
			Size: len(note.OutgoingLinks) + 1,
		})
		for _, targetID := range note.OutgoingLinks {
			links = append(links, models.GraphLink{Source: note.ID, Target: targetID})
		}
	}

	return &models.GraphData{Nodes: nodes, Links: links}, nil
}

// IncrementCommentCount bumps the note's comment counter.
func (s *VaultNoteService) IncrementCommentCount(ctx context.Context, noteID string) error {
	return s.notes.AdjustCommentsCount(ctx, noteID, 1)
}

// DecrementCommentCount lowers the counter, flooring at zero.
func (s *VaultNoteService) DecrementCommentCount(ctx context.Context, noteID string) error {
	return s.notes.AdjustCommentsCount(ctx, noteID, -1)
}

// resolveOutgoingLinks maps [[references]] in content to note ids, in scan
// order, keeping duplicates. References whose slug resolves to no note are
// silently dropped.
func (s *VaultNoteService) resolveOutgoingLinks(ctx context.Context, content string) []string {
	links := []string{}
	for _, slug := range WikiLinkSlugs(content) {
		if slug == "" {
			continue
		}
		target, err := s.notes.GetBySlug(ctx, slug)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			s.logger.Warn("backlink lookup failed", "slug", slug, "error", err)
			continue
		}
		links = append(links, target.ID)
	}
	return links
}
