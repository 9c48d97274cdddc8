// Package tree implements the invariant-preserving operations shared by the
// category and vault-folder hierarchies: ancestor-list denormalization,
// depth-bounded nesting and cascade re-parenting on move.
package tree

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
	"inkwell/internal/utils"
)

// Service runs the structural operations for one node kind. The algorithms
// are identical for every kind; only the repository differs.
type Service[T repositories.TreeEntity] struct {
	repo   repositories.TreeRepository[T]
	tx     repositories.TransactionManager
	kind   string
	logger *slog.Logger
}

// NewService creates a tree service for one node kind. tx may be nil, in
// which case the move cascade runs without a surrounding transaction.
func NewService[T repositories.TreeEntity](
	repo repositories.TreeRepository[T],
	tx repositories.TransactionManager,
	kind string,
	logger *slog.Logger,
) *Service[T] {
	return &Service[T]{
		repo:   repo,
		tx:     tx,
		kind:   kind,
		logger: logger,
	}
}

// ResolveSlug derives a slug from the display name when no explicit slug is
// given, and enforces kind-scoped uniqueness.
func (s *Service[T]) ResolveSlug(ctx context.Context, name, explicit string) (string, error) {
	slug := explicit
	if slug == "" {
		slug = utils.Slugify(name)
	}
	if slug == "" {
		return "", fmt.Errorf("%s name %q yields an empty slug: %w", s.kind, name, domain.ErrValidation)
	}

	exists, err := s.repo.SlugExists(ctx, slug)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("%s slug %q: %w", s.kind, slug, domain.ErrDuplicateSlug)
	}
	return slug, nil
}

// Create fills in slug, ancestors and depth on the node's meta and persists
// it. The caller populates the kind-specific fields beforehand.
func (s *Service[T]) Create(ctx context.Context, node T) (T, error) {
	var zero T
	meta := node.Meta()

	slug, err := s.ResolveSlug(ctx, meta.Name, meta.Slug)
	if err != nil {
		return zero, err
	}
	meta.Slug = slug

	if meta.ParentID != nil {
		parent, err := s.repo.GetByID(ctx, *meta.ParentID)
		if err != nil {
			return zero, fmt.Errorf("parent %s: %w", s.kind, err)
		}
		pm := parent.Meta()
		if pm.Depth >= models.MaxDepth {
			return zero, fmt.Errorf("%s %q at depth %d: %w", s.kind, pm.Name, pm.Depth, domain.ErrDepthExceeded)
		}
		meta.Ancestors = childAncestors(pm)
		meta.Depth = pm.Depth + 1
	} else {
		meta.Ancestors = []string{}
		meta.Depth = 0
	}

	now := time.Now()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	if err := s.repo.Create(ctx, node); err != nil {
		return zero, err
	}

	s.logger.Info(s.kind+" created",
		"id", meta.ID,
		"name", meta.Name,
		"slug", meta.Slug,
		"parent_id", meta.ParentID,
		"depth", meta.Depth,
	)
	return node, nil
}

// GetByID retrieves a node by id.
func (s *Service[T]) GetByID(ctx context.Context, id string) (T, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBySlug retrieves a node by slug.
func (s *Service[T]) GetBySlug(ctx context.Context, slug string) (T, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// ListRoots returns root nodes ordered by sort key.
func (s *Service[T]) ListRoots(ctx context.Context) ([]T, error) {
	return s.repo.ListRoots(ctx)
}

// ListChildren returns the immediate children of a node ordered by sort key.
func (s *Service[T]) ListChildren(ctx context.Context, parentID string) ([]T, error) {
	return s.repo.ListChildren(ctx, parentID)
}

// ListAll returns every node of the kind as a flat list.
func (s *Service[T]) ListAll(ctx context.Context) ([]T, error) {
	return s.repo.ListAll(ctx)
}

// Save persists local field edits (name, slug, order, kind-specific fields).
// Structural fields are move-only; Save never recomputes them.
func (s *Service[T]) Save(ctx context.Context, node T) (T, error) {
	var zero T
	node.Meta().UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, node); err != nil {
		return zero, err
	}
	return node, nil
}

// Delete removes a childless node. Deletion is blocked, not cascading.
func (s *Service[T]) Delete(ctx context.Context, id string) error {
	node, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	children, err := s.repo.ListChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("check children: %w", err)
	}
	if len(children) > 0 {
		return fmt.Errorf("%s %q has %d children: %w", s.kind, node.Meta().Name, len(children), domain.ErrHasChildren)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info(s.kind+" deleted", "id", id, "name", node.Meta().Name)
	return nil
}

// Move re-parents a node (nil parent means move to root), recomputing its
// ancestors and depth and cascading the recomputation depth-first over every
// descendant. When a transaction manager is configured the whole cascade is
// one transaction; otherwise individual node writes are the only atomic unit
// and a crash mid-cascade leaves the subtree stale until the next move.
func (s *Service[T]) Move(ctx context.Context, id string, newParentID *string) (T, error) {
	var zero T

	node, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return zero, err
	}
	meta := node.Meta()

	if newParentID != nil {
		if *newParentID == id {
			return zero, fmt.Errorf("%s %q: %w", s.kind, meta.Name, domain.ErrCyclicMove)
		}
		parent, err := s.repo.GetByID(ctx, *newParentID)
		if err != nil {
			return zero, fmt.Errorf("new parent %s: %w", s.kind, err)
		}
		pm := parent.Meta()
		for _, ancestorID := range pm.Ancestors {
			if ancestorID == id {
				return zero, fmt.Errorf("%s %q: %w", s.kind, meta.Name, domain.ErrCyclicMove)
			}
		}
		if pm.Depth >= models.MaxDepth {
			return zero, fmt.Errorf("%s %q at depth %d: %w", s.kind, pm.Name, pm.Depth, domain.ErrDepthExceeded)
		}

		meta.ParentID = newParentID
		meta.Ancestors = childAncestors(pm)
		meta.Depth = pm.Depth + 1
	} else {
		meta.ParentID = nil
		meta.Ancestors = []string{}
		meta.Depth = 0
	}
	meta.UpdatedAt = time.Now()

	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, node); err != nil {
			return err
		}
		return s.cascade(ctx, node)
	})
	if err != nil {
		return zero, err
	}

	s.logger.Info(s.kind+" moved",
		"id", id,
		"name", meta.Name,
		"new_parent_id", newParentID,
		"depth", meta.Depth,
	)
	return node, nil
}

// cascade recomputes ancestors/depth for every descendant of parent,
// visiting parents before their children so each level derives from
// already-updated state.
func (s *Service[T]) cascade(ctx context.Context, parent T) error {
	pm := parent.Meta()
	children, err := s.repo.ListChildren(ctx, pm.ID)
	if err != nil {
		return fmt.Errorf("cascade %s %s: %w", s.kind, pm.ID, err)
	}

	for _, child := range children {
		cm := child.Meta()
		cm.Ancestors = childAncestors(pm)
		cm.Depth = pm.Depth + 1
		cm.UpdatedAt = time.Now()

		if err := s.repo.Update(ctx, child); err != nil {
			return fmt.Errorf("cascade %s %s: %w", s.kind, cm.ID, err)
		}
		if err := s.cascade(ctx, child); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service[T]) inTx(ctx context.Context, fn repositories.TxFn) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.ExecTx(ctx, fn)
}

// childAncestors returns the ancestor list a child of parent must carry.
func childAncestors(parent *models.TreeMeta) []string {
	ancestors := make([]string, 0, len(parent.Ancestors)+1)
	ancestors = append(ancestors, parent.Ancestors...)
	return append(ancestors, parent.ID)
}
