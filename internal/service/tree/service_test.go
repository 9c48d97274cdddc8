package tree

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"testing"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
)

// testNode is a minimal tree entity for exercising the generic service.
type testNode struct {
	models.TreeMeta
}

func (n *testNode) Meta() *models.TreeMeta { return &n.TreeMeta }

// memRepo is an in-memory TreeRepository. It stores copies so that a
// forgotten Update call shows up as stale state in assertions.
type memRepo struct {
	nodes map[string]*testNode
	seq   int
}

func newMemRepo() *memRepo {
	return &memRepo{nodes: make(map[string]*testNode)}
}

func copyNode(n *testNode) *testNode {
	c := *n
	c.Ancestors = append([]string{}, n.Ancestors...)
	return &c
}

func (r *memRepo) Create(_ context.Context, node *testNode) error {
	if node.ID == "" {
		r.seq++
		node.ID = fmt.Sprintf("n%d", r.seq)
	}
	r.nodes[node.ID] = copyNode(node)
	return nil
}

func (r *memRepo) Update(_ context.Context, node *testNode) error {
	if _, ok := r.nodes[node.ID]; !ok {
		return fmt.Errorf("node %s: %w", node.ID, domain.ErrNotFound)
	}
	r.nodes[node.ID] = copyNode(node)
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.nodes[id]; !ok {
		return fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	delete(r.nodes, id)
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*testNode, error) {
	n, ok := r.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	return copyNode(n), nil
}

func (r *memRepo) GetBySlug(_ context.Context, slug string) (*testNode, error) {
	for _, n := range r.nodes {
		if n.Slug == slug {
			return copyNode(n), nil
		}
	}
	return nil, fmt.Errorf("slug %s: %w", slug, domain.ErrNotFound)
}

func (r *memRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, n := range r.nodes {
		if n.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) ListRoots(ctx context.Context) ([]*testNode, error) {
	var out []*testNode
	for _, n := range r.nodes {
		if n.ParentID == nil {
			out = append(out, copyNode(n))
		}
	}
	sortByOrder(out)
	return out, nil
}

func (r *memRepo) ListChildren(_ context.Context, parentID string) ([]*testNode, error) {
	var out []*testNode
	for _, n := range r.nodes {
		if n.ParentID != nil && *n.ParentID == parentID {
			out = append(out, copyNode(n))
		}
	}
	sortByOrder(out)
	return out, nil
}

func (r *memRepo) ListAll(_ context.Context) ([]*testNode, error) {
	var out []*testNode
	for _, n := range r.nodes {
		out = append(out, copyNode(n))
	}
	sortByOrder(out)
	return out, nil
}

func sortByOrder(nodes []*testNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Order != nodes[j].Order {
			return nodes[i].Order < nodes[j].Order
		}
		return nodes[i].ID < nodes[j].ID
	})
}

func newTestService(repo *memRepo) *Service[*testNode] {
	return NewService[*testNode](repo, nil, "node", slog.Default())
}

func mustCreate(t *testing.T, s *Service[*testNode], name string, parentID *string) *testNode {
	t.Helper()
	node := &testNode{TreeMeta: models.TreeMeta{Name: name, ParentID: parentID}}
	created, err := s.Create(context.Background(), node)
	if err != nil {
		t.Fatalf("create %q: %v", name, err)
	}
	return created
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	s := newTestService(repo)

	t.Run("root node", func(t *testing.T) {
		root := mustCreate(t, s, "Projects", nil)
		if root.Depth != 0 {
			t.Errorf("root depth = %d, want 0", root.Depth)
		}
		if len(root.Ancestors) != 0 {
			t.Errorf("root ancestors = %v, want empty", root.Ancestors)
		}
		if root.Slug != "projects" {
			t.Errorf("slug = %q, want %q", root.Slug, "projects")
		}
	})

	t.Run("child inherits ancestors", func(t *testing.T) {
		root, _ := s.GetBySlug(ctx, "projects")
		child := mustCreate(t, s, "Alpha", &root.ID)
		if child.Depth != 1 {
			t.Errorf("child depth = %d, want 1", child.Depth)
		}
		if len(child.Ancestors) != 1 || child.Ancestors[0] != root.ID {
			t.Errorf("child ancestors = %v, want [%s]", child.Ancestors, root.ID)
		}
	})

	t.Run("missing parent", func(t *testing.T) {
		node := &testNode{TreeMeta: models.TreeMeta{Name: "Orphan", ParentID: ptr("nope")}}
		if _, err := s.Create(ctx, node); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("duplicate slug", func(t *testing.T) {
		node := &testNode{TreeMeta: models.TreeMeta{Name: "Projects"}}
		_, err := s.Create(ctx, node)
		if !errors.Is(err, domain.ErrDuplicateSlug) {
			t.Errorf("err = %v, want ErrDuplicateSlug", err)
		}
		if !errors.Is(err, domain.ErrConflict) {
			t.Errorf("duplicate slug should also match ErrConflict, got %v", err)
		}
	})

	t.Run("empty slug", func(t *testing.T) {
		node := &testNode{TreeMeta: models.TreeMeta{Name: "!!!"}}
		if _, err := s.Create(ctx, node); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("err = %v, want ErrValidation", err)
		}
	})

	t.Run("depth limit", func(t *testing.T) {
		parent, _ := s.GetBySlug(ctx, "alpha")
		// Alpha is at depth 1; nest down to MaxDepth.
		for i := parent.Depth; i < models.MaxDepth; i++ {
			parent = mustCreate(t, s, fmt.Sprintf("Level %d", i+2), &parent.ID)
		}
		if parent.Depth != models.MaxDepth {
			t.Fatalf("deepest node depth = %d, want %d", parent.Depth, models.MaxDepth)
		}
		node := &testNode{TreeMeta: models.TreeMeta{Name: "Too Deep", ParentID: &parent.ID}}
		if _, err := s.Create(ctx, node); !errors.Is(err, domain.ErrDepthExceeded) {
			t.Errorf("err = %v, want ErrDepthExceeded", err)
		}
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	s := newTestService(repo)

	root := mustCreate(t, s, "Root", nil)
	child := mustCreate(t, s, "Child", &root.ID)

	t.Run("blocked with children", func(t *testing.T) {
		err := s.Delete(ctx, root.ID)
		if !errors.Is(err, domain.ErrHasChildren) {
			t.Errorf("err = %v, want ErrHasChildren", err)
		}
	})

	t.Run("leaf deletes", func(t *testing.T) {
		if err := s.Delete(ctx, child.ID); err != nil {
			t.Fatalf("delete leaf: %v", err)
		}
		if err := s.Delete(ctx, root.ID); err != nil {
			t.Fatalf("delete now-childless root: %v", err)
		}
	})

	t.Run("missing node", func(t *testing.T) {
		if err := s.Delete(ctx, "gone"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestMove(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	s := newTestService(repo)

	// a → b → c, plus a second root x.
	a := mustCreate(t, s, "A", nil)
	b := mustCreate(t, s, "B", &a.ID)
	c := mustCreate(t, s, "C", &b.ID)
	x := mustCreate(t, s, "X", nil)

	t.Run("self move rejected", func(t *testing.T) {
		if _, err := s.Move(ctx, a.ID, &a.ID); !errors.Is(err, domain.ErrCyclicMove) {
			t.Errorf("err = %v, want ErrCyclicMove", err)
		}
	})

	t.Run("descendant move rejected", func(t *testing.T) {
		if _, err := s.Move(ctx, a.ID, &c.ID); !errors.Is(err, domain.ErrCyclicMove) {
			t.Errorf("err = %v, want ErrCyclicMove", err)
		}
	})

	t.Run("cascade under new parent", func(t *testing.T) {
		// Move the whole a-subtree under x: a at depth 1, b at 2, c at 3.
		moved, err := s.Move(ctx, a.ID, &x.ID)
		if err != nil {
			t.Fatalf("move: %v", err)
		}
		if moved.Depth != 1 {
			t.Errorf("a depth = %d, want 1", moved.Depth)
		}

		assertNode(t, repo, a.ID, 1, []string{x.ID})
		assertNode(t, repo, b.ID, 2, []string{x.ID, a.ID})
		assertNode(t, repo, c.ID, 3, []string{x.ID, a.ID, b.ID})
	})

	t.Run("move back to root", func(t *testing.T) {
		if _, err := s.Move(ctx, a.ID, nil); err != nil {
			t.Fatalf("move to root: %v", err)
		}
		assertNode(t, repo, a.ID, 0, []string{})
		assertNode(t, repo, b.ID, 1, []string{a.ID})
		assertNode(t, repo, c.ID, 2, []string{a.ID, b.ID})
	})

	t.Run("depth limit on move", func(t *testing.T) {
		// Build a chain x → d2 → d3 → d4 → d5 where d5 sits at MaxDepth.
		parent := x
		for parent.Depth < models.MaxDepth {
			parent = mustCreate(t, s, fmt.Sprintf("D%d", parent.Depth+2), &parent.ID)
		}
		if _, err := s.Move(ctx, c.ID, &parent.ID); !errors.Is(err, domain.ErrDepthExceeded) {
			t.Errorf("err = %v, want ErrDepthExceeded", err)
		}
	})

	t.Run("depth equals ancestors everywhere", func(t *testing.T) {
		all, _ := repo.ListAll(ctx)
		for _, n := range all {
			if n.Depth != len(n.Ancestors) {
				t.Errorf("node %s: depth %d != len(ancestors) %d", n.ID, n.Depth, len(n.Ancestors))
			}
			if n.Depth > models.MaxDepth {
				t.Errorf("node %s: depth %d exceeds max", n.ID, n.Depth)
			}
		}
	})
}

func TestBuildForest(t *testing.T) {
	node := func(id string, parent *string, order int) *testNode {
		return &testNode{TreeMeta: models.TreeMeta{ID: id, ParentID: parent, Order: order}}
	}

	t.Run("nests and sorts by order", func(t *testing.T) {
		nodes := []*testNode{
			node("r2", nil, 2),
			node("r1", nil, 1),
			node("c2", ptr("r1"), 5),
			node("c1", ptr("r1"), 0),
		}
		forest := BuildForest(nodes)
		if len(forest) != 2 {
			t.Fatalf("roots = %d, want 2", len(forest))
		}
		if forest[0].Item.ID != "r1" || forest[1].Item.ID != "r2" {
			t.Errorf("root order = %s,%s want r1,r2", forest[0].Item.ID, forest[1].Item.ID)
		}
		children := forest[0].Children
		if len(children) != 2 || children[0].Item.ID != "c1" || children[1].Item.ID != "c2" {
			t.Errorf("children of r1 wrong: %+v", children)
		}
	})

	t.Run("orphan promoted to root", func(t *testing.T) {
		nodes := []*testNode{
			node("a", nil, 0),
			node("stray", ptr("missing"), 0),
		}
		forest := BuildForest(nodes)
		if len(forest) != 2 {
			t.Fatalf("roots = %d, want 2 (orphan promoted)", len(forest))
		}
	})

	t.Run("stable on equal order", func(t *testing.T) {
		nodes := []*testNode{
			node("first", nil, 1),
			node("second", nil, 1),
			node("third", nil, 1),
		}
		forest := BuildForest(nodes)
		got := []string{forest[0].Item.ID, forest[1].Item.ID, forest[2].Item.ID}
		want := []string{"first", "second", "third"}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("position %d = %s, want %s", i, got[i], want[i])
			}
		}
	})
}

func assertNode(t *testing.T, repo *memRepo, id string, wantDepth int, wantAncestors []string) {
	t.Helper()
	n, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}
	if n.Depth != wantDepth {
		t.Errorf("node %s depth = %d, want %d", id, n.Depth, wantDepth)
	}
	if len(n.Ancestors) != len(wantAncestors) {
		t.Fatalf("node %s ancestors = %v, want %v", id, n.Ancestors, wantAncestors)
	}
	for i := range wantAncestors {
		if n.Ancestors[i] != wantAncestors[i] {
			t.Errorf("node %s ancestors = %v, want %v", id, n.Ancestors, wantAncestors)
			break
		}
	}
}

func ptr(s string) *string { return &s }
