package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
)

// --- in-memory fakes ---

type memNoteRepo struct {
	notes map[string]*models.VaultNote
	seq   int
}

func newMemNoteRepo() *memNoteRepo {
	return &memNoteRepo{notes: make(map[string]*models.VaultNote)}
}

func copyNote(n *models.VaultNote) *models.VaultNote {
	c := *n
	c.OutgoingLinks = append([]string(nil), n.OutgoingLinks...)
	c.Tags = append([]string(nil), n.Tags...)
	return &c
}

func (r *memNoteRepo) Create(_ context.Context, note *models.VaultNote) error {
	r.seq++
	note.ID = fmt.Sprintf("note-%d", r.seq)
	r.notes[note.ID] = copyNote(note)
	return nil
}

func (r *memNoteRepo) Update(_ context.Context, note *models.VaultNote) error {
	if _, ok := r.notes[note.ID]; !ok {
		return domain.ErrNotFound
	}
	r.notes[note.ID] = copyNote(note)
	return nil
}

func (r *memNoteRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.notes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.notes, id)
	return nil
}

func (r *memNoteRepo) GetByID(_ context.Context, id string) (*models.VaultNote, error) {
	n, ok := r.notes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyNote(n), nil
}

func (r *memNoteRepo) GetBySlug(_ context.Context, slug string) (*models.VaultNote, error) {
	for _, n := range r.notes {
		if n.Slug == slug {
			return copyNote(n), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memNoteRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, n := range r.notes {
		if n.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *memNoteRepo) all() []models.VaultNote {
	out := make([]models.VaultNote, 0, len(r.notes))
	for _, n := range r.notes {
		out = append(out, *copyNote(n))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memNoteRepo) List(_ context.Context, page models.PageRequest) ([]models.VaultNote, int64, error) {
	all := r.all()
	return all, int64(len(all)), nil
}

func (r *memNoteRepo) ListByFolder(_ context.Context, folderID string, _ models.PageRequest) ([]models.VaultNote, int64, error) {
	out := []models.VaultNote{}
	for _, n := range r.all() {
		if n.FolderID == folderID {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memNoteRepo) ListAll(_ context.Context) ([]models.VaultNote, error) {
	return r.all(), nil
}

func (r *memNoteRepo) Search(_ context.Context, query string, _ models.PageRequest) ([]models.VaultNote, int64, error) {
	out := []models.VaultNote{}
	for _, n := range r.all() {
		if strings.Contains(n.Title, query) || strings.Contains(n.Content, query) {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memNoteRepo) FindByOutgoingLink(_ context.Context, noteID string) ([]models.VaultNote, error) {
	out := []models.VaultNote{}
	for _, n := range r.all() {
		for _, target := range n.OutgoingLinks {
			if target == noteID {
				out = append(out, n)
				break
			}
		}
	}
	return out, nil
}

func (r *memNoteRepo) IncrementViews(_ context.Context, id string) error {
	n, ok := r.notes[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.Views++
	return nil
}

func (r *memNoteRepo) AdjustCommentsCount(_ context.Context, id string, delta int) error {
	n, ok := r.notes[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.CommentsCount += delta
	if n.CommentsCount < 0 {
		n.CommentsCount = 0
	}
	return nil
}

type memNoteCommentRepo struct {
	comments map[string]*models.VaultNoteComment
	seq      int
}

func newMemNoteCommentRepo() *memNoteCommentRepo {
	return &memNoteCommentRepo{comments: make(map[string]*models.VaultNoteComment)}
}

func (r *memNoteCommentRepo) Create(_ context.Context, c *models.VaultNoteComment) error {
	r.seq++
	c.ID = fmt.Sprintf("comment-%d", r.seq)
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r *memNoteCommentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.comments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *memNoteCommentRepo) GetByID(_ context.Context, id string) (*models.VaultNoteComment, error) {
	c, ok := r.comments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memNoteCommentRepo) ListByNote(_ context.Context, noteID string) ([]models.VaultNoteComment, error) {
	out := []models.VaultNoteComment{}
	for _, c := range r.comments {
		if c.NoteID == noteID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memNoteCommentRepo) DeleteAllByNote(_ context.Context, noteID string) error {
	for id, c := range r.comments {
		if c.NoteID == noteID {
			delete(r.comments, id)
		}
	}
	return nil
}

type memFolderRepo struct {
	folders map[string]*models.VaultFolder
	seq     int
}

func newMemFolderRepo() *memFolderRepo {
	return &memFolderRepo{folders: make(map[string]*models.VaultFolder)}
}

func copyFolder(f *models.VaultFolder) *models.VaultFolder {
	c := *f
	c.Ancestors = append([]string(nil), f.Ancestors...)
	return &c
}

func (r *memFolderRepo) Create(_ context.Context, f *models.VaultFolder) error {
	r.seq++
	f.ID = fmt.Sprintf("folder-%d", r.seq)
	r.folders[f.ID] = copyFolder(f)
	return nil
}

func (r *memFolderRepo) Update(_ context.Context, f *models.VaultFolder) error {
	if _, ok := r.folders[f.ID]; !ok {
		return domain.ErrNotFound
	}
	r.folders[f.ID] = copyFolder(f)
	return nil
}

func (r *memFolderRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.folders[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.folders, id)
	return nil
}

func (r *memFolderRepo) GetByID(_ context.Context, id string) (*models.VaultFolder, error) {
	f, ok := r.folders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyFolder(f), nil
}

func (r *memFolderRepo) GetBySlug(_ context.Context, slug string) (*models.VaultFolder, error) {
	for _, f := range r.folders {
		if f.Slug == slug {
			return copyFolder(f), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memFolderRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, f := range r.folders {
		if f.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *memFolderRepo) ListRoots(_ context.Context) ([]*models.VaultFolder, error) {
	out := []*models.VaultFolder{}
	for _, f := range r.folders {
		if f.ParentID == nil {
			out = append(out, copyFolder(f))
		}
	}
	return out, nil
}

func (r *memFolderRepo) ListChildren(_ context.Context, parentID string) ([]*models.VaultFolder, error) {
	out := []*models.VaultFolder{}
	for _, f := range r.folders {
		if f.ParentID != nil && *f.ParentID == parentID {
			out = append(out, copyFolder(f))
		}
	}
	return out, nil
}

func (r *memFolderRepo) ListAll(_ context.Context) ([]*models.VaultFolder, error) {
	out := []*models.VaultFolder{}
	for _, f := range r.folders {
		out = append(out, copyFolder(f))
	}
	return out, nil
}

func (r *memFolderRepo) AdjustNoteCount(_ context.Context, id string, delta int) error {
	f, ok := r.folders[id]
	if !ok {
		return domain.ErrNotFound
	}
	f.NoteCount += delta
	if f.NoteCount < 0 {
		f.NoteCount = 0
	}
	return nil
}

type memUserRepo struct {
	users map[string]*models.User
}

func (r *memUserRepo) Create(_ context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

// --- fixture ---

type noteFixture struct {
	svc      *VaultNoteService
	notes    *memNoteRepo
	folders  *memFolderRepo
	folderID string
}

func newNoteFixture(t *testing.T) *noteFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notes := newMemNoteRepo()
	folders := newMemFolderRepo()
	folderSvc := NewVaultFolderService(folders, nil, logger)
	users := &memUserRepo{users: map[string]*models.User{
		"user-1": {ID: "user-1", Username: "jihyun", Role: models.RoleAdmin},
	}}
	svc := NewVaultNoteService(notes, newMemNoteCommentRepo(), folderSvc, users, logger)

	folder, err := folderSvc.Create(context.Background(), &CreateFolderRequest{Name: "Dev Notes"})
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}
	return &noteFixture{svc: svc, notes: notes, folders: folders, folderID: folder.ID}
}

func (f *noteFixture) create(t *testing.T, title, content string) *models.VaultNote {
	t.Helper()
	note, err := f.svc.Create(context.Background(), &CreateNoteRequest{
		Title:    title,
		Content:  content,
		FolderID: f.folderID,
	}, "user-1")
	if err != nil {
		t.Fatalf("create note %q: %v", title, err)
	}
	return note
}

func backrefIDs(t *testing.T, svc *VaultNoteService, id string) []string {
	t.Helper()
	refs, err := svc.GetBackreferences(context.Background(), id)
	if err != nil {
		t.Fatalf("backrefs of %s: %v", id, err)
	}
	ids := make([]string, 0, len(refs))
	for _, n := range refs {
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)
	return ids
}

// --- tests ---

func TestNoteCreateResolvesLinks(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()

	a := f.create(t, "Note A", "no links here")
	b := f.create(t, "Note B", "see [[Note A]] and [[Missing]] and [[Note A]]")

	// Dangling [[Missing]] is dropped; the duplicate reference is kept.
	want := []string{a.ID, a.ID}
	if !reflect.DeepEqual(b.OutgoingLinks, want) {
		t.Errorf("outgoing links = %v, want %v", b.OutgoingLinks, want)
	}

	refs := backrefIDs(t, f.svc, a.ID)
	if !reflect.DeepEqual(refs, []string{b.ID}) {
		t.Errorf("backrefs of a = %v, want [%s]", refs, b.ID)
	}

	folder, _ := f.folders.GetByID(ctx, f.folderID)
	if folder.NoteCount != 2 {
		t.Errorf("folder note count = %d, want 2", folder.NoteCount)
	}
}

func TestNoteLinksAreStaleUntilRewrite(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()

	// B references A before A exists: the reference is dropped.
	b := f.create(t, "Note B", "see [[Note A]]")
	if len(b.OutgoingLinks) != 0 {
		t.Fatalf("outgoing links = %v, want none", b.OutgoingLinks)
	}

	a := f.create(t, "Note A", "hello")
	if refs := backrefIDs(t, f.svc, a.ID); len(refs) != 0 {
		t.Errorf("backrefs of a before rewrite = %v, want none", refs)
	}

	// Saving B's content again re-parses against the current slug index.
	content := "see [[Note A]]"
	updated, err := f.svc.Update(ctx, b.ID, &UpdateNoteRequest{Content: &content})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !reflect.DeepEqual(updated.OutgoingLinks, []string{a.ID}) {
		t.Errorf("outgoing links = %v, want [%s]", updated.OutgoingLinks, a.ID)
	}
	if refs := backrefIDs(t, f.svc, a.ID); !reflect.DeepEqual(refs, []string{b.ID}) {
		t.Errorf("backrefs of a = %v, want [%s]", refs, b.ID)
	}
}

func TestNoteUpdateReplacesLinksWholesale(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()

	a := f.create(t, "Note A", "")
	b := f.create(t, "Note B", "")
	c := f.create(t, "Note C", "[[Note A]]")

	content := "[[Note B]] only now"
	if _, err := f.svc.Update(ctx, c.ID, &UpdateNoteRequest{Content: &content}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if refs := backrefIDs(t, f.svc, a.ID); len(refs) != 0 {
		t.Errorf("backrefs of a = %v, want none", refs)
	}
	if refs := backrefIDs(t, f.svc, b.ID); !reflect.DeepEqual(refs, []string{c.ID}) {
		t.Errorf("backrefs of b = %v, want [%s]", refs, c.ID)
	}
}

func TestNoteDuplicateSlugRejected(t *testing.T) {
	f := newNoteFixture(t)

	f.create(t, "Note A", "")
	_, err := f.svc.Create(context.Background(), &CreateNoteRequest{
		Title:    "Note A",
		FolderID: f.folderID,
	}, "user-1")
	if !errors.Is(err, domain.ErrDuplicateSlug) {
		t.Fatalf("err = %v, want ErrDuplicateSlug", err)
	}
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, should also match ErrConflict", err)
	}
}

func TestNoteDeleteCleansUp(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()

	a := f.create(t, "Note A", "")
	b := f.create(t, "Note B", "[[Note A]]")

	if err := f.svc.Delete(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if refs := backrefIDs(t, f.svc, a.ID); len(refs) != 0 {
		t.Errorf("backrefs of a after delete = %v, want none", refs)
	}
	folder, _ := f.folders.GetByID(ctx, f.folderID)
	if folder.NoteCount != 1 {
		t.Errorf("folder note count = %d, want 1", folder.NoteCount)
	}

	// A is deleted without its backlink in B ever being cleaned: B is gone
	// already, so the graph ends with a single unlinked node.
	if err := f.svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.GetByID(ctx, a.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestNoteViewsIncrement(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()

	a := f.create(t, "Note A", "")
	got, err := f.svc.GetBySlug(ctx, a.Slug)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Views != 1 {
		t.Errorf("views = %d, want 1", got.Views)
	}
	got, _ = f.svc.GetByID(ctx, a.ID)
	if got.Views != 2 {
		t.Errorf("views = %d, want 2", got.Views)
	}
}

func TestGraphData(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()

	a := f.create(t, "Note A", "")
	b := f.create(t, "Note B", "[[Note A]] then [[Note A]] then [[Note C]]")
	c := f.create(t, "Note C", "[[Note A]]")

	// B's reference to C was dangling at write time; re-save to pick it up.
	content := "[[Note A]] then [[Note A]] then [[Note C]]"
	if _, err := f.svc.Update(ctx, b.ID, &UpdateNoteRequest{Content: &content}); err != nil {
		t.Fatalf("update: %v", err)
	}

	graph, err := f.svc.GetGraphData(ctx)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}

	if len(graph.Nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(graph.Nodes))
	}
	sizes := map[string]int{}
	for _, n := range graph.Nodes {
		sizes[n.ID] = n.Size
	}
	if sizes[a.ID] != 1 {
		t.Errorf("size of a = %d, want 1", sizes[a.ID])
	}
	if sizes[b.ID] != 4 {
		t.Errorf("size of b = %d, want 4", sizes[b.ID])
	}
	if sizes[c.ID] != 2 {
		t.Errorf("size of c = %d, want 2", sizes[c.ID])
	}

	// Duplicate references survive as duplicate edges.
	var edges []string
	for _, l := range graph.Links {
		edges = append(edges, l.Source+"->"+l.Target)
	}
	sort.Strings(edges)
	want := []string{
		b.ID + "->" + a.ID,
		b.ID + "->" + a.ID,
		b.ID + "->" + c.ID,
		c.ID + "->" + a.ID,
	}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("edges = %v, want %v", edges, want)
	}
}

func TestNoteFolderMoveAdjustsCounters(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()

	other, err := f.svc.folders.Create(ctx, &CreateFolderRequest{Name: "Archive"})
	if err != nil {
		t.Fatalf("create folder: %v", err)
	}
	a := f.create(t, "Note A", "")

	if _, err := f.svc.Update(ctx, a.ID, &UpdateNoteRequest{FolderID: &other.ID}); err != nil {
		t.Fatalf("update: %v", err)
	}

	from, _ := f.folders.GetByID(ctx, f.folderID)
	to, _ := f.folders.GetByID(ctx, other.ID)
	if from.NoteCount != 0 || to.NoteCount != 1 {
		t.Errorf("counts = %d/%d, want 0/1", from.NoteCount, to.NoteCount)
	}
}
