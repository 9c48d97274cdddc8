package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"inkwell/internal/auth"
	"inkwell/internal/config"
	"inkwell/internal/domain"
	"inkwell/internal/domain/repositories"
	"inkwell/internal/repository/postgres"
	"inkwell/internal/service"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

type fixtures struct {
	Admin struct {
		Email       string `yaml:"email"`
		Username    string `yaml:"username"`
		Password    string `yaml:"password"`
		DisplayName string `yaml:"displayName"`
	} `yaml:"admin"`
	Categories []categoryFixture `yaml:"categories"`
	Tags       []string          `yaml:"tags"`
	Posts      []postFixture     `yaml:"posts"`
	Vault      struct {
		Folders []folderFixture `yaml:"folders"`
		Notes   []noteFixture   `yaml:"notes"`
	} `yaml:"vault"`
	Feeds []feedFixture `yaml:"feeds"`
}

type categoryFixture struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Children    []categoryFixture `yaml:"children"`
}

type postFixture struct {
	Title    string   `yaml:"title"`
	Category string   `yaml:"category"`
	Tags     []string `yaml:"tags"`
	Status   string   `yaml:"status"`
	Featured bool     `yaml:"featured"`
	Content  string   `yaml:"content"`
}

type folderFixture struct {
	Name     string          `yaml:"name"`
	Children []folderFixture `yaml:"children"`
}

type noteFixture struct {
	Title   string   `yaml:"title"`
	Folder  string   `yaml:"folder"`
	Tags    []string `yaml:"tags"`
	Content string   `yaml:"content"`
}

type feedFixture struct {
	Content    string `yaml:"content"`
	Visibility string `yaml:"visibility"`
}

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed fixtures")
	clearData := flag.Bool("clear-data", false, "Clear all rows (keep schema)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		log.Println("🧹 Clearing all rows...")
		if err := clearAllData(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared successfully")
		return
	}

	var fx fixtures
	if err := yaml.Unmarshal(fixturesYAML, &fx); err != nil {
		log.Fatalf("Failed to parse fixtures: %v", err)
	}

	// Create repositories and services
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	userRepo := postgres.NewUserRepository(repoConfig)
	categoryRepo := postgres.NewCategoryRepository(repoConfig)
	tagRepo := postgres.NewTagRepository(repoConfig)
	postRepo := postgres.NewPostRepository(repoConfig)
	feedRepo := postgres.NewFeedRepository(repoConfig)
	feedCommentRepo := postgres.NewFeedCommentRepository(repoConfig)
	folderRepo := postgres.NewVaultFolderRepository(repoConfig)
	noteRepo := postgres.NewVaultNoteRepository(repoConfig)
	noteCommentRepo := postgres.NewVaultNoteCommentRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	issuer, err := auth.NewHMACIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, logger)
	if err != nil {
		log.Fatalf("Failed to create token issuer: %v", err)
	}
	authService := service.NewAuthService(userRepo, issuer, logger)
	categoryService := service.NewCategoryService(categoryRepo, txManager, logger)
	tagService := service.NewTagService(tagRepo, logger)
	postService := service.NewPostService(postRepo, categoryService, tagService, userRepo, logger)
	previewService := service.NewLinkPreviewService(logger)
	feedService := service.NewFeedService(feedRepo, feedCommentRepo, userRepo, previewService, logger)
	folderService := service.NewVaultFolderService(folderRepo, txManager, logger)
	noteService := service.NewVaultNoteService(noteRepo, noteCommentRepo, folderService, userRepo, logger)

	// Admin account. The first registered user gets the admin role, so this
	// must happen before anything that stamps an author.
	log.Println("👤 Ensuring admin account...")
	adminID, err := ensureAdmin(ctx, authService, userRepo, &fx)
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	log.Println("🗂️  Seeding categories...")
	categoryIDs := map[string]string{}
	if err := seedCategories(ctx, categoryService, fx.Categories, nil, "", categoryIDs); err != nil {
		log.Fatalf("Failed to seed categories: %v", err)
	}

	log.Println("🏷️  Seeding tags...")
	for _, name := range fx.Tags {
		if _, err := tagService.Create(ctx, &service.CreateTagRequest{Name: name}); err != nil && !errors.Is(err, domain.ErrConflict) {
			log.Fatalf("Failed to seed tag %q: %v", name, err)
		}
	}

	log.Println("📝 Seeding posts...")
	for _, p := range fx.Posts {
		categoryID, ok := categoryIDs[p.Category]
		if !ok {
			log.Fatalf("Post %q references unknown category %q", p.Title, p.Category)
		}
		post, err := postService.Create(ctx, &service.CreatePostRequest{
			Title:      p.Title,
			Content:    p.Content,
			CategoryID: categoryID,
			Tags:       p.Tags,
			Status:     p.Status,
			Featured:   p.Featured,
		}, adminID)
		if err != nil {
			log.Printf("❌ Failed to create post %q: %v", p.Title, err)
			continue
		}
		log.Printf("✅ Created post: %s (slug: %s)", post.Title, post.Slug)
	}

	log.Println("📁 Seeding vault folders...")
	folderIDs := map[string]string{}
	if err := seedFolders(ctx, folderService, fx.Vault.Folders, nil, "", folderIDs); err != nil {
		log.Fatalf("Failed to seed folders: %v", err)
	}

	// Notes seed in two passes: links resolve against notes that already
	// exist, so the first pass leaves forward references dangling and the
	// second pass re-saves every note to pick them up.
	log.Println("🕸️  Seeding vault notes...")
	type createdNote struct {
		id      string
		content string
	}
	var created []createdNote
	for _, n := range fx.Vault.Notes {
		folderID, ok := folderIDs[n.Folder]
		if !ok {
			log.Fatalf("Note %q references unknown folder %q", n.Title, n.Folder)
		}
		note, err := noteService.Create(ctx, &service.CreateNoteRequest{
			Title:    n.Title,
			Content:  n.Content,
			FolderID: folderID,
			Tags:     n.Tags,
		}, adminID)
		if err != nil {
			log.Printf("❌ Failed to create note %q: %v", n.Title, err)
			continue
		}
		created = append(created, createdNote{id: note.ID, content: n.Content})
		log.Printf("✅ Created note: %s (slug: %s)", note.Title, note.Slug)
	}
	for _, n := range created {
		content := n.content
		if _, err := noteService.Update(ctx, n.id, &service.UpdateNoteRequest{Content: &content}); err != nil {
			log.Printf("❌ Failed to re-link note %s: %v", n.id, err)
		}
	}

	log.Println("💬 Seeding feed posts...")
	for _, f := range fx.Feeds {
		if _, err := feedService.Create(ctx, &service.CreateFeedRequest{
			Content:    f.Content,
			Visibility: f.Visibility,
		}, adminID); err != nil {
			log.Printf("❌ Failed to create feed post: %v", err)
		}
	}

	log.Println("🎉 Seeding complete!")
}

// ensureAdmin registers the fixture admin, reusing the account if it already
// exists from a previous run.
func ensureAdmin(ctx context.Context, authService *service.AuthService, users repositories.UserRepository, fx *fixtures) (string, error) {
	result, err := authService.Register(ctx, &service.RegisterRequest{
		Email:       fx.Admin.Email,
		Username:    fx.Admin.Username,
		Password:    fx.Admin.Password,
		DisplayName: fx.Admin.DisplayName,
	})
	if err == nil {
		return result.User.ID, nil
	}
	if !errors.Is(err, domain.ErrConflict) {
		return "", err
	}
	existing, err := users.GetByEmail(ctx, fx.Admin.Email)
	if err != nil {
		return "", err
	}
	return existing.ID, nil
}

func seedCategories(
	ctx context.Context,
	svc *service.CategoryService,
	nodes []categoryFixture,
	parentID *string,
	prefix string,
	out map[string]string,
) error {
	for _, node := range nodes {
		category, err := svc.Create(ctx, &service.CreateCategoryRequest{
			Name:        node.Name,
			Description: node.Description,
			ParentID:    parentID,
		})
		if err != nil {
			return err
		}
		path := prefix + node.Name
		out[path] = category.ID
		log.Printf("✅ Created category: %s", path)
		if err := seedCategories(ctx, svc, node.Children, &category.ID, path+"/", out); err != nil {
			return err
		}
	}
	return nil
}

func seedFolders(
	ctx context.Context,
	svc *service.VaultFolderService,
	nodes []folderFixture,
	parentID *string,
	prefix string,
	out map[string]string,
) error {
	for _, node := range nodes {
		folder, err := svc.Create(ctx, &service.CreateFolderRequest{
			Name:     node.Name,
			ParentID: parentID,
		})
		if err != nil {
			return err
		}
		path := prefix + node.Name
		out[path] = folder.ID
		log.Printf("✅ Created folder: %s", path)
		if err := seedFolders(ctx, svc, node.Children, &folder.ID, path+"/", out); err != nil {
			return err
		}
	}
	return nil
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	// Enable UUID extension
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return err
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Users + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			email TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			display_name TEXT NOT NULL DEFAULT '',
			avatar TEXT NOT NULL DEFAULT '',
			bio TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Categories + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			parent_id UUID REFERENCES ` + tables.Categories + `(id),
			ancestors TEXT[] NOT NULL DEFAULT '{}',
			depth INTEGER NOT NULL DEFAULT 0,
			sort_order INTEGER NOT NULL DEFAULT 0,
			description TEXT NOT NULL DEFAULT '',
			icon TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '',
			post_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Tags + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL UNIQUE,
			slug TEXT NOT NULL UNIQUE,
			post_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Posts + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			title TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			content TEXT NOT NULL,
			excerpt TEXT NOT NULL DEFAULT '',
			cover_image TEXT NOT NULL DEFAULT '',
			category_id UUID NOT NULL REFERENCES ` + tables.Categories + `(id),
			category_name TEXT NOT NULL DEFAULT '',
			category_slug TEXT NOT NULL DEFAULT '',
			tags JSONB NOT NULL DEFAULT '[]',
			author_id UUID NOT NULL,
			author_name TEXT NOT NULL DEFAULT '',
			author_avatar TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'draft',
			featured BOOLEAN NOT NULL DEFAULT FALSE,
			seo JSONB NOT NULL DEFAULT '{}',
			views INTEGER NOT NULL DEFAULT 0,
			likes INTEGER NOT NULL DEFAULT 0,
			published_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Feeds + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			content TEXT NOT NULL,
			images TEXT[] NOT NULL DEFAULT '{}',
			author_id UUID NOT NULL,
			author_name TEXT NOT NULL DEFAULT '',
			author_avatar TEXT NOT NULL DEFAULT '',
			visibility TEXT NOT NULL DEFAULT 'public',
			link_preview JSONB,
			likes_count INTEGER NOT NULL DEFAULT 0,
			liked_by TEXT[] NOT NULL DEFAULT '{}',
			comments_count INTEGER NOT NULL DEFAULT 0,
			views INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.FeedComments + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			feed_id UUID NOT NULL REFERENCES ` + tables.Feeds + `(id) ON DELETE CASCADE,
			author_id UUID NOT NULL,
			author_name TEXT NOT NULL DEFAULT '',
			author_avatar TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.VaultFolders + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			parent_id UUID REFERENCES ` + tables.VaultFolders + `(id),
			ancestors TEXT[] NOT NULL DEFAULT '{}',
			depth INTEGER NOT NULL DEFAULT 0,
			sort_order INTEGER NOT NULL DEFAULT 0,
			note_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.VaultNotes + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			title TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			content TEXT NOT NULL,
			folder_id UUID NOT NULL REFERENCES ` + tables.VaultFolders + `(id),
			author_id UUID NOT NULL,
			author_name TEXT NOT NULL DEFAULT '',
			outgoing_links TEXT[] NOT NULL DEFAULT '{}',
			tags TEXT[] NOT NULL DEFAULT '{}',
			views INTEGER NOT NULL DEFAULT 0,
			comments_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.VaultNoteComments + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			note_id UUID NOT NULL REFERENCES ` + tables.VaultNotes + `(id) ON DELETE CASCADE,
			author_id UUID NOT NULL,
			author_name TEXT NOT NULL DEFAULT '',
			author_avatar TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Media + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			original_filename TEXT NOT NULL,
			saved_filename TEXT NOT NULL,
			file_path TEXT NOT NULL,
			file_url TEXT NOT NULL UNIQUE,
			content_type TEXT NOT NULL,
			file_size BIGINT NOT NULL,
			uploader_id UUID NOT NULL,
			uploader_name TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	// Create indexes
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `categories_parent ON ` + tables.Categories + `(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `posts_status ON ` + tables.Posts + `(status, published_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `posts_category ON ` + tables.Posts + `(category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `posts_tags ON ` + tables.Posts + ` USING GIN (tags)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `feeds_visibility ON ` + tables.Feeds + `(visibility, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `feed_comments_feed ON ` + tables.FeedComments + `(feed_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `vault_folders_parent ON ` + tables.VaultFolders + `(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `vault_notes_folder ON ` + tables.VaultNotes + `(folder_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `vault_notes_links ON ` + tables.VaultNotes + ` USING GIN (outgoing_links)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `vault_note_comments_note ON ` + tables.VaultNoteComments + `(note_id, created_at)`,
	}
	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.Media,
		tables.VaultNoteComments,
		tables.VaultNotes,
		tables.VaultFolders,
		tables.FeedComments,
		tables.Feeds,
		tables.Posts,
		tables.Tags,
		tables.Categories,
		tables.Users,
	}

	for _, table := range tableNames {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return err
		}
		log.Printf("  ✓ Dropped %s", table)
	}

	return nil
}

// clearAllData deletes every row in reverse order (to respect foreign keys)
func clearAllData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.Media,
		tables.VaultNoteComments,
		tables.VaultNotes,
		tables.VaultFolders,
		tables.FeedComments,
		tables.Feeds,
		tables.Posts,
		tables.Tags,
		tables.Categories,
		tables.Users,
	}

	for _, table := range tableNames {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	return nil
}
