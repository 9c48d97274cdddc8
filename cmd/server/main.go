package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"inkwell/internal/auth"
	"inkwell/internal/config"
	"inkwell/internal/handler"
	"inkwell/internal/middleware"
	"inkwell/internal/repository/postgres"
	"inkwell/internal/service"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	// Mirror logs to a rotated file when LOG_DIR is set
	var logOut io.Writer = os.Stdout
	if logDir := os.Getenv("LOG_DIR"); logDir != "" {
		logFile, err := config.SetupLogFile(logDir, 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Token issuer for the built-in login flow
	issuer, err := auth.NewHMACIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, logger)
	if err != nil {
		log.Fatalf("Failed to create token issuer: %v", err)
	}

	// The middleware verifies against the local issuer by default; a JWKS
	// URL switches verification to an external identity provider.
	var verifier auth.TokenVerifier = issuer
	if cfg.JWKSURL != "" {
		verifier, err = auth.NewJWKSVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWKS verifier: %v", err)
		}
	}
	defer verifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create repositories
	tables := postgres.NewTableNames(cfg.TablePrefix)
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
	mediaRepo := postgres.NewMediaRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Create services
	authService := service.NewAuthService(userRepo, issuer, logger)
	categoryService := service.NewCategoryService(categoryRepo, txManager, logger)
	tagService := service.NewTagService(tagRepo, logger)
	postService := service.NewPostService(postRepo, categoryService, tagService, userRepo, logger)
	previewService := service.NewLinkPreviewService(logger)
	feedService := service.NewFeedService(feedRepo, feedCommentRepo, userRepo, previewService, logger)
	feedCommentService := service.NewFeedCommentService(feedCommentRepo, feedService, userRepo, logger)
	folderService := service.NewVaultFolderService(folderRepo, txManager, logger)
	noteService := service.NewVaultNoteService(noteRepo, noteCommentRepo, folderService, userRepo, logger)
	noteCommentService := service.NewVaultNoteCommentService(noteCommentRepo, noteService, userRepo, logger)
	mediaService := service.NewMediaService(mediaRepo, userRepo, cfg.UploadDir, cfg.MaxFileSize, logger)

	// Create handlers
	authHandler := handler.NewAuthHandler(authService, logger)
	categoryHandler := handler.NewCategoryHandler(categoryService, logger)
	tagHandler := handler.NewTagHandler(tagService, logger)
	postHandler := handler.NewPostHandler(postService, logger)
	feedHandler := handler.NewFeedHandler(feedService, feedCommentService, logger)
	folderHandler := handler.NewVaultFolderHandler(folderService, logger)
	noteHandler := handler.NewVaultNoteHandler(noteService, noteCommentService, logger)
	mediaHandler := handler.NewMediaHandler(mediaService, logger)
	previewHandler := handler.NewLinkPreviewHandler(previewService, logger)
	healthHandler := handler.NewHealthHandler(pool)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", healthHandler.Check)

	// Auth routes
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(authHandler.Me))

	// Category routes
	mux.HandleFunc("GET /api/categories", categoryHandler.List)
	mux.HandleFunc("POST /api/categories", middleware.RequireAdmin(categoryHandler.Create))
	mux.HandleFunc("GET /api/categories/tree", categoryHandler.Tree)
	mux.HandleFunc("GET /api/categories/slug/{slug}", categoryHandler.GetBySlug)
	mux.HandleFunc("GET /api/categories/{id}", categoryHandler.Get)
	mux.HandleFunc("PATCH /api/categories/{id}", middleware.RequireAdmin(categoryHandler.Update))
	mux.HandleFunc("DELETE /api/categories/{id}", middleware.RequireAdmin(categoryHandler.Delete))
	mux.HandleFunc("PUT /api/categories/{id}/move", middleware.RequireAdmin(categoryHandler.Move))
	mux.HandleFunc("GET /api/categories/{id}/children", categoryHandler.Children)
	mux.HandleFunc("GET /api/categories/{id}/posts", postHandler.ByCategory)

	// Tag routes
	mux.HandleFunc("GET /api/tags", tagHandler.List)
	mux.HandleFunc("POST /api/tags", middleware.RequireAdmin(tagHandler.Create))
	mux.HandleFunc("GET /api/tags/{id}", tagHandler.Get)
	mux.HandleFunc("DELETE /api/tags/{id}", middleware.RequireAdmin(tagHandler.Delete))
	mux.HandleFunc("GET /api/tags/{id}/posts", postHandler.ByTag)

	// Post routes
	mux.HandleFunc("GET /api/posts", postHandler.List)
	mux.HandleFunc("POST /api/posts", middleware.RequireAdmin(postHandler.Create))
	mux.HandleFunc("GET /api/posts/featured", postHandler.Featured)
	mux.HandleFunc("GET /api/posts/search", postHandler.Search) // Must come before {id} route
	mux.HandleFunc("GET /api/posts/slug/{slug}", postHandler.GetBySlug)
	mux.HandleFunc("GET /api/posts/{id}", postHandler.Get)
	mux.HandleFunc("PATCH /api/posts/{id}", middleware.RequireAdmin(postHandler.Update))
	mux.HandleFunc("DELETE /api/posts/{id}", middleware.RequireAdmin(postHandler.Delete))

	// Feed routes
	mux.HandleFunc("GET /api/feeds", feedHandler.List)
	mux.HandleFunc("POST /api/feeds", middleware.RequireAuth(feedHandler.Create))
	mux.HandleFunc("GET /api/feeds/{id}", feedHandler.Get)
	mux.HandleFunc("PATCH /api/feeds/{id}", middleware.RequireAuth(feedHandler.Update))
	mux.HandleFunc("DELETE /api/feeds/{id}", middleware.RequireAuth(feedHandler.Delete))
	mux.HandleFunc("POST /api/feeds/{id}/like", middleware.RequireAuth(feedHandler.ToggleLike))
	mux.HandleFunc("GET /api/feeds/{id}/comments", feedHandler.ListComments)
	mux.HandleFunc("POST /api/feeds/{id}/comments", middleware.RequireAuth(feedHandler.CreateComment))
	mux.HandleFunc("DELETE /api/feeds/comments/{id}", middleware.RequireAuth(feedHandler.DeleteComment))

	// Vault folder routes
	mux.HandleFunc("GET /api/vault/folders", folderHandler.List)
	mux.HandleFunc("POST /api/vault/folders", middleware.RequireAdmin(folderHandler.Create))
	mux.HandleFunc("GET /api/vault/folders/tree", folderHandler.Tree)
	mux.HandleFunc("GET /api/vault/folders/{id}", folderHandler.Get)
	mux.HandleFunc("PATCH /api/vault/folders/{id}", middleware.RequireAdmin(folderHandler.Update))
	mux.HandleFunc("DELETE /api/vault/folders/{id}", middleware.RequireAdmin(folderHandler.Delete))
	mux.HandleFunc("PUT /api/vault/folders/{id}/move", middleware.RequireAdmin(folderHandler.Move))

	// Vault note routes
	mux.HandleFunc("GET /api/vault/notes", noteHandler.List)
	mux.HandleFunc("POST /api/vault/notes", middleware.RequireAdmin(noteHandler.Create))
	mux.HandleFunc("GET /api/vault/notes/search", noteHandler.Search) // Must come before {id} route
	mux.HandleFunc("GET /api/vault/notes/slug/{slug}", noteHandler.GetBySlug)
	mux.HandleFunc("GET /api/vault/notes/{id}", noteHandler.Get)
	mux.HandleFunc("PATCH /api/vault/notes/{id}", middleware.RequireAdmin(noteHandler.Update))
	mux.HandleFunc("DELETE /api/vault/notes/{id}", middleware.RequireAdmin(noteHandler.Delete))
	mux.HandleFunc("GET /api/vault/notes/{id}/backrefs", noteHandler.Backreferences)
	mux.HandleFunc("GET /api/vault/notes/{id}/comments", noteHandler.ListComments)
	mux.HandleFunc("POST /api/vault/notes/{id}/comments", middleware.RequireAuth(noteHandler.CreateComment))
	mux.HandleFunc("DELETE /api/vault/comments/{id}", middleware.RequireAuth(noteHandler.DeleteComment))
	mux.HandleFunc("GET /api/vault/graph", noteHandler.Graph)

	// Media routes
	mux.HandleFunc("POST /api/media", middleware.RequireAdmin(mediaHandler.Upload))
	mux.HandleFunc("DELETE /api/media", middleware.RequireAdmin(mediaHandler.Delete))
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	// Link preview
	mux.HandleFunc("GET /api/link-preview", middleware.RequireAuth(previewHandler.Get))

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	root = middleware.Auth(verifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
