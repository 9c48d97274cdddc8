package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"inkwell/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Users             string
	Categories        string
	Tags              string
	Posts             string
	Feeds             string
	FeedComments      string
	VaultFolders      string
	VaultNotes        string
	VaultNoteComments string
	Media             string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Users:             prefix + "users",
		Categories:        prefix + "categories",
		Tags:              prefix + "tags",
		Posts:             prefix + "posts",
		Feeds:             prefix + "feeds",
		FeedComments:      prefix + "feed_comments",
		VaultFolders:      prefix + "vault_folders",
		VaultNotes:        prefix + "vault_notes",
		VaultNoteComments: prefix + "vault_note_comments",
		Media:             prefix + "media",
	}
}

// CreateConnectionPool creates a new pgx connection pool.
//
// If port 6543 is detected (a PgBouncer-style transaction pooler), the query
// execution mode is switched to QueryExecModeCacheDescribe: it keeps the
// extended protocol (needed for array and JSONB encoding) without creating
// named prepared statements, which transaction poolers do not support. An
// explicit default_query_exec_mode in the connection string takes precedence.
//
// Dynamic table prefixes (dev_, test_, prod_) are interpolated into the SQL
// before it reaches the database, so each environment gets its own cached
// statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the appropriate query executor for the context.
// If a transaction is present in the context, it returns the transaction.
// Otherwise, it returns the provided pool.
// This enables repositories to automatically participate in transactions when they exist.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
