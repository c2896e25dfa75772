package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Resolver confirms that an internal user id exists in the primary user
// store. The graph engine consults it before lazily creating a user node,
// so the graph never grows anchors for unknown users. User lifecycle
// (creation, deletion) is owned by the user-management collaborator.
type Resolver interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"ssl_mode"`
}

// DSN returns the PostgreSQL connection string.
func (c *PostgresConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslMode,
	)
}

// Validate checks PostgreSQL configuration.
func (c *PostgresConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	return nil
}

// PostgresResolver resolves user identities against the users mirror table.
type PostgresResolver struct {
	pool *pgxpool.Pool
}

var _ Resolver = (*PostgresResolver)(nil)

// NewPostgresResolver connects to PostgreSQL and ensures the schema.
func NewPostgresResolver(cfg PostgresConfig) (*PostgresResolver, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	r := &PostgresResolver{pool: pool}
	if err := r.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return r, nil
}

// ensureSchema creates the users table if it doesn't exist. In a deployed
// environment the table is populated by the user-management service; the
// DDL here only keeps fresh environments usable.
func (r *PostgresResolver) ensureSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS users (
    id         TEXT        PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	_, err := r.pool.Exec(ctx, ddl)
	return err
}

// Exists reports whether the user id is present in the users table.
func (r *PostgresResolver) Exists(ctx context.Context, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to look up user %s: %w", userID, err)
	}

	return exists, nil
}

// Close releases the connection pool.
func (r *PostgresResolver) Close(_ context.Context) error {
	r.pool.Close()
	return nil
}
