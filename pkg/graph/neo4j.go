package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Package-level instance
var neo4jInstance *Neo4jStore

// Init initializes the graph package with config.
func Init(cfg Neo4jConfig) error {
	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	neo4jInstance = store
	return nil
}

// NewStore returns the Neo4jStore instance.
func NewStore() *Neo4jStore {
	return neo4jInstance
}

// Close closes the Neo4jStore connection.
func Close(ctx context.Context) error {
	if neo4jInstance != nil {
		return neo4jInstance.Close(ctx)
	}
	return nil
}

// Store is the relationship store contract used by the engine.
// Every query is a parameterized Cypher statement; user identifiers are
// always bound parameters, never interpolated into the query text.
// A record maps declared result names to converted values (node property
// maps, primitive counts, booleans).
type Store interface {
	Read(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
	Write(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
}

// Neo4jConfig holds Neo4j connection configuration
type Neo4jConfig struct {
	URI      string `toml:"uri"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

// Validate checks Neo4j configuration.
func (c *Neo4jConfig) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("uri is required")
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	return nil
}

// Neo4jStore implements Store against a Neo4j database
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
}

var _ Store = (*Neo4jStore)(nil)

// newStore creates a new Neo4j graph store
func newStore(cfg Neo4jConfig) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("failed to verify Neo4j connectivity: %w", err)
	}

	return &Neo4jStore{
		driver:   driver,
		database: cfg.Database,
	}, nil
}

// Read executes a Cypher query inside a managed read transaction and
// returns the collected records.
func (s *Neo4jStore) Read(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database, AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return s.collect(ctx, tx, cypher, params)
	})
	if err != nil {
		return nil, fmt.Errorf("cypher read failed: %w", err)
	}

	return records.([]map[string]any), nil
}

// Write executes a Cypher query inside a managed write transaction and
// returns the collected records. One statement is one transaction: a
// conditional match combined with a write clause executes atomically,
// which is what the engine relies on for its check-then-act operations.
func (s *Neo4jStore) Write(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	records, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return s.collect(ctx, tx, cypher, params)
	})
	if err != nil {
		return nil, fmt.Errorf("cypher write failed: %w", err)
	}

	return records.([]map[string]any), nil
}

func (s *Neo4jStore) collect(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) ([]map[string]any, error) {
	result, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]any, 0, len(records))
	for _, record := range records {
		row := make(map[string]any)
		for _, key := range record.Keys {
			val, _ := record.Get(key)
			row[key] = s.convertValue(val)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Health checks Neo4j connection
func (s *Neo4jStore) Health(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

// Close closes the Neo4j connection
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// convertValue converts Neo4j types to Go types
func (s *Neo4jStore) convertValue(val any) any {
	switch v := val.(type) {
	case neo4j.Node:
		return v.Props
	case neo4j.Relationship:
		return v.Props
	default:
		return val
	}
}
