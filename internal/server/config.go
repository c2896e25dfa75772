package server

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/voisin/friendgraph/internal/identity"
	"github.com/voisin/friendgraph/pkg/graph"
	"github.com/voisin/friendgraph/pkg/log"
	"github.com/voisin/friendgraph/pkg/mq"
	"github.com/voisin/friendgraph/pkg/redis"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig            `toml:"server"`
	Log      log.Config              `toml:"log"`
	Neo4j    graph.Neo4jConfig       `toml:"neo4j"`
	Postgres identity.PostgresConfig `toml:"postgres"`
	Redis    redis.Config            `toml:"redis"`
	Kafka    mq.KafkaConfig          `toml:"kafka"`
	Notify   NotifyConfig            `toml:"notify"`
}

// ServerConfig contains server configuration
type ServerConfig struct {
	Port int `toml:"port"`
}

// NotifyConfig contains notification configuration
type NotifyConfig struct {
	Topic string `toml:"topic"`
}

// Validate checks server configuration
func (s *ServerConfig) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("port is required and must be between 1 and 65535")
	}
	return nil
}

// Validate checks notification configuration
func (n *NotifyConfig) Validate() error {
	if n.Topic == "" {
		n.Topic = "friend-events"
	}
	return nil
}

// Validate checks all configuration fields
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	if err := c.Neo4j.Validate(); err != nil {
		return fmt.Errorf("neo4j: %w", err)
	}

	if err := c.Postgres.Validate(); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}

	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	if err := c.Kafka.Validate(); err != nil {
		return fmt.Errorf("kafka: %w", err)
	}

	if err := c.Notify.Validate(); err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	return nil
}

// LoadConfig reads and parses the configuration file
func LoadConfig(filename string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}
