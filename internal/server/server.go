package server

import (
	"context"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/voisin/friendgraph/internal/api/http"
	"github.com/voisin/friendgraph/internal/engine"
	"github.com/voisin/friendgraph/internal/identity"
	"github.com/voisin/friendgraph/internal/notify"
	"github.com/voisin/friendgraph/pkg/graph"
	"github.com/voisin/friendgraph/pkg/log"
	"github.com/voisin/friendgraph/pkg/mq"
	"github.com/voisin/friendgraph/pkg/redis"
)

// Server represents the friend graph server
type Server struct {
	config   Config
	logger   *slog.Logger
	engine   *engine.Engine
	resolver *identity.PostgresResolver
}

// NewServer creates a new server with the given configuration
func NewServer(conf Config) (*Server, error) {
	server := &Server{
		config: conf,
	}

	if err := server.initDepend(); err != nil {
		return nil, errors.WithMessage(err, "init server dependency failed")
	}

	if err := server.initEngine(); err != nil {
		return nil, errors.WithMessage(err, "init engine failed")
	}

	return server, nil
}

// initDepend initializes all dependencies
func (s *Server) initDepend() error {
	// Initialize log first
	if err := log.Init(s.config.Log); err != nil {
		return errors.WithMessage(err, "failed to init log")
	}

	// Create logger for this module
	s.logger = log.Logger("server")
	s.logger.Info("initializing dependencies")

	// Initialize Neo4j graph store
	s.logger.Info("initializing graph store")
	if err := graph.Init(s.config.Neo4j); err != nil {
		return errors.WithMessage(err, "failed to init graph store")
	}

	// Initialize PostgreSQL identity resolver
	s.logger.Info("initializing identity resolver")
	resolver, err := identity.NewPostgresResolver(s.config.Postgres)
	if err != nil {
		return errors.WithMessage(err, "failed to init identity resolver")
	}
	s.resolver = resolver

	// Initialize Redis
	s.logger.Info("initializing redis")
	if err := redis.Init(s.config.Redis); err != nil {
		return errors.WithMessage(err, "failed to init redis")
	}

	// Initialize Kafka message queue
	s.logger.Info("initializing message queue")
	if err := mq.Init(s.config.Kafka); err != nil {
		return errors.WithMessage(err, "failed to init message queue")
	}

	return nil
}

// initEngine initializes the friend graph engine
func (s *Server) initEngine() error {
	s.logger.Info("initializing engine")

	var notifier notify.Notifier = notify.NopNotifier{}
	if queue := mq.NewQueue(); queue != nil {
		notifier = notify.NewKafkaNotifier(queue, s.config.Notify.Topic)
	}

	resolver := identity.NewCachedResolver(s.resolver, redis.Client())
	s.engine = engine.New(graph.NewStore(), resolver, notifier)
	return nil
}

// Start starts the server and blocks until shutdown
func (s *Server) Start() error {
	s.logger.Info("starting", "port", s.config.Server.Port)

	ctx, cancel := context.WithCancel(context.Background())

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		s.logger.Info("received shutdown signal")
		cancel()
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.runHTTPServer(ctx)
	})

	return g.Wait()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	s.logger.Info("shutting down")

	ctx := context.Background()

	if err := graph.Close(ctx); err != nil {
		s.logger.Error("failed to close graph store", "error", err)
	}

	if s.resolver != nil {
		if err := s.resolver.Close(ctx); err != nil {
			s.logger.Error("failed to close identity resolver", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		s.logger.Error("failed to close redis", "error", err)
	}

	if err := mq.NewQueue().Close(); err != nil {
		s.logger.Error("failed to close message queue", "error", err)
	}

	return nil
}

func (s *Server) runHTTPServer(ctx context.Context) error {
	serverCfg := http.DefaultServerConfig()
	serverCfg.Port = s.config.Server.Port

	srv := http.NewServer(s.engine, graph.NewStore(), serverCfg)

	// Shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
		return errors.WithMessage(err, "http server error")
	}
	return nil
}
