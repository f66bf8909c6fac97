package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sazzler/api-gateway/config"
	"github.com/sazzler/api-gateway/internal/observability"
	"github.com/sazzler/api-gateway/middleware"
	"github.com/sazzler/api-gateway/repositories"
	"github.com/sazzler/api-gateway/repositories/postgres"
	rediscache "github.com/sazzler/api-gateway/repositories/redis"
	"github.com/sazzler/api-gateway/token"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger
	DB     *postgres.DB
	Redis  *goredis.Client

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users repositories.UserRepository

	// Identity resolution
	IdentityCache *rediscache.IdentityCache
	Verifier      token.Verifier

	// Metrics
	Registry *prometheus.Registry
	Metrics  *observability.GateMetrics

	// Auth
	Gate *middleware.AuthenticationGate
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initMetrics(cfg)

	base, err := token.NewHMACVerifier(token.Config{
		SigningSecret:    cfg.Auth.SigningSecret,
		ExpirationWindow: cfg.Auth.ExpirationWindow,
		Issuer:           cfg.Auth.Issuer,
		Leeway:           cfg.Auth.Leeway,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token verifier: %w", err)
	}
	deps.Verifier = base

	if cfg.Auth.Strategy == config.StrategyReference {
		if err := deps.initDatabase(ctx, cfg); err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}

		deps.initRepositories()

		var lookup token.IdentityLookup = deps.Users
		if cfg.Redis != nil {
			if err := deps.initIdentityCache(ctx, cfg); err != nil {
				_ = deps.Close(ctx)
				return nil, fmt.Errorf("failed to initialize identity cache: %w", err)
			}
			lookup = deps.IdentityCache
		}

		reference, err := token.NewReferenceVerifier(base, lookup)
		if err != nil {
			_ = deps.Close(ctx)
			return nil, fmt.Errorf("failed to create reference verifier: %w", err)
		}
		deps.Verifier = reference
	}

	deps.initGate()

	logger.Info("all dependencies initialized successfully",
		zap.String("strategy", cfg.Auth.Strategy),
		zap.Bool("metrics_enabled", deps.Registry != nil))
	return deps, nil
}

// initMetrics creates a dedicated registry so /metrics only exposes what we register
func (d *Dependencies) initMetrics(cfg *config.Config) {
	if !cfg.Observability.MetricsEnabled {
		return
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	d.Registry = registry
	d.Metrics = observability.NewGateMetrics(registry)
}

// initDatabase initializes the PostgreSQL database connection and factory
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(*cfg.Database, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if err := d.DB.InitSchema(ctx); err != nil {
		_ = factory.Close()
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	d.Logger.Info("database connection established",
		zap.String("connection", cfg.Database.LogString()))

	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()
	d.Users = repos.Users

	d.Logger.Info("repositories initialized")
}

// initIdentityCache puts Redis in front of the user repository
func (d *Dependencies) initIdentityCache(ctx context.Context, cfg *config.Config) error {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	cache, err := rediscache.NewIdentityCache(rediscache.Config{
		Client:    client,
		Next:      d.Users,
		KeyPrefix: cfg.Redis.KeyPrefix,
		TTL:       cfg.Redis.CacheTTL,
	}, d.Logger)
	if err != nil {
		_ = client.Close()
		return err
	}

	d.Redis = client
	d.IdentityCache = cache

	d.Logger.Info("identity cache enabled",
		zap.String("addr", cfg.Redis.Addr),
		zap.Duration("ttl", cfg.Redis.CacheTTL))
	return nil
}

func (d *Dependencies) initGate() {
	var opts []middleware.GateOption
	if d.Metrics != nil {
		opts = append(opts, middleware.WithMetrics(d.Metrics))
	}
	d.Gate = middleware.NewAuthenticationGate(d.Verifier, d.Logger, opts...)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		} else {
			d.Logger.Info("redis connection closed")
		}
	}

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
