// Package app wires configuration into the recommendation pipeline shared
// by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/posmatch/backend/config"
	"github.com/posmatch/backend/internal/catalog"
	"github.com/posmatch/backend/internal/domain"
	"github.com/posmatch/backend/internal/infrastructure/cache"
	"github.com/posmatch/backend/internal/infrastructure/classifier"
	"github.com/posmatch/backend/internal/logger"
	"github.com/posmatch/backend/internal/usecase"
)

// Options adjusts wiring beyond what the config holds
type Options struct {
	// Offline disables the remote recommender
	Offline bool
}

// App holds the constructed pipeline and its resources
type App struct {
	Catalog *catalog.Catalog
	Service *usecase.RecommendationService

	closers []func() error
}

// New builds the catalog, cache, classifier and recommendation service
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, opts Options) (*App, error) {
	log = logger.Component(log, "app")

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	log.Info("Catalog loaded", zap.Int("products", cat.Len()), zap.String("path", cfg.Catalog.Path))

	for _, ref := range cat.DanglingReferences() {
		log.Warn("Catalog references unknown complementary product",
			zap.String("product", ref.From),
			zap.String("missing", ref.To))
	}

	a := &App{Catalog: cat}

	repo, err := a.buildCache(ctx, cfg.Cache, log)
	if err != nil {
		return nil, err
	}

	var gateway domain.Classifier
	if opts.Offline {
		gateway = classifier.Offline{}
		log.Info("Remote recommender disabled")
	} else {
		gateway = classifier.NewClient(classifier.Config{
			BaseURL:           cfg.Classifier.BaseURL,
			APIKey:            cfg.Classifier.APIKey,
			Timeout:           cfg.Classifier.Timeout,
			RequestsPerSecond: cfg.Classifier.RequestsPerSecond,
			Burst:             cfg.Classifier.Burst,
		}, cat, log)
		log.Info("Remote recommender configured",
			zap.String("base_url", cfg.Classifier.BaseURL),
			zap.Bool("api_key_set", cfg.Classifier.APIKey != ""))
	}

	a.Service = usecase.NewRecommendationService(cat, gateway, repo, usecase.RecommendationServiceConfig{
		CacheTTL: cfg.Cache.TTL,
	}, logger.Component(log, "pipeline"))

	return a, nil
}

func (a *App) buildCache(ctx context.Context, cfg config.CacheConfig, log *zap.Logger) (domain.CacheRepository, error) {
	switch cfg.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL, "")
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		a.closers = append(a.closers, redisCache.Close)
		log.Info("Using Redis cache", zap.Duration("ttl", cfg.TTL))
		return redisCache, nil
	case "none":
		log.Info("Classification cache disabled")
		return nil, nil
	default:
		memoryCache := cache.NewMemoryCache(0)
		a.closers = append(a.closers, memoryCache.Close)
		log.Info("Using in-memory cache", zap.Duration("ttl", cfg.TTL))
		return memoryCache, nil
	}
}

// Close releases cache connections and background workers
func (a *App) Close() error {
	var firstErr error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
