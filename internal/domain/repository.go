package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ProductCatalog is read-only access to the product catalog
type ProductCatalog interface {
	All() []Product
	FindByIdentifier(id string) (Product, bool)
	Projection() []ProjectionEntry
}

// Classifier wraps one round trip to the natural-language classification service.
// It returns identifiers ordered by relevance.
type Classifier interface {
	Classify(ctx context.Context, query string) ([]string, error)
}
