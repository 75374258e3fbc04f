package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/posmatch/backend/internal/domain"
	"github.com/posmatch/backend/internal/metrics"
)

// genericFallbackQuery is matched when the user's own query surfaces nothing
const genericFallbackQuery = "pos"

// defaultIdentifiers are versatile systems shown when the classifier is unreachable
var defaultIdentifiers = []string{"flex4", "mini3"}

// RecommendationServiceConfig holds configuration for the recommendation service
type RecommendationServiceConfig struct {
	CacheTTL           time.Duration
	GenericQuery       string
	DefaultIdentifiers []string
}

// RecommendationService resolves free-text merchant descriptions into a
// ranked set of catalog products by trying tiers in a fixed order.
type RecommendationService struct {
	catalog      domain.ProductCatalog
	classifier   domain.Classifier
	cache        domain.CacheRepository
	matcher      *LocalMatcher
	preprocessor *QueryPreprocessor
	logger       *zap.Logger
	cacheTTL     time.Duration
	genericQuery string
	defaults     []string
	tiers        []tier
}

// tier is one stage of the fallback chain. run reports ok=false to hand
// over to the next tier.
type tier struct {
	name domain.Tier
	run  func(ctx context.Context, r *resolution) (tierOutcome, bool)
}

type tierOutcome struct {
	products []domain.Product
	advisory string
}

// resolution carries per-query state between tiers
type resolution struct {
	normalized string
	remoteErr  error
}

// NewRecommendationService creates a new recommendation service with dependencies.
// cache may be nil to disable caching of remote classifications.
func NewRecommendationService(
	catalog domain.ProductCatalog,
	classifier domain.Classifier,
	cache domain.CacheRepository,
	config RecommendationServiceConfig,
	logger *zap.Logger,
) *RecommendationService {
	if logger == nil {
		logger = zap.NewNop()
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	genericQuery := config.GenericQuery
	if genericQuery == "" {
		genericQuery = genericFallbackQuery
	}

	defaults := config.DefaultIdentifiers
	if len(defaults) == 0 {
		defaults = defaultIdentifiers
	}

	s := &RecommendationService{
		catalog:      catalog,
		classifier:   classifier,
		cache:        cache,
		matcher:      NewLocalMatcher(catalog),
		preprocessor: NewQueryPreprocessor(logger),
		logger:       logger,
		cacheTTL:     cacheTTL,
		genericQuery: genericQuery,
		defaults:     defaults,
	}

	s.tiers = []tier{
		{name: domain.TierRemote, run: s.remoteTier},
		{name: domain.TierHardcodedDefault, run: s.hardcodedDefaultTier},
		{name: domain.TierLocalQueryMatch, run: s.localQueryTier},
		{name: domain.TierLocalGenericFallback, run: s.localGenericTier},
	}

	return s
}

// Resolve produces exactly one result for raw. Tier failures never surface
// as errors; only cancellation of ctx by the caller does.
func (s *RecommendationService) Resolve(ctx context.Context, raw string) (*domain.RecommendationResult, error) {
	start := time.Now()
	defer func() { metrics.ResolveDuration.Observe(time.Since(start).Seconds()) }()

	r := &resolution{normalized: s.preprocessor.Normalize(raw)}
	if r.normalized == "" {
		return &domain.RecommendationResult{Query: raw, Items: []domain.RecommendationItem{}, SourceTier: domain.TierNone}, nil
	}

	for _, t := range s.tiers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		outcome, ok := t.run(ctx, r)
		if !ok {
			s.logger.Debug("tier produced nothing, trying next", zap.String("tier", string(t.name)), zap.String("query", r.normalized))
			continue
		}

		metrics.RecommendationsResolved.WithLabelValues(string(t.name)).Inc()
		s.logger.Debug("tier accepted",
			zap.String("tier", string(t.name)),
			zap.String("query", r.normalized),
			zap.Int("count", len(outcome.products)))

		return &domain.RecommendationResult{
			Query:           raw,
			Items:           s.buildItems(outcome.products),
			AdvisoryMessage: outcome.advisory,
			SourceTier:      t.name,
		}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metrics.RecommendationsResolved.WithLabelValues(string(domain.TierNone)).Inc()
	s.logger.Warn("no tier produced recommendations", zap.String("query", r.normalized))

	return &domain.RecommendationResult{
		Query:           raw,
		Items:           []domain.RecommendationItem{},
		AdvisoryMessage: domain.AdvisoryNoResults,
		SourceTier:      domain.TierNone,
	}, nil
}

// remoteTier asks the classifier and accepts its answer only when every
// resolved product is complete enough to render.
func (s *RecommendationService) remoteTier(ctx context.Context, r *resolution) (tierOutcome, bool) {
	ids, err := s.classify(ctx, r.normalized)
	if err != nil {
		r.remoteErr = err
		metrics.ClassifierFailures.WithLabelValues(domain.ClassifierFailureReason(err)).Inc()
		s.logger.Warn("classifier produced nothing usable", zap.String("query", r.normalized), zap.Error(err))
		return tierOutcome{}, false
	}

	products := s.resolveIdentifiers(ids)
	if len(products) == 0 {
		s.logger.Debug("classifier identifiers did not resolve", zap.Strings("identifiers", ids))
		return tierOutcome{}, false
	}

	for _, p := range products {
		if !p.IsComplete() {
			s.logger.Warn("classifier resolved an incomplete product", zap.String("identifier", p.Identifier))
			return tierOutcome{}, false
		}
	}

	return tierOutcome{products: products}, true
}

// hardcodedDefaultTier only runs after a transport-level classifier failure
func (s *RecommendationService) hardcodedDefaultTier(ctx context.Context, r *resolution) (tierOutcome, bool) {
	if !domain.IsTransportError(r.remoteErr) {
		return tierOutcome{}, false
	}

	var products []domain.Product
	for _, id := range s.defaults {
		if p, ok := s.catalog.FindByIdentifier(id); ok {
			products = append(products, p)
		}
	}
	if len(products) == 0 {
		return tierOutcome{}, false
	}

	return tierOutcome{products: products, advisory: domain.AdvisoryDefault}, true
}

func (s *RecommendationService) localQueryTier(ctx context.Context, r *resolution) (tierOutcome, bool) {
	products := s.matcher.Search(r.normalized, domain.MaxRecommendations)
	return tierOutcome{products: products}, len(products) > 0
}

func (s *RecommendationService) localGenericTier(ctx context.Context, r *resolution) (tierOutcome, bool) {
	products := s.matcher.Search(s.genericQuery, domain.MaxRecommendations)
	return tierOutcome{products: products, advisory: domain.AdvisoryGenericFallback}, len(products) > 0
}

// classify consults the cache before calling the classifier.
// Only successful classifications are cached.
func (s *RecommendationService) classify(ctx context.Context, normalized string) ([]string, error) {
	key := classificationCacheKey(normalized)

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var ids []string
			if err := json.Unmarshal(data, &ids); err == nil {
				s.logger.Debug("classification cache hit", zap.String("query", normalized))
				return ids, nil
			}
			s.logger.Warn("dropping corrupt cached classification", zap.String("query", normalized))
			if err := s.cache.Delete(ctx, key); err != nil {
				s.logger.Warn("failed to drop cached classification", zap.String("query", normalized), zap.Error(err))
			}
		}
	}

	ids, err := s.classifier.Classify(ctx, normalized)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		data, err := json.Marshal(ids)
		if err == nil {
			err = s.cache.Set(ctx, key, data, s.cacheTTL)
		}
		if err != nil {
			s.logger.Warn("failed to cache classification", zap.String("query", normalized), zap.Error(err))
		}
	}

	return ids, nil
}

// resolveIdentifiers maps classifier output to catalog products in order.
// Each identifier is tried as an exact key, then as a case-insensitive key,
// then as an exact case-insensitive name, then by substring containment
// against names in either direction.
// Unresolvable identifiers are dropped and duplicates collapse.
func (s *RecommendationService) resolveIdentifiers(ids []string) []domain.Product {
	all := s.catalog.All()
	seen := make(map[string]bool)
	var products []domain.Product

	for _, id := range ids {
		if len(products) == domain.MaxRecommendations {
			break
		}

		p, ok := resolveIdentifier(strings.TrimSpace(id), s.catalog, all)
		if !ok || seen[p.Identifier] {
			continue
		}
		seen[p.Identifier] = true
		products = append(products, p)
	}

	return products
}

func resolveIdentifier(id string, catalog domain.ProductCatalog, all []domain.Product) (domain.Product, bool) {
	if id == "" {
		return domain.Product{}, false
	}

	if p, ok := catalog.FindByIdentifier(id); ok {
		return p, true
	}

	for _, p := range all {
		if strings.EqualFold(p.Identifier, id) {
			return p, true
		}
	}

	lower := strings.ToLower(id)
	for _, p := range all {
		if strings.ToLower(p.Name) == lower {
			return p, true
		}
	}

	for _, p := range all {
		name := strings.ToLower(p.Name)
		if name == "" {
			continue
		}
		if strings.Contains(name, lower) || strings.Contains(lower, name) {
			return p, true
		}
	}

	return domain.Product{}, false
}

// buildItems attaches up to two complementary products that exist in the catalog
func (s *RecommendationService) buildItems(products []domain.Product) []domain.RecommendationItem {
	if len(products) > domain.MaxRecommendations {
		products = products[:domain.MaxRecommendations]
	}

	items := make([]domain.RecommendationItem, 0, len(products))
	for _, p := range products {
		related := make([]domain.Product, 0, domain.MaxRelatedProducts)
		for _, id := range p.ComplementaryProducts {
			if len(related) == domain.MaxRelatedProducts {
				break
			}
			rp, ok := s.catalog.FindByIdentifier(id)
			if !ok {
				s.logger.Debug("skipping dangling complementary product", zap.String("from", p.Identifier), zap.String("to", id))
				continue
			}
			related = append(related, rp)
		}
		items = append(items, domain.RecommendationItem{Product: p, RelatedProducts: related})
	}

	return items
}

// classificationCacheKey creates a cache key from the normalized query.
// Format: "classify:{normalized_query}"
func classificationCacheKey(normalized string) string {
	return "classify:" + normalized
}
