package usecase

import (
	"strings"

	"github.com/posmatch/backend/internal/domain"
)

// LocalMatcher ranks catalog products against a normalized query without
// any remote signal. A product matches when the query contains one of its
// matchable fields or one of those fields contains the query. Matches keep
// catalog declaration order; there is no score beyond match or no match.
type LocalMatcher struct {
	catalog domain.ProductCatalog
}

// NewLocalMatcher creates a matcher over catalog
func NewLocalMatcher(catalog domain.ProductCatalog) *LocalMatcher {
	return &LocalMatcher{catalog: catalog}
}

// Search returns at most limit products matching normalizedQuery
func (m *LocalMatcher) Search(normalizedQuery string, limit int) []domain.Product {
	query := strings.ToLower(strings.TrimSpace(normalizedQuery))
	if query == "" || limit <= 0 {
		return nil
	}

	var matched []domain.Product
	for _, product := range m.catalog.All() {
		if !productMatches(query, product) {
			continue
		}
		matched = append(matched, product)
		if len(matched) == limit {
			break
		}
	}

	return matched
}

// productMatches checks name, features, bestFor and keyword fields
func productMatches(query string, p domain.Product) bool {
	if containsEither(query, p.Name) {
		return true
	}
	for _, fields := range [][]string{p.Features, p.BestFor, p.SearchTerms.Keywords} {
		for _, field := range fields {
			if containsEither(query, field) {
				return true
			}
		}
	}
	return false
}

// containsEither is bidirectional case-insensitive substring containment.
// Blank fields never match; they would otherwise be contained in every query.
func containsEither(query, field string) bool {
	f := strings.ToLower(strings.TrimSpace(field))
	if f == "" {
		return false
	}
	return strings.Contains(query, f) || strings.Contains(f, query)
}
