package domain

// Tier names the resolution stage that produced a result
type Tier string

const (
	TierNone                 Tier = "none"
	TierRemote               Tier = "remote"
	TierLocalQueryMatch      Tier = "local-query-match"
	TierLocalGenericFallback Tier = "local-generic-fallback"
	TierHardcodedDefault     Tier = "hardcoded-default"
)

// Advisory messages attached to non-remote results
const (
	AdvisoryGenericFallback = "No exact matches found; showing popular systems."
	AdvisoryDefault         = "We couldn't process your request right now, so here are some of our most versatile systems."
	AdvisoryNoResults       = "No recommendations found for your query."
)

// MaxRecommendations caps the number of items in a result
const MaxRecommendations = 3

// MaxRelatedProducts caps the complementary products attached per item
const MaxRelatedProducts = 2

// RecommendationItem is a recommended product with its complementary products
type RecommendationItem struct {
	Product         Product   `json:"product"`
	RelatedProducts []Product `json:"relatedProducts"`
}

// RecommendationResult is the settled outcome of resolving one query
type RecommendationResult struct {
	Query           string               `json:"query"`
	Items           []RecommendationItem `json:"items"`
	AdvisoryMessage string               `json:"advisoryMessage,omitempty"`
	SourceTier      Tier                 `json:"sourceTier"`
}

// RecommendRequest is the body of a recommendation request
type RecommendRequest struct {
	Query *string `json:"query" binding:"required"`
}

// ProductIdentifiers returns the identifiers of the recommended products in order
func (r *RecommendationResult) ProductIdentifiers() []string {
	ids := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		ids = append(ids, item.Product.Identifier)
	}
	return ids
}
