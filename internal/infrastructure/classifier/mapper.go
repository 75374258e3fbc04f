package classifier

import "github.com/posmatch/backend/internal/domain"

// MaxIdentifiers is how many identifiers the service is asked to return
const MaxIdentifiers = 3

// Request is the body sent to the classification service
type Request struct {
	Query          string                   `json:"query"`
	Catalog        []domain.ProjectionEntry `json:"catalog"`
	MaxResults     int                      `json:"maxResults"`
	ResponseFormat string                   `json:"responseFormat"`
}

// Response is the envelope returned by the classification service.
// Content holds the model output as text and is parsed separately.
type Response struct {
	Content string `json:"content"`
}

// MapToRequest builds a classification request for query from a live catalog projection
func MapToRequest(query string, projection []domain.ProjectionEntry) Request {
	if projection == nil {
		projection = []domain.ProjectionEntry{}
	}
	return Request{
		Query:          query,
		Catalog:        projection,
		MaxResults:     MaxIdentifiers,
		ResponseFormat: "json-array-of-identifiers",
	}
}
