package domain

import "errors"

var (
	// ErrProductNotFound is returned when an identifier does not exist in the catalog
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrInvalidCatalog is returned when catalog data breaks an integrity rule
	ErrInvalidCatalog = errors.New("invalid catalog data")

	// ErrDuplicateIdentifier is returned when two catalog products share an identifier
	ErrDuplicateIdentifier = errors.New("duplicate product identifier")

	// ErrClassifierTransport is returned when the classification service cannot be reached or times out
	ErrClassifierTransport = errors.New("classifier transport failure")

	// ErrClassifierStatus is returned when the classification service answers with a non-2xx status
	ErrClassifierStatus = errors.New("classifier returned non-success status")

	// ErrClassifierDecode is returned when the response body or its content cannot be parsed
	ErrClassifierDecode = errors.New("classifier response could not be decoded")

	// ErrClassifierShape is returned when the parsed content matches none of the accepted shapes
	ErrClassifierShape = errors.New("classifier response has unexpected shape")

	// ErrClassifierDisabled is returned by the offline classifier
	ErrClassifierDisabled = errors.New("classifier disabled")
)

// IsTransportError reports whether a classifier failure happened at the network level.
// Only these failures select the hardcoded default recommendations.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrClassifierTransport)
}

// ClassifierFailureReason maps a classifier error to a short, stable label
func ClassifierFailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrClassifierTransport):
		return "transport"
	case errors.Is(err, ErrClassifierStatus):
		return "status"
	case errors.Is(err, ErrClassifierDecode):
		return "decode"
	case errors.Is(err, ErrClassifierShape):
		return "shape"
	case errors.Is(err, ErrClassifierDisabled):
		return "disabled"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	default:
		return "unknown"
	}
}
