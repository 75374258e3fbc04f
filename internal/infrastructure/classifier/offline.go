package classifier

import (
	"context"

	"github.com/posmatch/backend/internal/domain"
)

// Offline is a classifier that never answers. Resolution then starts at the
// local tiers because the failure is not transport-level.
type Offline struct{}

// Classify always returns ErrClassifierDisabled
func (Offline) Classify(ctx context.Context, query string) ([]string, error) {
	return nil, domain.ErrClassifierDisabled
}
