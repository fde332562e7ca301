package usecase

import (
	"context"

	"github.com/riskibarqy/livescore/internal/domain/match"
)

// MatchProvider is one upstream score source. Implementations live under
// external/ and must treat every failure as their own: the service records
// the error and carries on with the remaining providers.
type MatchProvider interface {
	Name() string
	FetchMatches(ctx context.Context) ([]match.ProviderRow, error)
}

// ProviderStatus reports how a single provider fared during the most recent
// refresh cycle.
type ProviderStatus struct {
	OK    bool   `json:"ok"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}
