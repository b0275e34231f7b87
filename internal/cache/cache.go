// Package cache provides time-bounded memoization of flight search
// results, keyed by normalized (source, destination, date).
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/gdsingh/skybook/internal/domain"
)

// SearchCache memoizes search results for a TTL. GetOrCompute returns
// the cached value when fresh, otherwise calls compute, stores the
// result, and returns it.
type SearchCache interface {
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) ([]domain.FlightSummary, error)) ([]domain.FlightSummary, error)
}

// SearchKey normalizes (source, destination, date) into a cache key.
func SearchKey(source, destination, date string) string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return norm(source) + "_" + norm(destination) + "_" + strings.TrimSpace(date)
}
