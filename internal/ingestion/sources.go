package ingestion

import (
	"context"

	"solana-pair-radar/internal/domain"
)

// Result is the outcome of one feed fetch.
type Result struct {
	// Records are raw pair records in the order the feed returned them.
	Records []domain.RawRecord
	// RateLimited is set when the feed answered HTTP 429. Records is empty then.
	RateLimited bool
}

// PairFeed provides raw pair records from an external market-data API.
type PairFeed interface {
	// Name returns the feed identity attached to normalized pairs.
	Name() domain.Source

	// Fetch queries the feed once.
	// Transport failures are logged and yield an empty Result.
	// The error return is reserved for context cancellation.
	Fetch(ctx context.Context) (Result, error)
}

// JSONGetter performs a GET and decodes the JSON body.
// Implemented by Client.
type JSONGetter interface {
	GetJSON(ctx context.Context, rawURL string, headers map[string]string) (any, error)
}

var _ JSONGetter = (*Client)(nil)
