package ingestion

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"solana-pair-radar/internal/domain"
	"solana-pair-radar/internal/observability"
)

// Feed request outcomes recorded in metrics.
const (
	OutcomeOK          = "ok"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// DexscreenerOptions contains configuration for creating a DexscreenerFeed.
type DexscreenerOptions struct {
	URLs   []string
	Client JSONGetter // Default: NewClient()
	Logger zerolog.Logger
}

// DexscreenerFeed is the primary feed. It queries every configured search
// endpoint and aggregates their pair lists.
type DexscreenerFeed struct {
	urls   []string
	client JSONGetter
	logger zerolog.Logger
}

var _ PairFeed = (*DexscreenerFeed)(nil)

// NewDexscreenerFeed creates a new primary feed.
func NewDexscreenerFeed(opts DexscreenerOptions) *DexscreenerFeed {
	client := opts.Client
	if client == nil {
		client = NewClient()
	}

	return &DexscreenerFeed{
		urls:   opts.URLs,
		client: client,
		logger: opts.Logger.With().Str("feed", domain.SourceDexscreener.String()).Logger(),
	}
}

// Name returns SourceDexscreener.
func (f *DexscreenerFeed) Name() domain.Source {
	return domain.SourceDexscreener
}

// Fetch queries the endpoints in order.
// A 429 from any endpoint stops the fetch and discards records gathered so far.
// Other failures skip only the failing endpoint.
func (f *DexscreenerFeed) Fetch(ctx context.Context) (Result, error) {
	var records []domain.RawRecord
	feed := f.Name().String()

	for _, u := range f.urls {
		start := time.Now()
		body, err := f.client.GetJSON(ctx, u, nil)
		elapsed := time.Since(start).Seconds()

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{}, ctxErr
			}
			if errors.Is(err, ErrRateLimited) {
				observability.RecordFeedRequest(feed, OutcomeRateLimited, elapsed)
				f.logger.Warn().Str("url", u).Msg("endpoint rate limited, aborting fetch")
				return Result{RateLimited: true}, nil
			}
			observability.RecordFeedRequest(feed, OutcomeError, elapsed)
			f.logger.Warn().Err(err).Str("url", u).Msg("endpoint fetch failed")
			continue
		}

		observability.RecordFeedRequest(feed, OutcomeOK, elapsed)
		pairs := ExtractPairs(body)
		f.logger.Debug().Str("url", u).Int("pairs", len(pairs)).Msg("endpoint fetched")
		records = append(records, pairs...)
	}

	observability.RecordFeedRecords(feed, len(records))
	return Result{Records: records}, nil
}

// ExtractPairs returns the pair list from a search response.
// "pairs" wins over "results"; a key whose value is not an array is ignored.
// Array elements that are not objects are skipped.
func ExtractPairs(body any) []domain.RawRecord {
	obj, ok := body.(map[string]any)
	if !ok {
		return nil
	}
	for _, key := range []string{"pairs", "results"} {
		if list, ok := obj[key].([]any); ok {
			return toRecords(list)
		}
	}
	return nil
}

func toRecords(list []any) []domain.RawRecord {
	records := make([]domain.RawRecord, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			records = append(records, domain.RawRecord(m))
		}
	}
	return records
}
