package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"solana-pair-radar/internal/domain"
	"solana-pair-radar/internal/observability"
	"solana-pair-radar/internal/solana"
)

// BirdeyeOptions contains configuration for creating a BirdeyeFeed.
type BirdeyeOptions struct {
	URL    string
	APIKey string // Sent as x-api-key when set
	Chain  string // Written as chainId on synthetic records
	Dex    string // Written as dexId on synthetic records
	Client JSONGetter
	Logger zerolog.Logger
	Now    func() time.Time // Default: time.Now
}

// BirdeyeFeed is the secondary feed. It maps the token list onto records
// shaped like Dexscreener pairs.
type BirdeyeFeed struct {
	url    string
	apiKey string
	chain  string
	dex    string
	client JSONGetter
	logger zerolog.Logger
	now    func() time.Time
}

var _ PairFeed = (*BirdeyeFeed)(nil)

// NewBirdeyeFeed creates a new secondary feed.
func NewBirdeyeFeed(opts BirdeyeOptions) *BirdeyeFeed {
	client := opts.Client
	if client == nil {
		client = NewClient()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &BirdeyeFeed{
		url:    opts.URL,
		apiKey: opts.APIKey,
		chain:  opts.Chain,
		dex:    opts.Dex,
		client: client,
		logger: opts.Logger.With().Str("feed", domain.SourceBirdeye.String()).Logger(),
		now:    now,
	}
}

// Name returns SourceBirdeye.
func (f *BirdeyeFeed) Name() domain.Source {
	return domain.SourceBirdeye
}

// Fetch queries the token list once.
func (f *BirdeyeFeed) Fetch(ctx context.Context) (Result, error) {
	feed := f.Name().String()
	if f.url == "" {
		return Result{}, nil
	}

	var headers map[string]string
	if f.apiKey != "" {
		headers = map[string]string{"x-api-key": f.apiKey}
	}

	start := time.Now()
	body, err := f.client.GetJSON(ctx, f.url, headers)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		if errors.Is(err, ErrRateLimited) {
			observability.RecordFeedRequest(feed, OutcomeRateLimited, elapsed)
			return Result{RateLimited: true}, nil
		}
		observability.RecordFeedRequest(feed, OutcomeError, elapsed)
		f.logger.Warn().Err(err).Msg("birdeye fetch failed")
		return Result{}, nil
	}
	observability.RecordFeedRequest(feed, OutcomeOK, elapsed)

	records := f.mapTokens(tokensFrom(body), f.now().UnixMilli())
	observability.RecordFeedRecords(feed, len(records))
	return Result{Records: records}, nil
}

// tokensFrom returns data.tokens from a token list response.
func tokensFrom(body any) []any {
	obj, ok := body.(map[string]any)
	if !ok {
		return nil
	}
	data, ok := obj["data"].(map[string]any)
	if !ok {
		return nil
	}
	tokens, _ := data["tokens"].([]any)
	return tokens
}

func (f *BirdeyeFeed) mapTokens(tokens []any, observedMs int64) []domain.RawRecord {
	checkAddress := strings.EqualFold(f.chain, "solana")
	records := make([]domain.RawRecord, 0, len(tokens))

	for _, item := range tokens {
		t, ok := item.(map[string]any)
		if !ok {
			continue
		}

		address := t["address"]
		addrStr, isStr := address.(string)
		if checkAddress && isStr && addrStr != "" && !solana.IsValidAddress(addrStr) {
			f.logger.Debug().Str("address", addrStr).Msg("dropping token with invalid address")
			continue
		}

		rec := domain.RawRecord{
			"chainId":     f.chain,
			"dexId":       f.dex,
			"pairAddress": address,
			"baseToken": map[string]any{
				"symbol":  t["symbol"],
				"address": address,
			},
			"liquidity":     map[string]any{"usd": valueOrZero(t, "liquidity")},
			"fdv":           valueOrZero(t, "fdv"),
			"pairCreatedAt": json.Number(strconv.FormatInt(observedMs, 10)),
		}
		if isStr && addrStr != "" {
			rec["url"] = fmt.Sprintf("https://birdeye.so/token/%s?chain=%s", addrStr, f.chain)
		}
		records = append(records, rec)
	}
	return records
}

// valueOrZero returns t[key], or 0 when the key is missing.
// An explicit null is kept so the pair is treated as lacking the value.
func valueOrZero(t map[string]any, key string) any {
	if v, exists := t[key]; exists {
		return v
	}
	return json.Number("0")
}
