// Package orchestrator drives polling cycles.
// It coordinates: feeds → normalization → filter → scoring → dedup → alert sink
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"solana-pair-radar/internal/alert"
	"solana-pair-radar/internal/backoff"
	"solana-pair-radar/internal/dedup"
	"solana-pair-radar/internal/domain"
	"solana-pair-radar/internal/filter"
	"solana-pair-radar/internal/ingestion"
	"solana-pair-radar/internal/normalization"
	"solana-pair-radar/internal/observability"
	"solana-pair-radar/internal/scoring"
)

// Default configuration values.
const (
	DefaultWarmupDuration = 5 * time.Minute
	DefaultPollInterval   = 35 * time.Second
	DefaultPollJitter     = 5 * time.Second // inclusive, whole seconds
)

// Rejection reasons recorded besides the filter gates.
const (
	ReasonDuplicate filter.Reason = "already alerted"
	ReasonMalformed filter.Reason = "malformed"
	ReasonScore     filter.Reason = "score"
)

// Cycle statuses recorded in metrics.
const (
	StatusOK          = "ok"
	StatusRateLimited = "rate_limited"
	StatusError       = "error"
)

// ErrCyclePanic wraps a panic recovered from a cycle.
var ErrCyclePanic = errors.New("cycle panicked")

// Thresholds are the mode-dependent alert bounds.
type Thresholds struct {
	MinLiqUSD float64
	MaxLiqUSD float64
	MinScore  float64
}

// Default threshold sets.
var (
	DefaultNormalThresholds = Thresholds{MinLiqUSD: 1500, MaxLiqUSD: 25000, MinScore: 2.5}
	DefaultWarmupThresholds = Thresholds{MinLiqUSD: 500, MaxLiqUSD: 50000, MinScore: 1.0}
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options for creating Orchestrator.
type Options struct {
	// Feeds and delivery
	Primary   ingestion.PairFeed
	Secondary ingestion.PairFeed // optional fallback, queried on every successful cycle
	Sink      alert.Sink

	// State; defaults are fresh instances
	Ledger  *dedup.Ledger
	Backoff *backoff.Controller

	// Decision parameters
	Filter         filter.Config
	Weights        scoring.Weights
	Normal         Thresholds    // Default: DefaultNormalThresholds
	Warmup         Thresholds    // Default: DefaultWarmupThresholds
	WarmupDuration time.Duration // Default: 5m; negative disables warmup

	// Scheduling
	PollInterval  time.Duration // Default: 35s
	PollJitter    time.Duration // Default: 5s
	BackoffJitter time.Duration // Default: 10s

	// Injected for tests
	Now    func() time.Time // Default: time.Now
	Rand   *rand.Rand       // Default: time-seeded source
	Sleep  SleepFunc        // Default: context-aware timer
	Start  time.Time        // Default: Now() at construction
	Logger zerolog.Logger
}

// Orchestrator owns the per-process monitor state: dedup ledger, backoff
// counter and start time. Cycles run on one goroutine; Status may be read
// from any goroutine.
type Orchestrator struct {
	primary   ingestion.PairFeed
	secondary ingestion.PairFeed
	sink      alert.Sink
	ledger    *dedup.Ledger
	backoff   *backoff.Controller

	filter         filter.Config
	weights        scoring.Weights
	normal         Thresholds
	warmup         Thresholds
	warmupDuration time.Duration

	pollInterval  time.Duration
	pollJitter    time.Duration
	backoffJitter time.Duration

	now    func() time.Time
	rng    *rand.Rand
	sleep  SleepFunc
	start  time.Time
	logger zerolog.Logger

	mu     sync.RWMutex
	status Status
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	start := opts.Start
	if start.IsZero() {
		start = now()
	}

	ledger := opts.Ledger
	if ledger == nil {
		ledger = dedup.NewLedger()
	}

	ctrl := opts.Backoff
	if ctrl == nil {
		ctrl = backoff.NewController(backoff.DefaultBase, backoff.DefaultMax)
	}

	normal := opts.Normal
	if normal == (Thresholds{}) {
		normal = DefaultNormalThresholds
	}

	warmup := opts.Warmup
	if warmup == (Thresholds{}) {
		warmup = DefaultWarmupThresholds
	}

	warmupDuration := opts.WarmupDuration
	if warmupDuration == 0 {
		warmupDuration = DefaultWarmupDuration
	}

	pollInterval := opts.PollInterval
	if pollInterval == 0 {
		pollInterval = DefaultPollInterval
	}

	pollJitter := opts.PollJitter
	if pollJitter == 0 {
		pollJitter = DefaultPollJitter
	}

	backoffJitter := opts.BackoffJitter
	if backoffJitter == 0 {
		backoffJitter = backoff.DefaultMaxJitter
	}

	return &Orchestrator{
		primary:        opts.Primary,
		secondary:      opts.Secondary,
		sink:           opts.Sink,
		ledger:         ledger,
		backoff:        ctrl,
		filter:         opts.Filter,
		weights:        opts.Weights,
		normal:         normal,
		warmup:         warmup,
		warmupDuration: warmupDuration,
		pollInterval:   pollInterval,
		pollJitter:     pollJitter,
		backoffJitter:  backoffJitter,
		now:            now,
		rng:            rng,
		sleep:          sleep,
		start:          start,
		logger:         opts.Logger.With().Str("component", "orchestrator").Logger(),
		status:         Status{StartedAt: start},
	}
}

// CurrentMode returns ModeWarmup while less than warmup has elapsed since
// start, ModeNormal afterwards.
func CurrentMode(now, start time.Time, warmup time.Duration) domain.Mode {
	if now.Sub(start) < warmup {
		return domain.ModeWarmup
	}
	return domain.ModeNormal
}

// thresholds returns the active bounds for mode.
func (o *Orchestrator) thresholds(mode domain.Mode) Thresholds {
	if mode == domain.ModeWarmup {
		return o.warmup
	}
	return o.normal
}

// CycleResult summarizes one polling cycle.
type CycleResult struct {
	CycleID     string                `json:"cycle_id"`
	Mode        domain.Mode           `json:"mode"`
	StartedAt   time.Time             `json:"started_at"`
	Duration    time.Duration         `json:"duration_ns"`
	RateLimited bool                  `json:"rate_limited"`
	Consecutive int                   `json:"consecutive_rate_limits"`
	Examined    int                   `json:"examined"`
	Alerts      int                   `json:"alerts"`
	Rejections  map[filter.Reason]int `json:"rejections"`
	Sleep       time.Duration         `json:"sleep_ns"` // wait before the next cycle
}

type sourcedRecord struct {
	rec    domain.RawRecord
	source domain.Source
}

// RunCycle runs one polling cycle. The only error returned is a context
// error; feed and sink failures are logged and absorbed.
func (o *Orchestrator) RunCycle(ctx context.Context) (CycleResult, error) {
	startedAt := o.now()
	mode := CurrentMode(startedAt, o.start, o.warmupDuration)
	th := o.thresholds(mode)

	res := CycleResult{
		CycleID:    uuid.NewString(),
		Mode:       mode,
		StartedAt:  startedAt,
		Rejections: make(map[filter.Reason]int),
	}
	logger := o.logger.With().Str("cycle_id", res.CycleID).Logger()

	primary, err := o.primary.Fetch(ctx)
	if err != nil {
		return res, fmt.Errorf("fetch %s: %w", o.primary.Name(), err)
	}

	if primary.RateLimited {
		n, delay := o.backoff.Fail()
		jitter := backoff.Jitter(o.rng, o.backoffJitter)

		res.RateLimited = true
		res.Consecutive = n
		res.Sleep = delay + jitter
		res.Duration = o.now().Sub(startedAt)

		logger.Warn().
			Int("consecutive", n).
			Dur("backoff", res.Sleep).
			Msg("429 Too Many Requests, backing off")
		o.finish(res, StatusRateLimited)
		return res, nil
	}

	if o.backoff.Succeed() {
		logger.Info().Msg("rate limit recovered, resetting backoff counter")
	}

	records := make([]sourcedRecord, 0, len(primary.Records))
	for _, rec := range primary.Records {
		records = append(records, sourcedRecord{rec: rec, source: o.primary.Name()})
	}

	if o.secondary != nil {
		secondary, err := o.secondary.Fetch(ctx)
		if err != nil {
			return res, fmt.Errorf("fetch %s: %w", o.secondary.Name(), err)
		}
		if secondary.RateLimited {
			logger.Warn().Str("feed", o.secondary.Name().String()).Msg("fallback feed rate limited")
		}
		for _, rec := range secondary.Records {
			records = append(records, sourcedRecord{rec: rec, source: o.secondary.Name()})
		}
	}

	now := o.now()
	for _, sr := range records {
		res.Examined++

		p, err := normalization.Normalize(sr.rec, sr.source)
		if err != nil {
			observability.RecordMalformed(sr.source.String())
			o.reject(&res, ReasonMalformed)
			logger.Debug().Err(err).Str("feed", sr.source.String()).Msg("dropping record")
			continue
		}

		score, reason := o.evaluate(p, th, now)
		if reason != filter.ReasonPass {
			o.reject(&res, reason)
			continue
		}

		// Marked before delivery: a failed send is not retried.
		o.ledger.MarkAlerted(p.Identity())

		msg := alert.NewMessage(p, score, mode, res.CycleID, now)
		if err := o.sink.Send(ctx, msg); err != nil {
			logger.Warn().Err(err).Str("identity", msg.Identity).Msg("alert delivery failed")
		}
		observability.RecordAlert(mode.String())
		res.Alerts++
	}

	res.Consecutive = o.backoff.Consecutive()
	res.Sleep = o.pollInterval + o.pollJitterDuration()
	res.Duration = o.now().Sub(startedAt)

	logger.Info().
		Str("tick", startedAt.Format("15:04:05")).
		Int("examined", res.Examined).
		Int("alerts", res.Alerts).
		Bool("test_mode", mode.IsTest()).
		Msgf("Tick %s checked %d tokens, %d alerts (mode=%s)",
			startedAt.Format("15:04:05"), res.Examined, res.Alerts, mode)

	observability.MarkCycleSuccess(startedAt.Unix())
	o.finish(res, StatusOK)
	return res, nil
}

// evaluate runs the per-pair decision: dedup, hard gates, active liquidity
// bounds, then score. It returns ReasonPass with the score when the pair
// should alert.
func (o *Orchestrator) evaluate(p *domain.Pair, th Thresholds, now time.Time) (float64, filter.Reason) {
	if o.ledger.HasAlerted(p.Identity()) {
		return 0, ReasonDuplicate
	}

	if ok, reason := filter.Passes(p, o.filter, now); !ok {
		return 0, reason
	}

	if !filter.InLiquidityRange(*p.LiquidityUSD, th.MinLiqUSD, th.MaxLiqUSD) {
		return 0, filter.ReasonLiquidityRange
	}

	score := scoring.Score(p, o.weights, now)
	if score < th.MinScore {
		return score, ReasonScore
	}
	return score, filter.ReasonPass
}

func (o *Orchestrator) reject(res *CycleResult, reason filter.Reason) {
	res.Rejections[reason]++
	observability.RecordRejection(reason.String())
}

// pollJitterDuration returns whole seconds in [0, pollJitter].
func (o *Orchestrator) pollJitterDuration() time.Duration {
	secs := int(o.pollJitter / time.Second)
	if secs <= 0 {
		return 0
	}
	return time.Duration(o.rng.Intn(secs+1)) * time.Second
}

// finish publishes the cycle to metrics and the status snapshot.
func (o *Orchestrator) finish(res CycleResult, status string) {
	observability.RecordCycle(status, res.Examined, res.Duration.Seconds())
	observability.UpdateState(res.Consecutive, o.ledger.Len(), res.Mode.IsTest())

	o.mu.Lock()
	defer o.mu.Unlock()
	last := res
	o.status.LastCycle = &last
	o.status.Cycles++
	if !res.RateLimited {
		at := res.StartedAt
		o.status.LastSuccessAt = &at
	}
}

// Run executes cycles until ctx is cancelled. A panicking or failing cycle is
// logged and the loop continues after the regular poll sleep.
func (o *Orchestrator) Run(ctx context.Context) error {
	sources := []string{o.primary.Name().String()}
	if o.secondary != nil {
		sources = append(sources, o.secondary.Name().String())
	}
	o.logger.Info().
		Strs("sources", sources).
		Dur("warmup", o.warmupDuration).
		Dur("poll_interval", o.pollInterval).
		Str("sink", o.sink.Name()).
		Msg("radar running (primary+fallback feeds, warmup thresholds, 429 backoff)")

	for {
		res, err := o.safeCycle(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			o.logger.Error().Err(err).Msg("cycle failed")
			observability.RecordCycle(StatusError, res.Examined, 0)
			res.Sleep = o.pollInterval + o.pollJitterDuration()
		}

		if err := o.sleep(ctx, res.Sleep); err != nil {
			return err
		}
	}
}

// safeCycle runs one cycle, converting a panic into an error.
func (o *Orchestrator) safeCycle(ctx context.Context) (res CycleResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("cycle panicked")
			err = fmt.Errorf("%w: %v", ErrCyclePanic, r)
		}
	}()
	return o.RunCycle(ctx)
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
