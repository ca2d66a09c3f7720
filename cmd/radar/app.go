package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"solana-pair-radar/internal/alert"
	"solana-pair-radar/internal/backoff"
	"solana-pair-radar/internal/config"
	"solana-pair-radar/internal/dedup"
	"solana-pair-radar/internal/ingestion"
	"solana-pair-radar/internal/logging"
	"solana-pair-radar/internal/orchestrator"
	"solana-pair-radar/internal/server"
	"solana-pair-radar/internal/storage"
	"solana-pair-radar/internal/storage/memory"
	"solana-pair-radar/internal/storage/migrations"
	"solana-pair-radar/internal/storage/postgres"
)

type appOptions struct {
	ConfigPath string
	LogLevel   string
	DryRun     bool
	Out        io.Writer
}

// app holds the wired components of one radar process.
type app struct {
	cfg          *config.Config
	logger       zerolog.Logger
	orchestrator *orchestrator.Orchestrator
	server       *server.Server // nil when the admin server is disabled
	recent       storage.AlertStore
	closers      []func()
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, opts.Out)
	a := &app{cfg: cfg, logger: logger}

	client := ingestion.NewClient(
		ingestion.WithTimeout(cfg.Feeds.RequestTimeout),
		ingestion.WithRateLimit(cfg.Feeds.RequestsPerSecond, cfg.Feeds.Burst),
	)

	primary := ingestion.NewDexscreenerFeed(ingestion.DexscreenerOptions{
		URLs:   cfg.Feeds.DexURLs,
		Client: client,
		Logger: logging.Component(logger, "dexscreener"),
	})
	secondary := ingestion.NewBirdeyeFeed(ingestion.BirdeyeOptions{
		URL:    cfg.Feeds.BirdeyeURL,
		APIKey: cfg.Feeds.BirdeyeKey,
		Chain:  cfg.Target.Chain,
		Dex:    cfg.Target.Dex,
		Client: client,
		Logger: logging.Component(logger, "birdeye"),
	})

	sink, err := a.buildSink(ctx, opts.DryRun)
	if err != nil {
		a.Close()
		return nil, err
	}

	warmup := cfg.Warmup.Duration
	if warmup == 0 {
		warmup = -1
	}

	a.orchestrator = orchestrator.New(orchestrator.Options{
		Primary:   primary,
		Secondary: secondary,
		Sink:      sink,
		Ledger:    dedup.NewLedger(),
		Backoff:   backoff.NewController(cfg.Schedule.BaseBackoff, cfg.Schedule.MaxBackoff),
		Filter:    cfg.FilterConfig(),
		Weights:   cfg.ScoringWeights(),
		Normal: orchestrator.Thresholds{
			MinLiqUSD: cfg.Gates.MinLiqUSD,
			MaxLiqUSD: cfg.Gates.MaxLiqUSD,
			MinScore:  cfg.Gates.MinScoreToAlert,
		},
		Warmup: orchestrator.Thresholds{
			MinLiqUSD: cfg.Warmup.MinLiqUSD,
			MaxLiqUSD: cfg.Warmup.MaxLiqUSD,
			MinScore:  cfg.Warmup.MinScore,
		},
		WarmupDuration: warmup,
		PollInterval:   cfg.Schedule.PollInterval,
		Logger:         logger,
	})

	if cfg.Server.Addr != "" {
		a.server = server.New(server.Options{
			Addr:   cfg.Server.Addr,
			Status: a.orchestrator,
			Alerts: a.recent,
			Logger: logger,
		})
	}

	return a, nil
}

// buildSink assembles the delivery chain. Every alert is logged and kept in
// the in-memory journal; Telegram and Postgres are added when configured and
// not in dry-run mode.
func (a *app) buildSink(ctx context.Context, dryRun bool) (alert.Sink, error) {
	recent := memory.NewAlertStore(memory.DefaultAlertCapacity)
	a.recent = recent

	sinks := []alert.Sink{
		alert.NewLogSink(logging.Component(a.logger, "alerts")),
		alert.NewJournalSink(recent),
	}
	if dryRun {
		a.logger.Info().Msg("dry run: alerts are logged only")
		return alert.NewMultiSink(a.logger, sinks...), nil
	}

	tg, err := alert.NewTelegramSink(alert.TelegramOptions{
		Token:  a.cfg.Telegram.Token,
		ChatID: a.cfg.Telegram.ChatID,
		Logger: logging.Component(a.logger, "telegram"),
	})
	if err != nil {
		return nil, fmt.Errorf("telegram sink: %w", err)
	}
	if tg.Enabled() {
		sinks = append(sinks, tg)
	}

	if dsn := a.cfg.Journal.PostgresDSN; dsn != "" {
		store, err := a.openJournal(ctx, dsn)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, alert.NewJournalSink(store))
	}

	return alert.NewMultiSink(a.logger, sinks...), nil
}

func (a *app) openJournal(ctx context.Context, dsn string) (*postgres.AlertStore, error) {
	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("alert journal: %w", err)
	}
	a.closers = append(a.closers, pool.Close)

	applied, err := migrations.RunPostgresMigrations(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("alert journal migrations: %w", err)
	}
	a.logger.Info().Strs("migrations", applied).Msg("alert journal ready")

	return postgres.NewAlertStore(pool), nil
}

// Run polls until ctx is cancelled, serving the admin endpoints alongside.
func (a *app) Run(ctx context.Context) error {
	a.logger.Info().
		Strs("dex_urls", a.cfg.Feeds.DexURLs).
		Bool("birdeye", a.cfg.Feeds.BirdeyeURL != "").
		Str("chain", a.cfg.Target.Chain).
		Str("dex", a.cfg.Target.Dex).
		Dur("warmup", a.cfg.Warmup.Duration).
		Dur("base_backoff", a.cfg.Schedule.BaseBackoff).
		Dur("max_backoff", a.cfg.Schedule.MaxBackoff).
		Str("admin_addr", a.cfg.Server.Addr).
		Msg("starting radar")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.orchestrator.Run(gctx)
	})
	if a.server != nil {
		g.Go(func() error {
			return a.server.Run(gctx)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		a.logger.Info().Msg("shutting down")
		return nil
	}
	return err
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
