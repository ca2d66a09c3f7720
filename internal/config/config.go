// Package config loads runtime settings from the environment and an optional
// YAML file.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"solana-pair-radar/internal/filter"
	"solana-pair-radar/internal/scoring"
)

// ErrInvalid is returned when a setting cannot be parsed or fails validation.
var ErrInvalid = errors.New("invalid configuration")

// ConfigPathEnv names the variable holding the YAML overlay path.
const ConfigPathEnv = "RADAR_CONFIG"

// Default feed endpoints.
const (
	DefaultDexURLs    = "https://api.dexscreener.com/latest/dex/search?q=chain:solana%20dex:pumpfun"
	DefaultBirdeyeURL = "https://public-api.birdeye.so/defi/tokenlist?chain=solana"
)

type Config struct {
	Feeds    FeedsConfig    `yaml:"feeds"`
	Target   TargetConfig   `yaml:"target"`
	Gates    GatesConfig    `yaml:"gates"`
	Weights  WeightsConfig  `yaml:"weights"`
	Warmup   WarmupConfig   `yaml:"warmup"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Telegram TelegramConfig `yaml:"telegram"`
	Journal  JournalConfig  `yaml:"journal"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

type FeedsConfig struct {
	DexURLs           []string      `yaml:"dex_urls"`
	BirdeyeURL        string        `yaml:"birdeye_url"`
	BirdeyeKey        string        `yaml:"birdeye_key"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

type TargetConfig struct {
	Chain string `yaml:"chain"`
	Dex   string `yaml:"dex"`
}

type GatesConfig struct {
	MinLiqUSD           float64 `yaml:"min_liq_usd"`
	MaxLiqUSD           float64 `yaml:"max_liq_usd"`
	FDVMin              float64 `yaml:"fdv_min"`
	FDVMax              float64 `yaml:"fdv_max"`
	MaxAgeMinutes       float64 `yaml:"max_age_minutes"`
	PreferredAgeMinutes float64 `yaml:"preferred_age_minutes"`
	SpreadMax           float64 `yaml:"spread_max"`
	MinScoreToAlert     float64 `yaml:"min_score_to_alert"`
}

type WeightsConfig struct {
	MomentumBuys float64 `yaml:"momentum_buys"`
	BuyDominance float64 `yaml:"buy_dominance"`
	AgePreferred float64 `yaml:"age_preferred"`
	PriceUp      float64 `yaml:"price_m5_up"`
}

type WarmupConfig struct {
	Duration  time.Duration `yaml:"duration"`
	MinLiqUSD float64       `yaml:"min_liq_usd"`
	MaxLiqUSD float64       `yaml:"max_liq_usd"`
	MinScore  float64       `yaml:"min_score"`
}

type ScheduleConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	BaseBackoff  time.Duration `yaml:"base_backoff"`
	MaxBackoff   time.Duration `yaml:"max_backoff"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID string `yaml:"chat_id"`
}

type JournalConfig struct {
	PostgresDSN string `yaml:"postgres_dsn"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"` // empty disables the admin server
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | console
}

// Load reads the environment, overlays the YAML file at path (or at
// $RADAR_CONFIG when path is empty) and validates the result.
func Load(path string) (*Config, error) {
	env := &envReader{}

	cfg := &Config{
		Feeds: FeedsConfig{
			DexURLs:           ParseURLs(env.str("DEX_URLS", DefaultDexURLs)),
			BirdeyeURL:        env.str("BIRDEYE_API", DefaultBirdeyeURL),
			BirdeyeKey:        env.str("BIRDEYE_KEY", ""),
			RequestTimeout:    env.seconds("FEED_TIMEOUT_SEC", 10),
			RequestsPerSecond: env.float("FEED_RPS", 5),
			Burst:             env.int("FEED_BURST", 5),
		},
		Target: TargetConfig{
			Chain: env.str("TARGET_CHAIN", "solana"),
			Dex:   env.str("TARGET_DEX", "pumpfun"),
		},
		Gates: GatesConfig{
			MinLiqUSD:           env.float("MIN_LIQ_USD", 1500),
			MaxLiqUSD:           env.float("MAX_LIQ_USD", 25000),
			FDVMin:              env.float("FDV_MIN", 20000),
			FDVMax:              env.float("FDV_MAX", 80000),
			MaxAgeMinutes:       env.float("MAX_AGE_MIN", 360),
			PreferredAgeMinutes: env.float("PREF_AGE_MIN", 40),
			SpreadMax:           env.float("SPREAD_MAX", 1.5),
			MinScoreToAlert:     env.float("MIN_SCORE_TO_ALERT", 2.5),
		},
		Weights: WeightsConfig{
			MomentumBuys: env.float("W_MOMENTUM_BUYS", 2.0),
			BuyDominance: env.float("W_MOMENTUM_BUYDOM", 1.5),
			AgePreferred: env.float("W_AGE_PREFERRED", 1.0),
			PriceUp:      env.float("W_PRICE_M5_UP", 1.0),
		},
		Warmup: WarmupConfig{
			Duration:  env.seconds("WARMUP_SEC", 300),
			MinLiqUSD: env.float("WARMUP_MIN_LIQ_USD", 500),
			MaxLiqUSD: env.float("WARMUP_MAX_LIQ_USD", 50000),
			MinScore:  env.float("WARMUP_MIN_SCORE", 1.0),
		},
		Schedule: ScheduleConfig{
			PollInterval: env.seconds("POLL_SEC", 35),
			BaseBackoff:  env.seconds("BASE_BACKOFF_SEC", 60),
			MaxBackoff:   env.seconds("MAX_BACKOFF_SEC", 300),
		},
		Telegram: TelegramConfig{
			Token:  env.str("TELEGRAM_BOT_TOKEN", ""),
			ChatID: env.str("TELEGRAM_CHAT_ID", ""),
		},
		Journal: JournalConfig{
			PostgresDSN: env.str("JOURNAL_POSTGRES_DSN", ""),
		},
		Server: ServerConfig{
			Addr: env.lookup("METRICS_ADDR", ":9090"),
		},
		Log: LogConfig{
			Level:  env.str("LOG_LEVEL", "info"),
			Format: env.str("LOG_FORMAT", "json"),
		},
	}
	if len(env.errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(env.errs, "; "))
	}

	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlayFile decodes the YAML file over cfg. Keys absent from the file keep
// their current value.
func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrInvalid, path, err)
	}
	return nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var problems []string
	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	for _, f := range []struct {
		name  string
		value float64
	}{
		{"MIN_LIQ_USD", c.Gates.MinLiqUSD},
		{"MAX_LIQ_USD", c.Gates.MaxLiqUSD},
		{"FDV_MIN", c.Gates.FDVMin},
		{"FDV_MAX", c.Gates.FDVMax},
		{"MAX_AGE_MIN", c.Gates.MaxAgeMinutes},
		{"PREF_AGE_MIN", c.Gates.PreferredAgeMinutes},
		{"SPREAD_MAX", c.Gates.SpreadMax},
		{"MIN_SCORE_TO_ALERT", c.Gates.MinScoreToAlert},
		{"W_MOMENTUM_BUYS", c.Weights.MomentumBuys},
		{"W_MOMENTUM_BUYDOM", c.Weights.BuyDominance},
		{"W_AGE_PREFERRED", c.Weights.AgePreferred},
		{"W_PRICE_M5_UP", c.Weights.PriceUp},
		{"WARMUP_MIN_LIQ_USD", c.Warmup.MinLiqUSD},
		{"WARMUP_MAX_LIQ_USD", c.Warmup.MaxLiqUSD},
		{"WARMUP_MIN_SCORE", c.Warmup.MinScore},
		{"FEED_RPS", c.Feeds.RequestsPerSecond},
	} {
		check(!math.IsNaN(f.value) && !math.IsInf(f.value, 0), f.name+" must be a finite number")
	}

	check(len(c.Feeds.DexURLs) > 0, "at least one DEX_URLS endpoint is required")
	check(c.Target.Chain != "", "TARGET_CHAIN is required")
	check(c.Target.Dex != "", "TARGET_DEX is required")
	check(c.Gates.MinLiqUSD <= c.Gates.MaxLiqUSD, "MIN_LIQ_USD must not exceed MAX_LIQ_USD")
	check(c.Gates.FDVMin <= c.Gates.FDVMax, "FDV_MIN must not exceed FDV_MAX")
	check(c.Warmup.MinLiqUSD <= c.Warmup.MaxLiqUSD, "WARMUP_MIN_LIQ_USD must not exceed WARMUP_MAX_LIQ_USD")
	check(c.Warmup.Duration >= 0, "WARMUP_SEC must not be negative")
	check(c.Schedule.PollInterval > 0, "POLL_SEC must be positive")
	check(c.Schedule.BaseBackoff > 0, "BASE_BACKOFF_SEC must be positive")
	check(c.Schedule.BaseBackoff <= c.Schedule.MaxBackoff, "BASE_BACKOFF_SEC must not exceed MAX_BACKOFF_SEC")
	check(c.Feeds.RequestTimeout > 0, "FEED_TIMEOUT_SEC must be positive")
	check(c.Weights.MomentumBuys >= 0 && c.Weights.BuyDominance >= 0 &&
		c.Weights.AgePreferred >= 0 && c.Weights.PriceUp >= 0, "score weights must not be negative")

	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		problems = append(problems, fmt.Sprintf("LOG_FORMAT %q is not json or console", c.Log.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// FilterConfig returns the hard gate thresholds.
func (c *Config) FilterConfig() filter.Config {
	return filter.Config{
		Chain:         c.Target.Chain,
		Dex:           c.Target.Dex,
		MaxAgeMinutes: c.Gates.MaxAgeMinutes,
		FDVMin:        c.Gates.FDVMin,
		FDVMax:        c.Gates.FDVMax,
		SpreadMax:     c.Gates.SpreadMax,
	}
}

// ScoringWeights returns the momentum score weights.
func (c *Config) ScoringWeights() scoring.Weights {
	return scoring.Weights{
		MomentumBuys:        c.Weights.MomentumBuys,
		BuyDominance:        c.Weights.BuyDominance,
		AgePreferred:        c.Weights.AgePreferred,
		PriceUp:             c.Weights.PriceUp,
		PreferredAgeMinutes: c.Gates.PreferredAgeMinutes,
	}
}

// ParseURLs splits a comma-separated endpoint list, dropping blanks.
func ParseURLs(s string) []string {
	var urls []string
	for _, u := range strings.Split(s, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// envReader reads typed variables and collects parse errors.
type envReader struct {
	errs []string
}

func (e *envReader) str(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// lookup is like str but keeps an explicitly empty value.
func (e *envReader) lookup(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func (e *envReader) float(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		e.errs = append(e.errs, fmt.Sprintf("%s=%q is not a finite number", key, v))
		return fallback
	}
	return f
}

func (e *envReader) int(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		e.errs = append(e.errs, fmt.Sprintf("%s=%q is not an integer", key, v))
		return fallback
	}
	return i
}

func (e *envReader) seconds(key string, fallback float64) time.Duration {
	return time.Duration(e.float(key, fallback) * float64(time.Second))
}
