// Package filter applies hard eligibility gates to canonical pairs.
package filter

import (
	"strings"
	"time"

	"solana-pair-radar/internal/domain"
)

// Reason identifies which gate rejected a pair. It is used for logging and
// metrics only, never for control flow.
type Reason string

const (
	ReasonPass        Reason = "pass"
	ReasonChain       Reason = "chain"
	ReasonDex         Reason = "dex"
	ReasonAge         Reason = "age"
	ReasonNoLiquidity Reason = "no liquidity"
	ReasonFDV         Reason = "fdv"
	ReasonSpread      Reason = "spread"

	// ReasonLiquidityRange is reported by the orchestrator, which owns the
	// mode-dependent liquidity bounds.
	ReasonLiquidityRange Reason = "liquidity range"
)

// String returns the string representation of Reason.
func (r Reason) String() string {
	return string(r)
}

// Config holds the hard gate thresholds.
type Config struct {
	Chain         string
	Dex           string
	MaxAgeMinutes float64
	FDVMin        float64
	FDVMax        float64
	SpreadMax     float64
}

// Passes evaluates the gates in order and stops at the first failure.
func Passes(p *domain.Pair, cfg Config, now time.Time) (bool, Reason) {
	if !strings.EqualFold(p.Chain, cfg.Chain) {
		return false, ReasonChain
	}
	if !strings.EqualFold(p.Dex, cfg.Dex) {
		return false, ReasonDex
	}

	age, ok := p.AgeMinutes(now.UnixMilli())
	if !ok || age > cfg.MaxAgeMinutes {
		return false, ReasonAge
	}

	// Zero liquidity is acceptable; only absence fails.
	if p.LiquidityUSD == nil {
		return false, ReasonNoLiquidity
	}

	if p.FDV == nil || *p.FDV < cfg.FDVMin || *p.FDV > cfg.FDVMax {
		return false, ReasonFDV
	}

	// Unparseable spreads are normalized to nil and pass.
	if p.PriceSpread != nil && *p.PriceSpread > cfg.SpreadMax {
		return false, ReasonSpread
	}

	return true, ReasonPass
}

// InLiquidityRange reports whether liq lies within [min, max] inclusive.
func InLiquidityRange(liq, min, max float64) bool {
	return liq >= min && liq <= max
}
