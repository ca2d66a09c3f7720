// Package alert formats qualifying pairs into messages and delivers them.
package alert

import (
	"context"
	"time"

	"solana-pair-radar/internal/domain"
	"solana-pair-radar/internal/idhash"
)

// Message is one alert ready for delivery.
type Message struct {
	domain.AlertRecord

	// Text is the HTML-lite body sent to chat sinks.
	Text string
}

// Sink delivers alert messages.
// Failures are reported to the caller, which logs them and never retries.
type Sink interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// NewMessage builds the alert for a pair that passed every gate.
func NewMessage(p *domain.Pair, score float64, mode domain.Mode, cycleID string, now time.Time) Message {
	var liq float64
	if p.LiquidityUSD != nil {
		liq = *p.LiquidityUSD
	}

	identity := p.Identity()
	link := Link(p)

	return Message{
		AlertRecord: domain.AlertRecord{
			AlertID:      idhash.ComputeAlertID(p.Chain, p.Dex, identity, cycleID),
			CycleID:      cycleID,
			Chain:        p.Chain,
			Dex:          p.Dex,
			Identity:     identity,
			Symbol:       p.Symbol(),
			LiquidityUSD: liq,
			Score:        score,
			Mode:         mode,
			Source:       p.Source,
			URL:          link,
			EmittedAt:    now.UnixMilli(),
		},
		Text: FormatText(p.Symbol(), mode, liq, score, link),
	}
}
