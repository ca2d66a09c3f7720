package alert

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"solana-pair-radar/internal/domain"
)

// ScoreDecimals is the precision of the score shown in alerts.
const ScoreDecimals = 2

// FormatText renders the alert body:
//
//	🟢 ALERT <symbol> (TEST=<bool>) | LIQ=<liq> | SCORE=<score>
//	<link>
//
// The symbol is HTML-escaped since chat sinks send in HTML mode.
func FormatText(symbol string, mode domain.Mode, liquidityUSD, score float64, link string) string {
	return fmt.Sprintf("🟢 ALERT %s (TEST=%t) | LIQ=%s | SCORE=%s\n%s",
		html.EscapeString(symbol),
		mode.IsTest(),
		decimal.NewFromFloat(liquidityUSD).String(),
		decimal.NewFromFloat(score).Round(ScoreDecimals).String(),
		link,
	)
}

// LogLine flattens an alert body onto one line for logs.
func LogLine(text string) string {
	return strings.ReplaceAll(text, "\n", " | ")
}

// Link returns the pair URL reported by the feed, else a Dexscreener link
// built from the pair address, else "".
func Link(p *domain.Pair) string {
	if p.URL != nil && *p.URL != "" {
		return *p.URL
	}
	if p.PairAddress != nil && *p.PairAddress != "" {
		return fmt.Sprintf("https://dexscreener.com/%s/%s", p.Chain, *p.PairAddress)
	}
	return ""
}
