package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"solana-pair-radar/internal/domain"
	"solana-pair-radar/internal/idhash"
)

func strPtr(s string) *string { return &s }
func f64Ptr(f float64) *float64 { return &f }

func TestFormatText(t *testing.T) {
	text := FormatText("PEPE", domain.ModeNormal, 1500.5, 5.5, "https://dexscreener.com/solana/abc")
	assert.Equal(t, "🟢 ALERT PEPE (TEST=false) | LIQ=1500.5 | SCORE=5.5\nhttps://dexscreener.com/solana/abc", text)
}

func TestFormatText_RoundsScoreAndFlagsWarmup(t *testing.T) {
	text := FormatText("X", domain.ModeWarmup, 2000, 3.14159, "")
	assert.Equal(t, "🟢 ALERT X (TEST=true) | LIQ=2000 | SCORE=3.14\n", text)
}

func TestFormatText_EscapesSymbol(t *testing.T) {
	text := FormatText("<b>RUG&CO</b>", domain.ModeNormal, 1, 1, "")
	assert.Contains(t, text, "ALERT &lt;b&gt;RUG&amp;CO&lt;/b&gt; (")
}

func TestLogLine(t *testing.T) {
	assert.Equal(t, "a | b", LogLine("a\nb"))
}

func TestLink(t *testing.T) {
	tests := []struct {
		name string
		pair domain.Pair
		want string
	}{
		{"feed url wins", domain.Pair{Chain: "solana", URL: strPtr("https://x/y"), PairAddress: strPtr("P")}, "https://x/y"},
		{"pair address fallback", domain.Pair{Chain: "solana", PairAddress: strPtr("P")}, "https://dexscreener.com/solana/P"},
		{"empty url falls through", domain.Pair{Chain: "solana", URL: strPtr(""), PairAddress: strPtr("P")}, "https://dexscreener.com/solana/P"},
		{"nothing", domain.Pair{Chain: "solana"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Link(&tt.pair))
		})
	}
}

func TestNewMessage(t *testing.T) {
	p := &domain.Pair{
		Chain:           "solana",
		Dex:             "pumpfun",
		PairAddress:     strPtr("PAIR1"),
		BaseTokenSymbol: strPtr("DOGE"),
		LiquidityUSD:    f64Ptr(4200),
		Source:          domain.SourceDexscreener,
	}
	now := time.UnixMilli(1_700_000_000_000)

	msg := NewMessage(p, 4.5, domain.ModeNormal, "cycle-7", now)

	assert.Equal(t, idhash.ComputeAlertID("solana", "pumpfun", "PAIR1", "cycle-7"), msg.AlertID)
	assert.Equal(t, "cycle-7", msg.CycleID)
	assert.Equal(t, "PAIR1", msg.Identity)
	assert.Equal(t, "DOGE", msg.Symbol)
	assert.Equal(t, 4200.0, msg.LiquidityUSD)
	assert.Equal(t, "https://dexscreener.com/solana/PAIR1", msg.URL)
	assert.Equal(t, int64(1_700_000_000_000), msg.EmittedAt)
	assert.Equal(t, "🟢 ALERT DOGE (TEST=false) | LIQ=4200 | SCORE=4.5\nhttps://dexscreener.com/solana/PAIR1", msg.Text)
}
