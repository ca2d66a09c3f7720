package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"solana-pair-radar/internal/domain"
)

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func defaultWeights() Weights {
	return Weights{
		MomentumBuys:        2.0,
		BuyDominance:        1.5,
		AgePreferred:        1.0,
		PriceUp:             1.0,
		PreferredAgeMinutes: 40,
	}
}

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64 { return &v }

func createdAgo(d time.Duration) *int64 {
	return i64(testNow.Add(-d).UnixMilli())
}

func TestScore_AllTermsApply(t *testing.T) {
	p := &domain.Pair{
		TxnsM5Buys:    i64(15),
		TxnsM5Sells:   i64(2),
		CreatedAtMs:   createdAgo(10 * time.Minute),
		PriceChangeM5: f64(3),
	}
	w := defaultWeights()

	got := Score(p, w, testNow)
	assert.Equal(t, w.MomentumBuys+w.BuyDominance+w.AgePreferred+w.PriceUp, got)
	assert.Equal(t, 5.5, got)
}

func TestScore_EmptyPairGetsPriceUpOnly(t *testing.T) {
	got := Score(&domain.Pair{}, defaultWeights(), testNow)
	assert.Equal(t, 1.0, got)
}

func TestBreakdown(t *testing.T) {
	tests := []struct {
		name string
		pair *domain.Pair
		want Terms
	}{
		{
			name: "buys below momentum threshold but dominant",
			pair: &domain.Pair{TxnsM5Buys: i64(11), TxnsM5Sells: i64(1), PriceChangeM5: f64(-1)},
			want: Terms{BuyDominance: true},
		},
		{
			name: "too few transactions for dominance",
			pair: &domain.Pair{TxnsM5Buys: i64(3), TxnsM5Sells: i64(2), PriceChangeM5: f64(-1)},
			want: Terms{},
		},
		{
			name: "sells dominate",
			pair: &domain.Pair{TxnsM5Buys: i64(12), TxnsM5Sells: i64(20), PriceChangeM5: f64(-1)},
			want: Terms{MomentumBuys: true},
		},
		{
			name: "equal buys and sells count as dominant",
			pair: &domain.Pair{TxnsM5Buys: i64(3), TxnsM5Sells: i64(3), PriceChangeM5: f64(-1)},
			want: Terms{BuyDominance: true},
		},
		{
			name: "preferred age boundary",
			pair: &domain.Pair{CreatedAtMs: createdAgo(40 * time.Minute), PriceChangeM5: f64(-1)},
			want: Terms{AgePreferred: true},
		},
		{
			name: "older than preferred",
			pair: &domain.Pair{CreatedAtMs: createdAgo(41 * time.Minute), PriceChangeM5: f64(-1)},
			want: Terms{},
		},
		{
			name: "flat price counts as up",
			pair: &domain.Pair{PriceChangeM5: f64(0)},
			want: Terms{PriceUp: true},
		},
		{
			name: "missing price change counts as up",
			pair: &domain.Pair{},
			want: Terms{PriceUp: true},
		},
		{
			name: "non-numeric price change does not count",
			pair: &domain.Pair{PriceChangeM5Invalid: true},
			want: Terms{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Breakdown(tt.pair, 40, testNow)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWeights_SumMonotonic(t *testing.T) {
	w := defaultWeights()

	// Enumerate all 16 combinations; flipping any single term from false to
	// true must never decrease the total.
	for mask := 0; mask < 16; mask++ {
		base := termsFromMask(mask)
		for bit := 0; bit < 4; bit++ {
			if mask&(1<<bit) != 0 {
				continue
			}
			flipped := termsFromMask(mask | 1<<bit)
			assert.GreaterOrEqual(t, w.Sum(flipped), w.Sum(base), "mask=%04b bit=%d", mask, bit)
		}
	}
}

func TestWeights_SumNonNegative(t *testing.T) {
	w := defaultWeights()
	for mask := 0; mask < 16; mask++ {
		assert.GreaterOrEqual(t, w.Sum(termsFromMask(mask)), 0.0)
	}
}

func termsFromMask(mask int) Terms {
	return Terms{
		MomentumBuys: mask&1 != 0,
		BuyDominance: mask&2 != 0,
		AgePreferred: mask&4 != 0,
		PriceUp:      mask&8 != 0,
	}
}
