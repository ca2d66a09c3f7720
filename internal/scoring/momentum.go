// Package scoring computes the momentum score of pairs that passed the hard gates.
package scoring

import (
	"time"

	"solana-pair-radar/internal/domain"
)

// Momentum thresholds.
const (
	MinBuysM5         = 12 // buys in the last 5 minutes for the momentum term
	MinTxnsM5Dominant = 6  // buys+sells required for the buy-dominance term
)

// Weights holds the additive score weights.
type Weights struct {
	MomentumBuys        float64
	BuyDominance        float64
	AgePreferred        float64
	PriceUp             float64
	PreferredAgeMinutes float64
}

// Terms records which score terms applied to a pair.
type Terms struct {
	MomentumBuys bool
	BuyDominance bool
	AgePreferred bool
	PriceUp      bool
}

// Breakdown evaluates each term independently.
func Breakdown(p *domain.Pair, preferredAgeMinutes float64, now time.Time) Terms {
	buys := valueOrZero(p.TxnsM5Buys)
	sells := valueOrZero(p.TxnsM5Sells)

	var t Terms
	t.MomentumBuys = buys >= MinBuysM5
	t.BuyDominance = buys >= sells && buys+sells >= MinTxnsM5Dominant

	if age, ok := p.AgeMinutes(now.UnixMilli()); ok && age <= preferredAgeMinutes {
		t.AgePreferred = true
	}

	// Missing price change counts as 0 and earns the term; a non-numeric
	// value does not.
	switch {
	case p.PriceChangeM5Invalid:
		t.PriceUp = false
	case p.PriceChangeM5 == nil:
		t.PriceUp = true
	default:
		t.PriceUp = *p.PriceChangeM5 >= 0
	}

	return t
}

// Score returns the sum of the weights of the applied terms.
func Score(p *domain.Pair, w Weights, now time.Time) float64 {
	return w.Sum(Breakdown(p, w.PreferredAgeMinutes, now))
}

// Sum adds the weights of the terms that applied.
func (w Weights) Sum(t Terms) float64 {
	score := 0.0
	if t.MomentumBuys {
		score += w.MomentumBuys
	}
	if t.BuyDominance {
		score += w.BuyDominance
	}
	if t.AgePreferred {
		score += w.AgePreferred
	}
	if t.PriceUp {
		score += w.PriceUp
	}
	return score
}

func valueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
