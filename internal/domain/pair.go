package domain

// Pair is the canonical representation of a DEX trading pair.
// Optional fields are nil when the source did not report them.
// A Pair is never mutated after the normalizer builds it.
type Pair struct {
	Chain string // blockchain network, e.g. "solana"
	Dex   string // exchange/protocol, e.g. "pumpfun"

	PairAddress      *string
	BaseTokenSymbol  *string
	BaseTokenAddress *string

	LiquidityUSD  *float64
	FDV           *float64
	CreatedAtMs   *int64   // unix milliseconds
	PriceSpread   *float64 // nil when absent or not numeric
	TxnsM5Buys    *int64
	TxnsM5Sells   *int64
	PriceChangeM5 *float64
	URL           *string

	// PriceChangeM5Invalid is set when the source reported a non-numeric
	// price change; PriceChangeM5 is nil in that case.
	PriceChangeM5Invalid bool

	Source Source
	// CreatedAtObserved is set when CreatedAtMs is the fetch time rather than
	// the on-chain creation time.
	CreatedAtObserved bool

	// Fingerprint is a deterministic hash of the raw record content.
	Fingerprint string
}

// Identity returns the dedup key: pair address, else base token address,
// else the content fingerprint.
func (p *Pair) Identity() string {
	if p.PairAddress != nil && *p.PairAddress != "" {
		return *p.PairAddress
	}
	if p.BaseTokenAddress != nil && *p.BaseTokenAddress != "" {
		return *p.BaseTokenAddress
	}
	return p.Fingerprint
}

// AgeMinutes returns minutes elapsed between creation and nowMs.
// ok is false when the creation time is unknown.
func (p *Pair) AgeMinutes(nowMs int64) (age float64, ok bool) {
	if p.CreatedAtMs == nil {
		return 0, false
	}
	return float64(nowMs-*p.CreatedAtMs) / 1000.0 / 60.0, true
}

// Symbol returns the base token symbol or "UNK".
func (p *Pair) Symbol() string {
	if p.BaseTokenSymbol != nil && *p.BaseTokenSymbol != "" {
		return *p.BaseTokenSymbol
	}
	return "UNK"
}
