package domain

// AlertRecord describes one emitted alert.
// Alert records are append-only: once written, never updated.
type AlertRecord struct {
	AlertID      string // deterministic: hash(chain|dex|identity)
	CycleID      string // correlation id of the cycle that emitted it
	Chain        string
	Dex          string
	Identity     string // dedup key of the pair
	Symbol       string
	LiquidityUSD float64
	Score        float64
	Mode         Mode
	Source       Source
	URL          string
	EmittedAt    int64 // unix milliseconds
}
