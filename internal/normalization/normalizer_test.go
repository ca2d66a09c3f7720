package normalization

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pair-radar/internal/domain"
)

func dexRecord() domain.RawRecord {
	return domain.RawRecord{
		"chainId":     "solana",
		"dexId":       "pumpfun",
		"pairAddress": "PairAddr111",
		"url":         "https://dexscreener.com/solana/PairAddr111",
		"baseToken": map[string]any{
			"address": "MintAddr111",
			"symbol":  "RADAR",
			"name":    "Radar Token",
		},
		"liquidity":     map[string]any{"usd": json.Number("5000.5")},
		"fdv":           json.Number("45000"),
		"pairCreatedAt": json.Number("1700000000000"),
		"priceSpread":   json.Number("0.8"),
		"txns": map[string]any{
			"m5": map[string]any{"buys": json.Number("15"), "sells": json.Number("2")},
		},
		"priceChange": map[string]any{"m5": json.Number("3.2")},
	}
}

func TestNormalize_FullRecord(t *testing.T) {
	p, err := Normalize(dexRecord(), domain.SourceDexscreener)
	require.NoError(t, err)

	assert.Equal(t, "solana", p.Chain)
	assert.Equal(t, "pumpfun", p.Dex)
	require.NotNil(t, p.PairAddress)
	assert.Equal(t, "PairAddr111", *p.PairAddress)
	require.NotNil(t, p.BaseTokenAddress)
	assert.Equal(t, "MintAddr111", *p.BaseTokenAddress)
	assert.Equal(t, "RADAR", p.Symbol())
	require.NotNil(t, p.LiquidityUSD)
	assert.Equal(t, 5000.5, *p.LiquidityUSD)
	require.NotNil(t, p.FDV)
	assert.Equal(t, 45000.0, *p.FDV)
	require.NotNil(t, p.CreatedAtMs)
	assert.Equal(t, int64(1700000000000), *p.CreatedAtMs)
	require.NotNil(t, p.PriceSpread)
	assert.Equal(t, 0.8, *p.PriceSpread)
	require.NotNil(t, p.TxnsM5Buys)
	assert.Equal(t, int64(15), *p.TxnsM5Buys)
	require.NotNil(t, p.TxnsM5Sells)
	assert.Equal(t, int64(2), *p.TxnsM5Sells)
	require.NotNil(t, p.PriceChangeM5)
	assert.Equal(t, 3.2, *p.PriceChangeM5)
	assert.False(t, p.PriceChangeM5Invalid)
	assert.Equal(t, domain.SourceDexscreener, p.Source)
	assert.False(t, p.CreatedAtObserved)
	assert.Len(t, p.Fingerprint, 64)
	assert.Equal(t, "PairAddr111", p.Identity())
}

func TestNormalize_ChainFallback(t *testing.T) {
	rec := dexRecord()
	delete(rec, "chainId")
	rec["chain"] = "solana"

	p, err := Normalize(rec, domain.SourceDexscreener)
	require.NoError(t, err)
	assert.Equal(t, "solana", p.Chain)
}

func TestNormalize_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(domain.RawRecord)
	}{
		{"missing chain", func(r domain.RawRecord) { delete(r, "chainId") }},
		{"missing dex", func(r domain.RawRecord) { delete(r, "dexId") }},
		{"null dex", func(r domain.RawRecord) { r["dexId"] = nil }},
		{"non-string chain", func(r domain.RawRecord) { r["chainId"] = json.Number("101") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := dexRecord()
			tt.mutate(rec)

			_, err := Normalize(rec, domain.SourceDexscreener)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedRecord))
		})
	}

	_, err := Normalize(nil, domain.SourceDexscreener)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestNormalize_OptionalFieldsStayAbsent(t *testing.T) {
	rec := domain.RawRecord{"chainId": "solana", "dexId": "pumpfun"}

	p, err := Normalize(rec, domain.SourceDexscreener)
	require.NoError(t, err)

	assert.Nil(t, p.PairAddress)
	assert.Nil(t, p.BaseTokenAddress)
	assert.Nil(t, p.BaseTokenSymbol)
	assert.Nil(t, p.LiquidityUSD)
	assert.Nil(t, p.FDV)
	assert.Nil(t, p.CreatedAtMs)
	assert.Nil(t, p.PriceSpread)
	assert.Nil(t, p.TxnsM5Buys)
	assert.Nil(t, p.TxnsM5Sells)
	assert.Nil(t, p.PriceChangeM5)
	assert.False(t, p.PriceChangeM5Invalid)
	assert.Nil(t, p.URL)
	assert.Equal(t, p.Fingerprint, p.Identity())
}

func TestNormalize_ZeroLiquidityIsPresent(t *testing.T) {
	rec := dexRecord()
	rec["liquidity"] = map[string]any{"usd": json.Number("0")}

	p, err := Normalize(rec, domain.SourceDexscreener)
	require.NoError(t, err)
	require.NotNil(t, p.LiquidityUSD)
	assert.Equal(t, 0.0, *p.LiquidityUSD)
}

func TestNormalize_WrongShapeLiquidity(t *testing.T) {
	rec := dexRecord()
	rec["liquidity"] = "lots"

	p, err := Normalize(rec, domain.SourceDexscreener)
	require.NoError(t, err)
	assert.Nil(t, p.LiquidityUSD)
}

func TestNormalize_SymbolFallsBackToName(t *testing.T) {
	rec := dexRecord()
	rec["baseToken"] = map[string]any{"name": "Radar Token"}

	p, err := Normalize(rec, domain.SourceDexscreener)
	require.NoError(t, err)
	assert.Equal(t, "Radar Token", p.Symbol())
}

func TestNormalize_NonNumericPriceChange(t *testing.T) {
	rec := dexRecord()
	rec["priceChange"] = map[string]any{"m5": "3.2"}

	p, err := Normalize(rec, domain.SourceDexscreener)
	require.NoError(t, err)
	assert.Nil(t, p.PriceChangeM5)
	assert.True(t, p.PriceChangeM5Invalid)
}

func TestNormalize_UnparseableSpreadIsAbsent(t *testing.T) {
	rec := dexRecord()
	rec["priceSpread"] = "wide"

	p, err := Normalize(rec, domain.SourceDexscreener)
	require.NoError(t, err)
	assert.Nil(t, p.PriceSpread)
}

func TestNormalize_BirdeyeCreatedAtObserved(t *testing.T) {
	p, err := Normalize(dexRecord(), domain.SourceBirdeye)
	require.NoError(t, err)
	assert.True(t, p.CreatedAtObserved)
}

func TestNormalize_FingerprintStable(t *testing.T) {
	rec := domain.RawRecord{"chainId": "solana", "dexId": "pumpfun", "fdv": json.Number("1")}

	a, err := Normalize(rec, domain.SourceDexscreener)
	require.NoError(t, err)
	b, err := Normalize(domain.RawRecord{"fdv": json.Number("1"), "dexId": "pumpfun", "chainId": "solana"}, domain.SourceDexscreener)
	require.NoError(t, err)

	assert.Equal(t, a.Identity(), b.Identity())
}

func TestNormalize_ObservedTimestampExcludedFromFingerprint(t *testing.T) {
	rec := func(ms string) domain.RawRecord {
		return domain.RawRecord{
			"chainId":       "solana",
			"dexId":         "pumpfun",
			"baseToken":     map[string]any{"symbol": "NOADDR"},
			"pairCreatedAt": json.Number(ms),
		}
	}

	a, err := Normalize(rec("1700000000000"), domain.SourceBirdeye)
	require.NoError(t, err)
	b, err := Normalize(rec("1700000005000"), domain.SourceBirdeye)
	require.NoError(t, err)
	assert.Equal(t, a.Identity(), b.Identity())

	c, err := Normalize(rec("1700000000000"), domain.SourceDexscreener)
	require.NoError(t, err)
	d, err := Normalize(rec("1700000005000"), domain.SourceDexscreener)
	require.NoError(t, err)
	assert.NotEqual(t, c.Identity(), d.Identity())
}
