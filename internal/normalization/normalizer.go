// Package normalization converts provider-specific raw records into canonical pairs.
package normalization

import (
	"errors"
	"fmt"

	"solana-pair-radar/internal/domain"
	"solana-pair-radar/internal/idhash"
)

// ErrMalformedRecord is returned when a record lacks the fields required to identify it.
var ErrMalformedRecord = errors.New("malformed record")

// Raw record field paths (Dexscreener layout; other feeds are mapped onto it).
const (
	FieldChainID       = "chainId"
	FieldChain         = "chain"
	FieldDexID         = "dexId"
	FieldPairAddress   = "pairAddress"
	FieldBaseSymbol    = "baseToken.symbol"
	FieldBaseName      = "baseToken.name"
	FieldBaseAddress   = "baseToken.address"
	FieldLiquidityUSD  = "liquidity.usd"
	FieldFDV           = "fdv"
	FieldPairCreatedAt = "pairCreatedAt"
	FieldPriceSpread   = "priceSpread"
	FieldTxnsM5Buys    = "txns.m5.buys"
	FieldTxnsM5Sells   = "txns.m5.sells"
	FieldPriceChangeM5 = "priceChange.m5"
	FieldURL           = "url"
)

// Normalize builds a canonical Pair from a raw record.
// Chain and dex are required; every other field stays nil when absent.
func Normalize(rec domain.RawRecord, source domain.Source) (*domain.Pair, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: nil record", ErrMalformedRecord)
	}

	chain, ok := LookupString(rec, FieldChainID)
	if !ok {
		chain, ok = LookupString(rec, FieldChain)
	}
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedRecord, FieldChainID)
	}

	dex, ok := LookupString(rec, FieldDexID)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedRecord, FieldDexID)
	}

	observed := source == domain.SourceBirdeye

	p := &domain.Pair{
		Chain:             chain,
		Dex:               dex,
		PairAddress:       optString(rec, FieldPairAddress),
		BaseTokenAddress:  optString(rec, FieldBaseAddress),
		LiquidityUSD:      optFloat(rec, FieldLiquidityUSD),
		FDV:               optFloat(rec, FieldFDV),
		CreatedAtMs:       optInt(rec, FieldPairCreatedAt),
		PriceSpread:       optFloat(rec, FieldPriceSpread),
		TxnsM5Buys:        optInt(rec, FieldTxnsM5Buys),
		TxnsM5Sells:       optInt(rec, FieldTxnsM5Sells),
		URL:               optString(rec, FieldURL),
		Source:            source,
		CreatedAtObserved: observed,
		Fingerprint:       fingerprint(rec, observed),
	}

	p.BaseTokenSymbol = optString(rec, FieldBaseSymbol)
	if p.BaseTokenSymbol == nil {
		p.BaseTokenSymbol = optString(rec, FieldBaseName)
	}

	if v, present := Lookup(rec, FieldPriceChangeM5); present {
		if isNumeric(v) {
			f, _ := ToFloat(v)
			p.PriceChangeM5 = &f
		} else {
			p.PriceChangeM5Invalid = true
		}
	}

	return p, nil
}

// fingerprint hashes the record. An observed timestamp changes every fetch,
// so it is left out to keep the identity stable across cycles.
func fingerprint(rec domain.RawRecord, createdAtObserved bool) string {
	if !createdAtObserved {
		return idhash.ComputePairFingerprint(rec)
	}
	stable := make(domain.RawRecord, len(rec))
	for k, v := range rec {
		if k != FieldPairCreatedAt {
			stable[k] = v
		}
	}
	return idhash.ComputePairFingerprint(stable)
}

func optString(rec domain.RawRecord, path string) *string {
	if s, ok := LookupString(rec, path); ok {
		return &s
	}
	return nil
}

func optFloat(rec domain.RawRecord, path string) *float64 {
	if f, ok := LookupFloat(rec, path); ok {
		return &f
	}
	return nil
}

func optInt(rec domain.RawRecord, path string) *int64 {
	if i, ok := LookupInt(rec, path); ok {
		return &i
	}
	return nil
}
