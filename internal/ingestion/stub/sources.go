package stub

import (
	"context"
	"sync"

	"solana-pair-radar/internal/domain"
	"solana-pair-radar/internal/ingestion"
)

// StubFeed returns scripted results for testing.
// Call i returns script[i]; once the script is exhausted the last entry repeats.
// Implements ingestion.PairFeed interface.
type StubFeed struct {
	name domain.Source

	mu     sync.Mutex
	script []ingestion.Result
	err    error
	calls  int
}

var _ ingestion.PairFeed = (*StubFeed)(nil)

// NewStubFeed creates a new stub feed with the given scripted results.
func NewStubFeed(name domain.Source, script ...ingestion.Result) *StubFeed {
	return &StubFeed{name: name, script: script}
}

// WithError makes every Fetch return err.
func (s *StubFeed) WithError(err error) *StubFeed {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	return s
}

// Name returns the configured feed name.
func (s *StubFeed) Name() domain.Source {
	return s.name
}

// Fetch returns the next scripted result.
// Records are copied to prevent mutation.
func (s *StubFeed) Fetch(ctx context.Context) (ingestion.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if err := ctx.Err(); err != nil {
		return ingestion.Result{}, err
	}
	if s.err != nil {
		return ingestion.Result{}, s.err
	}
	if len(s.script) == 0 {
		return ingestion.Result{}, nil
	}

	idx := s.calls - 1
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	res := s.script[idx]

	records := make([]domain.RawRecord, len(res.Records))
	for i, rec := range res.Records {
		c := make(domain.RawRecord, len(rec))
		for k, v := range rec {
			c[k] = v
		}
		records[i] = c
	}
	return ingestion.Result{Records: records, RateLimited: res.RateLimited}, nil
}

// Calls returns how many times Fetch was invoked.
func (s *StubFeed) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
