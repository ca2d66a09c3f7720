package orchestrator

import (
	"time"

	"solana-pair-radar/internal/domain"
	"solana-pair-radar/internal/filter"
)

// Status is a point-in-time view of the monitor for the admin server.
type Status struct {
	StartedAt     time.Time    `json:"started_at"`
	Mode          domain.Mode  `json:"mode"`
	Cycles        int          `json:"cycles"`
	LedgerSize    int          `json:"ledger_size"`
	LastSuccessAt *time.Time   `json:"last_success_at,omitempty"` // nil until a cycle completes
	LastCycle     *CycleResult `json:"last_cycle,omitempty"`
}

// Status returns a snapshot safe to use from any goroutine.
func (o *Orchestrator) Status() Status {
	o.mu.RLock()
	st := o.status
	if st.LastCycle != nil {
		last := *st.LastCycle
		last.Rejections = make(map[filter.Reason]int, len(st.LastCycle.Rejections))
		for k, v := range st.LastCycle.Rejections {
			last.Rejections[k] = v
		}
		st.LastCycle = &last
	}
	if st.LastSuccessAt != nil {
		at := *st.LastSuccessAt
		st.LastSuccessAt = &at
	}
	o.mu.RUnlock()

	st.Mode = CurrentMode(o.now(), o.start, o.warmupDuration)
	st.LedgerSize = o.ledger.Len()
	return st
}
