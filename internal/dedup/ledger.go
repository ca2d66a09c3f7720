// Package dedup tracks which pairs have already produced an alert.
package dedup

import "sync"

// Ledger is an in-memory set of alerted pair identities.
// It only grows and is not persisted: a restart means pairs may alert again.
type Ledger struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		seen: make(map[string]struct{}),
	}
}

// HasAlerted reports whether id was marked before.
func (l *Ledger) HasAlerted(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, exists := l.seen[id]
	return exists
}

// MarkAlerted records id. Marking an existing id is a no-op.
func (l *Ledger) MarkAlerted(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seen[id] = struct{}{}
}

// Len returns the number of identities recorded.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.seen)
}
