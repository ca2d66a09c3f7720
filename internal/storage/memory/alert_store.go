package memory

import (
	"context"
	"sort"
	"sync"

	"solana-pair-radar/internal/domain"
	"solana-pair-radar/internal/storage"
)

// AlertStore is an in-memory implementation of storage.AlertStore.
// It keeps at most capacity alerts, dropping the oldest.
type AlertStore struct {
	mu       sync.RWMutex
	data     map[string]*domain.AlertRecord // keyed by alert_id
	order    []string                       // insertion order
	capacity int
}

// DefaultAlertCapacity bounds the in-memory journal.
const DefaultAlertCapacity = 500

// NewAlertStore creates a new in-memory alert store.
// A non-positive capacity uses DefaultAlertCapacity.
func NewAlertStore(capacity int) *AlertStore {
	if capacity <= 0 {
		capacity = DefaultAlertCapacity
	}
	return &AlertStore{
		data:     make(map[string]*domain.AlertRecord),
		capacity: capacity,
	}
}

// Insert appends an alert. Returns ErrDuplicateKey if alert_id exists.
func (s *AlertStore) Insert(_ context.Context, a *domain.AlertRecord) error {
	if a == nil || a.AlertID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[a.AlertID]; exists {
		return storage.ErrDuplicateKey
	}

	if len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.data, oldest)
	}

	// Store a copy to prevent external mutation
	alertCopy := *a
	s.data[a.AlertID] = &alertCopy
	s.order = append(s.order, a.AlertID)
	return nil
}

// GetByID retrieves an alert by its ID. Returns ErrNotFound if not exists.
func (s *AlertStore) GetByID(_ context.Context, alertID string) (*domain.AlertRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.data[alertID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	alertCopy := *a
	return &alertCopy, nil
}

// ListRecent returns up to limit alerts, newest first.
func (s *AlertStore) ListRecent(_ context.Context, limit int) ([]*domain.AlertRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.AlertRecord, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		alertCopy := *s.data[s.order[i]]
		result = append(result, &alertCopy)
	}

	// Sort by emitted_at DESC, later inserts first on ties
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].EmittedAt > result[j].EmittedAt
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// Len returns the number of alerts held.
func (s *AlertStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Verify interface compliance at compile time.
var _ storage.AlertStore = (*AlertStore)(nil)
