package storage

import (
	"context"

	"solana-pair-radar/internal/domain"
)

// AlertStore provides access to the alert journal.
// The journal is a record of emitted alerts; it is never consulted for dedup.
type AlertStore interface {
	// Insert appends an alert. Returns ErrDuplicateKey if alert_id exists.
	Insert(ctx context.Context, a *domain.AlertRecord) error

	// GetByID retrieves an alert by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, alertID string) (*domain.AlertRecord, error)

	// ListRecent returns up to limit alerts, newest first.
	ListRecent(ctx context.Context, limit int) ([]*domain.AlertRecord, error)
}
