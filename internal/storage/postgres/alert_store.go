package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-pair-radar/internal/domain"
	"solana-pair-radar/internal/storage"
)

// AlertStore implements storage.AlertStore using PostgreSQL.
type AlertStore struct {
	pool *Pool
}

// NewAlertStore creates a new AlertStore.
func NewAlertStore(pool *Pool) *AlertStore {
	return &AlertStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AlertStore = (*AlertStore)(nil)

const alertColumns = `alert_id, cycle_id, chain, dex, identity, symbol, liquidity_usd, score, mode, source, url, emitted_at`

// Insert appends an alert. Returns ErrDuplicateKey if alert_id exists.
func (s *AlertStore) Insert(ctx context.Context, a *domain.AlertRecord) error {
	if a == nil || a.AlertID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO alert_journal (` + alertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.pool.Exec(ctx, query,
		a.AlertID,
		a.CycleID,
		a.Chain,
		a.Dex,
		a.Identity,
		a.Symbol,
		a.LiquidityUSD,
		a.Score,
		string(a.Mode),
		string(a.Source),
		a.URL,
		a.EmittedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// GetByID retrieves an alert by its ID. Returns ErrNotFound if not exists.
func (s *AlertStore) GetByID(ctx context.Context, alertID string) (*domain.AlertRecord, error) {
	query := `SELECT ` + alertColumns + ` FROM alert_journal WHERE alert_id = $1`

	a, err := scanAlert(s.pool.QueryRow(ctx, query, alertID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get alert by id: %w", err)
	}
	return a, nil
}

// ListRecent returns up to limit alerts, newest first.
func (s *AlertStore) ListRecent(ctx context.Context, limit int) ([]*domain.AlertRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT ` + alertColumns + `
		FROM alert_journal
		ORDER BY emitted_at DESC, created_at DESC, alert_id ASC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*domain.AlertRecord
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alert rows: %w", err)
	}

	return alerts, nil
}

// scanAlert scans a single row into an AlertRecord.
func scanAlert(row pgx.Row) (*domain.AlertRecord, error) {
	var a domain.AlertRecord
	var modeStr, sourceStr string

	err := row.Scan(
		&a.AlertID,
		&a.CycleID,
		&a.Chain,
		&a.Dex,
		&a.Identity,
		&a.Symbol,
		&a.LiquidityUSD,
		&a.Score,
		&modeStr,
		&sourceStr,
		&a.URL,
		&a.EmittedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Mode = domain.Mode(modeStr)
	a.Source = domain.Source(sourceStr)
	return &a, nil
}
