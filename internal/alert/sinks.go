package alert

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"solana-pair-radar/internal/observability"
	"solana-pair-radar/internal/storage"
)

// LogSink writes alerts to the log. Used for dry runs and as the always-on
// local record of what was sent.
type LogSink struct {
	logger zerolog.Logger
}

var _ Sink = (*LogSink)(nil)

// NewLogSink creates a log sink.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("sink", "log").Logger()}
}

// Name returns "log".
func (s *LogSink) Name() string { return "log" }

// Send logs the flattened alert text with its structured fields.
func (s *LogSink) Send(_ context.Context, msg Message) error {
	s.logger.Info().
		Str("alert_id", msg.AlertID).
		Str("cycle_id", msg.CycleID).
		Str("identity", msg.Identity).
		Str("mode", msg.Mode.String()).
		Float64("score", msg.Score).
		Msg(LogLine(msg.Text))
	return nil
}

// JournalSink appends alerts to an AlertStore.
type JournalSink struct {
	store storage.AlertStore
}

var _ Sink = (*JournalSink)(nil)

// NewJournalSink creates a journal sink backed by store.
func NewJournalSink(store storage.AlertStore) *JournalSink {
	return &JournalSink{store: store}
}

// Name returns "journal".
func (s *JournalSink) Name() string { return "journal" }

// Send journals the alert record.
func (s *JournalSink) Send(ctx context.Context, msg Message) error {
	record := msg.AlertRecord
	if err := s.store.Insert(ctx, &record); err != nil {
		return fmt.Errorf("journal alert %s: %w", msg.AlertID, err)
	}
	return nil
}

// MultiSink fans out alerts to multiple sinks.
type MultiSink struct {
	sinks  []Sink
	logger zerolog.Logger
}

var _ Sink = (*MultiSink)(nil)

// NewMultiSink creates a fan-out sink. Nil sinks are ignored.
func NewMultiSink(logger zerolog.Logger, sinks ...Sink) *MultiSink {
	var active []Sink
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}
	return &MultiSink{
		sinks:  active,
		logger: logger.With().Str("component", "alert").Logger(),
	}
}

// Name returns "multi".
func (m *MultiSink) Name() string { return "multi" }

// Send dispatches msg to every sink. A failing sink does not stop the others;
// the first error is returned.
func (m *MultiSink) Send(ctx context.Context, msg Message) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Send(ctx, msg); err != nil {
			observability.RecordAlertFailure(s.Name())
			m.logger.Warn().Err(err).
				Str("sink", s.Name()).
				Str("alert_id", msg.AlertID).
				Msg("alert send failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
