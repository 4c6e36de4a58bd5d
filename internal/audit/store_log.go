package audit

import (
	"context"
	"log/slog"
)

// LogStore writes each event as a structured log line and retains nothing.
// It is the sink when no broker is configured.
type LogStore struct {
	logger *slog.Logger
}

func NewLogStore(logger *slog.Logger) *LogStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogStore{logger: logger}
}

func (s *LogStore) Append(ctx context.Context, event Event) error {
	s.logger.InfoContext(ctx, "audit event",
		"event", event.Name,
		"verification_id", event.VerificationID,
		"request_id", event.RequestID,
		"decision", event.Decision,
		"score", event.Score,
		"document_count", event.DocumentCount,
		"overall_confidence", event.OverallConfidence,
		"timestamp", event.Timestamp,
	)
	return nil
}
