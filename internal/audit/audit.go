package audit

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
)

// Event represents one access (check-in or check-out) of a known user
type Event struct {
	ID        uuid.UUID           `json:"id"`
	Timestamp time.Time           `json:"timestamp"`
	UserID    string              `json:"user_id"`
	Name      string              `json:"name"`
	Action    domain.AccessAction `json:"action"`
}

// withDefaults fills the ID and timestamp when the caller left them empty.
func (e Event) withDefaults() Event {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return e
}

// AccessEvent converts the event to its stored form.
func (e Event) AccessEvent() domain.AccessEvent {
	return domain.AccessEvent{
		ID:        e.ID.String(),
		Timestamp: e.Timestamp,
		UserID:    e.UserID,
		Name:      e.Name,
		Action:    e.Action,
	}
}

// Logger defines the interface for audit logging
type Logger interface {
	Log(ctx context.Context, event Event) error
}

// SlogLogger implements Logger using slog
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a new audit logger using slog
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{
		logger: logger.With("component", "audit"),
	}
}

// Log records an audit event
func (l *SlogLogger) Log(ctx context.Context, event Event) error {
	event = event.withDefaults()

	eventJSON, err := json.Marshal(event)
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to marshal audit event",
			slog.String("error", err.Error()),
			slog.String("action", string(event.Action)),
		)
		return err
	}

	l.logger.InfoContext(ctx, "audit_event",
		slog.String("event_id", event.ID.String()),
		slog.String("action", string(event.Action)),
		slog.String("user_id", event.UserID),
		slog.String("event_data", string(eventJSON)),
	)

	return nil
}

// EventStore persists access events
type EventStore interface {
	Append(ctx context.Context, event domain.AccessEvent) error
}

// RepositoryLogger writes events to the access log store
type RepositoryLogger struct {
	store EventStore
}

// NewRepositoryLogger creates a logger backed by store
func NewRepositoryLogger(store EventStore) *RepositoryLogger {
	return &RepositoryLogger{store: store}
}

// Log appends the event to the store
func (l *RepositoryLogger) Log(ctx context.Context, event Event) error {
	return l.store.Append(ctx, event.withDefaults().AccessEvent())
}

// MultiLogger fans an event out to every logger, all sharing one ID and timestamp
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger combines loggers
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log calls every logger and joins their errors
func (m *MultiLogger) Log(ctx context.Context, event Event) error {
	event = event.withDefaults()

	var errs []error
	for _, l := range m.loggers {
		if err := l.Log(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NoOpLogger is a logger that does nothing (for testing or when audit is disabled)
type NoOpLogger struct{}

// Log does nothing and returns nil
func (l *NoOpLogger) Log(_ context.Context, _ Event) error {
	return nil
}
