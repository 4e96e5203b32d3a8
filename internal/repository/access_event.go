package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
)

type AccessEventRepository struct {
	pool PgxPool
}

func NewAccessEventRepository(pool PgxPool) *AccessEventRepository {
	return &AccessEventRepository{pool: pool}
}

func (r *AccessEventRepository) Append(ctx context.Context, event domain.AccessEvent) error {
	query := `
		INSERT INTO access_events (id, user_id, name, action, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.UserID,
		event.Name,
		string(event.Action),
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append access event: %w", err)
	}

	return nil
}

// Recent returns up to limit events, newest first.
func (r *AccessEventRepository) Recent(ctx context.Context, limit int) ([]domain.AccessEvent, error) {
	query := `
		SELECT id, user_id, name, action, created_at
		FROM access_events
		ORDER BY created_at DESC, id
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list access events: %w", err)
	}
	defer rows.Close()

	var events []domain.AccessEvent
	for rows.Next() {
		var (
			event  domain.AccessEvent
			action string
		)
		if err := rows.Scan(&event.ID, &event.UserID, &event.Name, &action, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan access event: %w", err)
		}
		event.Action = domain.AccessAction(action)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate access events: %w", err)
	}

	return events, nil
}
