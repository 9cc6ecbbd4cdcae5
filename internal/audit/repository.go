package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists audit events. Append-only.
type Repository interface {
	Append(ctx context.Context, event *Event) error
	ListByEntity(ctx context.Context, entityType, entitySlug string) ([]*Event, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Append(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	query := `
    INSERT INTO audit_events (id, actor_id, action, entity_type, entity_slug, payload, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    ON CONFLICT (id) DO NOTHING
  `
	_, err = r.pool.Exec(ctx, query,
		event.ID, event.ActorID, event.Action, event.EntityType, event.EntitySlug, payload, event.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListByEntity(ctx context.Context, entityType, entitySlug string) ([]*Event, error) {
	query := `
    SELECT id, actor_id, action, entity_type, entity_slug, payload, created_at
    FROM audit_events
    WHERE entity_type = $1 AND entity_slug = $2
    ORDER BY created_at DESC
  `
	rows, err := r.pool.Query(ctx, query, entityType, entitySlug)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			ev      Event
			actorID uuid.UUID
			payload []byte
		)
		if err := rows.Scan(&ev.ID, &actorID, &ev.Action, &ev.EntityType, &ev.EntitySlug, &payload, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan audit event row: %w", err)
		}
		ev.ActorID = actorID
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &ev.Payload); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event payload: %w", err)
			}
		}
		events = append(events, &ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit event rows: %w", err)
	}

	return events, nil
}
