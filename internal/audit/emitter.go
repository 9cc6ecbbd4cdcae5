package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"badgeforge-backend/internal/shared"
)

// Emitter records structured audit events. Emission is fire-and-forget:
// a failing sink must never roll back the primary mutation.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// asynqEmitter enqueues events for the worker to persist.
type asynqEmitter struct {
	client *asynq.Client
}

func NewAsynqEmitter(client *asynq.Client) Emitter {
	return &asynqEmitter{client: client}
}

func (e *asynqEmitter) Emit(ctx context.Context, event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("action", event.Action).Msg("Failed to marshal audit event")
		return
	}

	task := asynq.NewTask(shared.TypeRecordAuditEvent, payload)
	if _, err := e.client.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(5),
	); err != nil {
		log.Error().Err(err).Str("action", event.Action).Msg("Failed to enqueue audit event")
	}
}

// NopEmitter discards events. Used in tests.
type NopEmitter struct{}

func (NopEmitter) Emit(ctx context.Context, event Event) {}
