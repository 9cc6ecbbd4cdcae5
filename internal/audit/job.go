package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// RecordEventHandler persists queued audit events (worker side).
type RecordEventHandler struct {
	repo Repository
}

func NewRecordEventHandler(repo Repository) *RecordEventHandler {
	return &RecordEventHandler{repo: repo}
}

func (h *RecordEventHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var event Event
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal audit event payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := h.repo.Append(ctx, &event); err != nil {
		log.Error().
			Err(err).
			Str("action", event.Action).
			Str("entity_slug", event.EntitySlug).
			Msg("Failed to persist audit event")
		return fmt.Errorf("append event: %w", err)
	}

	return nil
}
