package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names recorded for badge lifecycle operations.
const (
	ActionIssuerCreated         = "IssuerCreated"
	ActionBadgeClassCreated     = "BadgeClassCreated"
	ActionBadgeClassDeleted     = "BadgeClassDeleted"
	ActionBadgeInstanceCreated  = "BadgeInstanceCreated"
	ActionBadgeAssertionRevoked = "BadgeAssertionRevoked"
)

// Event is emitted from domain logic to capture key actions.
// Kept transport-agnostic so sinks can fan out.
type Event struct {
	ID         uuid.UUID              `json:"id"`
	ActorID    uuid.UUID              `json:"actor_id"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntitySlug string                 `json:"entity_slug"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}
