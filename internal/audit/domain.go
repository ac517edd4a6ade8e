package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event is one engine-emitted audit record. Snapshot carries the entity
// state after the operation, serialized by the emitter.
type Event struct {
	ID          uuid.UUID      `json:"id"`
	Entity      string         `json:"entity"`
	EntityID    int64          `json:"entity_id"`
	Action      string         `json:"action"`
	ActorID     int64          `json:"actor_id"`
	ActorEmail  string         `json:"actor_email"`
	Snapshot    map[string]any `json:"snapshot"`
	Description string         `json:"description"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

// Log is a persisted audit row.
type Log struct {
	ID          int64
	Entity      string
	EntityID    int64
	Action      string
	ActorID     int64
	ActorEmail  string
	Snapshot    map[string]any
	Description string
	OccurredAt  time.Time
}

// Filter narrows audit log listings.
type Filter struct {
	Entity   string
	EntityID int64
}
