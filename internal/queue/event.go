// Package queue defines message payloads exchanged over the message broker.
package queue

// Actions carried by RecordChangedEvent.
const (
	ActionCreated    = "CREATED"
	ActionUpdated    = "UPDATED"
	ActionReassigned = "REASSIGNED"
	ActionDeleted    = "DELETED"
)

// RecordChangedEvent is published after a record mutation commits. It
// carries enough information for downstream consumers to log, notify,
// or feed analytics without querying the primary database. EventID is
// a UUID so consumers can deduplicate redeliveries.
type RecordChangedEvent struct {
	EventID      string `json:"event_id"`
	Action       string `json:"action"`
	RecordID     uint64 `json:"record_id"`
	RecordNumber uint32 `json:"record_number"`
	OwnerID      uint64 `json:"user_id"`
	Category     string `json:"category"`
	ActorID      uint64 `json:"actor_id"`
	OccurredAt   string `json:"occurred_at"`
}
