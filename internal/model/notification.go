package model

import "time"

// Change kinds reported by the notification feed. A record is New when
// it was created after the owner's watermark, Updated otherwise.
const (
	ChangeNew     = "NEW"
	ChangeUpdated = "UPDATED"
)

// RecordChange is one entry in the "changed since you last checked"
// payload, ordered by UpdatedAt descending.
type RecordChange struct {
	RecordID     uint64    `json:"record_id"`
	RecordNumber uint32    `json:"record_number"`
	Category     string    `json:"category"`
	Kind         string    `json:"kind"`
	UpdatedAt    time.Time `json:"updated_at"`
}
