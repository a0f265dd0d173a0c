package model

import "time"

// Category values form a closed enum. Unknown categories are rejected
// before storage so that category aggregation stays exhaustive.
const (
	CategoryCaseOB = "CASE_OB"
	CategoryPHQ    = "PHQ"
)

// ValidCategory reports whether cat is a recognized record category.
func ValidCategory(cat string) bool {
	switch cat {
	case CategoryCaseOB, CategoryPHQ:
		return true
	}
	return false
}

// Record is one core case-file row. RecordNumber is a per-owner
// monotonically increasing sequence starting at 1; it is unique per
// owner and never renumbered on deletes. Reassigning a record to a
// different owner assigns the next number in the new owner's sequence.
//
// Fields:
//  ID           - primary key identifier.
//  OwnerID      - user the record is assigned to.
//  RecordNumber - per-owner sequence number.
//  Category     - CASE_OB or PHQ.
//  CreatedAt    - creation timestamp.
//  UpdatedAt    - bumped on any mutation, attribute-value edits included.
type Record struct {
	ID           uint64    `json:"id"`            // records.id
	OwnerID      uint64    `json:"user_id"`       // records.user_id
	RecordNumber uint32    `json:"record_number"` // records.record_number
	Category     string    `json:"category"`      // records.category
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RecordDetail is a record together with its sparse custom values,
// keyed by field ID. Fields with no stored value are absent from the
// map; callers default missing keys to "" for display.
type RecordDetail struct {
	Record
	Values map[uint64]string `json:"values"`
}

// CategoryCount is one row of the per-owner per-category report.
type CategoryCount struct {
	OwnerID  uint64 `json:"user_id"`
	Username string `json:"username"`
	Category string `json:"category"`
	Count    int    `json:"count"`
}
