package model

import "time"

// FieldType enumerates the scalar types a custom field may declare.
// Values are stored as text regardless of type; the declared type is
// enforced at the HTTP and import boundaries only.
const (
	FieldTypeText   = "text"
	FieldTypeNumber = "number"
	FieldTypeDate   = "date"
)

// ValidFieldType reports whether t is one of the supported scalar types.
func ValidFieldType(t string) bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeDate:
		return true
	}
	return false
}

// FieldDefinition describes one administrator-defined custom attribute.
// Position defines display and serialization order; positions may have
// gaps after swap-based reordering, only the relative order matters.
//
// Fields:
//  ID        - primary key identifier, immutable once created.
//  Name      - display label shown on forms and export columns.
//  Type      - one of text | number | date.
//  Position  - ordering key, ascending.
//  CreatedBy - user ID of the admin who created the field (nil when unknown).
//  CreatedAt - creation timestamp.
type FieldDefinition struct {
	ID        uint64    `json:"id"`         // custom_fields.id
	Name      string    `json:"field_name"` // custom_fields.field_name
	Type      string    `json:"field_type"` // custom_fields.field_type
	Position  int       `json:"position"`   // custom_fields.position
	CreatedBy *uint64   `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
