// Package exchange converts between record details and the flat
// field-name-keyed rows spoken by the spreadsheet codec. Columns
// follow the field registry's canonical order; custom fields are
// addressed by display name, never by id, because that is what a
// human-edited sheet contains.
package exchange

import (
	"fmt"

	"github.com/jmwangi/casetrack/internal/model"
)

// Fixed column labels preceding the custom fields on every sheet.
const (
	ColRecordNumber = "Record No"
	ColCategory     = "Category"
)

// Headers returns the export column labels: the fixed columns followed
// by every custom field name in registry order.
func Headers(fields []model.FieldDefinition) []string {
	headers := make([]string, 0, len(fields)+2)
	headers = append(headers, ColRecordNumber, ColCategory)
	for _, f := range fields {
		headers = append(headers, f.Name)
	}
	return headers
}

// Flatten converts one record into a flat name-keyed row. Fields with
// no stored value flatten to "" so every row carries every column.
func Flatten(det model.RecordDetail, fields []model.FieldDefinition) map[string]string {
	row := map[string]string{
		ColRecordNumber: fmt.Sprintf("%d", det.RecordNumber),
		ColCategory:     det.Category,
	}
	for _, f := range fields {
		row[f.Name] = det.Values[f.ID] // zero value "" when absent
	}
	return row
}

// MapRow resolves an imported flat row against the registry. Known
// column names map onto field ids; unknown columns are ignored (a
// sheet never creates fields). The category column is validated
// against the closed enum and typed columns against their declared
// type. The returned values map is ready for the attribute store,
// empty strings included so stale values get cleared.
func MapRow(row map[string]string, fields []model.FieldDefinition) (category string, values map[uint64]string, err error) {
	category = row[ColCategory]
	if !model.ValidCategory(category) {
		return "", nil, fmt.Errorf("unknown category %q", category)
	}
	values = make(map[uint64]string, len(fields))
	for _, f := range fields {
		v, ok := row[f.Name]
		if !ok {
			continue // column absent from the sheet: leave the field alone
		}
		if err := model.ValidateValue(f.Type, v); err != nil {
			return "", nil, fmt.Errorf("column %q: %w", f.Name, err)
		}
		values[f.ID] = v
	}
	return category, values, nil
}
