package model

import (
	"fmt"
	"strconv"
	"time"
)

// ValidateValue checks a candidate value against a field's declared
// scalar type. Storage itself is uniformly string-valued; this runs
// only at the HTTP and import boundaries. An empty value is always
// acceptable since it means "unset".
func ValidateValue(fieldType, value string) error {
	if value == "" {
		return nil
	}
	switch fieldType {
	case FieldTypeNumber:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("%q is not a number", value)
		}
	case FieldTypeDate:
		if _, err := time.Parse("2006-01-02", value); err != nil {
			return fmt.Errorf("%q is not a date (want YYYY-MM-DD)", value)
		}
	}
	return nil
}
