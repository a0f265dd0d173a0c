package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateValue(t *testing.T) {
	cases := []struct {
		name      string
		fieldType string
		value     string
		ok        bool
	}{
		{"text accepts anything", FieldTypeText, "free form", true},
		{"empty is always valid", FieldTypeNumber, "", true},
		{"integer number", FieldTypeNumber, "42", true},
		{"decimal number", FieldTypeNumber, "3.14", true},
		{"negative number", FieldTypeNumber, "-7", true},
		{"not a number", FieldTypeNumber, "severe", false},
		{"iso date", FieldTypeDate, "2026-08-31", true},
		{"slash date rejected", FieldTypeDate, "31/08/2026", false},
		{"nonsense date", FieldTypeDate, "sometime", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateValue(tc.fieldType, tc.value)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidFieldType(t *testing.T) {
	assert.True(t, ValidFieldType(FieldTypeText))
	assert.True(t, ValidFieldType(FieldTypeNumber))
	assert.True(t, ValidFieldType(FieldTypeDate))
	assert.False(t, ValidFieldType("decimal"))
	assert.False(t, ValidFieldType(""))
}

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory(CategoryCaseOB))
	assert.True(t, ValidCategory(CategoryPHQ))
	assert.False(t, ValidCategory("case_ob"))
	assert.False(t, ValidCategory(""))
}
