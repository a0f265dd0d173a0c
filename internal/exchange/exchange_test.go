package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmwangi/casetrack/internal/model"
)

var testFields = []model.FieldDefinition{
	{ID: 1, Name: "Severity", Type: model.FieldTypeNumber, Position: 0},
	{ID: 2, Name: "Notes", Type: model.FieldTypeText, Position: 1},
	{ID: 3, Name: "Follow-up", Type: model.FieldTypeDate, Position: 2},
}

func TestHeadersFollowRegistryOrder(t *testing.T) {
	headers := Headers(testFields)
	assert.Equal(t, []string{"Record No", "Category", "Severity", "Notes", "Follow-up"}, headers)
}

func TestFlattenFillsMissingValues(t *testing.T) {
	det := model.RecordDetail{
		Record: model.Record{RecordNumber: 7, Category: model.CategoryCaseOB},
		Values: map[uint64]string{1: "3"},
	}
	row := Flatten(det, testFields)
	assert.Equal(t, "7", row[ColRecordNumber])
	assert.Equal(t, "CASE_OB", row[ColCategory])
	assert.Equal(t, "3", row["Severity"])
	// unset fields still appear as empty columns
	assert.Equal(t, "", row["Notes"])
	assert.Equal(t, "", row["Follow-up"])
}

func TestMapRowResolvesByFieldName(t *testing.T) {
	row := map[string]string{
		ColCategory: "PHQ",
		"Severity":  "3",
		"Notes":     "stable",
	}
	category, values, err := MapRow(row, testFields)
	require.NoError(t, err)
	assert.Equal(t, "PHQ", category)
	assert.Equal(t, map[uint64]string{1: "3", 2: "stable"}, values)
	// "Follow-up" column absent from the sheet: the field is untouched
	_, ok := values[3]
	assert.False(t, ok)
}

func TestMapRowKeepsEmptyForClearing(t *testing.T) {
	row := map[string]string{
		ColCategory: "PHQ",
		"Notes":     "",
	}
	_, values, err := MapRow(row, testFields)
	require.NoError(t, err)
	v, ok := values[2]
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestMapRowIgnoresUnknownColumns(t *testing.T) {
	row := map[string]string{
		ColCategory: "CASE_OB",
		"Mystery":   "whatever",
	}
	_, values, err := MapRow(row, testFields)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestMapRowRejectsBadCategory(t *testing.T) {
	_, _, err := MapRow(map[string]string{ColCategory: "MISC"}, testFields)
	assert.Error(t, err)
}

func TestMapRowRejectsBadTypedValue(t *testing.T) {
	_, _, err := MapRow(map[string]string{
		ColCategory: "PHQ",
		"Severity":  "not-a-number",
	}, testFields)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Severity")

	_, _, err = MapRow(map[string]string{
		ColCategory: "PHQ",
		"Follow-up": "15/01/2026",
	}, testFields)
	assert.Error(t, err)
}

func TestWorkbookRoundTrip(t *testing.T) {
	details := []model.RecordDetail{
		{
			Record: model.Record{RecordNumber: 2, Category: "PHQ"},
			Values: map[uint64]string{1: "9"},
		},
		{
			Record: model.Record{RecordNumber: 1, Category: "CASE_OB"},
			Values: map[uint64]string{2: "first visit"},
		},
	}
	wb, err := BuildWorkbook(details, testFields)
	require.NoError(t, err)
	defer wb.Close()

	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)

	rows, err := ParseWorkbook(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "PHQ", rows[0][ColCategory])
	assert.Equal(t, "9", rows[0]["Severity"])
	assert.Equal(t, "first visit", rows[1]["Notes"])
}
