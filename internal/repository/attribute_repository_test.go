package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetValuesUpsertsNonEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAttributeRepo(db)

	mock.ExpectExec(`INSERT INTO custom_field_values`).
		WithArgs(uint64(9), uint64(5), "severe").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.SetValues(context.Background(), 9, map[uint64]string{5: "severe"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetValuesEmptyDeletesRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAttributeRepo(db)

	// whitespace-only counts as empty: the row is removed, not stored
	mock.ExpectExec(`DELETE FROM custom_field_values WHERE record_id = \? AND field_id = \?`).
		WithArgs(uint64(9), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.SetValues(context.Background(), 9, map[uint64]string{5: "   "})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetValuesMixed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAttributeRepo(db)

	// map iteration order is not fixed
	mock.MatchExpectationsInOrder(false)
	mock.ExpectExec(`INSERT INTO custom_field_values`).
		WithArgs(uint64(9), uint64(1), "42").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM custom_field_values`).
		WithArgs(uint64(9), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.SetValues(context.Background(), 9, map[uint64]string{1: "42", 2: ""})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValuesReturnsSparseMap(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAttributeRepo(db)

	mock.ExpectQuery(`SELECT field_id, value FROM custom_field_values WHERE record_id = \?`).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"field_id", "value"}).
			AddRow(1, "42").AddRow(3, "2026-01-15"))

	values, err := repo.Values(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, map[uint64]string{1: "42", 3: "2026-01-15"}, values)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValuesForRecordsEmptyInput(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAttributeRepo(db)

	out, err := repo.ValuesForRecords(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValuesForRecordsGroupsByRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewAttributeRepo(db)

	mock.ExpectQuery(`SELECT record_id, field_id, value FROM custom_field_values`).
		WithArgs(uint64(9), uint64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"record_id", "field_id", "value"}).
			AddRow(9, 1, "a").AddRow(9, 2, "b").AddRow(10, 1, "c"))

	out, err := repo.ValuesForRecords(context.Background(), []uint64{9, 10})
	require.NoError(t, err)
	assert.Equal(t, map[uint64]string{1: "a", 2: "b"}, out[9])
	assert.Equal(t, map[uint64]string{1: "c"}, out[10])
	assert.NoError(t, mock.ExpectationsWereMet())
}
