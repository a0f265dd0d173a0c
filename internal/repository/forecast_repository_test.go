package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecastRepoCreateRejectsEmptyTitle(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewForecastRepo(db)

	_, err = repo.Create(context.Background(), 1, "   ", "", time.Now())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestForecastRepoUpdateByIDIgnoresOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewForecastRepo(db)

	day := time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE forecasts\s+SET title = \?, description = \?, forecast_date = \?, updated_at = UTC_TIMESTAMP\(\)\s+WHERE id = \?`).
		WithArgs("Follow-up visit", "reschedule", "2026-09-03", uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.UpdateByID(context.Background(), 5, "Follow-up visit", "reschedule", day)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForecastRepoUpdateByIDUnknownID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewForecastRepo(db)

	mock.ExpectExec(`UPDATE forecasts`).
		WithArgs("Title", "", "2026-09-03", uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateByID(context.Background(), 99, "Title", "", time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrForecastNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForecastRepoDeleteByIDIgnoresOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewForecastRepo(db)

	mock.ExpectExec(`DELETE FROM forecasts WHERE id = \?`).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteByID(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForecastRepoDeleteByIDUnknownID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewForecastRepo(db)

	mock.ExpectExec(`DELETE FROM forecasts WHERE id = \?`).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.DeleteByID(context.Background(), 99), ErrForecastNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForecastRepoDeleteByIDAndOwnerScopesToOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewForecastRepo(db)

	// someone else's forecast: the owner clause filters it out, which
	// surfaces as not-found rather than forbidden
	mock.ExpectExec(`DELETE FROM forecasts WHERE id = \? AND user_id = \?`).
		WithArgs(uint64(5), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.DeleteByIDAndOwner(context.Background(), 5, 2), ErrForecastNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
