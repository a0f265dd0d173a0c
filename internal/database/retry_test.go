package database

import (
	"context"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(mysql.ErrInvalidConn))
	assert.True(t, IsTransient(&mysql.MySQLError{Number: 1205}))
	assert.True(t, IsTransient(&mysql.MySQLError{Number: 1213}))
	// duplicate key is a real outcome, never retried
	assert.False(t, IsTransient(&mysql.MySQLError{Number: 1062}))
	assert.False(t, IsTransient(errors.New("boom")))
}

func TestRetryStopsOnNonTransient(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, func() error {
		calls++
		return errors.New("hard failure")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryRecoversFromTransient(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, func() error {
		calls++
		if calls < 2 {
			return &mysql.MySQLError{Number: 1213}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryGivesUpAfterAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, func() error {
		calls++
		return &mysql.MySQLError{Number: 1205}
	})
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.Equal(t, 2, calls)
}

func TestDuplicateKey(t *testing.T) {
	assert.True(t, DuplicateKey(&mysql.MySQLError{Number: 1062}))
	assert.False(t, DuplicateKey(&mysql.MySQLError{Number: 1213}))
	assert.False(t, DuplicateKey(errors.New("boom")))
}
