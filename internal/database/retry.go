package database

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
)

// IsTransient reports whether err looks like a storage failure that is
// safe to retry: a timeout, a dropped connection, or a MySQL lock
// conflict. Validation and not-found failures never classify as
// transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		// 1205 lock wait timeout, 1213 deadlock: MySQL rolled the
		// statement back, rerunning it is safe.
		return me.Number == 1205 || me.Number == 1213
	}
	return false
}

// Retry runs fn up to attempts times, doubling the delay between
// tries, as long as the failure classifies as transient. Non-transient
// errors are returned immediately. The context cancels the wait.
//
// Callers must only pass idempotent operations; the read paths
// (listings, change computation) qualify, mutations do not.
func Retry(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	backoff := 100 * time.Millisecond
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !IsTransient(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
