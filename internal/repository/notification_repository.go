package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmwangi/casetrack/internal/model"
)

// NotificationRepo computes the per-owner change feed from record
// timestamps and maintains the watermark stored on the owner's user
// row (users.last_checked_at).
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo constructs a NotificationRepo with the given DB handle.
func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// ComputeChanges returns the owner's records created or updated since
// their watermark, newest update first. A record is NEW when its
// created_at is past the watermark, UPDATED otherwise.
//
// An owner who has never checked (null watermark) gets an empty set so
// a new user sees no notification storm on first login; the watermark
// itself is advanced afterwards by AdvanceWatermark in either case.
// Returns ErrUserNotFound when the owner id is unknown.
func (r *NotificationRepo) ComputeChanges(ctx context.Context, ownerID uint64) ([]model.RecordChange, error) {
	var watermark sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT last_checked_at FROM users WHERE id = ?`, ownerID).Scan(&watermark)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !watermark.Valid {
		return []model.RecordChange{}, nil
	}

	const q = `SELECT id, record_number, category, created_at, updated_at
	           FROM records
	           WHERE user_id = ? AND (created_at > ? OR updated_at > ?)
	           ORDER BY updated_at DESC`
	since := watermark.Time
	rows, err := r.db.QueryContext(ctx, q, ownerID, since, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	changes := make([]model.RecordChange, 0)
	for rows.Next() {
		var (
			ch        model.RecordChange
			createdAt time.Time
		)
		if err := rows.Scan(&ch.RecordID, &ch.RecordNumber, &ch.Category, &createdAt, &ch.UpdatedAt); err != nil {
			return nil, err
		}
		ch.Kind = model.ChangeUpdated
		if createdAt.After(since) {
			ch.Kind = model.ChangeNew
		}
		changes = append(changes, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return changes, nil
}

// AdvanceWatermark moves the owner's watermark to now. The guard
// against moving it backwards keeps the watermark monotonic even if
// two checks race. Called only after a change set has been computed
// and handed to the caller, so a concurrent write landing between the
// read and this advance is re-reported next time instead of lost.
func (r *NotificationRepo) AdvanceWatermark(ctx context.Context, ownerID uint64) error {
	const q = `UPDATE users
	           SET last_checked_at = UTC_TIMESTAMP()
	           WHERE id = ? AND (last_checked_at IS NULL OR last_checked_at < UTC_TIMESTAMP())`
	_, err := r.db.ExecContext(ctx, q, ownerID)
	return err
}
