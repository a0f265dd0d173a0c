package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmwangi/casetrack/internal/database"
	"github.com/jmwangi/casetrack/internal/model"
	"github.com/jmwangi/casetrack/internal/utils"
)

// UserRepo mirrors the 'users' table. Besides identity it carries the
// notification watermark column consumed by NotificationRepo.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, email, username, password_hash, role, is_active, last_checked_at, created_at, updated_at`

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var lastChecked sql.NullTime
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role,
		&u.IsActive, &lastChecked, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return u, err
	}
	if lastChecked.Valid {
		t := lastChecked.Time
		u.LastCheckedAt = &t
	}
	return u, nil
}

// Create inserts a user and returns its ID. The email is normalized to
// lower case; a duplicate maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, email, username, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, username, password_hash, role) VALUES (?,?,?,?)",
		email, username, hash, role)
	if err != nil {
		if database.DuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// UpdateRole sets a user's role. Existence is checked by the caller:
// MySQL reports zero affected rows for a no-change UPDATE, so the
// count cannot distinguish "missing" from "already that role".
func (r *UserRepo) UpdateRole(ctx context.Context, id uint64, role string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role=? WHERE id=?", role, id)
	return err
}

// ListByRole returns active users with the given role ordered by
// username. The admin record form uses it to populate the assignee
// dropdown.
func (r *UserRepo) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	const q = `SELECT id, email, username, password_hash, role, is_active, last_checked_at, created_at, updated_at
	           FROM users WHERE role = ? AND is_active = 1 ORDER BY username`
	rows, err := r.DB.QueryContext(ctx, q, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		var lastChecked sql.NullTime
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role,
			&u.IsActive, &lastChecked, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if lastChecked.Valid {
			t := lastChecked.Time
			u.LastCheckedAt = &t
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
