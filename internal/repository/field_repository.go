package repository // repository defines data access for custom field definitions

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"errors"
	"strings"

	"github.com/jmwangi/casetrack/internal/model"
)

// Move directions accepted by FieldRepo.Move.
const (
	MoveUp   = "up"
	MoveDown = "down"
)

// FieldRepo owns the ordered set of custom field definitions. List
// order (position ascending) is the canonical display and
// serialization order everywhere else in the system.
type FieldRepo struct {
	db *sql.DB
}

// NewFieldRepo constructs a FieldRepo with the given DB handle.
func NewFieldRepo(db *sql.DB) *FieldRepo {
	return &FieldRepo{db: db}
}

// Create inserts a field definition at the end of the list: its
// position is max(existing)+1, or 0 when the registry is empty. An
// empty name or unknown type fails with ErrValidation.
func (r *FieldRepo) Create(ctx context.Context, name, fieldType string, createdBy uint64) (*model.FieldDefinition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrValidation
	}
	if !model.ValidFieldType(fieldType) {
		return nil, ErrValidation
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	// Next position is computed inside the transaction so concurrent
	// creates cannot both land on the same slot.
	var next int
	const posQ = `SELECT COALESCE(MAX(position) + 1, 0) FROM custom_fields FOR UPDATE`
	if err := tx.QueryRowContext(ctx, posQ).Scan(&next); err != nil {
		return nil, err
	}
	const insQ = `INSERT INTO custom_fields (field_name, field_type, position, created_by)
	              VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, insQ, name, fieldType, next, createdBy)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	f := &model.FieldDefinition{
		ID:       uint64(id),
		Name:     name,
		Type:     fieldType,
		Position: next,
	}
	cb := createdBy
	f.CreatedBy = &cb
	return f, nil
}

// List returns every field definition ordered by position ascending.
func (r *FieldRepo) List(ctx context.Context) ([]model.FieldDefinition, error) {
	const q = `SELECT id, field_name, field_type, position, created_by, created_at
	           FROM custom_fields
	           ORDER BY position, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := make([]model.FieldDefinition, 0)
	for rows.Next() {
		var f model.FieldDefinition
		var createdBy sql.NullInt64
		if err := rows.Scan(&f.ID, &f.Name, &f.Type, &f.Position, &createdBy, &f.CreatedAt); err != nil {
			return nil, err
		}
		if createdBy.Valid {
			cb := uint64(createdBy.Int64)
			f.CreatedBy = &cb
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return fields, nil
}

// GetByID retrieves one field definition.
func (r *FieldRepo) GetByID(ctx context.Context, id uint64) (*model.FieldDefinition, error) {
	const q = `SELECT id, field_name, field_type, position, created_by, created_at
	           FROM custom_fields WHERE id = ?`
	var f model.FieldDefinition
	var createdBy sql.NullInt64
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&f.ID, &f.Name, &f.Type, &f.Position, &createdBy, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFieldNotFound
		}
		return nil, err
	}
	if createdBy.Valid {
		cb := uint64(createdBy.Int64)
		f.CreatedBy = &cb
	}
	return &f, nil
}

// Move swaps the field's position with its neighbour in current list
// order. Moving the first field up or the last field down is a no-op,
// as is moving an unknown id: the UI issues moves from a snapshot of
// the list, so a field deleted in between is treated as already
// settled rather than an error.
//
// Both rows are locked and re-read inside one transaction, so two
// concurrent moves on the same pair serialize instead of swapping on
// stale positions, and a retry after a timeout re-reads current order.
func (r *FieldRepo) Move(ctx context.Context, id uint64, direction string) error {
	if direction != MoveUp && direction != MoveDown {
		return ErrValidation
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Lock the whole ordered list; the registry is small (tens of rows)
	// and this keeps adjacent-neighbour resolution race-free.
	const q = `SELECT id, position FROM custom_fields ORDER BY position, id FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q)
	if err != nil {
		return err
	}
	type slot struct {
		id  uint64
		pos int
	}
	var list []slot
	for rows.Next() {
		var s slot
		if err := rows.Scan(&s.id, &s.pos); err != nil {
			rows.Close()
			return err
		}
		list = append(list, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	idx := -1
	for i, s := range list {
		if s.id == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil // unknown id: already settled
	}
	other := idx - 1
	if direction == MoveDown {
		other = idx + 1
	}
	if other < 0 || other >= len(list) {
		return nil // boundary: nothing to swap with
	}

	const upd = `UPDATE custom_fields SET position = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, list[other].pos, list[idx].id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, upd, list[idx].pos, list[other].id); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes the definition and cascades deletion of every
// attribute value referencing it. Returns ErrFieldNotFound when the id
// is unknown.
func (r *FieldRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM custom_fields WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFieldNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM custom_field_values WHERE field_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}
