package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmwangi/casetrack/internal/model"
)

// RecordPatch carries the mutable core columns of a record. Nil fields
// are left unchanged.
type RecordPatch struct {
	OwnerID  *uint64
	Category *string
}

// RecordRepo owns core record rows and the per-owner sequence
// numbering invariant. It composes with AttributeRepo so that one
// logical save (core row plus custom values) runs in a single
// transaction with the core mutation applied first.
type RecordRepo struct {
	db    *sql.DB
	attrs *AttributeRepo
}

// NewRecordRepo constructs a RecordRepo bound to the given database
// and attribute store.
func NewRecordRepo(db *sql.DB, attrs *AttributeRepo) *RecordRepo {
	return &RecordRepo{db: db, attrs: attrs}
}

// nextNumberTx computes the next record_number for an owner inside tx.
// The owner's existing rows are locked so two concurrent creates
// cannot both read the same maximum. Numbers are never reused: deletes
// leave gaps, which is intentional.
func nextNumberTx(ctx context.Context, tx *sql.Tx, ownerID uint64) (uint32, error) {
	const q = `SELECT COALESCE(MAX(record_number), 0) FROM records WHERE user_id = ? FOR UPDATE`
	var max uint32
	if err := tx.QueryRowContext(ctx, q, ownerID).Scan(&max); err != nil {
		return 0, err
	}
	return max + 1, nil
}

// Create inserts a record for ownerID with the owner's next sequence
// number and stores any non-empty custom values. The whole operation
// is one transaction: a failed create never consumes a number
// observably, and attribute rows never target a record id that does
// not exist yet. Unknown categories fail with ErrValidation.
func (r *RecordRepo) Create(ctx context.Context, ownerID uint64, category string, values map[uint64]string) (*model.Record, error) {
	if !model.ValidCategory(category) {
		return nil, ErrValidation
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	num, err := nextNumberTx(ctx, tx, ownerID)
	if err != nil {
		return nil, err
	}
	const insQ = `INSERT INTO records (user_id, record_number, category) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, insQ, ownerID, num, category)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	rec := &model.Record{ID: uint64(id)}
	// Query back the full row to populate timestamps and defaults
	const sel = `SELECT id, user_id, record_number, category, created_at, updated_at
	             FROM records WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, rec.ID).Scan(
		&rec.ID, &rec.OwnerID, &rec.RecordNumber, &rec.Category, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(values) > 0 {
		if err := r.attrs.SetValuesTx(ctx, tx, rec.ID, values); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update applies a patch and/or custom values to an existing record.
// Reassigning the record to a new owner recomputes record_number as
// the new owner's next integer; the old number is never carried over.
// updated_at is bumped on every successful call, attribute-value-only
// edits included, so the change watermark sees the edit.
func (r *RecordRepo) Update(ctx context.Context, id uint64, patch RecordPatch, values map[uint64]string) (*model.Record, error) {
	if patch.Category != nil && !model.ValidCategory(*patch.Category) {
		return nil, ErrValidation
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var cur model.Record
	const sel = `SELECT id, user_id, record_number, category, created_at, updated_at
	             FROM records WHERE id = ? FOR UPDATE`
	err = tx.QueryRowContext(ctx, sel, id).Scan(
		&cur.ID, &cur.OwnerID, &cur.RecordNumber, &cur.Category, &cur.CreatedAt, &cur.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	owner := cur.OwnerID
	number := cur.RecordNumber
	if patch.OwnerID != nil && *patch.OwnerID != cur.OwnerID {
		owner = *patch.OwnerID
		number, err = nextNumberTx(ctx, tx, owner)
		if err != nil {
			return nil, err
		}
	}
	category := cur.Category
	if patch.Category != nil {
		category = *patch.Category
	}

	const upd = `UPDATE records
	             SET user_id = ?, record_number = ?, category = ?, updated_at = UTC_TIMESTAMP()
	             WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, owner, number, category, id); err != nil {
		return nil, err
	}
	if len(values) > 0 {
		if err := r.attrs.SetValuesTx(ctx, tx, id, values); err != nil {
			return nil, err
		}
	}

	var out model.Record
	const reread = `SELECT id, user_id, record_number, category, created_at, updated_at
	                FROM records WHERE id = ?`
	if err := tx.QueryRowContext(ctx, reread, id).Scan(
		&out.ID, &out.OwnerID, &out.RecordNumber, &out.Category, &out.CreatedAt, &out.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByID retrieves a record by its id (no ownership check; handlers
// compare OwnerID against the caller).
func (r *RecordRepo) GetByID(ctx context.Context, id uint64) (*model.Record, error) {
	const q = `SELECT id, user_id, record_number, category, created_at, updated_at
	           FROM records WHERE id = ?`
	var rec model.Record
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&rec.ID, &rec.OwnerID, &rec.RecordNumber, &rec.Category, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// GetDetail returns a record together with its sparse custom values.
func (r *RecordRepo) GetDetail(ctx context.Context, id uint64) (*model.RecordDetail, error) {
	rec, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	values, err := r.attrs.Values(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.RecordDetail{Record: *rec, Values: values}, nil
}

// Delete removes the record and cascades its attribute values inside
// one transaction. Returns ErrRecordNotFound when the id is unknown.
func (r *RecordRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRecordNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM custom_field_values WHERE record_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// ListByOwner returns an owner's records ordered by record_number
// descending (most recent first).
func (r *RecordRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Record, error) {
	const q = `SELECT id, user_id, record_number, category, created_at, updated_at
	           FROM records
	           WHERE user_id = ?
	           ORDER BY record_number DESC`
	return r.scanRecords(ctx, q, ownerID)
}

// ListAll returns every record ordered by owner then record_number
// descending. Used by the admin surface.
func (r *RecordRepo) ListAll(ctx context.Context) ([]model.Record, error) {
	const q = `SELECT id, user_id, record_number, category, created_at, updated_at
	           FROM records
	           ORDER BY user_id, record_number DESC`
	return r.scanRecords(ctx, q)
}

func (r *RecordRepo) scanRecords(ctx context.Context, q string, args ...interface{}) ([]model.Record, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]model.Record, 0)
	for rows.Next() {
		var rec model.Record
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.RecordNumber, &rec.Category, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// ListDetailsByOwner returns an owner's records with their custom
// values populated in one extra batched query. Used by export.
func (r *RecordRepo) ListDetailsByOwner(ctx context.Context, ownerID uint64) ([]model.RecordDetail, error) {
	records, err := r.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	values, err := r.attrs.ValuesForRecords(ctx, ids)
	if err != nil {
		return nil, err
	}
	details := make([]model.RecordDetail, 0, len(records))
	for _, rec := range records {
		v := values[rec.ID]
		if v == nil {
			v = map[uint64]string{}
		}
		details = append(details, model.RecordDetail{Record: rec, Values: v})
	}
	return details, nil
}

// CountByOwnerAndCategory aggregates record counts per owner per
// category for the admin report. A pure read-side aggregation.
func (r *RecordRepo) CountByOwnerAndCategory(ctx context.Context) ([]model.CategoryCount, error) {
	const q = `SELECT r.user_id, u.username, r.category, COUNT(*)
	           FROM records r
	           JOIN users u ON u.id = r.user_id
	           GROUP BY r.user_id, u.username, r.category
	           ORDER BY u.username, r.category`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]model.CategoryCount, 0)
	for rows.Next() {
		var c model.CategoryCount
		if err := rows.Scan(&c.OwnerID, &c.Username, &c.Category, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}
