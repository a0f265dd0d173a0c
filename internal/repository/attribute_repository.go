package repository

import (
	"context"
	"database/sql"
	"strings"
)

// AttributeRepo owns the sparse (record, field) -> value mapping. It
// references records and field definitions by id only; cascades are
// triggered explicitly by RecordRepo.Delete and FieldRepo.Delete, so a
// dangling value may exist transiently during those deletes.
type AttributeRepo struct {
	db *sql.DB
}

// NewAttributeRepo constructs an AttributeRepo with the given DB handle.
func NewAttributeRepo(db *sql.DB) *AttributeRepo {
	return &AttributeRepo{db: db}
}

// Values returns the stored values for one record keyed by field id.
// Fields with no value are absent from the map; callers default
// missing keys to "" for display.
func (r *AttributeRepo) Values(ctx context.Context, recordID uint64) (map[uint64]string, error) {
	const q = `SELECT field_id, value FROM custom_field_values WHERE record_id = ?`
	rows, err := r.db.QueryContext(ctx, q, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make(map[uint64]string)
	for rows.Next() {
		var fieldID uint64
		var value string
		if err := rows.Scan(&fieldID, &value); err != nil {
			return nil, err
		}
		values[fieldID] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

// ValuesForRecords fetches values for many records in a single query,
// keyed record_id -> field_id -> value. Used by listings and export to
// avoid one round trip per record. Passing an empty slice returns an
// empty map.
func (r *AttributeRepo) ValuesForRecords(ctx context.Context, recordIDs []uint64) (map[uint64]map[uint64]string, error) {
	out := make(map[uint64]map[uint64]string)
	if len(recordIDs) == 0 {
		return out, nil
	}
	placeholders := make([]string, 0, len(recordIDs))
	args := make([]interface{}, 0, len(recordIDs))
	for _, id := range recordIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `SELECT record_id, field_id, value FROM custom_field_values
	      WHERE record_id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var recordID, fieldID uint64
		var value string
		if err := rows.Scan(&recordID, &fieldID, &value); err != nil {
			return nil, err
		}
		m, ok := out[recordID]
		if !ok {
			m = make(map[uint64]string)
			out[recordID] = m
		}
		m[fieldID] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SetValues applies one value per entry: an empty value deletes the
// row (unset and explicitly-empty are the same observable state), a
// non-empty value is upserted on the (record_id, field_id) natural
// key. Each field transitions atomically on its own; there is no
// cross-field transaction, so a concurrent reader never observes a
// record with zero attributes mid-update the way a delete-all-then-
// reinsert strategy would allow.
func (r *AttributeRepo) SetValues(ctx context.Context, recordID uint64, values map[uint64]string) error {
	return r.setValues(ctx, r.db, recordID, values)
}

// SetValuesTx is SetValues inside an existing transaction, used when a
// record mutation and its attribute writes belong to one logical save.
func (r *AttributeRepo) SetValuesTx(ctx context.Context, tx *sql.Tx, recordID uint64, values map[uint64]string) error {
	return r.setValues(ctx, tx, recordID, values)
}

// execer abstracts *sql.DB and *sql.Tx for the upsert path.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (r *AttributeRepo) setValues(ctx context.Context, ex execer, recordID uint64, values map[uint64]string) error {
	const upsert = `INSERT INTO custom_field_values (record_id, field_id, value)
	                VALUES (?, ?, ?)
	                ON DUPLICATE KEY UPDATE value = VALUES(value)`
	const del = `DELETE FROM custom_field_values WHERE record_id = ? AND field_id = ?`
	for fieldID, value := range values {
		if strings.TrimSpace(value) == "" {
			if _, err := ex.ExecContext(ctx, del, recordID, fieldID); err != nil {
				return err
			}
			continue
		}
		if _, err := ex.ExecContext(ctx, upsert, recordID, fieldID, value); err != nil {
			return err
		}
	}
	return nil
}

// DeleteForRecord removes every value belonging to a record. Called by
// RecordRepo.Delete as an explicit cascade.
func (r *AttributeRepo) DeleteForRecord(ctx context.Context, recordID uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM custom_field_values WHERE record_id = ?`, recordID)
	return err
}

// DeleteForField removes every value belonging to a field definition.
// Called by FieldRepo.Delete as an explicit cascade; kept for callers
// that delete values without touching the definition.
func (r *AttributeRepo) DeleteForField(ctx context.Context, fieldID uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM custom_field_values WHERE field_id = ?`, fieldID)
	return err
}
