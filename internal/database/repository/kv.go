package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jask/jaskcalc/internal/storage"
)

// KVRepo handles the kv table and implements storage.Store.
type KVRepo struct {
	db *sql.DB
}

var _ storage.Store = (*KVRepo)(nil)

func NewKVRepo(db *sql.DB) *KVRepo { return &KVRepo{db: db} }

func (r *KVRepo) Get(ctx context.Context, key string) (string, bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key)
	var v string
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (r *KVRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO kv(key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=CURRENT_TIMESTAMP;
	`, key, value)
	return err
}

// Insert stores value only when key is absent.
func (r *KVRepo) Insert(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO kv(key, value) VALUES (?, ?)`, key, value)
	return err
}

// MultiGet returns the stored entries in the order of keys.
func (r *KVRepo) MultiGet(ctx context.Context, keys []string) ([]storage.Entry, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	q := `SELECT key, value FROM kv WHERE key IN (?` + strings.Repeat(", ?", len(keys)-1) + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	found := make(map[string]string, len(keys))
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		found[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]storage.Entry, 0, len(found))
	for _, k := range keys {
		if v, ok := found[k]; ok {
			out = append(out, storage.Entry{Key: k, Value: v})
		}
	}
	return out, nil
}

// MultiSet upserts all entries in a single transaction.
func (r *KVRepo) MultiSet(ctx context.Context, entries []storage.Entry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO kv(key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=CURRENT_TIMESTAMP;
	`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Key, e.Value); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
