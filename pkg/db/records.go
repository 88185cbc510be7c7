package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dtnitsch/readtime/pkg/storage"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Load returns every payload stored under namespace.
func (db *DB) Load(ctx context.Context, namespace string) (map[string][]byte, error) {
	records, err := loadRecords(ctx, db.DB, namespace)
	if err != nil {
		return nil, wrapErr(ctx, err)
	}
	return records, nil
}

// Update applies fn to the namespace inside one transaction and writes only
// the rows fn added, changed or removed.
func (db *DB) Update(ctx context.Context, namespace string, fn func(map[string][]byte) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr(ctx, fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	before, err := loadRecords(ctx, tx, namespace)
	if err != nil {
		return wrapErr(ctx, err)
	}
	after := make(map[string][]byte, len(before))
	for k, v := range before {
		after[k] = v
	}
	if err := fn(after); err != nil {
		return err
	}

	removed, changed := storage.Diff(before, after)
	for _, url := range removed {
		if _, err := tx.ExecContext(ctx, "DELETE FROM reading_records WHERE namespace = ? AND url = ?", namespace, url); err != nil {
			return wrapErr(ctx, fmt.Errorf("failed to delete record: %w", err))
		}
	}
	for url, payload := range changed {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reading_records (namespace, url, payload, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(namespace, url) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
		`, namespace, url, string(payload))
		if err != nil {
			return wrapErr(ctx, fmt.Errorf("failed to upsert record: %w", err))
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapErr(ctx, fmt.Errorf("failed to commit: %w", err))
	}
	return nil
}

// CountRecords returns the number of rows stored under namespace.
func (db *DB) CountRecords(ctx context.Context, namespace string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reading_records WHERE namespace = ?", namespace).Scan(&n)
	if err != nil {
		return 0, wrapErr(ctx, fmt.Errorf("failed to count records: %w", err))
	}
	return n, nil
}

func loadRecords(ctx context.Context, q queryer, namespace string) (map[string][]byte, error) {
	rows, err := q.QueryContext(ctx, "SELECT url, payload FROM reading_records WHERE namespace = ?", namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := make(map[string][]byte)
	for rows.Next() {
		var url, payload string
		if err := rows.Scan(&url, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records[url] = []byte(payload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return records, nil
}

// wrapErr marks errors from a closed database or an abandoned context as
// storage.ErrContextTornDown.
func wrapErr(ctx context.Context, err error) error {
	if ctx.Err() != nil ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, sql.ErrTxDone) ||
		strings.Contains(err.Error(), "database is closed") {
		return storage.TornDown(err)
	}
	return err
}
