package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteBackend stores key-value pairs in a single SQLite table. Useful
// when the deployment wants one durable file instead of a directory tree.
type SQLiteBackend struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);`

// NewSQLiteBackend opens (creating if needed) the database at path.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing sqlite store: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// Read returns the value stored for key.
func (b *SQLiteBackend) Read(key string) (string, bool, error) {
	var value string
	err := b.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, true, nil
}

// Write stores or replaces a value.
func (b *SQLiteBackend) Write(key, value string) error {
	_, err := b.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete removes a key; missing keys are not an error.
func (b *SQLiteBackend) Delete(key string) error {
	if _, err := b.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// List returns stats for every stored item.
func (b *SQLiteBackend) List() ([]ItemStat, error) {
	rows, err := b.db.Query(`SELECT key, LENGTH(value), updated_at FROM kv`)
	if err != nil {
		return nil, fmt.Errorf("listing sqlite store: %w", err)
	}
	defer rows.Close()

	var items []ItemStat
	for rows.Next() {
		var item ItemStat
		if err := rows.Scan(&item.Key, &item.Size, &item.Modified); err != nil {
			return nil, fmt.Errorf("scanning sqlite row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Close closes the database.
func (b *SQLiteBackend) Close() error { return b.db.Close() }
