package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Store is the durable SenderProfile persistence contract.
type Store interface {
	Get(ctx context.Context, sender string) (*SenderProfile, bool)
	Upsert(ctx context.Context, p *SenderProfile) error
	List(ctx context.Context) ([]*SenderProfile, error)
}

// SQLStore backs Store with a single-table schema across whichever driver
// the DSN's scheme names, mirroring the teacher's type-keyed repository
// factory without the generic Repository abstraction profiles don't need.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// Open selects a driver from the DSN's scheme (sqlite3://, postgres://,
// mysql://) and opens the connection, creating the profiles table if
// absent.
func Open(dsn string) (*SQLStore, error) {
	driver, connStr, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("profile: open %s: %w", driver, err)
	}

	s := &SQLStore{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func parseDSN(dsn string) (driver, connStr string, err error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", "", fmt.Errorf("profile: invalid dsn: %w", err)
	}

	switch u.Scheme {
	case "sqlite3":
		return "sqlite3", strings.TrimPrefix(dsn, "sqlite3://"), nil
	case "postgres", "postgresql":
		return "postgres", dsn, nil
	case "mysql":
		return "mysql", strings.TrimPrefix(dsn, "mysql://"), nil
	default:
		return "", "", fmt.Errorf("profile: unsupported database scheme %q", u.Scheme)
	}
}

func (s *SQLStore) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS sender_profiles (
	sender TEXT PRIMARY KEY,
	document TEXT NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("profile: migrate: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, sender string) (*SenderProfile, bool) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM sender_profiles WHERE sender = `+s.placeholder(1), sender).Scan(&raw)
	if err != nil {
		return nil, false
	}
	var p SenderProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, false
	}
	return &p, true
}

// Upsert writes p inside a transaction so a failure rolls back cleanly
// instead of partially applying. The caller's earlier Get is not part of
// that transaction.
func (s *SQLStore) Upsert(ctx context.Context, p *SenderProfile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("profile: begin tx: %w", err)
	}
	defer tx.Rollback()

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("profile: marshal: %w", err)
	}

	if _, err := tx.ExecContext(ctx, s.upsertStatement(), p.Sender, string(raw)); err != nil {
		return fmt.Errorf("profile: upsert: %w", err)
	}
	return tx.Commit()
}

// upsertStatement returns the dialect-specific upsert; the three supported
// drivers disagree on conflict-resolution syntax and placeholder style.
func (s *SQLStore) upsertStatement() string {
	switch s.driver {
	case "mysql":
		return `INSERT INTO sender_profiles (sender, document) VALUES (?, ?)
ON DUPLICATE KEY UPDATE document = VALUES(document)`
	case "postgres":
		return `INSERT INTO sender_profiles (sender, document) VALUES ($1, $2)
ON CONFLICT (sender) DO UPDATE SET document = EXCLUDED.document`
	default: // sqlite3
		return `INSERT INTO sender_profiles (sender, document) VALUES (?, ?)
ON CONFLICT (sender) DO UPDATE SET document = excluded.document`
	}
}

// placeholder returns the positional parameter marker for this driver's
// dialect; postgres uses $n, the others use a bare ?.
func (s *SQLStore) placeholder(n int) string {
	if s.driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *SQLStore) List(ctx context.Context) ([]*SenderProfile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document FROM sender_profiles`)
	if err != nil {
		return nil, fmt.Errorf("profile: list: %w", err)
	}
	defer rows.Close()

	var out []*SenderProfile
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("profile: scan: %w", err)
		}
		var p SenderProfile
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			continue
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
