//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	sqliteDriverName     = "sqlite3"
	defaultTableName     = "analysis_history"
	defaultSQLiteMaxConn = 1
)

// SQLiteStore persists records in a SQLite database.
type SQLiteStore struct {
	db    *sql.DB
	table string
	now   func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// SQLiteOpt configures the SQLite store.
type SQLiteOpt func(*SQLiteStore)

// WithTableName overrides the table name.
func WithTableName(name string) SQLiteOpt {
	return func(s *SQLiteStore) {
		if name != "" {
			s.table = name
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) SQLiteOpt {
	return func(s *SQLiteStore) {
		if now != nil {
			s.now = now
		}
	}
}

// OpenSQLite opens (creating if needed) a SQLite-backed store at path.
func OpenSQLite(path string, opts ...SQLiteOpt) (*SQLiteStore, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(defaultSQLiteMaxConn)
	db.SetMaxIdleConns(defaultSQLiteMaxConn)

	s, err := NewSQLiteStore(db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore wraps an existing database handle and ensures the schema.
func NewSQLiteStore(db *sql.DB, opts ...SQLiteOpt) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db, table: defaultTableName, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) ensureSchema() error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		coin_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		coin_name TEXT NOT NULL,
		report TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (coin_id, kind)
	)`, s.table)
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("create history table: %w", err)
	}
	return nil
}

// Save inserts or replaces the record for (CoinID, Kind).
func (s *SQLiteStore) Save(ctx context.Context, rec Record) error {
	coinID := strings.ToLower(strings.TrimSpace(rec.CoinID))
	if coinID == "" {
		return fmt.Errorf("save analysis: empty coin id")
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	query := fmt.Sprintf(`INSERT INTO %s
		(coin_id, kind, coin_name, report, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (coin_id, kind) DO UPDATE SET
			coin_name = excluded.coin_name,
			report = excluded.report,
			created_at = excluded.created_at`, s.table)
	_, err := s.db.ExecContext(ctx, query,
		coinID, string(rec.Kind), rec.CoinName, rec.Report, createdAt.Unix())
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

// Get returns the stored record for a coin and kind.
func (s *SQLiteStore) Get(
	ctx context.Context,
	coinID string,
	kind Kind,
) (Record, bool, error) {
	query := fmt.Sprintf(`SELECT coin_id, kind, coin_name, report, created_at
		FROM %s WHERE coin_id = ? AND kind = ?`, s.table)
	row := s.db.QueryRowContext(ctx, query,
		strings.ToLower(strings.TrimSpace(coinID)), string(kind))
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("load analysis: %w", err)
	}
	return rec, true, nil
}

// List returns every stored record for a coin, most recent first.
func (s *SQLiteStore) List(
	ctx context.Context,
	coinID string,
) ([]Record, error) {
	query := fmt.Sprintf(`SELECT coin_id, kind, coin_name, report, created_at
		FROM %s WHERE coin_id = ? ORDER BY created_at DESC, kind ASC`, s.table)
	rows, err := s.db.QueryContext(ctx, query,
		strings.ToLower(strings.TrimSpace(coinID)))
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list analyses: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return records, nil
}

// Clear removes every stored record.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	query := fmt.Sprintf(`DELETE FROM %s`, s.table)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("clear analyses: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec       Record
		kind      string
		createdAt int64
	)
	err := row.Scan(&rec.CoinID, &kind, &rec.CoinName, &rec.Report, &createdAt)
	if err != nil {
		return Record{}, err
	}
	rec.Kind = Kind(kind)
	rec.CreatedAt = time.Unix(createdAt, 0)
	return rec, nil
}
