// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"context"
	"database/sql"
	stderrors "errors"

	_ "modernc.org/sqlite"

	"github.com/jllopis/contracts/pkg/contract"
	"github.com/jllopis/contracts/pkg/errors"
)

// SQLiteStore persists events in SQLite.
type SQLiteStore struct {
	db    *sql.DB
	owned bool
}

// NewSQLiteStore creates a SQLite-backed store on db and ensures the schema.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, stderrors.New("db is nil")
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// OpenSQLite opens dsn with the sqlite driver. Close releases the database.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	store, err := NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	store.owned = true
	return store, nil
}

// Close closes the database when the store opened it.
func (s *SQLiteStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// Record stores a single event.
func (s *SQLiteStore) Record(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contract_violations (
			invocation_id, function, kind, condition_index, param, code, message, args, error_json, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.InvocationID,
		event.Function,
		string(event.Kind),
		event.Index,
		event.Param,
		string(event.Code),
		event.Message,
		event.Args,
		event.ErrorJSON,
		normalizeTime(event.RecordedAt),
	)
	return err
}

// List returns events matching the filter in recording order.
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]Event, error) {
	query := `
		SELECT invocation_id, function, kind, condition_index, param, code, message, args, error_json, recorded_at
		FROM contract_violations
	`
	var args []any
	where := ""
	addFilter := func(clause string, value any) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, value)
	}
	if filter.Function != "" {
		addFilter("function = ?", filter.Function)
	}
	if filter.Kind != "" {
		addFilter("kind = ?", string(filter.Kind))
	}
	if filter.InvocationID != "" {
		addFilter("invocation_id = ?", filter.InvocationID)
	}
	query += where + " ORDER BY rowid ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event    Event
			kind     string
			code     string
			recorded sql.NullTime
		)
		if err := rows.Scan(
			&event.InvocationID,
			&event.Function,
			&kind,
			&event.Index,
			&event.Param,
			&code,
			&event.Message,
			&event.Args,
			&event.ErrorJSON,
			&recorded,
		); err != nil {
			return nil, err
		}
		event.Kind = contract.Kind(kind)
		event.Code = errors.ErrorCode(code)
		if recorded.Valid {
			event.RecordedAt = recorded.Time
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS contract_violations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			invocation_id TEXT NOT NULL,
			function TEXT NOT NULL,
			kind TEXT NOT NULL,
			condition_index INTEGER NOT NULL,
			param TEXT NOT NULL DEFAULT '',
			code TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL,
			args TEXT NOT NULL DEFAULT '',
			error_json TEXT NOT NULL DEFAULT '',
			recorded_at TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_contract_violations_function ON contract_violations(function);
		CREATE INDEX IF NOT EXISTS idx_contract_violations_invocation ON contract_violations(invocation_id);
	`)
	return err
}
