// Package postgres implements store.Client on a PostgreSQL connection pool.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonathan/job-tracker/internal/store"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

var _ store.Client = (*DB)(nil)

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Query implements store.Client.
func (db *DB) Query(ctx context.Context, table string, filter store.Filter, order store.Order) ([]json.RawMessage, error) {
	sql, args, err := buildSelect(table, filter, order)
	if err != nil {
		return nil, &store.Error{Op: "query", Table: table, Message: err.Error()}
	}

	rows, err := db.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapError("query", table, err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, wrapError("query", table, err)
		}
		out = append(out, json.RawMessage(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("query", table, err)
	}
	return out, nil
}

// Insert implements store.Client.
func (db *DB) Insert(ctx context.Context, table string, record any) (json.RawMessage, error) {
	doc, columns, err := encodeRecord(table, record)
	if err != nil {
		return nil, &store.Error{Op: "insert", Table: table, Message: err.Error()}
	}

	sql, err := buildInsert(table, columns)
	if err != nil {
		return nil, &store.Error{Op: "insert", Table: table, Message: err.Error()}
	}

	var raw []byte
	if err := db.pool.QueryRow(ctx, sql, doc).Scan(&raw); err != nil {
		return nil, wrapError("insert", table, err)
	}
	return json.RawMessage(raw), nil
}

// Delete implements store.Client.
func (db *DB) Delete(ctx context.Context, table string, filter store.Filter) error {
	sql, args, err := buildDelete(table, filter)
	if err != nil {
		return &store.Error{Op: "delete", Table: table, Message: err.Error()}
	}

	if _, err := db.pool.Exec(ctx, sql, args...); err != nil {
		return wrapError("delete", table, err)
	}
	return nil
}

// Update implements store.Client.
func (db *DB) Update(ctx context.Context, table string, filter store.Filter, patch any) ([]json.RawMessage, error) {
	doc, columns, err := encodeRecord(table, patch)
	if err != nil {
		return nil, &store.Error{Op: "update", Table: table, Message: err.Error()}
	}

	sql, args, err := buildUpdate(table, columns, filter)
	if err != nil {
		return nil, &store.Error{Op: "update", Table: table, Message: err.Error()}
	}

	rows, err := db.pool.Query(ctx, sql, append([]any{doc}, args...)...)
	if err != nil {
		return nil, wrapError("update", table, err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, wrapError("update", table, err)
		}
		out = append(out, json.RawMessage(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("update", table, err)
	}
	return out, nil
}

// encodeRecord marshals record into a JSON object and returns the allowed
// column names it sets, in sorted order.
func encodeRecord(table string, record any) ([]byte, []string, error) {
	doc, err := json.Marshal(record)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil || fields == nil {
		return nil, nil, fmt.Errorf("record is not a JSON object")
	}

	columns := make([]string, 0, len(fields))
	for name := range fields {
		columns = append(columns, name)
	}
	if err := checkColumns(table, columns...); err != nil {
		return nil, nil, err
	}
	sort.Strings(columns)
	return doc, columns, nil
}

// Postgres error codes mapped onto HTTP-like statuses.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
	invalidText         = "22P02"
)

func wrapError(op, table string, err error) error {
	storeErr := &store.Error{Op: op, Table: table, Cause: err}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		storeErr.Message = pgErr.Message
		switch pgErr.Code {
		case uniqueViolation, foreignKeyViolation:
			storeErr.Status = 409
		case checkViolation, invalidText:
			storeErr.Status = 400
		}
	}
	return storeErr
}
