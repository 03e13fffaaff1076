package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/jonathan/job-tracker/internal/store"
)

var errUnavailable = errors.New("store unavailable")

// fakeStore wraps an in-memory store with failure injection and call counting.
type fakeStore struct {
	*store.Memory

	mu        sync.Mutex
	queryErr  error
	insertErr error
	deleteErr error
	nextID    string
	calls     map[string]int

	// queryGate, when set, blocks Query until it is closed.
	queryGate    chan struct{}
	queryStarted chan struct{}

	// insertGate, when set, blocks Insert after the row is stored.
	insertGate      chan struct{}
	insertCommitted chan struct{}

	// returnedUserID, when set, replaces user_id in the row Insert returns.
	returnedUserID string
}

func newFakeStore() *fakeStore {
	return &fakeStore{Memory: store.NewMemory(), calls: make(map[string]int)}
}

func (f *fakeStore) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeStore) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeStore) Query(ctx context.Context, table string, filter store.Filter, order store.Order) ([]json.RawMessage, error) {
	f.record("query")
	if f.queryStarted != nil {
		f.queryStarted <- struct{}{}
	}
	if f.queryGate != nil {
		<-f.queryGate
	}
	if f.queryErr != nil {
		return nil, &store.Error{Op: "query", Table: table, Cause: f.queryErr}
	}
	return f.Memory.Query(ctx, table, filter, order)
}

func (f *fakeStore) Insert(ctx context.Context, table string, record any) (json.RawMessage, error) {
	f.record("insert")
	if f.insertErr != nil {
		return nil, &store.Error{Op: "insert", Table: table, Cause: f.insertErr}
	}
	if f.nextID != "" {
		data, err := json.Marshal(record)
		if err != nil {
			return nil, err
		}
		var row map[string]any
		if err := json.Unmarshal(data, &row); err != nil {
			return nil, err
		}
		row["id"] = f.nextID
		record = row
	}
	raw, err := f.Memory.Insert(ctx, table, record)
	if err != nil {
		return nil, err
	}
	if f.insertCommitted != nil {
		f.insertCommitted <- struct{}{}
	}
	if f.insertGate != nil {
		<-f.insertGate
	}
	if f.returnedUserID != "" {
		var row map[string]any
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, err
		}
		row["user_id"] = f.returnedUserID
		data, err := json.Marshal(row)
		if err != nil {
			return nil, err
		}
		return data, nil
	}
	return raw, nil
}

func (f *fakeStore) Delete(ctx context.Context, table string, filter store.Filter) error {
	f.record("delete")
	if f.deleteErr != nil {
		return &store.Error{Op: "delete", Table: table, Status: 503, Cause: f.deleteErr}
	}
	return f.Memory.Delete(ctx, table, filter)
}

// seed inserts raw rows directly, bypassing the manager.
func (f *fakeStore) seed(rows ...map[string]any) {
	for _, row := range rows {
		if _, err := f.Memory.Insert(context.Background(), store.TableApplications, row); err != nil {
			panic(err)
		}
	}
}

func row(id, owner, company, position, status, date string) map[string]any {
	return map[string]any{
		"id":           id,
		"user_id":      owner,
		"company":      company,
		"position":     position,
		"status":       status,
		"date_applied": date,
		"location":     nil,
		"notes":        nil,
	}
}
