package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/clock"
)

// Memory is an in-process Client. Rows are kept in insertion order per table.
type Memory struct {
	mu     sync.Mutex
	clock  clock.Clock
	tables map[string][]map[string]any
}

// NewMemory returns an empty in-memory store using the real clock.
func NewMemory() *Memory {
	return NewMemoryWithClock(clock.Real())
}

// NewMemoryWithClock returns an empty in-memory store stamping rows with clk.
func NewMemoryWithClock(clk clock.Clock) *Memory {
	return &Memory{clock: clk, tables: make(map[string][]map[string]any)}
}

// Query implements Client.
func (m *Memory) Query(_ context.Context, table string, filter Filter, order Order) ([]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []map[string]any
	for _, row := range m.tables[table] {
		if matches(row, filter) {
			matched = append(matched, row)
		}
	}

	if order.Column != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := columnString(matched[i], order.Column), columnString(matched[j], order.Column)
			if order.Descending {
				return a > b
			}
			return a < b
		})
	}

	out := make([]json.RawMessage, 0, len(matched))
	for _, row := range matched {
		raw, err := json.Marshal(row)
		if err != nil {
			return nil, &Error{Op: "query", Table: table, Cause: err}
		}
		out = append(out, raw)
	}
	return out, nil
}

// Insert implements Client. A missing id is filled with a random UUID and a
// missing created_at with the clock time.
func (m *Memory) Insert(_ context.Context, table string, record any) (json.RawMessage, error) {
	row, err := toRow(record)
	if err != nil {
		return nil, &Error{Op: "insert", Table: table, Message: "record is not a JSON object", Cause: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := row["id"]; !ok || id == nil || id == "" {
		row["id"] = uuid.NewString()
	}
	for _, existing := range m.tables[table] {
		if columnString(existing, "id") == columnString(row, "id") {
			return nil, &Error{Op: "insert", Table: table, Status: 409, Message: fmt.Sprintf("duplicate id %v", row["id"])}
		}
	}
	if _, ok := row["created_at"]; !ok {
		row["created_at"] = m.clock.Now().UTC().Format(time.RFC3339Nano)
	}

	m.tables[table] = append(m.tables[table], row)

	raw, err := json.Marshal(row)
	if err != nil {
		return nil, &Error{Op: "insert", Table: table, Cause: err}
	}
	return raw, nil
}

// Delete implements Client. An empty filter is rejected.
func (m *Memory) Delete(_ context.Context, table string, filter Filter) error {
	if len(filter) == 0 {
		return &Error{Op: "delete", Table: table, Message: "filter required"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.tables[table]
	kept := rows[:0]
	for _, row := range rows {
		if !matches(row, filter) {
			kept = append(kept, row)
		}
	}
	m.tables[table] = kept
	return nil
}

// Update implements Client. An empty filter is rejected.
func (m *Memory) Update(_ context.Context, table string, filter Filter, patch any) ([]json.RawMessage, error) {
	if len(filter) == 0 {
		return nil, &Error{Op: "update", Table: table, Message: "filter required"}
	}
	fields, err := toRow(patch)
	if err != nil {
		return nil, &Error{Op: "update", Table: table, Message: "patch is not a JSON object", Cause: err}
	}
	delete(fields, "id")

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []json.RawMessage
	for _, row := range m.tables[table] {
		if !matches(row, filter) {
			continue
		}
		for k, v := range fields {
			row[k] = v
		}
		raw, err := json.Marshal(row)
		if err != nil {
			return nil, &Error{Op: "update", Table: table, Cause: err}
		}
		out = append(out, raw)
	}
	return out, nil
}

// Len returns the number of rows in table.
func (m *Memory) Len(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tables[table])
}

func toRow(record any) (map[string]any, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	var row map[string]any
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("null record")
	}
	return row, nil
}

func matches(row map[string]any, filter Filter) bool {
	for _, c := range filter {
		v, ok := row[c.Column]
		if !ok || v == nil || columnString(row, c.Column) != c.Value {
			return false
		}
	}
	return true
}

func columnString(row map[string]any, column string) string {
	v, ok := row[column]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
