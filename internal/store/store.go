// Package store defines the remote table store contract used by the tracker
// and the account repositories, plus an in-memory implementation.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Table names.
const (
	TableApplications = "applications"
	TableUsers        = "users"
	TableProfiles     = "profiles"
)

// Condition is a single column equality predicate.
type Condition struct {
	Column string
	Value  string
}

// Eq builds an equality condition.
func Eq(column, value string) Condition {
	return Condition{Column: column, Value: value}
}

// Filter is a conjunction of conditions.
type Filter []Condition

// Where builds a filter from conditions.
func Where(conds ...Condition) Filter {
	return Filter(conds)
}

func (f Filter) String() string {
	parts := make([]string, 0, len(f))
	for _, c := range f {
		parts = append(parts, fmt.Sprintf("%s=%s", c.Column, c.Value))
	}
	return strings.Join(parts, " AND ")
}

// Order sorts query results by one column. The zero value means unordered.
type Order struct {
	Column     string
	Descending bool
}

// Desc orders by column descending.
func Desc(column string) Order {
	return Order{Column: column, Descending: true}
}

// Asc orders by column ascending.
func Asc(column string) Order {
	return Order{Column: column}
}

// Client is the remote table store. Rows travel as raw JSON objects so that
// callers own the decoding and validation of what the store returns.
type Client interface {
	// Query returns the rows of table matching filter, sorted by order.
	Query(ctx context.Context, table string, filter Filter, order Order) ([]json.RawMessage, error)
	// Insert creates one row and returns it as stored, including generated columns.
	Insert(ctx context.Context, table string, record any) (json.RawMessage, error)
	// Delete removes every row matching filter. Matching nothing is not an error.
	Delete(ctx context.Context, table string, filter Filter) error
	// Update applies patch to every row matching filter and returns the updated rows.
	Update(ctx context.Context, table string, filter Filter, patch any) ([]json.RawMessage, error)
}

// Error is the generic failure of a store operation.
type Error struct {
	Op      string
	Table   string
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("store %s %s failed", e.Op, e.Table)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}
