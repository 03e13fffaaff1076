package tracker

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/jonathan/job-tracker/internal/schemas"
	"github.com/jonathan/job-tracker/internal/types"
	embedded "github.com/jonathan/job-tracker/schemas"
	"github.com/tidwall/gjson"
)

// DateLayout is the wire format of date_applied.
const DateLayout = "2006-01-02"

// WireRecord is a row of the applications table. Nil Location and Notes
// are stored as null.
type WireRecord struct {
	ID          string  `json:"id,omitempty"`
	UserID      string  `json:"user_id"`
	Company     string  `json:"company"`
	Position    string  `json:"position"`
	Status      string  `json:"status"`
	DateApplied string  `json:"date_applied"`
	Location    *string `json:"location"`
	Notes       *string `json:"notes"`
}

// DecodeWire validates raw against the application record schema and decodes it.
func DecodeWire(raw json.RawMessage) (WireRecord, error) {
	id := gjson.GetBytes(raw, "id").String()

	if err := schemas.Validate(embedded.ApplicationRecord, raw); err != nil {
		return WireRecord{}, &MalformedRecordError{ID: id, Message: "record does not match schema", Cause: err}
	}

	var rec WireRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return WireRecord{}, &MalformedRecordError{ID: id, Message: "record is not decodable", Cause: err}
	}
	return rec, nil
}

// FromWire maps a stored row to an Application.
func FromWire(rec WireRecord) (types.Application, error) {
	if rec.ID == "" {
		return types.Application{}, &MalformedRecordError{Message: "missing id"}
	}
	if rec.UserID == "" {
		return types.Application{}, &MalformedRecordError{ID: rec.ID, Message: "missing user_id"}
	}

	status, err := types.ParseStatus(rec.Status)
	if err != nil {
		return types.Application{}, &MalformedRecordError{ID: rec.ID, Message: "invalid status", Cause: err}
	}

	applied, err := parseDate(rec.DateApplied)
	if err != nil {
		return types.Application{}, &MalformedRecordError{ID: rec.ID, Message: "invalid date_applied", Cause: err}
	}

	return types.Application{
		ID:          rec.ID,
		OwnerID:     rec.UserID,
		Company:     rec.Company,
		Position:    rec.Position,
		Status:      status,
		DateApplied: applied,
		Location:    deref(rec.Location),
		Notes:       deref(rec.Notes),
	}, nil
}

// ToWire maps an Application to a row. An empty ID is omitted so the store assigns one.
func ToWire(app types.Application) WireRecord {
	return WireRecord{
		ID:          app.ID,
		UserID:      app.OwnerID,
		Company:     app.Company,
		Position:    app.Position,
		Status:      string(app.Status),
		DateApplied: app.DateApplied.Format(DateLayout),
		Location:    nullable(app.Location),
		Notes:       nullable(app.Notes),
	}
}

// parseDate accepts a plain date or an RFC 3339 timestamp. Plain dates are UTC midnight.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
