//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
	"time"
)

// ApplicationStatus is the stage a job application has reached.
type ApplicationStatus string

const (
	StatusApplied   ApplicationStatus = "applied"
	StatusInterview ApplicationStatus = "interview"
	StatusOffer     ApplicationStatus = "offer"
	StatusRejected  ApplicationStatus = "rejected"
)

// AllStatuses lists every status in display order.
var AllStatuses = []ApplicationStatus{StatusApplied, StatusInterview, StatusOffer, StatusRejected}

// ParseStatus converts a wire or user supplied string into an ApplicationStatus.
// Matching is case-insensitive; an empty string is rejected.
func ParseStatus(s string) (ApplicationStatus, error) {
	status := ApplicationStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown application status %q", s)
	}
	return status, nil
}

// Valid reports whether s is one of the known statuses.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusApplied, StatusInterview, StatusOffer, StatusRejected:
		return true
	}
	return false
}

// Label returns the human readable badge text for the status.
func (s ApplicationStatus) Label() string {
	switch s {
	case StatusApplied:
		return "Applied"
	case StatusInterview:
		return "Interview"
	case StatusOffer:
		return "Offer"
	case StatusRejected:
		return "Rejected"
	default:
		return string(s)
	}
}

// Application is a single tracked job application owned by one identity.
// Location and Notes are empty when not provided.
type Application struct {
	ID          string            `json:"id"`
	OwnerID     string            `json:"owner_id"`
	Company     string            `json:"company"`
	Position    string            `json:"position"`
	Status      ApplicationStatus `json:"status"`
	DateApplied time.Time         `json:"date_applied"`
	Location    string            `json:"location,omitempty"`
	Notes       string            `json:"notes,omitempty"`
}

// Draft is the caller input for recording a new application.
// Zero Status means applied; nil DateApplied means now.
type Draft struct {
	Company     string            `json:"company" validate:"required"`
	Position    string            `json:"position" validate:"required"`
	Status      ApplicationStatus `json:"status,omitempty" validate:"omitempty,oneof=applied interview offer rejected"`
	DateApplied *time.Time        `json:"date_applied,omitempty"`
	Location    string            `json:"location,omitempty"`
	Notes       string            `json:"notes,omitempty"`
}

// Normalize trims surrounding whitespace from every text field so that
// whitespace-only input counts as missing.
func (d *Draft) Normalize() {
	d.Company = strings.TrimSpace(d.Company)
	d.Position = strings.TrimSpace(d.Position)
	d.Location = strings.TrimSpace(d.Location)
	d.Notes = strings.TrimSpace(d.Notes)
	d.Status = ApplicationStatus(strings.ToLower(strings.TrimSpace(string(d.Status))))
}

// Validate validates the Draft using the validator.
func (d *Draft) Validate() error {
	return validate.Struct(d)
}

// Statistics are the per-status counts over a list of applications.
type Statistics struct {
	Total     int `json:"total"`
	Applied   int `json:"applied"`
	Interview int `json:"interview"`
	Offer     int `json:"offer"`
	Rejected  int `json:"rejected"`
}
