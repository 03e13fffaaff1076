package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/clock"
	"github.com/jonathan/job-tracker/internal/schemas"
	"github.com/jonathan/job-tracker/internal/store"
	"github.com/jonathan/job-tracker/internal/types"
	embedded "github.com/jonathan/job-tracker/schemas"
)

// ValidationError is returned when profile input is rejected before any store call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// profileRecord is a row of the profiles table. Nil optionals are stored as null.
type profileRecord struct {
	ID             string  `json:"id,omitempty"`
	Email          string  `json:"email,omitempty"`
	FullName       string  `json:"full_name"`
	University     *string `json:"university"`
	GraduationYear *int    `json:"graduation_year"`
	Major          *string `json:"major"`
	Phone          *string `json:"phone"`
	UpdatedAt      string  `json:"updated_at,omitempty"`
}

// Profiles is the profiles table repository. A profile's id is its user's id.
type Profiles struct {
	store store.Client
	clock clock.Clock
}

// NewProfiles creates a Profiles repository.
func NewProfiles(client store.Client, clk clock.Clock) *Profiles {
	return &Profiles{store: client, clock: clk}
}

// Create inserts the initial profile for a newly registered user.
func (p *Profiles) Create(ctx context.Context, userID uuid.UUID, email, fullName string) (*types.Profile, error) {
	raw, err := p.store.Insert(ctx, store.TableProfiles, profileRecord{
		ID:       userID.String(),
		Email:    NormalizeEmail(email),
		FullName: strings.TrimSpace(fullName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return decodeProfile(raw)
}

// Get returns userID's profile, or nil if none exists.
func (p *Profiles) Get(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	rows, err := p.store.Query(ctx, store.TableProfiles, store.Where(store.Eq("id", userID.String())), store.Order{})
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return decodeProfile(rows[0])
}

// Update replaces the editable fields of userID's profile. Empty optional
// fields are stored as null. It returns nil if the user has no profile.
func (p *Profiles) Update(ctx context.Context, userID uuid.UUID, req types.UpdateProfileRequest) (*types.Profile, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, profileValidationError(err)
	}

	rows, err := p.store.Update(ctx, store.TableProfiles, store.Where(store.Eq("id", userID.String())), profileRecord{
		FullName:       req.FullName,
		University:     nullable(req.University),
		GraduationYear: req.GraduationYear,
		Major:          nullable(req.Major),
		Phone:          nullable(req.Phone),
		UpdatedAt:      p.clock.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return decodeProfile(rows[0])
}

func decodeProfile(raw json.RawMessage) (*types.Profile, error) {
	if err := schemas.Validate(embedded.ProfileRecord, raw); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	var rec profileRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	return &types.Profile{
		ID:             rec.ID,
		Email:          rec.Email,
		FullName:       rec.FullName,
		University:     deref(rec.University),
		GraduationYear: rec.GraduationYear,
		Major:          deref(rec.Major),
		Phone:          deref(rec.Phone),
	}, nil
}

func profileValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Field() {
		case "FullName":
			return &ValidationError{Field: "full_name", Message: "required"}
		case "GraduationYear":
			return &ValidationError{Field: "graduation_year", Message: "must be between 2000 and 2050"}
		}
		return &ValidationError{Field: strings.ToLower(fe.Field()), Message: fe.Error()}
	}
	return &ValidationError{Field: "profile", Message: err.Error()}
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
