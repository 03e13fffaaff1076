package types

import "strings"

// Profile holds the personal details a user keeps alongside their applications.
// Optional text fields are empty when not provided.
type Profile struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FullName       string `json:"full_name"`
	University     string `json:"university,omitempty"`
	GraduationYear *int   `json:"graduation_year,omitempty"`
	Major          string `json:"major,omitempty"`
	Phone          string `json:"phone,omitempty"`
}

// UpdateProfileRequest replaces the editable profile fields. The email is
// owned by the account and cannot be changed here.
type UpdateProfileRequest struct {
	FullName       string `json:"full_name" validate:"required"`
	University     string `json:"university,omitempty"`
	GraduationYear *int   `json:"graduation_year,omitempty" validate:"omitempty,min=2000,max=2050"`
	Major          string `json:"major,omitempty"`
	Phone          string `json:"phone,omitempty"`
}

// Normalize trims surrounding whitespace from every text field.
func (r *UpdateProfileRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.University = strings.TrimSpace(r.University)
	r.Major = strings.TrimSpace(r.Major)
	r.Phone = strings.TrimSpace(r.Phone)
}

// Validate validates the UpdateProfileRequest using the validator.
func (r *UpdateProfileRequest) Validate() error {
	return validate.Struct(r)
}
