// Package accounts stores user accounts and profiles through the table store.
package accounts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/clock"
	"github.com/jonathan/job-tracker/internal/store"
)

// User is a row of the users table, including the password hash.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	PasswordSet  bool      `json:"password_set"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Users is the users table repository.
type Users struct {
	store store.Client
	clock clock.Clock
}

// NewUsers creates a Users repository.
func NewUsers(client store.Client, clk clock.Clock) *Users {
	return &Users{store: client, clock: clk}
}

// NormalizeEmail lowercases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts a user without a password and returns the new ID.
func (u *Users) CreateUser(ctx context.Context, name, email string) (uuid.UUID, error) {
	now := u.clock.Now().UTC()
	raw, err := u.store.Insert(ctx, store.TableUsers, map[string]any{
		"id":           uuid.New(),
		"name":         strings.TrimSpace(name),
		"email":        NormalizeEmail(email),
		"password_set": false,
		"created_at":   now,
		"updated_at":   now,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}

	user, err := decodeUser(raw)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

// GetUser returns the user with id, or nil if there is none.
func (u *Users) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return u.getOne(ctx, store.Eq("id", id.String()))
}

// GetUserByEmail returns the user with email, or nil if there is none.
func (u *Users) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return u.getOne(ctx, store.Eq("email", NormalizeEmail(email)))
}

// CheckEmailExists reports whether email is already registered.
func (u *Users) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	user, err := u.GetUserByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// UpdatePassword stores a new password hash and marks the password as set.
func (u *Users) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	rows, err := u.store.Update(ctx, store.TableUsers, store.Where(store.Eq("id", id.String())), map[string]any{
		"password_hash": passwordHash,
		"password_set":  true,
		"updated_at":    u.clock.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("failed to update password: user %s not found", id)
	}
	return nil
}

func (u *Users) getOne(ctx context.Context, cond store.Condition) (*User, error) {
	rows, err := u.store.Query(ctx, store.TableUsers, store.Where(cond), store.Order{})
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return decodeUser(rows[0])
}

func decodeUser(raw json.RawMessage) (*User, error) {
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}
