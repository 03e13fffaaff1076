// Package session supplies the identity whose applications are being managed.
package session

import (
	"context"

	"github.com/jonathan/job-tracker/internal/server/middleware"
)

// Identity is an authenticated user.
type Identity struct {
	OwnerID string
	Email   string
}

// Provider yields the current identity. Resolving reports whether the
// identity is still being established; callers must not load while it is true.
type Provider interface {
	Current(ctx context.Context) (Identity, bool)
	Resolving(ctx context.Context) bool
}

// Static is a Provider with a fixed identity, used by the CLI.
type Static struct {
	identity Identity
}

// NewStatic returns a Provider for ownerID. An empty ownerID yields no identity.
func NewStatic(ownerID, email string) *Static {
	return &Static{identity: Identity{OwnerID: ownerID, Email: email}}
}

// Current implements Provider.
func (s *Static) Current(context.Context) (Identity, bool) {
	return s.identity, s.identity.OwnerID != ""
}

// Resolving implements Provider. A static identity is known up front.
func (s *Static) Resolving(context.Context) bool {
	return false
}

// Request reads the principal placed in the request context by the auth middleware.
type Request struct{}

// Current implements Provider.
func (Request) Current(ctx context.Context) (Identity, bool) {
	p, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return Identity{}, false
	}
	return Identity{OwnerID: p.UserID.String(), Email: p.Email}, true
}

// Resolving implements Provider. Token validation completes before the handler runs.
func (Request) Resolving(context.Context) bool {
	return false
}
