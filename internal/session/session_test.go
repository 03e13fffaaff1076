package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/server/middleware"
	"github.com/stretchr/testify/assert"
)

func TestStatic(t *testing.T) {
	ctx := context.Background()

	id, ok := NewStatic("u1", "u1@example.com").Current(ctx)
	assert.True(t, ok)
	assert.Equal(t, Identity{OwnerID: "u1", Email: "u1@example.com"}, id)

	_, ok = NewStatic("", "").Current(ctx)
	assert.False(t, ok)
	assert.False(t, NewStatic("u1", "").Resolving(ctx))
}

func TestRequest(t *testing.T) {
	userID := uuid.New()
	ctx := middleware.WithPrincipal(context.Background(), middleware.Principal{UserID: userID, Email: "jane@example.com"})

	var p Provider = Request{}
	id, ok := p.Current(ctx)
	assert.True(t, ok)
	assert.Equal(t, userID.String(), id.OwnerID)
	assert.Equal(t, "jane@example.com", id.Email)

	_, ok = p.Current(context.Background())
	assert.False(t, ok)
	assert.False(t, p.Resolving(ctx))
}
