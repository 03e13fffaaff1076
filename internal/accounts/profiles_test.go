package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/clock"
	"github.com/jonathan/job-tracker/internal/store"
	"github.com/jonathan/job-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfiles() *Profiles {
	clk := clock.Fake(fixedNow)
	return NewProfiles(store.NewMemoryWithClock(clk), clk)
}

func TestProfiles_CreateAndGet(t *testing.T) {
	profiles := newProfiles()
	ctx := context.Background()
	userID := uuid.New()

	created, err := profiles.Create(ctx, userID, "Jane@Example.com", "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, userID.String(), created.ID)
	assert.Equal(t, "jane@example.com", created.Email)

	got, err := profiles.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Nil(t, got.GraduationYear)
	assert.Empty(t, got.University)
}

func TestProfiles_GetMissing(t *testing.T) {
	got, err := newProfiles().Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProfiles_Update(t *testing.T) {
	profiles := newProfiles()
	ctx := context.Background()
	userID := uuid.New()

	_, err := profiles.Create(ctx, userID, "jane@example.com", "Jane")
	require.NoError(t, err)

	year := 2026
	updated, err := profiles.Update(ctx, userID, types.UpdateProfileRequest{
		FullName:       " Jane Doe ",
		University:     "MIT",
		GraduationYear: &year,
		Major:          "Computer Science",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Jane Doe", updated.FullName)
	assert.Equal(t, "MIT", updated.University)
	require.NotNil(t, updated.GraduationYear)
	assert.Equal(t, 2026, *updated.GraduationYear)
	assert.Equal(t, "jane@example.com", updated.Email)

	cleared, err := profiles.Update(ctx, userID, types.UpdateProfileRequest{FullName: "Jane Doe", University: "  "})
	require.NoError(t, err)
	assert.Empty(t, cleared.University)
	assert.Nil(t, cleared.GraduationYear)
	assert.Empty(t, cleared.Major)
}

func TestProfiles_UpdateValidation(t *testing.T) {
	profiles := newProfiles()
	year := 1999

	tests := []struct {
		name      string
		req       types.UpdateProfileRequest
		wantField string
	}{
		{name: "blank name", req: types.UpdateProfileRequest{FullName: " "}, wantField: "full_name"},
		{name: "year out of range", req: types.UpdateProfileRequest{FullName: "Jane", GraduationYear: &year}, wantField: "graduation_year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := profiles.Update(context.Background(), uuid.New(), tt.req)
			var valErr *ValidationError
			require.True(t, errors.As(err, &valErr))
			assert.Equal(t, tt.wantField, valErr.Field)
		})
	}
}

func TestProfiles_UpdateMissing(t *testing.T) {
	got, err := newProfiles().Update(context.Background(), uuid.New(), types.UpdateProfileRequest{FullName: "Jane"})
	require.NoError(t, err)
	assert.Nil(t, got)
}
