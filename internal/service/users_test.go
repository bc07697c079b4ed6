package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	svc := NewUsers(newFakeUsers())
	ctx := context.Background()

	summary, err := svc.Register(ctx, RegisterInput{
		Email:     "a@x.com",
		Password:  "pw123456",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, summary.ID)
	assert.Equal(t, "a@x.com", summary.Email)
	assert.Equal(t, "Ada", summary.FirstName)
	assert.True(t, summary.IsActive)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewUsers(newFakeUsers())
	ctx := context.Background()

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"bad email", RegisterInput{Email: "not-an-email", Password: "pw123456"}},
		{"empty email", RegisterInput{Password: "pw123456"}},
		{"short password", RegisterInput{Email: "a@x.com", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewUsers(newFakeUsers())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: "pw123456"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: "different1"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestGetUnknownUser(t *testing.T) {
	svc := NewUsers(newFakeUsers())

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	svc := NewUsers(newFakeUsers())
	ctx := context.Background()

	created, err := svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: "pw123456", FirstName: "Ada"})
	require.NoError(t, err)

	last := "Lovelace"
	updated, err := svc.UpdateProfile(ctx, created.ID, UpdateProfileInput{LastName: &last})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, "Lovelace", updated.LastName)

	short := "short"
	_, err = svc.UpdateProfile(ctx, created.ID, UpdateProfileInput{Password: &short})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdatePreferences(t *testing.T) {
	svc := NewUsers(newFakeUsers())
	ctx := context.Background()

	created, err := svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: "pw123456"})
	require.NoError(t, err)

	profile, err := svc.UpdatePreferences(ctx, created.ID, json.RawMessage(`{"theme":"dark"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"dark"}`, string(profile.Preferences))

	_, err = svc.UpdatePreferences(ctx, created.ID, json.RawMessage(`{not json`))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteUser(t *testing.T) {
	svc := NewUsers(newFakeUsers())
	ctx := context.Background()

	created, err := svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: "pw123456"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)
}
