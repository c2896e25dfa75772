package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveStatus(t *testing.T) {
	tests := []struct {
		name                  string
		friends, sent, pending bool
		want                  Status
	}{
		{"none", false, false, false, StatusNone},
		{"friends", true, false, false, StatusFriends},
		{"sent", false, true, false, StatusSent},
		{"pending", false, false, true, StatusPending},
		{"friends beats sent", true, true, false, StatusFriends},
		{"friends beats pending", true, false, true, StatusFriends},
		{"sent beats pending", false, true, true, StatusSent},
		{"all set resolves to friends", true, true, true, StatusFriends},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveStatus(tt.friends, tt.sent, tt.pending))
		})
	}
}

func TestValidateUserID(t *testing.T) {
	assert.NoError(t, ValidateUserID("u1"))
	assert.NoError(t, ValidateUserID("5f6c2d5e-8f1a-4c21-9d7e-000000000001"))

	assert.ErrorIs(t, ValidateUserID(""), ErrInvalidUserID)
	assert.ErrorIs(t, ValidateUserID("   "), ErrInvalidUserID)
	assert.ErrorIs(t, ValidateUserID("u 1"), ErrInvalidUserID)
	assert.ErrorIs(t, ValidateUserID("u\t1"), ErrInvalidUserID)
}

func TestValidatePair(t *testing.T) {
	assert.NoError(t, ValidatePair("u1", "u2"))
	assert.ErrorIs(t, ValidatePair("u1", "u1"), ErrSelfRelation)
	assert.ErrorIs(t, ValidatePair("", "u2"), ErrInvalidUserID)
	assert.ErrorIs(t, ValidatePair("u1", ""), ErrInvalidUserID)
}

func TestDecodeUser(t *testing.T) {
	t.Run("id only", func(t *testing.T) {
		u, err := DecodeUser(map[string]any{"userId": "u1"})
		assert.NoError(t, err)
		assert.Equal(t, "u1", u.UserID)
		assert.True(t, u.CreatedAt.IsZero())
	})

	t.Run("driver time value", func(t *testing.T) {
		created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		u, err := DecodeUser(map[string]any{"userId": "u1", "createdAt": created})
		assert.NoError(t, err)
		assert.Equal(t, created, u.CreatedAt)
	})

	t.Run("string time value", func(t *testing.T) {
		u, err := DecodeUser(map[string]any{"userId": "u1", "createdAt": "2025-03-01T12:00:00Z"})
		assert.NoError(t, err)
		assert.Equal(t, 2025, u.CreatedAt.Year())
	})

	t.Run("unknown properties ignored", func(t *testing.T) {
		u, err := DecodeUser(map[string]any{"userId": "u1", "displayName": "whatever"})
		assert.NoError(t, err)
		assert.Equal(t, "u1", u.UserID)
	})
}
