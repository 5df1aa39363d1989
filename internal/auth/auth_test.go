package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/auth"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := auth.NewPasswordHasher()

	hash, err := hasher.Hash("Sup3r$ecret")
	require.NoError(t, err)
	assert.NotEqual(t, "Sup3r$ecret", hash)

	assert.True(t, hasher.Verify("Sup3r$ecret", hash))
	assert.False(t, hasher.Verify("wrong-password", hash))
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantOK   bool
	}{
		{"valid", "Abcdef1!", true},
		{"too short", "Ab1!", false},
		{"no uppercase", "abcdef1!", false},
		{"no lowercase", "ABCDEF1!", false},
		{"no digit", "Abcdefg!", false},
		{"no special char", "Abcdefg1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason := auth.ValidatePassword(tt.password)
			if tt.wantOK {
				assert.Empty(t, reason)
			} else {
				assert.NotEmpty(t, reason)
			}
		})
	}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	manager := auth.NewTokenManager("test-secret", "taskboard-test")

	token, err := manager.Generate(42, time.Hour)
	require.NoError(t, err)

	userID, err := manager.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	manager := auth.NewTokenManager("test-secret", "taskboard-test")
	other := auth.NewTokenManager("other-secret", "taskboard-test")

	token, err := manager.Generate(42, time.Hour)
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_Expired(t *testing.T) {
	manager := auth.NewTokenManager("test-secret", "taskboard-test")

	token, err := manager.Generate(42, -time.Minute)
	require.NoError(t, err)

	_, err = manager.Validate(token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestTokenManager_Garbage(t *testing.T) {
	manager := auth.NewTokenManager("test-secret", "taskboard-test")

	_, err := manager.Validate("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
