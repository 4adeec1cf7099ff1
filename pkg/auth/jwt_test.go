package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medicore/clinic-api/internal/model"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	userID := uuid.New()

	token, err := svc.Issue(userID, model.RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
}

func TestVerifyCachedToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	token, err := svc.Issue(uuid.New(), model.RolePatient)
	require.NoError(t, err)

	first, err := svc.Verify(token)
	require.NoError(t, err)

	// Second verification is served from the cache and must agree.
	second, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewJWTService("one-secret", time.Hour).Issue(uuid.New(), model.RoleAdmin)
	require.NoError(t, err)

	_, err = NewJWTService("other-secret", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestVerifyExpiredToken(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute)
	token, err := svc.Issue(uuid.New(), model.RoleAdmin)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.Error(t, err)
}

func TestVerifyGarbage(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	_, err := svc.Verify("not-a-token")
	assert.Error(t, err)

	_, err = svc.Verify("")
	assert.Error(t, err)
}
