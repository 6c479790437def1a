package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/fridgechef/backend/internal/testdb"
	"github.com/pageza/fridgechef/backend/internal/types"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(testdb.SQLite(t).DB, "test-secret", zap.NewNop().Sugar())
}

func TestSignupAndLogin(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "  Test User ", " Test@Example.com ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "Test User", user.Name)
	assert.Equal(t, "test@example.com", user.Email)
	assert.NotEqual(t, "password123", user.PasswordHash)

	token, loggedIn, err := svc.Login(ctx, "TEST@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)

	found, err := svc.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "A", "dup@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "B", "DUP@example.com", "password456")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLoginFailures(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "A", "a@example.com", "password123")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "a@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrBadLogin)

	_, _, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrBadLogin)
}

func TestValidateToken(t *testing.T) {
	svc := NewAuthService(nil, "test-secret", zap.NewNop().Sugar())
	userID := uuid.New()

	expired, err := svc.GenerateToken(&types.TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	require.NoError(t, err)

	other := NewAuthService(nil, "other-secret", zap.NewNop().Sugar())
	foreign, err := other.GenerateToken(&types.TokenClaims{UserID: userID})
	require.NoError(t, err)

	noUser, err := svc.GenerateToken(&types.TokenClaims{})
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &types.TokenClaims{UserID: userID})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong secret", foreign},
		{"missing user", noUser},
		{"unsigned", unsigned},
		{"garbage", "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.Error(t, err)
		})
	}
}
