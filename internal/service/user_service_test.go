package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"filmmate/config"
	"filmmate/internal/testutil"
	"filmmate/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (*UserService, *jwt.JWTService) {
	t.Helper()
	store, _ := testutil.NewStore(t)
	jwtSvc := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", Issuer: "filmmate", ExpireTime: time.Hour})
	return NewUserService(store, jwtSvc), jwtSvc
}

func TestRegisterAndLogin(t *testing.T) {
	svc, jwtSvc := newUserService(t)
	ctx := context.Background()

	u, token, err := svc.Register(ctx, " alice ", "alice@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "correct-horse", u.PasswordHash)

	claims, err := jwtSvc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)

	_, _, err = svc.Register(ctx, "alice", "", "another-password")
	var cerr *ConflictError
	assert.ErrorAs(t, err, &cerr)

	logged, token, err := svc.Login(ctx, "alice", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
	assert.NotEmpty(t, token)

	_, _, err = svc.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody", "whatever-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"blank username", "  ", "long-enough-pw"},
		{"long username", strings.Repeat("a", MaxUsernameLength+1), "long-enough-pw"},
		{"short password", "bob", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tt.username, "", tt.password)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestUpdateBio(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	u, _, err := svc.Register(ctx, "alice", "", "correct-horse")
	require.NoError(t, err)

	updated, err := svc.UpdateBio(ctx, u.ID, "  I like noir.  ")
	require.NoError(t, err)
	assert.Equal(t, "I like noir.", updated.Bio)

	_, err = svc.UpdateBio(ctx, u.ID, strings.Repeat("x", MaxBioLength+1))
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	staff, err := svc.IsStaff(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, staff)

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
