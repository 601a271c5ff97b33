package auth

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-for-jwt"

type stubUserRepo struct {
	user.UserRepository
	users map[string]user.User
}

func (r *stubUserRepo) GetByStaffID(_ context.Context, staffID string) (user.User, error) {
	u, ok := r.users[staffID]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newTestAuthService(t *testing.T) (auth.AuthService, jwt.Service) {
	t.Helper()
	branchID := "0195a1c2-0000-7000-8000-000000000001"
	repo := &stubUserRepo{users: map[string]user.User{
		"S001": {
			ID: "user-1", StaffID: "S001", Name: "Aisha", Role: user.RoleStaff,
			PasswordHash: hash(t, "password123"), BranchID: &branchID, Active: true,
		},
		"S002": {
			ID: "user-2", StaffID: "S002", Name: "Omar", Role: user.RoleStaff,
			PasswordHash: hash(t, "password123"), Active: false,
		},
	}}
	jwtService := jwt.NewJWTService(testSecret, "1h", nil)
	return NewAuthService(repo, jwtService), jwtService
}

func TestLogin(t *testing.T) {
	svc, jwtService := newTestAuthService(t)

	resp, err := svc.Login(context.Background(), auth.LoginRequest{StaffID: "S001", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Greater(t, resp.AccessTokenExpiresIn, time.Now().Unix())
	assert.Equal(t, "S001", resp.User.StaffID)
	assert.Equal(t, "09:00", resp.User.WorkStart)

	token, err := jwtService.JWTAuth().Decode(resp.AccessToken)
	require.NoError(t, err)
	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, "STAFF", claims["role"])
}

func TestLogin_Failures(t *testing.T) {
	svc, _ := newTestAuthService(t)

	tests := []struct {
		name    string
		req     auth.LoginRequest
		wantErr error
	}{
		{"unknown staff id", auth.LoginRequest{StaffID: "S999", Password: "password123"}, auth.ErrInvalidCredentials},
		{"wrong password", auth.LoginRequest{StaffID: "S001", Password: "wrong-password"}, auth.ErrInvalidCredentials},
		{"deactivated", auth.LoginRequest{StaffID: "S002", Password: "password123"}, auth.ErrAccountDeactivated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Login(context.Background(), auth.LoginRequest{})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Len(t, verrs, 2)
	})
}

func TestLogout(t *testing.T) {
	svc, jwtService := newTestAuthService(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, auth.LoginRequest{StaffID: "S001", Password: "password123"})
	require.NoError(t, err)
	token, err := jwtService.JWTAuth().Decode(resp.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, auth.LogoutRequest{TokenID: token.JwtID(), ExpiresAt: token.Expiration()}))

	revoked, err := jwtService.IsTokenRevoked(ctx, token.JwtID())
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.ErrorIs(t, svc.Logout(ctx, auth.LogoutRequest{}), auth.ErrInvalidToken)
}
