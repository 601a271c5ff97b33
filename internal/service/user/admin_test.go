package user

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestEnsureAdmin(t *testing.T) {
	repo := &memUserRepo{users: map[string]user.User{}}
	ctx := context.Background()

	created, err := EnsureAdmin(ctx, repo, DefaultAdminStaffID, DefaultAdminPassword)
	require.NoError(t, err)
	assert.True(t, created)

	admin, err := repo.GetByStaffID(ctx, DefaultAdminStaffID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, admin.Role)
	assert.True(t, admin.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(DefaultAdminPassword)))

	cost, err := bcrypt.Cost([]byte(admin.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, PasswordHashCost, cost)

	created, err = EnsureAdmin(ctx, repo, "root", "another-pass")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, repo.users, 1)
}

func TestResetAdminPassword(t *testing.T) {
	repo := &memUserRepo{users: map[string]user.User{
		"a": {ID: "a", StaffID: "admin", Role: user.RoleAdmin, Active: true},
		"s": {ID: "s", StaffID: "S001", Role: user.RoleStaff, Active: true},
	}}
	ctx := context.Background()

	require.NoError(t, ResetAdminPassword(ctx, repo, "admin", "fresh-pass"))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users["a"].PasswordHash), []byte("fresh-pass")))

	assert.ErrorIs(t, ResetAdminPassword(ctx, repo, "S001", "fresh-pass"), user.ErrAdminAccessRequired)
	assert.ErrorIs(t, ResetAdminPassword(ctx, repo, "ghost", "fresh-pass"), user.ErrUserNotFound)
	assert.ErrorIs(t, ResetAdminPassword(ctx, repo, "admin", "123"), user.ErrInvalidPasswordLength)
}
