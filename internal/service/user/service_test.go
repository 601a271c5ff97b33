package user

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/master/branch"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memUserRepo struct {
	users map[string]user.User
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *memUserRepo) GetByStaffID(_ context.Context, staffID string) (user.User, error) {
	for _, u := range r.users {
		if u.StaffID == staffID {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *memUserRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	if _, err := r.GetByStaffID(ctx, u.StaffID); err == nil {
		return user.User{}, user.ErrStaffIDExists
	}
	u.ID = uuid.Must(uuid.NewV7()).String()
	r.users[u.ID] = u
	return u, nil
}

func (r *memUserRepo) Update(_ context.Context, req user.UpdateStaffRequest) error {
	u, ok := r.users[req.ID]
	if !ok {
		return user.ErrUserNotFound
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.BranchID != nil {
		if *req.BranchID == "" {
			u.BranchID = nil
		} else {
			u.BranchID = req.BranchID
		}
	}
	if req.WorkStart != nil {
		u.WorkStart = req.WorkStart
	}
	if req.WorkEnd != nil {
		u.WorkEnd = req.WorkEnd
	}
	if req.Active != nil {
		u.Active = *req.Active
	}
	if req.PasswordHash != nil {
		u.PasswordHash = *req.PasswordHash
	}
	r.users[req.ID] = u
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	u, ok := r.users[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	r.users[userID] = u
	return nil
}

func (r *memUserRepo) ListByRole(_ context.Context, role user.Role) ([]user.User, error) {
	var out []user.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memUserRepo) ExistsByRole(ctx context.Context, role user.Role) (bool, error) {
	users, _ := r.ListByRole(ctx, role)
	return len(users) > 0, nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return user.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type stubBranchRepo struct {
	branch.BranchRepository
	ids map[string]bool
}

func (r *stubBranchRepo) GetByID(_ context.Context, id string) (branch.Branch, error) {
	if !r.ids[id] {
		return branch.Branch{}, branch.ErrBranchNotFound
	}
	return branch.Branch{ID: id, Name: "Riyadh HQ"}, nil
}

var testBranchID = uuid.Must(uuid.NewV7()).String()

func newTestUserService() (*UserServiceImpl, *memUserRepo) {
	repo := &memUserRepo{users: map[string]user.User{}}
	svc := NewUserService(repo, &stubBranchRepo{ids: map[string]bool{testBranchID: true}}).(*UserServiceImpl)
	svc.hashCost = bcrypt.MinCost
	return svc, repo
}

func ptr[T any](v T) *T { return &v }

func TestCreateStaff(t *testing.T) {
	svc, repo := newTestUserService()
	ctx := context.Background()

	resp, err := svc.CreateStaff(ctx, user.CreateStaffRequest{
		StaffID:   "S001",
		Password:  "secret1",
		Name:      " Aisha ",
		BranchID:  &testBranchID,
		WorkStart: ptr("08:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Aisha", resp.Name)
	assert.Equal(t, "STAFF", resp.Role)
	assert.Equal(t, "08:00", resp.WorkStart)
	assert.Equal(t, "17:00", resp.WorkEnd)
	assert.True(t, resp.Active)

	stored := repo.users[resp.ID]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))

	_, err = svc.CreateStaff(ctx, user.CreateStaffRequest{StaffID: "S001", Password: "secret1", Name: "Dup"})
	assert.ErrorIs(t, err, user.ErrStaffIDExists)

	missing := uuid.Must(uuid.NewV7()).String()
	_, err = svc.CreateStaff(ctx, user.CreateStaffRequest{StaffID: "S002", Password: "secret1", Name: "Omar", BranchID: &missing})
	assert.ErrorIs(t, err, branch.ErrBranchNotFound)
}

func TestCreateStaff_Validation(t *testing.T) {
	svc, _ := newTestUserService()

	_, err := svc.CreateStaff(context.Background(), user.CreateStaffRequest{
		StaffID:   "S 001",
		Password:  "12345",
		Name:      "",
		WorkStart: ptr("25:00"),
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "staff_id")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "work_start")
}

func TestUpdateStaff(t *testing.T) {
	svc, repo := newTestUserService()
	ctx := context.Background()

	created, err := svc.CreateStaff(ctx, user.CreateStaffRequest{StaffID: "S001", Password: "secret1", Name: "Aisha", BranchID: &testBranchID})
	require.NoError(t, err)

	resp, err := svc.UpdateStaff(ctx, user.UpdateStaffRequest{
		ID:       created.ID,
		BranchID: ptr(""),
		WorkEnd:  ptr("16:00"),
		Active:   ptr(false),
		Password: ptr("new-secret"),
	})
	require.NoError(t, err)
	assert.Nil(t, resp.BranchID)
	assert.Equal(t, "16:00", resp.WorkEnd)
	assert.False(t, resp.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[created.ID].PasswordHash), []byte("new-secret")))

	adminID := uuid.Must(uuid.NewV7()).String()
	repo.users[adminID] = user.User{ID: adminID, StaffID: "admin", Role: user.RoleAdmin}
	_, err = svc.UpdateStaff(ctx, user.UpdateStaffRequest{ID: adminID, Name: ptr("Root")})
	assert.ErrorIs(t, err, user.ErrCannotModifyAdmin)

	_, err = svc.GetStaff(ctx, adminID)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestDeleteStaff(t *testing.T) {
	svc, repo := newTestUserService()
	ctx := context.Background()

	created, err := svc.CreateStaff(ctx, user.CreateStaffRequest{StaffID: "S001", Password: "secret1", Name: "Aisha"})
	require.NoError(t, err)

	adminID := uuid.Must(uuid.NewV7()).String()
	repo.users[adminID] = user.User{ID: adminID, StaffID: "admin", Role: user.RoleAdmin}

	assert.ErrorIs(t, svc.DeleteStaff(ctx, adminID), user.ErrCannotDeleteAdmin)
	assert.Contains(t, repo.users, adminID)

	require.NoError(t, svc.DeleteStaff(ctx, created.ID))
	assert.NotContains(t, repo.users, created.ID)

	assert.ErrorIs(t, svc.DeleteStaff(ctx, created.ID), user.ErrUserNotFound)
	assert.ErrorIs(t, svc.DeleteStaff(ctx, "not-a-uuid"), user.ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	svc, repo := newTestUserService()
	ctx := context.Background()

	created, err := svc.CreateStaff(ctx, user.CreateStaffRequest{StaffID: "S001", Password: "secret1", Name: "Aisha"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ChangePasswordRequest{UserID: created.ID, CurrentPassword: "wrong", NewPassword: "another1"})
	assert.ErrorIs(t, err, user.ErrCurrentPasswordMismatch)

	err = svc.ChangePassword(ctx, user.ChangePasswordRequest{UserID: created.ID, CurrentPassword: "secret1", NewPassword: "short"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	require.NoError(t, svc.ChangePassword(ctx, user.ChangePasswordRequest{UserID: created.ID, CurrentPassword: "secret1", NewPassword: "another1"}))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[created.ID].PasswordHash), []byte("another1")))
}

func TestHashPassword(t *testing.T) {
	_, err := hashPassword("12345", bcrypt.MinCost)
	assert.ErrorIs(t, err, user.ErrInvalidPasswordLength)

	hash, err := hashPassword("123456", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "123456", hash)
}
