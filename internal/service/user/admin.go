package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/user"
)

const (
	DefaultAdminStaffID  = "admin"
	DefaultAdminPassword = "admin123"
)

// EnsureAdmin creates the administrator account unless an admin already
// exists. It reports whether an account was created.
func EnsureAdmin(ctx context.Context, userRepo user.UserRepository, staffID, password string) (bool, error) {
	exists, err := userRepo.ExistsByRole(ctx, user.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("failed to check for admin: %w", err)
	}
	if exists {
		return false, nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}

	created, err := userRepo.Create(ctx, user.User{
		StaffID:      staffID,
		Name:         "Administrator",
		PasswordHash: hash,
		Role:         user.RoleAdmin,
		Active:       true,
	})
	if err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}

	slog.Info("Admin account created", "user_id", created.ID, "staff_id", staffID)
	return true, nil
}

// ResetAdminPassword sets a new password on the admin account with the
// given staff id.
func ResetAdminPassword(ctx context.Context, userRepo user.UserRepository, staffID, password string) error {
	admin, err := userRepo.GetByStaffID(ctx, staffID)
	if err != nil {
		return err
	}
	if !admin.IsAdmin() {
		return errors.Join(user.ErrAdminAccessRequired, fmt.Errorf("%s is not an admin account", staffID))
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := userRepo.UpdatePassword(ctx, admin.ID, hash); err != nil {
		return fmt.Errorf("failed to reset admin password: %w", err)
	}

	slog.Info("Admin password reset", "user_id", admin.ID)
	return nil
}
