package user

import (
	"context"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)
	GetByStaffID(ctx context.Context, staffID string) (User, error)
	Create(ctx context.Context, newUser User) (User, error)
	Update(ctx context.Context, req UpdateStaffRequest) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	ListByRole(ctx context.Context, role Role) ([]User, error)
	ExistsByRole(ctx context.Context, role Role) (bool, error)
	Delete(ctx context.Context, id string) error
}
