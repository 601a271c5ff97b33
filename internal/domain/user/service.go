package user

import "context"

// UserService covers staff administration and self-service account operations.
type UserService interface {
	ListStaff(ctx context.Context) ([]UserResponse, error)
	GetStaff(ctx context.Context, id string) (UserResponse, error)
	CreateStaff(ctx context.Context, req CreateStaffRequest) (UserResponse, error)
	UpdateStaff(ctx context.Context, req UpdateStaffRequest) (UserResponse, error)
	DeleteStaff(ctx context.Context, id string) error

	GetProfile(ctx context.Context, userID string) (UserResponse, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
}
