package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/master/branch"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/validator"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is the bcrypt cost for stored passwords.
const PasswordHashCost = 12

type UserServiceImpl struct {
	userRepo   user.UserRepository
	branchRepo branch.BranchRepository
	hashCost   int
}

func NewUserService(userRepo user.UserRepository, branchRepo branch.BranchRepository) user.UserService {
	return &UserServiceImpl{
		userRepo:   userRepo,
		branchRepo: branchRepo,
		hashCost:   PasswordHashCost,
	}
}

// HashPassword hashes a password with the stored-password cost.
func HashPassword(password string) (string, error) {
	return hashPassword(password, PasswordHashCost)
}

func hashPassword(password string, cost int) (string, error) {
	if len(password) < user.MinPasswordLength {
		return "", user.ErrInvalidPasswordLength
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// ListStaff implements user.UserService.
func (s *UserServiceImpl) ListStaff(ctx context.Context) ([]user.UserResponse, error) {
	users, err := s.userRepo.ListByRole(ctx, user.RoleStaff)
	if err != nil {
		return nil, err
	}

	responses := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, user.ToResponse(u))
	}
	return responses, nil
}

// GetStaff implements user.UserService.
func (s *UserServiceImpl) GetStaff(ctx context.Context, id string) (user.UserResponse, error) {
	u, err := s.getStaff(ctx, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(u), nil
}

func (s *UserServiceImpl) getStaff(ctx context.Context, id string) (user.User, error) {
	if !validator.IsValidUUID(id) {
		return user.User{}, user.ErrUserNotFound
	}
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}
	if u.Role != user.RoleStaff {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

// CreateStaff implements user.UserService.
func (s *UserServiceImpl) CreateStaff(ctx context.Context, req user.CreateStaffRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	branchID, err := s.resolveBranch(ctx, req.BranchID)
	if err != nil {
		return user.UserResponse{}, err
	}

	hash, err := hashPassword(req.Password, s.hashCost)
	if err != nil {
		return user.UserResponse{}, err
	}

	created, err := s.userRepo.Create(ctx, user.User{
		StaffID:      strings.TrimSpace(req.StaffID),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		Role:         user.RoleStaff,
		BranchID:     branchID,
		WorkStart:    req.WorkStart,
		WorkEnd:      req.WorkEnd,
		Active:       true,
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	slog.Info("Staff created", "user_id", created.ID, "staff_id", created.StaffID)

	// Reload for the joined branch name.
	return s.GetStaff(ctx, created.ID)
}

// UpdateStaff implements user.UserService.
func (s *UserServiceImpl) UpdateStaff(ctx context.Context, req user.UpdateStaffRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	existing, err := s.userRepo.GetByID(ctx, req.ID)
	if err != nil {
		return user.UserResponse{}, err
	}
	if existing.Role != user.RoleStaff {
		return user.UserResponse{}, user.ErrCannotModifyAdmin
	}

	if req.BranchID != nil && *req.BranchID != "" {
		if _, err := s.resolveBranch(ctx, req.BranchID); err != nil {
			return user.UserResponse{}, err
		}
	}

	if req.Password != nil {
		hash, err := hashPassword(*req.Password, s.hashCost)
		if err != nil {
			return user.UserResponse{}, err
		}
		req.PasswordHash = &hash
	}

	if err := s.userRepo.Update(ctx, req); err != nil {
		return user.UserResponse{}, err
	}

	return s.GetStaff(ctx, req.ID)
}

// DeleteStaff implements user.UserService.
func (s *UserServiceImpl) DeleteStaff(ctx context.Context, id string) error {
	if !validator.IsValidUUID(id) {
		return user.ErrUserNotFound
	}

	existing, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Role != user.RoleStaff {
		return user.ErrCannotDeleteAdmin
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("Staff deleted", "user_id", id, "staff_id", existing.StaffID)
	return nil
}

// GetProfile implements user.UserService.
func (s *UserServiceImpl) GetProfile(ctx context.Context, userID string) (user.UserResponse, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(u), nil
}

// ChangePassword implements user.UserService.
func (s *UserServiceImpl) ChangePassword(ctx context.Context, req user.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	u, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return user.ErrCurrentPasswordMismatch
	}

	hash, err := hashPassword(req.NewPassword, s.hashCost)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}

	slog.Info("Password changed", "user_id", u.ID)
	return nil
}

// resolveBranch checks that a referenced branch exists. Nil or empty means
// no branch.
func (s *UserServiceImpl) resolveBranch(ctx context.Context, branchID *string) (*string, error) {
	if branchID == nil || *branchID == "" {
		return nil, nil
	}
	if _, err := s.branchRepo.GetByID(ctx, *branchID); err != nil {
		if errors.Is(err, branch.ErrBranchNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	return branchID, nil
}
