package user

import (
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/validator"
)

const MinPasswordLength = 6

// UserResponse represents user data in API responses
type UserResponse struct {
	ID         string  `json:"id"`
	StaffID    string  `json:"staff_id"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	BranchID   *string `json:"branch_id,omitempty"`
	BranchName *string `json:"branch_name,omitempty"`
	WorkStart  string  `json:"work_start"`
	WorkEnd    string  `json:"work_end"`
	Active     bool    `json:"active"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

// ToResponse maps a user to its API shape; the password hash never leaves the service.
func ToResponse(u User) UserResponse {
	s := u.Schedule()
	return UserResponse{
		ID:         u.ID,
		StaffID:    u.StaffID,
		Name:       u.Name,
		Role:       string(u.Role),
		BranchID:   u.BranchID,
		BranchName: u.BranchName,
		WorkStart:  s.WorkStart,
		WorkEnd:    s.WorkEnd,
		Active:     u.Active,
		CreatedAt:  u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  u.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateStaffRequest represents request to register a worker
type CreateStaffRequest struct {
	StaffID   string  `json:"staff_id" validate:"notblank,max=50"`
	Password  string  `json:"password" validate:"notblank"`
	Name      string  `json:"name" validate:"notblank,max=100"`
	BranchID  *string `json:"branch_id,omitempty"`
	WorkStart *string `json:"work_start,omitempty" validate:"omitempty,timeofday"`
	WorkEnd   *string `json:"work_end,omitempty" validate:"omitempty,timeofday"`
}

func (r *CreateStaffRequest) Validate() error {
	var errs validator.ValidationErrors
	if err := validator.Struct(r); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			errs = append(errs, verrs...)
		} else {
			return err
		}
	}

	if !validator.IsEmpty(r.StaffID) && !validator.IsValidStaffID(r.StaffID) {
		errs = append(errs, validator.ValidationError{
			Field:   "staff_id",
			Message: "staff_id may only contain letters, digits, '.', '_' and '-'",
		})
	}

	if !validator.IsEmpty(r.Password) && len(r.Password) < MinPasswordLength {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must be at least 6 characters",
		})
	}

	if r.BranchID != nil && *r.BranchID != "" && !validator.IsValidUUID(*r.BranchID) {
		errs = append(errs, validator.ValidationError{
			Field:   "branch_id",
			Message: "branch_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateStaffRequest represents a partial update of a worker. An empty
// branch_id, work_start or work_end clears the value.
type UpdateStaffRequest struct {
	ID        string  `json:"-"`
	Name      *string `json:"name,omitempty" validate:"omitempty,notblank,max=100"`
	BranchID  *string `json:"branch_id,omitempty"`
	WorkStart *string `json:"work_start,omitempty"`
	WorkEnd   *string `json:"work_end,omitempty"`
	Active    *bool   `json:"active,omitempty"`
	Password  *string `json:"password,omitempty"`

	PasswordHash *string `json:"-"`
}

func (r *UpdateStaffRequest) Validate() error {
	var errs validator.ValidationErrors
	if err := validator.Struct(r); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			errs = append(errs, verrs...)
		} else {
			return err
		}
	}

	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a valid UUID",
		})
	}

	if r.BranchID != nil && *r.BranchID != "" && !validator.IsValidUUID(*r.BranchID) {
		errs = append(errs, validator.ValidationError{
			Field:   "branch_id",
			Message: "branch_id must be a valid UUID",
		})
	}

	for field, v := range map[string]*string{"work_start": r.WorkStart, "work_end": r.WorkEnd} {
		if v != nil && *v != "" && !validator.IsValidTimeOfDay(*v) {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " must be in HH:MM format",
			})
		}
	}

	if r.Password != nil && len(*r.Password) < MinPasswordLength {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must be at least 6 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ChangePasswordRequest is used by any authenticated user for their own account.
type ChangePasswordRequest struct {
	UserID          string `json:"-"`
	CurrentPassword string `json:"current_password" validate:"notblank"`
	NewPassword     string `json:"new_password" validate:"notblank,min=6"`
}

func (r *ChangePasswordRequest) Validate() error {
	return validator.Struct(r)
}
