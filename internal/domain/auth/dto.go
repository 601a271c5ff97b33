package auth

import (
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/validator"
)

type LoginRequest struct {
	StaffID  string `json:"staff_id"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StaffID) {
		errs = append(errs, validator.ValidationError{
			Field:   "staff_id",
			Message: "staff_id is required",
		})
	} else if len(r.StaffID) > 50 {
		errs = append(errs, validator.ValidationError{
			Field:   "staff_id",
			Message: "staff_id must not exceed 50 characters",
		})
	}

	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	} else if len(r.Password) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must not exceed 255 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type TokenResponse struct {
	AccessToken          string            `json:"access_token"`
	AccessTokenExpiresIn int64             `json:"access_token_expires_in"`
	User                 user.UserResponse `json:"user"`
}

// LogoutRequest identifies the access token being revoked.
type LogoutRequest struct {
	TokenID   string
	ExpiresAt time.Time
}
