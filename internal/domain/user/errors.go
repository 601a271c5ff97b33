package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrStaffIDExists           = errors.New("staff id already registered")
	ErrInvalidPasswordLength   = errors.New("password must be at least 6 characters")
	ErrCurrentPasswordMismatch = errors.New("current password is incorrect")
	ErrCannotModifyAdmin       = errors.New("admin accounts cannot be modified here")
	ErrCannotDeleteAdmin       = errors.New("admin accounts cannot be deleted")
	ErrAdminAccessRequired     = errors.New("admin access required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
