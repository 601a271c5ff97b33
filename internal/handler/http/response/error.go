package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/master/branch"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/validator"
)

// attendanceStatus maps each rejection kind to its HTTP status.
var attendanceStatus = map[attendance.ErrorKind]int{
	attendance.KindNoBranchAssigned:           http.StatusForbidden,
	attendance.KindRoleIneligible:             http.StatusForbidden,
	attendance.KindTooEarlyToCheckIn:          http.StatusBadRequest,
	attendance.KindTooLateToCheckIn:           http.StatusBadRequest,
	attendance.KindTooEarlyToCheckOut:         http.StatusBadRequest,
	attendance.KindManualCheckoutWindowClosed: http.StatusBadRequest,
	attendance.KindLateReasonRequired:         http.StatusBadRequest,
	attendance.KindLocationRequired:           http.StatusBadRequest,
	attendance.KindOutOfRange:                 http.StatusBadRequest,
	attendance.KindAlreadyOpenToday:           http.StatusConflict,
	attendance.KindAlreadyCheckedInToday:      http.StatusConflict,
	attendance.KindNoOpenAttendance:           http.StatusConflict,
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Attendance rejections carry their kind as the error code
	var attendanceErr *attendance.Error
	if errors.As(err, &attendanceErr) {
		status, ok := attendanceStatus[attendanceErr.Kind]
		if !ok {
			status = http.StatusBadRequest
		}
		ErrorWithCode(w, status, string(attendanceErr.Kind), attendanceErr.Message)
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenRevoked):
		Unauthorized(w, "Token has been revoked")
	case errors.Is(err, auth.ErrAccountDeactivated):
		Forbidden(w, "Account is deactivated")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrStaffIDExists):
		Conflict(w, "Staff ID already registered")
	case errors.Is(err, user.ErrInvalidPasswordLength):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, user.ErrCurrentPasswordMismatch):
		BadRequest(w, "Current password is incorrect", nil)
	case errors.Is(err, user.ErrCannotModifyAdmin):
		Forbidden(w, "Admin accounts cannot be modified here")
	case errors.Is(err, user.ErrCannotDeleteAdmin):
		Forbidden(w, "Admin accounts cannot be deleted")
	case errors.Is(err, user.ErrAdminAccessRequired):
		Forbidden(w, "Admin access required")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")

	// Branch domain errors
	case errors.Is(err, branch.ErrBranchNotFound):
		NotFound(w, "Branch not found")
	case errors.Is(err, branch.ErrBranchNameExists):
		Conflict(w, "Branch name already exists")

	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
