package attendance

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a rejected attendance transition. The value is used
// as the error code in API responses.
type ErrorKind string

const (
	KindNoBranchAssigned           ErrorKind = "NO_BRANCH_ASSIGNED"
	KindRoleIneligible             ErrorKind = "ROLE_INELIGIBLE"
	KindTooEarlyToCheckIn          ErrorKind = "TOO_EARLY_TO_CHECK_IN"
	KindTooLateToCheckIn           ErrorKind = "TOO_LATE_TO_CHECK_IN"
	KindTooEarlyToCheckOut         ErrorKind = "TOO_EARLY_TO_CHECK_OUT"
	KindManualCheckoutWindowClosed ErrorKind = "MANUAL_CHECKOUT_WINDOW_CLOSED"
	KindLateReasonRequired         ErrorKind = "LATE_REASON_REQUIRED"
	KindLocationRequired           ErrorKind = "LOCATION_REQUIRED"
	KindOutOfRange                 ErrorKind = "OUT_OF_RANGE"
	KindAlreadyOpenToday           ErrorKind = "ALREADY_OPEN_TODAY"
	KindAlreadyCheckedInToday      ErrorKind = "ALREADY_CHECKED_IN_TODAY"
	KindNoOpenAttendance           ErrorKind = "NO_OPEN_ATTENDANCE"
)

// Error is a caller-visible, non-retryable rejection.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind, so detailed errors still satisfy
// errors.Is against the sentinels below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Withf returns a copy of e carrying a more specific message.
func (e *Error) Withf(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Attendance domain errors
var (
	// Preconditions
	ErrNoBranchAssigned = &Error{KindNoBranchAssigned, "you are not assigned to a branch"}
	ErrRoleIneligible   = &Error{KindRoleIneligible, "your role cannot record attendance"}

	// Time windows
	ErrTooEarlyToCheckIn          = &Error{KindTooEarlyToCheckIn, "too early to check in"}
	ErrTooLateToCheckIn           = &Error{KindTooLateToCheckIn, "check-in is closed for today"}
	ErrTooEarlyToCheckOut         = &Error{KindTooEarlyToCheckOut, "too early to check out"}
	ErrManualCheckoutWindowClosed = &Error{KindManualCheckoutWindowClosed, "the check-out window has closed"}

	// Justification
	ErrLateReasonRequired = &Error{KindLateReasonRequired, "a reason of at least 3 characters is required for late check-in"}

	// Geofence
	ErrLocationRequired = &Error{KindLocationRequired, "your location is required at this branch"}
	ErrOutOfRange       = &Error{KindOutOfRange, "you are outside the allowed radius of your branch"}

	// State
	ErrAlreadyOpenToday      = &Error{KindAlreadyOpenToday, "you are already checked in"}
	ErrAlreadyCheckedInToday = &Error{KindAlreadyCheckedInToday, "you have already checked in today"}
	ErrNoOpenAttendance      = &Error{KindNoOpenAttendance, "you have not checked in"}
)

// ErrAttendanceNotFound is returned by lookups of a specific record.
var ErrAttendanceNotFound = errors.New("attendance record not found")
