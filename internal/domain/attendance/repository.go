package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/civiltime"
)

// CloseParams describes a check-out applied to an open record.
type CloseParams struct {
	CheckOutAt time.Time
	Reason     *CheckoutReason
	Latitude   *float64
	Longitude  *float64
}

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Create inserts a new open record. A second open record for the same user
	// fails with ErrAlreadyOpenToday; a second record for the same work date
	// fails with ErrAlreadyCheckedInToday.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// FindOpenByUser returns the user's open record, or nil when there is none.
	FindOpenByUser(ctx context.Context, userID string) (*Attendance, error)

	// FindByUserAndDate returns the user's record for a work date, or nil.
	FindByUserAndDate(ctx context.Context, userID string, date civiltime.Date) (*Attendance, error)

	// Close sets the check-out of record id only if it is still open and
	// returns the updated record. An already-closed record yields ErrNoOpenAttendance.
	Close(ctx context.Context, id string, params CloseParams) (Attendance, error)

	// List retrieves records across users, newest first.
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, error)

	// ListByUser retrieves one user's records, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]Attendance, error)

	// ListOpenUserIDs returns every user with an open record.
	ListOpenUserIDs(ctx context.Context) ([]string, error)

	// ListCheckInsBetween returns check-ins in [from, to) for the monthly report.
	ListCheckInsBetween(ctx context.Context, from, to time.Time) ([]Attendance, error)
}
