package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// CheckIn opens today's attendance record for a worker.
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)

	// CheckOut closes the worker's open record within today's check-out window.
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)

	// Sweep closes the worker's open record once its manual check-out window
	// has passed. It reports whether a record was closed.
	Sweep(ctx context.Context, userID string) (bool, error)

	// SweepAll runs Sweep for every worker holding an open record and returns
	// the number of records closed.
	SweepAll(ctx context.Context) (int, error)

	// GetStatus sweeps, then summarizes the worker's current attendance.
	GetStatus(ctx context.Context, userID string) (StatusResponse, error)

	// GetMyAttendance sweeps, then lists the worker's own records.
	GetMyAttendance(ctx context.Context, userID string) (ListAttendanceResponse, error)

	// ListAttendance lists records across workers (admin).
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
}
