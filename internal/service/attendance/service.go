package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/master/branch"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/civiltime"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/utils"
)

type AttendanceServiceImpl struct {
	tx             database.Transactor
	attendanceRepo attendance.AttendanceRepository
	userRepo       user.UserRepository
	branchRepo     branch.BranchRepository
	now            func() time.Time
}

type Option func(*AttendanceServiceImpl)

// WithClock replaces the wall clock. The clock is read once per operation.
func WithClock(now func() time.Time) Option {
	return func(s *AttendanceServiceImpl) {
		s.now = now
	}
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	userRepo user.UserRepository,
	branchRepo branch.BranchRepository,
	opts ...Option,
) attendance.AttendanceService {
	s := &AttendanceServiceImpl{
		tx:             tx,
		attendanceRepo: attendanceRepo,
		userRepo:       userRepo,
		branchRepo:     branchRepo,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	now := s.now()

	worker, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if worker.Role != user.RoleStaff {
		return attendance.AttendanceResponse{}, attendance.ErrRoleIneligible
	}
	if !worker.HasBranch() {
		return attendance.AttendanceResponse{}, attendance.ErrNoBranchAssigned
	}

	workerBranch, err := s.branchRepo.GetByID(ctx, *worker.BranchID)
	if err != nil {
		if errors.Is(err, branch.ErrBranchNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrNoBranchAssigned
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get branch: %w", err)
	}

	if err := checkGeofence(workerBranch, req.Latitude, req.Longitude); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	today := civiltime.Today(now)
	windows := attendance.ResolveWindows(worker.Schedule(), today)

	var created attendance.Attendance
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		open, err := s.attendanceRepo.FindOpenByUser(ctx, worker.ID)
		if err != nil {
			return err
		}
		todays, err := s.attendanceRepo.FindByUserAndDate(ctx, worker.ID, today)
		if err != nil {
			return err
		}

		switch attendance.Classify(open, todays != nil, now) {
		case attendance.StateOpenStale:
			// Forgotten check-out from an earlier day; rolled back if this check-in is rejected.
			if _, err := s.attendanceRepo.Close(ctx, open.ID, attendance.CloseParams{
				CheckOutAt: now,
				Reason:     attendance.AutoClosedReason(),
			}); err != nil {
				return fmt.Errorf("failed to close stale attendance: %w", err)
			}
			slog.Info("Closed stale attendance on check-in",
				"attendance_id", open.ID, "user_id", worker.ID, "work_date", open.WorkDate.String())
			if todays != nil {
				return attendance.ErrAlreadyCheckedInToday
			}
		case attendance.StateOpenToday:
			return attendance.ErrAlreadyOpenToday
		case attendance.StateClosedToday:
			return attendance.ErrAlreadyCheckedInToday
		}

		decision, err := attendance.EvaluateCheckIn(windows, now, req.LateReason)
		if err != nil {
			return err
		}

		created, err = s.attendanceRepo.Create(ctx, attendance.Attendance{
			UserID:            worker.ID,
			WorkDate:          today,
			CheckInAt:         now,
			CheckInLateReason: decision.LateReason,
			CheckInLatitude:   req.Latitude,
			CheckInLongitude:  req.Longitude,
		})
		return err
	})
	if err != nil {
		if _, ok := attendance.KindOf(err); !ok {
			slog.Error("Check-in failed", "user_id", worker.ID, "error", err)
		}
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("Checked in", "user_id", worker.ID, "attendance_id", created.ID, "late", created.CheckInLateReason != nil)
	return attendance.ToResponse(created), nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	now := s.now()

	worker, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	open, err := s.attendanceRepo.FindOpenByUser(ctx, worker.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if open == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNoOpenAttendance
	}

	windows := attendance.ResolveWindows(worker.Schedule(), civiltime.Today(now))
	decision, err := attendance.EvaluateCheckOut(windows, now, req.EarlyReason)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if worker.HasBranch() {
		workerBranch, err := s.branchRepo.GetByID(ctx, *worker.BranchID)
		if err != nil && !errors.Is(err, branch.ErrBranchNotFound) {
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to get branch: %w", err)
		}
		if err == nil {
			if err := checkGeofence(workerBranch, req.Latitude, req.Longitude); err != nil {
				return attendance.AttendanceResponse{}, err
			}
		}
	}

	closed, err := s.attendanceRepo.Close(ctx, open.ID, attendance.CloseParams{
		CheckOutAt: now,
		Reason:     decision.Reason,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
	})
	if err != nil {
		if !errors.Is(err, attendance.ErrNoOpenAttendance) {
			slog.Error("Check-out failed", "user_id", worker.ID, "attendance_id", open.ID, "error", err)
		}
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("Checked out", "user_id", worker.ID, "attendance_id", closed.ID)
	return attendance.ToResponse(closed), nil
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, err := s.attendanceRepo.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}
	return toListResponse(records), nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, userID string) (attendance.ListAttendanceResponse, error) {
	if _, err := s.Sweep(ctx, userID); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, err := s.attendanceRepo.ListByUser(ctx, userID, attendance.DefaultOwnListLimit)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to get my attendance: %w", err)
	}
	return toListResponse(records), nil
}

func toListResponse(records []attendance.Attendance) attendance.ListAttendanceResponse {
	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, attendance.ToResponse(rec))
	}
	return attendance.ListAttendanceResponse{
		Count:       len(responses),
		Attendances: responses,
	}
}

// checkGeofence validates claimed coordinates against the branch's geofence.
// Branches without a complete geofence accept any location.
func checkGeofence(b branch.Branch, lat, lng *float64) error {
	fence, ok := b.Geofence()
	if !ok {
		return nil
	}
	if lat == nil || lng == nil {
		return attendance.ErrLocationRequired
	}
	if !utils.WithinRadius(fence.Latitude, fence.Longitude, *lat, *lng, fence.RadiusMeters) {
		distance := utils.CalculateHaversineDistance(fence.Latitude, fence.Longitude, *lat, *lng)
		return attendance.ErrOutOfRange.Withf(
			"you are %.0f m from %s; the allowed radius is %.0f m", distance, b.Name, fence.RadiusMeters)
	}
	return nil
}
