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
	"golang.org/x/sync/errgroup"
)

// Sweep implements attendance.AttendanceService.
//
// Only records checked in today are closed here, at the end of the manual
// check-out window. Records from earlier days stay open until the worker's
// next check-in closes them.
func (s *AttendanceServiceImpl) Sweep(ctx context.Context, userID string) (bool, error) {
	return s.sweep(ctx, userID, s.now())
}

func (s *AttendanceServiceImpl) sweep(ctx context.Context, userID string, now time.Time) (bool, error) {
	open, err := s.attendanceRepo.FindOpenByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if open == nil {
		return false, nil
	}
	if open.CheckInAt.Before(civiltime.StartOfDay(civiltime.Today(now))) {
		return false, nil
	}

	worker, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}

	latest := attendance.ResolveWindows(worker.Schedule(), open.WorkDate).CheckOutClosesAt()
	if !now.After(latest) {
		return false, nil
	}

	_, err = s.attendanceRepo.Close(ctx, open.ID, attendance.CloseParams{
		CheckOutAt: latest,
		Reason:     attendance.AutoClosedReason(),
	})
	if err != nil {
		if errors.Is(err, attendance.ErrNoOpenAttendance) {
			// Closed concurrently.
			return false, nil
		}
		return false, err
	}

	slog.Info("Auto-closed attendance", "user_id", userID, "attendance_id", open.ID, "check_out_at", latest)
	return true, nil
}

// SweepAll implements attendance.AttendanceService. A failure for one worker
// does not stop the others.
func (s *AttendanceServiceImpl) SweepAll(ctx context.Context) (int, error) {
	userIDs, err := s.attendanceRepo.ListOpenUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list open attendances: %w", err)
	}

	now := s.now()
	closed := 0
	var errs []error
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		ok, err := s.sweep(ctx, userID, now)
		if err != nil {
			slog.Error("Failed to sweep attendance", "user_id", userID, "error", err)
			errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
			continue
		}
		if ok {
			closed++
		}
	}

	return closed, errors.Join(errs...)
}

// GetStatus implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetStatus(ctx context.Context, userID string) (attendance.StatusResponse, error) {
	now := s.now()
	if _, err := s.sweep(ctx, userID, now); err != nil {
		return attendance.StatusResponse{}, err
	}
	today := civiltime.Today(now)

	var (
		worker user.User
		open   *attendance.Attendance
		todays *attendance.Attendance
		recent []attendance.Attendance
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		worker, err = s.userRepo.GetByID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		open, err = s.attendanceRepo.FindOpenByUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		todays, err = s.attendanceRepo.FindByUserAndDate(gctx, userID, today)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.attendanceRepo.ListByUser(gctx, userID, attendance.StatusRecentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return attendance.StatusResponse{}, err
	}

	requiresLocation := false
	hasBranch := worker.HasBranch()
	if hasBranch {
		b, err := s.branchRepo.GetByID(ctx, *worker.BranchID)
		switch {
		case errors.Is(err, branch.ErrBranchNotFound):
			hasBranch = false
		case err != nil:
			return attendance.StatusResponse{}, fmt.Errorf("failed to get branch: %w", err)
		default:
			_, requiresLocation = b.Geofence()
		}
	}

	schedule := worker.Schedule()
	windows := attendance.ResolveWindows(schedule, today)
	state := attendance.Classify(open, todays != nil, now)

	canCheckIn := worker.Role == user.RoleStaff &&
		hasBranch &&
		(state == attendance.StateNoOpenRecord || (state == attendance.StateOpenStale && todays == nil)) &&
		!now.Before(windows.CheckInOpensAt()) &&
		!now.After(windows.CheckInClosesAt())

	canCheckOut := open != nil &&
		!now.Before(windows.CheckOutOpensAt()) &&
		!now.After(windows.CheckOutClosesAt())

	resp := attendance.StatusResponse{
		State:            state.String(),
		Today:            today.String(),
		WorkStart:        schedule.WorkStart,
		WorkEnd:          schedule.WorkEnd,
		CheckInOpensAt:   civiltime.FormatTimeOfDay(windows.CheckInOpensAt()),
		LateAfter:        civiltime.FormatTimeOfDay(windows.LateAfter()),
		CheckOutClosesAt: civiltime.FormatTimeOfDay(windows.CheckOutClosesAt()),
		HasBranch:        hasBranch,
		RequiresLocation: requiresLocation,
		CanCheckIn:       canCheckIn,
		CanCheckOut:      canCheckOut,
		Recent:           toListResponse(recent).Attendances,
	}
	if open != nil {
		openResp := attendance.ToResponse(*open)
		resp.OpenAttendance = &openResp
	}

	return resp, nil
}
