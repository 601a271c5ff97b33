package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/attendance"
)

const SweepJobName = "sweep_stale_attendances"

type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceJobs(attendanceService attendance.AttendanceService) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceService: attendanceService,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob(SweepJobName, interval, j.SweepStaleAttendances)
}

// SweepStaleAttendances closes today's records whose manual check-out window
// has passed, so views that do not sweep on load still see them closed.
func (j *AttendanceJobs) SweepStaleAttendances(ctx context.Context) error {
	closed, err := j.attendanceService.SweepAll(ctx)
	if closed > 0 {
		slog.Info("Cron: auto-closed attendances", "count", closed)
	}
	if err != nil {
		return fmt.Errorf("sweep stale attendances: %w", err)
	}
	return nil
}
