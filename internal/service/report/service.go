package report

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/civiltime"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type ReportServiceImpl struct {
	userRepo       user.UserRepository
	attendanceRepo attendance.AttendanceRepository
	now            func() time.Time
}

func NewReportService(userRepo user.UserRepository, attendanceRepo attendance.AttendanceRepository) report.ReportService {
	return &ReportServiceImpl{
		userRepo:       userRepo,
		attendanceRepo: attendanceRepo,
		now:            time.Now,
	}
}

// GenerateMonthlyAttendanceReport implements report.ReportService.
func (s *ReportServiceImpl) GenerateMonthlyAttendanceReport(ctx context.Context, req report.MonthlyAttendanceReportRequest) (report.MonthlyAttendanceReport, error) {
	if err := req.Validate(); err != nil {
		return report.MonthlyAttendanceReport{}, err
	}

	month := time.Month(req.Month)
	first := civiltime.Date{Year: req.Year, Month: month, Day: 1}
	daysInMonth := civiltime.DaysInMonth(req.Year, month)
	last := first.AddDays(daysInMonth - 1)
	periodStart := civiltime.StartOfDay(first)
	periodEnd := civiltime.StartOfDay(last.AddDays(1))

	var (
		staff   []user.User
		records []attendance.Attendance
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		staff, err = s.userRepo.ListByRole(gctx, user.RoleStaff)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = s.attendanceRepo.ListCheckInsBetween(gctx, periodStart, periodEnd)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Error("Failed to load monthly attendance", "year", req.Year, "month", req.Month, "error", err)
		return report.MonthlyAttendanceReport{}, fmt.Errorf("%w: %w", report.ErrReportGenerationFailed, err)
	}

	byUser := make(map[string][]attendance.Attendance, len(staff))
	for _, rec := range records {
		byUser[rec.UserID] = append(byUser[rec.UserID], rec)
	}

	employees := make([]report.MonthlyAttendanceEmployee, 0, len(staff))
	for _, u := range staff {
		employees = append(employees, summarize(u, byUser[u.ID], daysInMonth))
	}

	return report.MonthlyAttendanceReport{
		PeriodYear:  req.Year,
		PeriodMonth: req.Month,
		PeriodStart: first.String(),
		PeriodEnd:   last.String(),
		DaysInMonth: daysInMonth,
		GeneratedAt: s.now().In(civiltime.Zone).Format(time.RFC3339),
		Employees:   employees,
	}, nil
}

var minutesPerHour = decimal.NewFromInt(60)

func summarize(u user.User, records []attendance.Attendance, daysInMonth int) report.MonthlyAttendanceEmployee {
	schedule := u.Schedule()
	present := make(map[civiltime.Date]struct{}, len(records))
	lateMinutes := 0

	for _, rec := range records {
		day := civiltime.Today(rec.CheckInAt)
		present[day] = struct{}{}
		lateMinutes += minutesAfter(rec.CheckInAt, civiltime.ResolveOn(schedule.WorkStart, day))
	}

	return report.MonthlyAttendanceEmployee{
		UserID:      u.ID,
		Name:        u.Name,
		StaffID:     u.StaffID,
		BranchName:  u.BranchName,
		DaysPresent: len(present),
		DaysAbsent:  daysInMonth - len(present),
		LateMinutes: lateMinutes,
		LateHours:   decimal.NewFromInt(int64(lateMinutes)).Div(minutesPerHour).Round(1),
	}
}

// minutesAfter returns whole minutes from start to t, rounded, or 0 when t is
// not after start. Lateness here is measured from work start, not from the
// end of the grace period.
func minutesAfter(t, start time.Time) int {
	if !t.After(start) {
		return 0
	}
	return int(math.Round(t.Sub(start).Minutes()))
}
