package report

import (
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// MONTHLY ATTENDANCE REPORT
// ========================================

type MonthlyAttendanceReportRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *MonthlyAttendanceReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	if r.Year < 2000 || r.Year > 2100 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MonthlyAttendanceReport struct {
	PeriodYear  int    `json:"year"`
	PeriodMonth int    `json:"month"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	DaysInMonth int    `json:"days_in_month"`
	GeneratedAt string `json:"generated_at"`

	Employees []MonthlyAttendanceEmployee `json:"employees"`
}

// MonthlyAttendanceEmployee summarizes one staff member's month. Every civil
// day without a check-in counts as absent.
type MonthlyAttendanceEmployee struct {
	UserID      string          `json:"user_id"`
	Name        string          `json:"name"`
	StaffID     string          `json:"staff_id"`
	BranchName  *string         `json:"branch_name,omitempty"`
	DaysPresent int             `json:"days_present"`
	DaysAbsent  int             `json:"days_absent"`
	LateMinutes int             `json:"late_minutes"`
	LateHours   decimal.Decimal `json:"late_hours"`
}

// ExportFile is a generated spreadsheet ready to be served as a download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
	GeneratedAt time.Time
}

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
