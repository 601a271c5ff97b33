package report

import "context"

type ReportService interface {
	// GenerateMonthlyAttendanceReport aggregates every staff member's
	// check-ins over one civil month.
	GenerateMonthlyAttendanceReport(ctx context.Context, req MonthlyAttendanceReportRequest) (MonthlyAttendanceReport, error)

	// ExportMonthlyAttendanceReport renders the same report as an xlsx workbook.
	ExportMonthlyAttendanceReport(ctx context.Context, req MonthlyAttendanceReportRequest) (ExportFile, error)
}
