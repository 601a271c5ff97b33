package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/presence-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/civiltime"
)

type ReportHandler interface {
	// Monthly Attendance Report
	GetMonthlyAttendanceReport(w http.ResponseWriter, r *http.Request)
	ExportMonthlyAttendanceReport(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
	now           func() time.Time
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
		now:           time.Now,
	}
}

// parseMonth reads ?year and ?month, defaulting each to the current civil
// month when absent.
func (h *reportHandlerImpl) parseMonth(w http.ResponseWriter, r *http.Request) (report.MonthlyAttendanceReportRequest, bool) {
	today := civiltime.Today(h.now())
	req := report.MonthlyAttendanceReportRequest{
		Month: int(today.Month),
		Year:  today.Year,
	}

	if monthStr := r.URL.Query().Get("month"); monthStr != "" {
		month, err := strconv.Atoi(monthStr)
		if err != nil {
			response.BadRequest(w, "invalid month parameter", nil)
			return req, false
		}
		req.Month = month
	}

	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			response.BadRequest(w, "invalid year parameter", nil)
			return req, false
		}
		req.Year = year
	}

	return req, true
}

// GetMonthlyAttendanceReport handles GET /reports/attendance
func (h *reportHandlerImpl) GetMonthlyAttendanceReport(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseMonth(w, r)
	if !ok {
		return
	}

	result, err := h.reportService.GenerateMonthlyAttendanceReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportMonthlyAttendanceReport handles GET /reports/attendance/export
func (h *reportHandlerImpl) ExportMonthlyAttendanceReport(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseMonth(w, r)
	if !ok {
		return
	}

	file, err := h.reportService.ExportMonthlyAttendanceReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, file.Filename, file.ContentType, file.Content)
}
