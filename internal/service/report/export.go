package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/report"
	"github.com/xuri/excelize/v2"
)

const attendanceSheet = "Attendance"

var exportHeaders = []string{"Name", "Staff ID", "Branch", "Days Present", "Days Absent", "Late Minutes", "Late Hours"}

// ExportMonthlyAttendanceReport implements report.ReportService.
func (s *ReportServiceImpl) ExportMonthlyAttendanceReport(ctx context.Context, req report.MonthlyAttendanceReportRequest) (report.ExportFile, error) {
	data, err := s.GenerateMonthlyAttendanceReport(ctx, req)
	if err != nil {
		return report.ExportFile{}, err
	}

	buf, err := renderMonthlyAttendance(data)
	if err != nil {
		slog.Error("Failed to render attendance workbook", "year", req.Year, "month", req.Month, "error", err)
		return report.ExportFile{}, fmt.Errorf("%w: %w", report.ErrExportFailed, err)
	}

	return report.ExportFile{
		Filename:    fmt.Sprintf("attendance_%04d_%02d.xlsx", req.Year, req.Month),
		ContentType: report.XLSXContentType,
		Content:     buf.Bytes(),
		GeneratedAt: s.now(),
	}, nil
}

func renderMonthlyAttendance(data report.MonthlyAttendanceReport) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", attendanceSheet); err != nil {
		return nil, err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	border := []excelize.Border{
		{Type: "left", Color: "#BFBFBF", Style: 1},
		{Type: "right", Color: "#BFBFBF", Style: 1},
		{Type: "top", Color: "#BFBFBF", Style: 1},
		{Type: "bottom", Color: "#BFBFBF", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    border,
	})
	if err != nil {
		return nil, err
	}
	textStyle, err := f.NewStyle(&excelize.Style{Border: border})
	if err != nil {
		return nil, err
	}
	countFmt, hoursFmt := "#,##0", "0.0"
	countStyle, err := f.NewStyle(&excelize.Style{
		Border:       border,
		Alignment:    &excelize.Alignment{Horizontal: "center"},
		CustomNumFmt: &countFmt,
	})
	if err != nil {
		return nil, err
	}
	hoursStyle, err := f.NewStyle(&excelize.Style{
		Border:       border,
		Alignment:    &excelize.Alignment{Horizontal: "center"},
		CustomNumFmt: &hoursFmt,
	})
	if err != nil {
		return nil, err
	}

	lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
	title := fmt.Sprintf("Attendance Report - %s %d", time.Month(data.PeriodMonth), data.PeriodYear)
	f.SetCellValue(attendanceSheet, "A1", title)
	f.MergeCell(attendanceSheet, "A1", lastCol+"1")
	f.SetCellStyle(attendanceSheet, "A1", "A1", titleStyle)
	f.SetRowHeight(attendanceSheet, 1, 28)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(attendanceSheet, cell, h)
	}
	f.SetCellStyle(attendanceSheet, "A2", lastCol+"2", headerStyle)
	f.SetRowHeight(attendanceSheet, 2, 22)

	for i, e := range data.Employees {
		row := i + 3
		branchName := ""
		if e.BranchName != nil {
			branchName = *e.BranchName
		}
		values := []any{
			e.Name,
			e.StaffID,
			branchName,
			e.DaysPresent,
			e.DaysAbsent,
			e.LateMinutes,
			e.LateHours.InexactFloat64(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(attendanceSheet, cell, v)
		}
		f.SetCellStyle(attendanceSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), textStyle)
		f.SetCellStyle(attendanceSheet, fmt.Sprintf("D%d", row), fmt.Sprintf("F%d", row), countStyle)
		f.SetCellStyle(attendanceSheet, fmt.Sprintf("G%d", row), fmt.Sprintf("G%d", row), hoursStyle)
	}

	f.SetColWidth(attendanceSheet, "A", "A", 24)
	f.SetColWidth(attendanceSheet, "B", "C", 16)
	f.SetColWidth(attendanceSheet, "D", lastCol, 14)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
