package report

import "errors"

var (
	ErrReportGenerationFailed = errors.New("failed to generate report")
	ErrExportFailed           = errors.New("failed to export report")
)
