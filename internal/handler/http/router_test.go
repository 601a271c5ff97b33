package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/master/branch"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/presence-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type fakeAttendanceService struct {
	attendance.AttendanceService
	checkInErr  error
	lastCheckIn attendance.CheckInRequest
	lastFilter  attendance.AttendanceFilter
}

func (f *fakeAttendanceService) CheckIn(_ context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	f.lastCheckIn = req
	if f.checkInErr != nil {
		return attendance.AttendanceResponse{}, f.checkInErr
	}
	return attendance.AttendanceResponse{ID: "att-1", UserID: req.UserID, WorkDate: "2025-03-10"}, nil
}

func (f *fakeAttendanceService) GetStatus(_ context.Context, userID string) (attendance.StatusResponse, error) {
	return attendance.StatusResponse{State: "NO_OPEN_RECORD", CanCheckIn: true}, nil
}

func (f *fakeAttendanceService) ListAttendance(_ context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	f.lastFilter = filter
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	return attendance.ListAttendanceResponse{Attendances: []attendance.AttendanceResponse{}}, nil
}

type fakeAuthService struct {
	auth.AuthService
	jwtService jwt.Service
}

func (f *fakeAuthService) Login(_ context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	return auth.TokenResponse{}, auth.ErrInvalidCredentials
}

func (f *fakeAuthService) Logout(ctx context.Context, req auth.LogoutRequest) error {
	return f.jwtService.RevokeToken(ctx, req.TokenID, req.ExpiresAt)
}

type fakeBranchService struct {
	branch.BranchService
}

func (fakeBranchService) ListBranches(context.Context) ([]branch.BranchResponse, error) {
	return []branch.BranchResponse{{ID: "b-1", Name: "Riyadh HQ"}}, nil
}

func (fakeBranchService) GetBranch(context.Context, string) (branch.BranchResponse, error) {
	return branch.BranchResponse{}, branch.ErrBranchNotFound
}

func (fakeBranchService) DeleteBranch(_ context.Context, id string) error {
	if id != "b-1" {
		return branch.ErrBranchNotFound
	}
	return nil
}

type fakeUserService struct {
	user.UserService
}

func (fakeUserService) DeleteStaff(_ context.Context, id string) error {
	switch id {
	case "admin-1":
		return user.ErrCannotDeleteAdmin
	case "user-1":
		return nil
	}
	return user.ErrUserNotFound
}

type fakeReportService struct {
	report.ReportService
	lastReq report.MonthlyAttendanceReportRequest
}

func (f *fakeReportService) ExportMonthlyAttendanceReport(_ context.Context, req report.MonthlyAttendanceReportRequest) (report.ExportFile, error) {
	f.lastReq = req
	return report.ExportFile{
		Filename:    "attendance_2025_03.xlsx",
		ContentType: report.XLSXContentType,
		Content:     []byte("PK"),
	}, nil
}

type routerFixture struct {
	handler    http.Handler
	jwt        jwt.Service
	attendance *fakeAttendanceService
	report     *fakeReportService
}

func newRouterFixture() *routerFixture {
	jwtService := jwt.NewJWTService(handlerTestSecret, "1h", nil)
	attendanceSvc := &fakeAttendanceService{}
	reportSvc := &fakeReportService{}

	router := NewRouter(RouterConfig{AllowedOrigins: []string{"http://localhost:3000"}}, jwtService, Handlers{
		Auth:       NewAuthHandler(&fakeAuthService{jwtService: jwtService}),
		Attendance: NewAttendanceHandler(attendanceSvc),
		Master:     NewMasterHandler(fakeBranchService{}),
		Staff:      NewStaffHandler(fakeUserService{}),
		Report:     NewReportHandler(reportSvc),
	})

	return &routerFixture{handler: router, jwt: jwtService, attendance: attendanceSvc, report: reportSvc}
}

func (f *routerFixture) token(t *testing.T, userID string, role user.Role) string {
	t.Helper()
	token, _, err := f.jwt.GenerateAccessToken(userID, "S001", role, nil)
	require.NoError(t, err)
	return token
}

func (f *routerFixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCheckIn_RequiresToken(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodPost, "/api/v1/attendance/check-in", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckIn_AdminIsForbidden(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodPost, "/api/v1/attendance/check-in", f.token(t, "admin-1", user.RoleAdmin), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.attendance.lastCheckIn.UserID)
}

func TestCheckIn_UsesTokenSubject(t *testing.T) {
	f := newRouterFixture()
	lat, lng := 24.7136, 46.6753

	rec := f.do(http.MethodPost, "/api/v1/attendance/check-in", f.token(t, "user-1", user.RoleStaff), attendance.CheckInRequest{
		UserID:    "someone-else",
		Latitude:  &lat,
		Longitude: &lng,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user-1", f.attendance.lastCheckIn.UserID)
	assert.Equal(t, &lat, f.attendance.lastCheckIn.Latitude)

	body := decodeBody(t, rec)
	assert.True(t, body.Success)
}

func TestCheckIn_EmptyBody(t *testing.T) {
	f := newRouterFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/check-in", nil)
	req.Header.Set("Authorization", "Bearer "+f.token(t, "user-1", user.RoleStaff))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCheckIn_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"window", attendance.ErrTooEarlyToCheckIn, http.StatusBadRequest, "TOO_EARLY_TO_CHECK_IN"},
		{"justification", attendance.ErrLateReasonRequired, http.StatusBadRequest, "LATE_REASON_REQUIRED"},
		{"geofence detail", attendance.ErrOutOfRange.Withf("you are 600 m from Riyadh HQ"), http.StatusBadRequest, "OUT_OF_RANGE"},
		{"state", attendance.ErrAlreadyOpenToday, http.StatusConflict, "ALREADY_OPEN_TODAY"},
		{"precondition", attendance.ErrNoBranchAssigned, http.StatusForbidden, "NO_BRANCH_ASSIGNED"},
		{"validation", validator.ValidationErrors{{Field: "latitude", Message: "latitude must be a valid latitude"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"infrastructure", assert.AnError, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture()
			f.attendance.checkInErr = tt.err

			rec := f.do(http.MethodPost, "/api/v1/attendance/check-in", f.token(t, "user-1", user.RoleStaff), nil)
			assert.Equal(t, tt.wantStatus, rec.Code)

			body := decodeBody(t, rec)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}

	t.Run("detail message is kept", func(t *testing.T) {
		f := newRouterFixture()
		f.attendance.checkInErr = attendance.ErrOutOfRange.Withf("you are 600 m from Riyadh HQ")

		rec := f.do(http.MethodPost, "/api/v1/attendance/check-in", f.token(t, "user-1", user.RoleStaff), nil)
		assert.Equal(t, "you are 600 m from Riyadh HQ", decodeBody(t, rec).Error.Message)
	})
}

func TestLogout_RevokesToken(t *testing.T) {
	f := newRouterFixture()
	token := f.token(t, "user-1", user.RoleStaff)

	rec := f.do(http.MethodGet, "/api/v1/attendance/status", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/attendance/status", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodPost, "/api/v1/auth/login", "", auth.LoginRequest{StaffID: "S001", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/api/v1/auth/login", "", auth.LoginRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAdminRoutes(t *testing.T) {
	f := newRouterFixture()
	staff := f.token(t, "user-1", user.RoleStaff)
	admin := f.token(t, "admin-1", user.RoleAdmin)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/v1/branches", staff, nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/v1/attendance", staff, nil).Code)

	rec := f.do(http.MethodGet, "/api/v1/branches", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/branches/b-404", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/attendance?from=2025-03-10&to=2025-03-01", admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/attendance?branch_id=0195a1c2-0000-7000-8000-000000000001&limit=50", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, f.attendance.lastFilter.Limit)
	assert.Equal(t, 50, decodeBody(t, rec).Meta.Limit)
}

func TestAdminRoutes_Delete(t *testing.T) {
	f := newRouterFixture()
	staff := f.token(t, "user-1", user.RoleStaff)
	admin := f.token(t, "admin-1", user.RoleAdmin)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/api/v1/branches/b-1", staff, nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/api/v1/staff/user-1", staff, nil).Code)

	assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/api/v1/branches/b-1", admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/api/v1/branches/b-404", admin, nil).Code)

	assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/api/v1/staff/user-1", admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/api/v1/staff/user-404", admin, nil).Code)

	rec := f.do(http.MethodDelete, "/api/v1/staff/admin-1", admin, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "cannot be deleted")
}

func TestExportMonthlyAttendanceReport(t *testing.T) {
	f := newRouterFixture()
	admin := f.token(t, "admin-1", user.RoleAdmin)

	rec := f.do(http.MethodGet, "/api/v1/reports/attendance/export?year=2025&month=3", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, report.XLSXContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attendance_2025_03.xlsx")
	assert.Equal(t, "PK", rec.Body.String())
	assert.Equal(t, report.MonthlyAttendanceReportRequest{Year: 2025, Month: 3}, f.report.lastReq)

	rec = f.do(http.MethodGet, "/api/v1/reports/attendance/export?month=march", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
