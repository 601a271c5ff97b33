package http

import (
	"log/slog"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/presence-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	Logger         *slog.Logger
	LogLevel       slog.Level
	AllowedOrigins []string
}

type Handlers struct {
	Auth       AuthHandler
	Attendance AttendanceHandler
	Master     MasterHandler
	Staff      StaffHandler
	Report     ReportHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	if cfg.Logger != nil {
		r.Use(httplog.RequestLogger(cfg.Logger, &httplog.Options{
			Level:  cfg.LogLevel,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.With(chiMiddleware.AllowContentType("application/json")).Post("/login", h.Auth.Login)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Post("/auth/logout", h.Auth.Logout)

			r.Route("/me", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionViewOwnProfile)).Get("/", h.Staff.GetProfile)
				r.With(middleware.RequirePermission(user.PermissionEditOwnProfile)).Put("/password", h.Staff.ChangePassword)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceCreate))
					r.Post("/check-in", h.Attendance.CheckIn)
					r.Post("/check-out", h.Attendance.CheckOut)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewOwn))
					r.Get("/status", h.Attendance.Status)
					r.Get("/my", h.Attendance.GetMyAttendance)
				})

				r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).Get("/", h.Attendance.List)
			})

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/branches", func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionBranchManage))
					r.Get("/", h.Master.ListBranches)
					r.Post("/", h.Master.CreateBranch)
					r.Get("/{id}", h.Master.GetBranch)
					r.Put("/{id}", h.Master.UpdateBranch)
					r.Delete("/{id}", h.Master.DeleteBranch)
				})

				r.Route("/staff", func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionStaffManage))
					r.Get("/", h.Staff.List)
					r.Post("/", h.Staff.Create)
					r.Get("/{id}", h.Staff.Get)
					r.Put("/{id}", h.Staff.Update)
					r.Delete("/{id}", h.Staff.Delete)
				})

				r.Route("/reports", func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionReportsView))
					r.Get("/attendance", h.Report.GetMonthlyAttendanceReport)
					r.Get("/attendance/export", h.Report.ExportMonthlyAttendanceReport)
				})
			})
		})
	})
	return r
}
