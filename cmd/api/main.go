package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/presence-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/redis"
	"github.com/cmlabs-hris/presence-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/presence-backend-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/presence-backend-go/internal/service/auth"
	"github.com/cmlabs-hris/presence-backend-go/internal/service/master"
	reportService "github.com/cmlabs-hris/presence-backend-go/internal/service/report"
	userService "github.com/cmlabs-hris/presence-backend-go/internal/service/user"
	"github.com/go-chi/httplog/v3"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "presence-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		return err
	}

	var revocations jwt.RevocationStore
	if addr := cfg.RedisAddr(); addr != "" {
		redisClient, err := redis.NewClient(ctx, addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		revocations = redisClient
	} else {
		slog.Warn("REDIS_HOST not set, token revocations are kept in memory")
	}

	userRepo := postgresql.NewUserRepository(db)
	branchRepo := postgresql.NewBranchRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	transactor := postgresql.NewTransactor(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, revocations)
	authService := serviceAuth.NewAuthService(userRepo, JWTService)
	branchService := master.NewBranchService(branchRepo)
	staffService := userService.NewUserService(userRepo, branchRepo)
	attendanceSvc := attendanceService.NewAttendanceService(transactor, attendanceRepo, userRepo, branchRepo)
	reportSvc := reportService.NewReportService(userRepo, attendanceRepo)

	scheduler := cron.NewScheduler()
	if cfg.Attendance.SweepEnabled {
		cron.NewAttendanceJobs(attendanceSvc).RegisterJobs(scheduler, cfg.Attendance.SweepInterval)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		Logger:         logger,
		LogLevel:       cfg.SlogLevel(),
		AllowedOrigins: []string{cfg.App.FrontendURL},
	}, JWTService, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(authService),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Master:     appHTTP.NewMasterHandler(branchService),
		Staff:      appHTTP.NewStaffHandler(staffService),
		Report:     appHTTP.NewReportHandler(reportSvc),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
