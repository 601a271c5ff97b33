package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/presence-backend-go/internal/config"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/presence-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/presence-backend-go/internal/service/attendance"
	userService "github.com/cmlabs-hris/presence-backend-go/internal/service/user"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// withDB loads configuration, connects to PostgreSQL and hands the pool to fn.
func withDB(fn func(ctx context.Context, db *database.DB) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

		db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		return fn(cmd.Context(), db)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "presencectl",
		Short:        "Maintenance commands for the presence service",
		SilenceUsage: true,
	}
	root.AddCommand(
		newMigrateCommand(),
		newSetupAdminCommand(),
		newResetAdminPasswordCommand(),
		newSweepCommand(),
	)
	return root
}

func newMigrateCommand() *cobra.Command {
	var down int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations (or roll back with --down)",
		Args:  cobra.NoArgs,
		RunE: withDB(func(ctx context.Context, db *database.DB) error {
			if down > 0 {
				if err := db.RollbackMigrations(down); err != nil {
					return err
				}
				fmt.Printf("Rolled back %d migration(s)\n", down)
				return nil
			}
			return db.RunMigrations()
		}),
	}
	cmd.Flags().IntVar(&down, "down", 0, "number of migrations to roll back")
	return cmd
}

func newSetupAdminCommand() *cobra.Command {
	var staffID, password string

	cmd := &cobra.Command{
		Use:   "setup-admin",
		Short: "Create the administrator account if none exists",
		Args:  cobra.NoArgs,
		RunE: withDB(func(ctx context.Context, db *database.DB) error {
			if err := db.RunMigrations(); err != nil {
				return err
			}

			created, err := userService.EnsureAdmin(ctx, postgresql.NewUserRepository(db), staffID, password)
			if err != nil {
				return err
			}
			if !created {
				fmt.Println("An admin account already exists; nothing to do")
				return nil
			}
			fmt.Printf("Admin account %q created\n", staffID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&staffID, "staff-id", userService.DefaultAdminStaffID, "staff id of the admin account")
	cmd.Flags().StringVar(&password, "password", userService.DefaultAdminPassword, "initial password")
	return cmd
}

func newResetAdminPasswordCommand() *cobra.Command {
	var staffID, password string

	cmd := &cobra.Command{
		Use:   "reset-admin-password",
		Short: "Set a new password on the administrator account",
		Args:  cobra.NoArgs,
		RunE: withDB(func(ctx context.Context, db *database.DB) error {
			if err := userService.ResetAdminPassword(ctx, postgresql.NewUserRepository(db), staffID, password); err != nil {
				return err
			}
			fmt.Printf("Password for %q updated\n", staffID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&staffID, "staff-id", userService.DefaultAdminStaffID, "staff id of the admin account")
	cmd.Flags().StringVar(&password, "password", userService.DefaultAdminPassword, "new password")
	return cmd
}

func newSweepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Close every attendance record whose check-out window has passed",
		Args:  cobra.NoArgs,
		RunE: withDB(func(ctx context.Context, db *database.DB) error {
			svc := attendanceService.NewAttendanceService(
				postgresql.NewTransactor(db),
				postgresql.NewAttendanceRepository(db),
				postgresql.NewUserRepository(db),
				postgresql.NewBranchRepository(db),
			)
			closed, err := svc.SweepAll(ctx)
			fmt.Printf("Closed %d attendance record(s)\n", closed)
			return err
		}),
	}
}
