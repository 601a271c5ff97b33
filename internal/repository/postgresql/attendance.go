package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/civiltime"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	constraintOneOpenPerUser = "attendances_one_open_per_user"
	constraintUserWorkDate   = "attendances_user_work_date_key"
)

const attendanceColumns = `
	a.id, a.user_id, a.work_date, a.check_in_at, a.check_out_at,
	a.check_in_late_reason, a.check_out_early_reason,
	a.check_in_latitude, a.check_in_longitude,
	a.check_out_latitude, a.check_out_longitude,
	a.created_at, a.updated_at`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// scanAttendance reads attendanceColumns followed by any extra destinations.
func scanAttendance(row pgx.Row, extra ...any) (attendance.Attendance, error) {
	var (
		att      attendance.Attendance
		workDate time.Time
		reason   *string
	)
	dest := []any{
		&att.ID, &att.UserID, &workDate, &att.CheckInAt, &att.CheckOutAt,
		&att.CheckInLateReason, &reason,
		&att.CheckInLatitude, &att.CheckInLongitude,
		&att.CheckOutLatitude, &att.CheckOutLongitude,
		&att.CreatedAt, &att.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return attendance.Attendance{}, err
	}
	att.WorkDate = civiltime.DateOf(workDate)
	att.CheckOutReason = attendance.ParseCheckoutReason(reason)
	return att, nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	if newAttendance.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return attendance.Attendance{}, fmt.Errorf("failed to generate attendance id: %w", err)
		}
		newAttendance.ID = id.String()
	}

	query := `
		INSERT INTO attendances (
			id, user_id, work_date, check_in_at,
			check_in_late_reason, check_in_latitude, check_in_longitude,
			created_at, updated_at
		) VALUES (
			$1, $2, $3::date, $4, $5, $6, $7, NOW(), NOW()
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newAttendance.ID,
		newAttendance.UserID,
		newAttendance.WorkDate.String(),
		newAttendance.CheckInAt,
		newAttendance.CheckInLateReason,
		newAttendance.CheckInLatitude,
		newAttendance.CheckInLongitude,
	).Scan(&newAttendance.CreatedAt, &newAttendance.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case constraintOneOpenPerUser:
				return attendance.Attendance{}, attendance.ErrAlreadyOpenToday
			case constraintUserWorkDate:
				return attendance.Attendance{}, a.workDateConflict(ctx, newAttendance)
			}
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// workDateConflict classifies a violation of the (user_id, work_date) key.
// The date key is checked before the open-record index, so a losing
// concurrent check-in lands here even though the winner's record is still
// open. The failed statement aborts any surrounding transaction, so the
// committed row is read through the pool.
func (a *attendanceRepository) workDateConflict(ctx context.Context, rejected attendance.Attendance) error {
	var open bool
	err := a.db.Pool.QueryRow(ctx, `
		SELECT check_out_at IS NULL
		FROM attendances
		WHERE user_id = $1 AND work_date = $2::date
	`, rejected.UserID, rejected.WorkDate.String()).Scan(&open)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ErrAlreadyCheckedInToday
		}
		return fmt.Errorf("failed to classify attendance conflict: %w", err)
	}
	if open {
		return attendance.ErrAlreadyOpenToday
	}
	return attendance.ErrAlreadyCheckedInToday
}

// FindOpenByUser implements attendance.AttendanceRepository.
func (a *attendanceRepository) FindOpenByUser(ctx context.Context, userID string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.user_id = $1
		  AND a.check_out_at IS NULL
		ORDER BY a.check_in_at DESC
		LIMIT 1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open attendance: %w", err)
	}

	return &att, nil
}

// FindByUserAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) FindByUserAndDate(ctx context.Context, userID string, date civiltime.Date) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.user_id = $1
		  AND a.work_date = $2::date
		LIMIT 1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, userID, date.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No existing attendance found
		}
		return nil, fmt.Errorf("failed to get attendance by user and date: %w", err)
	}

	return &att, nil
}

// Close implements attendance.AttendanceRepository.
func (a *attendanceRepository) Close(ctx context.Context, id string, params attendance.CloseParams) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances a
		SET check_out_at = $2,
			check_out_early_reason = $3,
			check_out_latitude = $4,
			check_out_longitude = $5,
			updated_at = NOW()
		WHERE a.id = $1
		  AND a.check_out_at IS NULL
		RETURNING ` + attendanceColumns

	att, err := scanAttendance(q.QueryRow(ctx, query,
		id,
		params.CheckOutAt,
		params.Reason.Stored(),
		params.Latitude,
		params.Longitude,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrNoOpenAttendance
		}
		return attendance.Attendance{}, fmt.Errorf("failed to close attendance: %w", err)
	}

	return att, nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "TRUE"
	args := []interface{}{}
	argIdx := 1

	if filter.BranchID != nil && *filter.BranchID != "" {
		baseWhere += fmt.Sprintf(" AND u.branch_id = $%d", argIdx)
		args = append(args, *filter.BranchID)
		argIdx++
	}

	// Date range filters
	if filter.From != nil && *filter.From != "" {
		baseWhere += fmt.Sprintf(" AND a.work_date >= $%d::date", argIdx)
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil && *filter.To != "" {
		baseWhere += fmt.Sprintf(" AND a.work_date <= $%d::date", argIdx)
		args = append(args, *filter.To)
		argIdx++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = attendance.DefaultAdminListLimit
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT %s,
			u.name, u.staff_id, b.name
		FROM attendances a
		JOIN users u ON u.id = a.user_id
		LEFT JOIN branches b ON b.id = u.branch_id
		WHERE %s
		ORDER BY a.check_in_at DESC
		LIMIT $%d
	`, attendanceColumns, baseWhere, argIdx)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	attendances := make([]attendance.Attendance, 0)
	for rows.Next() {
		var userName, staffID, branchName *string
		att, err := scanAttendance(rows, &userName, &staffID, &branchName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		att.UserName, att.StaffID, att.BranchName = userName, staffID, branchName
		attendances = append(attendances, att)
	}

	return attendances, rows.Err()
}

// ListByUser implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByUser(ctx context.Context, userID string, limit int) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	if limit <= 0 {
		limit = attendance.DefaultOwnListLimit
	}

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.user_id = $1
		ORDER BY a.check_in_at DESC
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query user attendances: %w", err)
	}
	defer rows.Close()

	attendances := make([]attendance.Attendance, 0)
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}

	return attendances, rows.Err()
}

// ListOpenUserIDs implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenUserIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, `SELECT user_id FROM attendances WHERE check_out_at IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to query open attendances: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan open attendances: %w", err)
	}
	return ids, nil
}

// ListCheckInsBetween implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListCheckInsBetween(ctx context.Context, from, to time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.check_in_at >= $1
		  AND a.check_in_at < $2
		ORDER BY a.check_in_at
	`

	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query check-ins: %w", err)
	}
	defer rows.Close()

	attendances := make([]attendance.Attendance, 0)
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}

	return attendances, rows.Err()
}
