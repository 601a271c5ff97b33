package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = `
	u.id, u.staff_id, u.name, u.password_hash, u.role, u.branch_id,
	u.work_start, u.work_end, u.active, u.created_at, u.updated_at, b.name`

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.StaffID,
		&u.Name,
		&u.PasswordHash,
		&u.Role,
		&u.BranchID,
		&u.WorkStart,
		&u.WorkEnd,
		&u.Active,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.BranchName,
	)
	return u, err
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + `
		FROM users u
		LEFT JOIN branches b ON b.id = u.branch_id
		WHERE u.id = $1
	`

	u, err := scanUser(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

// GetByStaffID implements user.UserRepository.
func (r *userRepositoryImpl) GetByStaffID(ctx context.Context, staffID string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + `
		FROM users u
		LEFT JOIN branches b ON b.id = u.branch_id
		WHERE u.staff_id = $1
	`

	u, err := scanUser(q.QueryRow(ctx, query, staffID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by staff id: %w", err)
	}
	return u, nil
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	if newUser.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return user.User{}, fmt.Errorf("failed to generate user id: %w", err)
		}
		newUser.ID = id.String()
	}

	query := `
		INSERT INTO users (id, staff_id, name, password_hash, role, branch_id, work_start, work_end, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newUser.ID,
		newUser.StaffID,
		newUser.Name,
		newUser.PasswordHash,
		newUser.Role,
		newUser.BranchID,
		newUser.WorkStart,
		newUser.WorkEnd,
		newUser.Active,
	).Scan(&newUser.CreatedAt, &newUser.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.User{}, user.ErrStaffIDExists
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, nil
}

// Update implements user.UserRepository. Empty strings clear nullable columns.
func (r *userRepositoryImpl) Update(ctx context.Context, req user.UpdateStaffRequest) error {
	q := GetQuerier(ctx, r.db)

	updates := []string{}
	args := []interface{}{}
	argIdx := 1

	nullable := func(column string, v *string) {
		if v == nil {
			return
		}
		updates = append(updates, fmt.Sprintf("%s = $%d", column, argIdx))
		if *v == "" {
			args = append(args, nil)
		} else {
			args = append(args, *v)
		}
		argIdx++
	}

	if req.Name != nil {
		updates = append(updates, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, strings.TrimSpace(*req.Name))
		argIdx++
	}
	nullable("branch_id", req.BranchID)
	nullable("work_start", req.WorkStart)
	nullable("work_end", req.WorkEnd)
	if req.Active != nil {
		updates = append(updates, fmt.Sprintf("active = $%d", argIdx))
		args = append(args, *req.Active)
		argIdx++
	}
	if req.PasswordHash != nil {
		updates = append(updates, fmt.Sprintf("password_hash = $%d", argIdx))
		args = append(args, *req.PasswordHash)
		argIdx++
	}

	if len(updates) == 0 {
		return nil
	}

	updates = append(updates, "updated_at = NOW()")
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(updates, ", "), argIdx)
	args = append(args, req.ID)

	cmdTag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// UpdatePassword implements user.UserRepository.
func (r *userRepositoryImpl) UpdatePassword(ctx context.Context, userID string, passwordHash string) error {
	q := GetQuerier(ctx, r.db)

	cmdTag, err := q.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// ListByRole implements user.UserRepository.
func (r *userRepositoryImpl) ListByRole(ctx context.Context, role user.Role) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + `
		FROM users u
		LEFT JOIN branches b ON b.id = u.branch_id
		WHERE u.role = $1
		ORDER BY u.name ASC
	`

	rows, err := q.Query(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ExistsByRole implements user.UserRepository.
func (r *userRepositoryImpl) ExistsByRole(ctx context.Context, role user.Role) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE role = $1)`, role).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check users by role: %w", err)
	}
	return exists, nil
}

// Delete implements user.UserRepository. Attendance rows go with the user.
func (r *userRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	cmdTag, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
