package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/master/branch"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type branchRepositoryImpl struct {
	db *database.DB
}

func NewBranchRepository(db *database.DB) branch.BranchRepository {
	return &branchRepositoryImpl{db: db}
}

// Create implements branch.BranchRepository.
func (r *branchRepositoryImpl) Create(ctx context.Context, b branch.Branch) (branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return branch.Branch{}, fmt.Errorf("failed to generate branch id: %w", err)
	}

	query := `
		INSERT INTO branches (id, name, location, latitude, longitude, radius_meters, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, name, location, latitude, longitude, radius_meters, created_at, updated_at
	`

	var result branch.Branch
	err = q.QueryRow(ctx, query, id.String(), b.Name, b.Location, b.Latitude, b.Longitude, b.RadiusMeters).Scan(
		&result.ID,
		&result.Name,
		&result.Location,
		&result.Latitude,
		&result.Longitude,
		&result.RadiusMeters,
		&result.CreatedAt,
		&result.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return branch.Branch{}, branch.ErrBranchNameExists
		}
		return branch.Branch{}, fmt.Errorf("failed to create branch: %w", err)
	}

	return result, nil
}

// GetByID implements branch.BranchRepository.
func (r *branchRepositoryImpl) GetByID(ctx context.Context, id string) (branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT b.id, b.name, b.location, b.latitude, b.longitude, b.radius_meters, b.created_at, b.updated_at,
			(SELECT COUNT(*) FROM users u WHERE u.branch_id = b.id)
		FROM branches b
		WHERE b.id = $1
	`

	var result branch.Branch
	err := q.QueryRow(ctx, query, id).Scan(
		&result.ID,
		&result.Name,
		&result.Location,
		&result.Latitude,
		&result.Longitude,
		&result.RadiusMeters,
		&result.CreatedAt,
		&result.UpdatedAt,
		&result.StaffCount,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return branch.Branch{}, branch.ErrBranchNotFound
		}
		return branch.Branch{}, fmt.Errorf("failed to get branch: %w", err)
	}

	return result, nil
}

// List implements branch.BranchRepository.
func (r *branchRepositoryImpl) List(ctx context.Context) ([]branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT b.id, b.name, b.location, b.latitude, b.longitude, b.radius_meters, b.created_at, b.updated_at,
			COUNT(u.id)
		FROM branches b
		LEFT JOIN users u ON u.branch_id = b.id
		GROUP BY b.id
		ORDER BY b.name ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer rows.Close()

	branches := make([]branch.Branch, 0)
	for rows.Next() {
		var b branch.Branch
		if err := rows.Scan(
			&b.ID,
			&b.Name,
			&b.Location,
			&b.Latitude,
			&b.Longitude,
			&b.RadiusMeters,
			&b.CreatedAt,
			&b.UpdatedAt,
			&b.StaffCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		branches = append(branches, b)
	}

	return branches, rows.Err()
}

// Update implements branch.BranchRepository.
func (r *branchRepositoryImpl) Update(ctx context.Context, req branch.UpdateBranchRequest) error {
	q := GetQuerier(ctx, r.db)

	updates := []string{}
	args := []interface{}{}
	argIdx := 1

	set := func(column string, v interface{}) {
		updates = append(updates, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, v)
		argIdx++
	}

	if req.Name != nil {
		set("name", strings.TrimSpace(*req.Name))
	}
	if req.Location != nil {
		set("location", *req.Location)
	}
	if req.ClearGeofence {
		updates = append(updates, "latitude = NULL", "longitude = NULL", "radius_meters = NULL")
	} else {
		if req.Latitude != nil {
			set("latitude", *req.Latitude)
		}
		if req.Longitude != nil {
			set("longitude", *req.Longitude)
		}
		if req.RadiusMeters != nil {
			set("radius_meters", *req.RadiusMeters)
		}
	}

	if len(updates) == 0 {
		return nil
	}

	updates = append(updates, "updated_at = NOW()")
	query := fmt.Sprintf("UPDATE branches SET %s WHERE id = $%d", strings.Join(updates, ", "), argIdx)
	args = append(args, req.ID)

	cmdTag, err := q.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return branch.ErrBranchNameExists
		}
		return fmt.Errorf("failed to update branch: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return branch.ErrBranchNotFound
	}

	return nil
}

// Delete implements branch.BranchRepository. Staff assigned to the branch
// keep their accounts with branch_id cleared.
func (r *branchRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	cmdTag, err := q.Exec(ctx, `DELETE FROM branches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete branch: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return branch.ErrBranchNotFound
	}

	return nil
}
