package master

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/master/branch"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/validator"
)

type branchServiceImpl struct {
	branchRepo branch.BranchRepository
}

func NewBranchService(branchRepo branch.BranchRepository) branch.BranchService {
	return &branchServiceImpl{
		branchRepo: branchRepo,
	}
}

// ==================== BRANCH OPERATIONS ====================

func (s *branchServiceImpl) CreateBranch(ctx context.Context, req branch.CreateBranchRequest) (branch.BranchResponse, error) {
	if err := req.Validate(); err != nil {
		return branch.BranchResponse{}, err
	}

	entity := branch.Branch{
		Name:         strings.TrimSpace(req.Name),
		Location:     req.Location,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusMeters: req.RadiusMeters,
	}
	if entity.Latitude != nil && entity.RadiusMeters == nil {
		radius := branch.DefaultRadiusMeters
		entity.RadiusMeters = &radius
	}

	created, err := s.branchRepo.Create(ctx, entity)
	if err != nil {
		return branch.BranchResponse{}, err
	}

	slog.Info("Branch created", "branch_id", created.ID, "geofenced", created.Latitude != nil)
	return branch.ToResponse(created), nil
}

func (s *branchServiceImpl) GetBranch(ctx context.Context, id string) (branch.BranchResponse, error) {
	if !validator.IsValidUUID(id) {
		return branch.BranchResponse{}, branch.ErrBranchNotFound
	}

	entity, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		return branch.BranchResponse{}, err
	}
	return branch.ToResponse(entity), nil
}

func (s *branchServiceImpl) ListBranches(ctx context.Context) ([]branch.BranchResponse, error) {
	entities, err := s.branchRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	responses := make([]branch.BranchResponse, 0, len(entities))
	for _, entity := range entities {
		responses = append(responses, branch.ToResponse(entity))
	}
	return responses, nil
}

func (s *branchServiceImpl) UpdateBranch(ctx context.Context, req branch.UpdateBranchRequest) (branch.BranchResponse, error) {
	if err := req.Validate(); err != nil {
		return branch.BranchResponse{}, err
	}

	// Coordinates on a branch that had none get the default radius.
	if req.Latitude != nil && req.RadiusMeters == nil {
		current, err := s.branchRepo.GetByID(ctx, req.ID)
		if err != nil {
			return branch.BranchResponse{}, err
		}
		if current.RadiusMeters == nil {
			radius := branch.DefaultRadiusMeters
			req.RadiusMeters = &radius
		}
	}

	if err := s.branchRepo.Update(ctx, req); err != nil {
		return branch.BranchResponse{}, err
	}

	updated, err := s.branchRepo.GetByID(ctx, req.ID)
	if err != nil {
		return branch.BranchResponse{}, err
	}
	return branch.ToResponse(updated), nil
}

func (s *branchServiceImpl) DeleteBranch(ctx context.Context, id string) error {
	if !validator.IsValidUUID(id) {
		return branch.ErrBranchNotFound
	}

	if err := s.branchRepo.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("Branch deleted", "branch_id", id)
	return nil
}
