package branch

import "context"

type BranchRepository interface {
	Create(ctx context.Context, branch Branch) (Branch, error)
	GetByID(ctx context.Context, id string) (Branch, error)
	List(ctx context.Context) ([]Branch, error)
	Update(ctx context.Context, req UpdateBranchRequest) error
	Delete(ctx context.Context, id string) error
}

type BranchService interface {
	CreateBranch(ctx context.Context, req CreateBranchRequest) (BranchResponse, error)
	GetBranch(ctx context.Context, id string) (BranchResponse, error)
	ListBranches(ctx context.Context) ([]BranchResponse, error)
	UpdateBranch(ctx context.Context, req UpdateBranchRequest) (BranchResponse, error)
	DeleteBranch(ctx context.Context, id string) error
}
