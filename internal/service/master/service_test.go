package master

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/master/branch"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBranchRepo struct {
	branches map[string]branch.Branch
}

func newMemBranchRepo() *memBranchRepo {
	return &memBranchRepo{branches: map[string]branch.Branch{}}
}

func (r *memBranchRepo) Create(_ context.Context, b branch.Branch) (branch.Branch, error) {
	for _, existing := range r.branches {
		if existing.Name == b.Name {
			return branch.Branch{}, branch.ErrBranchNameExists
		}
	}
	b.ID = uuid.Must(uuid.NewV7()).String()
	r.branches[b.ID] = b
	return b, nil
}

func (r *memBranchRepo) GetByID(_ context.Context, id string) (branch.Branch, error) {
	b, ok := r.branches[id]
	if !ok {
		return branch.Branch{}, branch.ErrBranchNotFound
	}
	return b, nil
}

func (r *memBranchRepo) List(context.Context) ([]branch.Branch, error) {
	out := make([]branch.Branch, 0, len(r.branches))
	for _, b := range r.branches {
		out = append(out, b)
	}
	return out, nil
}

func (r *memBranchRepo) Update(_ context.Context, req branch.UpdateBranchRequest) error {
	b, ok := r.branches[req.ID]
	if !ok {
		return branch.ErrBranchNotFound
	}
	if req.Name != nil {
		b.Name = *req.Name
	}
	if req.ClearGeofence {
		b.Latitude, b.Longitude, b.RadiusMeters = nil, nil, nil
	}
	if req.Latitude != nil {
		b.Latitude, b.Longitude = req.Latitude, req.Longitude
	}
	if req.RadiusMeters != nil {
		b.RadiusMeters = req.RadiusMeters
	}
	r.branches[req.ID] = b
	return nil
}

func (r *memBranchRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.branches[id]; !ok {
		return branch.ErrBranchNotFound
	}
	delete(r.branches, id)
	return nil
}

func ptr[T any](v T) *T { return &v }

func TestCreateBranch(t *testing.T) {
	svc := NewBranchService(newMemBranchRepo())
	ctx := context.Background()

	t.Run("without geofence", func(t *testing.T) {
		resp, err := svc.CreateBranch(ctx, branch.CreateBranchRequest{Name: "  Jeddah  "})
		require.NoError(t, err)
		assert.Equal(t, "Jeddah", resp.Name)
		assert.False(t, resp.RequiresLocation)
		assert.Nil(t, resp.RadiusMeters)
	})

	t.Run("coordinates get the default radius", func(t *testing.T) {
		resp, err := svc.CreateBranch(ctx, branch.CreateBranchRequest{
			Name:      "Riyadh HQ",
			Latitude:  ptr(24.7136),
			Longitude: ptr(46.6753),
		})
		require.NoError(t, err)
		assert.True(t, resp.RequiresLocation)
		require.NotNil(t, resp.RadiusMeters)
		assert.Equal(t, branch.DefaultRadiusMeters, *resp.RadiusMeters)
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := svc.CreateBranch(ctx, branch.CreateBranchRequest{Name: "Jeddah"})
		assert.ErrorIs(t, err, branch.ErrBranchNameExists)
	})

	t.Run("latitude without longitude", func(t *testing.T) {
		_, err := svc.CreateBranch(ctx, branch.CreateBranchRequest{Name: "Dammam", Latitude: ptr(26.4)})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.ToMap(), "latitude")
	})

	t.Run("out of range coordinates", func(t *testing.T) {
		_, err := svc.CreateBranch(ctx, branch.CreateBranchRequest{Name: "Nowhere", Latitude: ptr(91.0), Longitude: ptr(10.0)})
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})
}

func TestUpdateBranch(t *testing.T) {
	repo := newMemBranchRepo()
	svc := NewBranchService(repo)
	ctx := context.Background()

	created, err := svc.CreateBranch(ctx, branch.CreateBranchRequest{Name: "Riyadh HQ"})
	require.NoError(t, err)

	resp, err := svc.UpdateBranch(ctx, branch.UpdateBranchRequest{
		ID:        created.ID,
		Latitude:  ptr(24.7136),
		Longitude: ptr(46.6753),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.RadiusMeters)
	assert.Equal(t, branch.DefaultRadiusMeters, *resp.RadiusMeters)
	assert.True(t, resp.RequiresLocation)

	resp, err = svc.UpdateBranch(ctx, branch.UpdateBranchRequest{ID: created.ID, RadiusMeters: ptr(250)})
	require.NoError(t, err)
	assert.Equal(t, 250, *resp.RadiusMeters)

	resp, err = svc.UpdateBranch(ctx, branch.UpdateBranchRequest{ID: created.ID, ClearGeofence: true})
	require.NoError(t, err)
	assert.False(t, resp.RequiresLocation)

	_, err = svc.UpdateBranch(ctx, branch.UpdateBranchRequest{ID: uuid.Must(uuid.NewV7()).String(), Name: ptr("Ghost")})
	assert.ErrorIs(t, err, branch.ErrBranchNotFound)
}

func TestGetBranch(t *testing.T) {
	svc := NewBranchService(newMemBranchRepo())

	_, err := svc.GetBranch(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, branch.ErrBranchNotFound)
}

func TestDeleteBranch(t *testing.T) {
	repo := newMemBranchRepo()
	svc := NewBranchService(repo)
	ctx := context.Background()

	created, err := svc.CreateBranch(ctx, branch.CreateBranchRequest{Name: "Jeddah"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBranch(ctx, created.ID))
	assert.Empty(t, repo.branches)

	_, err = svc.GetBranch(ctx, created.ID)
	assert.ErrorIs(t, err, branch.ErrBranchNotFound)

	assert.ErrorIs(t, svc.DeleteBranch(ctx, created.ID), branch.ErrBranchNotFound)
	assert.ErrorIs(t, svc.DeleteBranch(ctx, "not-a-uuid"), branch.ErrBranchNotFound)
}
