package branch

import (
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/validator"
)

// BranchResponse represents the response structure for a branch.
type BranchResponse struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Location         *string  `json:"location,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	RadiusMeters     *int     `json:"radius_meters,omitempty"`
	RequiresLocation bool     `json:"requires_location"`
	StaffCount       int      `json:"staff_count"`
}

func ToResponse(b Branch) BranchResponse {
	_, fenced := b.Geofence()
	return BranchResponse{
		ID:               b.ID,
		Name:             b.Name,
		Location:         b.Location,
		Latitude:         b.Latitude,
		Longitude:        b.Longitude,
		RadiusMeters:     b.RadiusMeters,
		RequiresLocation: fenced,
		StaffCount:       b.StaffCount,
	}
}

// CreateBranchRequest represents the request structure for creating a branch.
type CreateBranchRequest struct {
	Name         string   `json:"name" validate:"notblank,max=100"`
	Location     *string  `json:"location,omitempty" validate:"omitempty,max=255"`
	Latitude     *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude    *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	RadiusMeters *int     `json:"radius_meters,omitempty" validate:"omitempty,gt=0"`
}

func (r *CreateBranchRequest) Validate() error {
	var errs validator.ValidationErrors
	if err := validator.Struct(r); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = append(errs, verrs...)
	}

	if (r.Latitude == nil) != (r.Longitude == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude and longitude must be provided together",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateBranchRequest represents the request structure for updating a branch.
// ClearGeofence removes the coordinates and radius, disabling location checks.
type UpdateBranchRequest struct {
	ID            string   `json:"-"`
	Name          *string  `json:"name,omitempty" validate:"omitempty,notblank,max=100"`
	Location      *string  `json:"location,omitempty" validate:"omitempty,max=255"`
	Latitude      *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude     *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	RadiusMeters  *int     `json:"radius_meters,omitempty" validate:"omitempty,gt=0"`
	ClearGeofence bool     `json:"clear_geofence,omitempty"`
}

func (r *UpdateBranchRequest) Validate() error {
	var errs validator.ValidationErrors
	if err := validator.Struct(r); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = append(errs, verrs...)
	}

	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must be a valid UUID",
		})
	}

	if (r.Latitude == nil) != (r.Longitude == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude and longitude must be provided together",
		})
	}

	if r.ClearGeofence && (r.Latitude != nil || r.RadiusMeters != nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "clear_geofence",
			Message: "clear_geofence cannot be combined with coordinates or radius",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
