package branch

import "time"

// DefaultRadiusMeters applies when a branch is created with coordinates but no radius.
const DefaultRadiusMeters = 500

type Branch struct {
	ID           string
	Name         string
	Location     *string
	Latitude     *float64
	Longitude    *float64
	RadiusMeters *int
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Aggregate
	StaffCount int
}

// Geofence is the circular area staff must be inside to check in or out.
type Geofence struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

// Geofence returns the branch's geofence. ok is false unless latitude,
// longitude and radius are all configured.
func (b *Branch) Geofence() (g Geofence, ok bool) {
	if b.Latitude == nil || b.Longitude == nil || b.RadiusMeters == nil {
		return Geofence{}, false
	}
	return Geofence{
		Latitude:     *b.Latitude,
		Longitude:    *b.Longitude,
		RadiusMeters: float64(*b.RadiusMeters),
	}, true
}
