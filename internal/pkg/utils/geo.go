package utils

import "math"

// EarthRadiusMeters is the mean Earth radius used for great-circle distances.
const EarthRadiusMeters = 6371000

// CalculateHaversineDistance returns the great-circle distance in meters
// between two coordinates given in decimal degrees.
func CalculateHaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// WithinRadius reports whether the claimed point lies within radiusMeters of
// the center. The boundary is inclusive.
func WithinRadius(centerLat, centerLng, lat, lng, radiusMeters float64) bool {
	return CalculateHaversineDistance(centerLat, centerLng, lat, lng) <= radiusMeters
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
