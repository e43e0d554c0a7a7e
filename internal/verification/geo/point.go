package geo

import "math"

// Point is a geocoded coordinate with an optional display label.
// The zero value (0, 0, "") is the sentinel for "geocoding unavailable";
// callers must treat it as absent, never as a real equatorial location.
type Point struct {
	Lat         float64
	Lng         float64
	DisplayName string
}

// IsZero reports whether the point is the "unavailable" sentinel.
func (p Point) IsZero() bool {
	return p.Lat == 0 && p.Lng == 0
}

const earthRadiusKM = 6371

// DistanceKM returns the great-circle distance between two coordinates
// in kilometers, using the Haversine formula.
func DistanceKM(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}
