package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used by HaversineDistanceMeters.
const EarthRadiusMeters = 6371000.0

// HaversineDistanceMeters returns the great-circle distance between a and b.
// Only auxiliary queries (nearby drivers, delivery estimates) use it;
// classification is purely planar.
func HaversineDistanceMeters(a, b Coordinate) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	return haversine(a, b), nil
}

func haversine(a, b Coordinate) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLng := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
