package matching

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Haversine returns the great-circle distance between two points in km.
func Haversine(a, b Coordinates) float64 {
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat +
		math.Cos(radians(a.Latitude))*math.Cos(radians(b.Latitude))*sinLon*sinLon

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// FilterNearby returns the ids whose position lies within radiusKm of
// origin (boundary inclusive). Ids absent from positions are excluded:
// a worker without a live position is simply not nearby.
func FilterNearby(origin Coordinates, workerIDs []int64, positions map[int64]Coordinates, radiusKm float64) []int64 {
	nearby := make([]int64, 0, len(workerIDs))
	for _, id := range workerIDs {
		pos, ok := positions[id]
		if !ok {
			continue
		}
		if Haversine(origin, pos) <= radiusKm {
			nearby = append(nearby, id)
		}
	}
	return nearby
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
