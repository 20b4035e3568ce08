// Package geofence decides whether a reported position counts as present at
// a venue.
package geofence

import (
	"math"

	"presencia/backend/internal/entity"
)

const earthRadiusMeters = 6371000

// DistanceMeters returns the great-circle distance between two coordinates
// using the haversine formula.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Nearest selects the venue closest to the position. The first venue wins
// ties. ok is false when venues is empty.
func Nearest(lat, lng float64, venues []entity.Location) (nearest entity.Location, distance float64, ok bool) {
	for i, v := range venues {
		d := DistanceMeters(lat, lng, v.Latitude, v.Longitude)
		if i == 0 || d < distance {
			nearest, distance = v, d
		}
	}
	return nearest, distance, len(venues) > 0
}

// Inside reports whether the distance falls within the venue's allowed radius.
func Inside(distance float64, venue entity.Location) bool {
	return distance <= venue.Radius
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
