package geofence

import (
	"testing"

	"presencia/backend/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestDistanceZeroForIdenticalPoints(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{-34.6037, -58.3816}, // Buenos Aires
		{89.9, 179.9},
	}
	for _, p := range points {
		assert.Zero(t, DistanceMeters(p[0], p[1], p[0], p[1]))
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := [2]float64{-34.6037, -58.3816}
	b := [2]float64{-34.9215, -57.9545} // La Plata

	ab := DistanceMeters(a[0], a[1], b[0], b[1])
	ba := DistanceMeters(b[0], b[1], a[0], a[1])
	assert.InDelta(t, ab, ba, 1e-9)
	assert.Greater(t, ab, 0.0)
}

func TestDistanceKnownValue(t *testing.T) {
	// Buenos Aires to La Plata is roughly 52 km.
	d := DistanceMeters(-34.6037, -58.3816, -34.9215, -57.9545)
	assert.InDelta(t, 52000, d, 2500)
}

func TestDistanceGrowsWithSeparation(t *testing.T) {
	near := DistanceMeters(-34.6037, -58.3816, -34.6040, -58.3816)
	far := DistanceMeters(-34.6037, -58.3816, -34.6090, -58.3816)
	assert.Less(t, near, far)
}

func TestNearestPicksClosestVenue(t *testing.T) {
	// Worker at the origin; ~30 m and ~10 m away along a meridian
	// (1 degree of latitude is ~111 km).
	v1 := entity.Location{BasicEntity: entity.BasicEntity{ID: 1}, Name: strPtr("far"), Latitude: 0.00027, Longitude: 0, Radius: 50}
	v2 := entity.Location{BasicEntity: entity.BasicEntity{ID: 2}, Name: strPtr("near"), Latitude: 0.00009, Longitude: 0, Radius: 50}

	nearest, distance, ok := Nearest(0, 0, []entity.Location{v1, v2})
	require.True(t, ok)
	assert.Equal(t, 2, nearest.ID)
	assert.InDelta(t, 10, distance, 2)
	assert.True(t, Inside(distance, nearest))
}

func TestNearestFirstWinsTies(t *testing.T) {
	v1 := entity.Location{BasicEntity: entity.BasicEntity{ID: 1}, Latitude: 0.0001, Longitude: 0, Radius: 50}
	v2 := entity.Location{BasicEntity: entity.BasicEntity{ID: 2}, Latitude: -0.0001, Longitude: 0, Radius: 50}

	nearest, _, ok := Nearest(0, 0, []entity.Location{v1, v2})
	require.True(t, ok)
	assert.Equal(t, 1, nearest.ID)
}

func TestNearestEmpty(t *testing.T) {
	_, _, ok := Nearest(0, 0, nil)
	assert.False(t, ok)
}

func TestInsideAtBoundary(t *testing.T) {
	venue := entity.Location{Radius: 100}
	assert.True(t, Inside(100, venue))
	assert.False(t, Inside(100.01, venue))
}
