package geo_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"popin/backend/internal/geo"
)

func TestDistance_Identity(t *testing.T) {
	points := []geo.Coordinate{
		{Lat: 0, Lng: 0},
		{Lat: 24.0892, Lng: 38.0618},
		{Lat: -90, Lng: 180},
		{Lat: 89.9999, Lng: -179.9999},
	}
	for _, p := range points {
		d, err := geo.Distance(p, p)
		require.NoError(t, err)
		assert.Equal(t, 0.0, d, "distance from a point to itself must be exactly zero")
	}
}

func TestDistance_Symmetry(t *testing.T) {
	a := geo.Coordinate{Lat: 24.0892, Lng: 38.0618}
	b := geo.Coordinate{Lat: 24.1102, Lng: 38.0355}

	ab, err := geo.Distance(a, b)
	require.NoError(t, err)
	ba, err := geo.Distance(b, a)
	require.NoError(t, err)

	assert.InEpsilon(t, ab, ba, 1e-6)
}

func TestDistance_KnownValues(t *testing.T) {
	// 0.0004 degrees of latitude is ~44.5 m on the sphere.
	user := geo.Coordinate{Lat: 24.0892, Lng: 38.0618}
	place := geo.Coordinate{Lat: 24.0896, Lng: 38.0618}

	d, err := geo.Distance(user, place)
	require.NoError(t, err)
	assert.InDelta(t, 44.5, d, 0.5)

	// Jakarta to Bandung is roughly 115-120 km.
	far, err := geo.Distance(geo.Coordinate{Lat: -6.2, Lng: 106.816}, geo.Coordinate{Lat: -6.9175, Lng: 107.6191})
	require.NoError(t, err)
	assert.Greater(t, far, 100_000.0)
	assert.Less(t, far, 140_000.0)
}

func TestDistance_MonotonicAlongMeridian(t *testing.T) {
	origin := geo.Coordinate{Lat: 24.0892, Lng: 38.0618}
	near := geo.Coordinate{Lat: 24.0902, Lng: 38.0618}
	farther := geo.Coordinate{Lat: 24.0952, Lng: 38.0618}

	dNear, err := geo.Distance(origin, near)
	require.NoError(t, err)
	dFarther, err := geo.Distance(origin, farther)
	require.NoError(t, err)

	assert.Less(t, dNear, dFarther)
}

func TestDistance_NearAntipodal(t *testing.T) {
	// Half the circumference of the 6,371 km sphere.
	const halfCircumference = 20_015_086.0

	pairs := []struct {
		a, b geo.Coordinate
	}{
		{geo.Coordinate{Lat: 0, Lng: 0}, geo.Coordinate{Lat: 0, Lng: 180}},
		{geo.Coordinate{Lat: 0, Lng: -90}, geo.Coordinate{Lat: 0, Lng: 90}},
		{geo.Coordinate{Lat: 45, Lng: 30}, geo.Coordinate{Lat: -45, Lng: -150}},
		{geo.Coordinate{Lat: 0.0000001, Lng: 0}, geo.Coordinate{Lat: 0, Lng: 180}},
	}
	for _, p := range pairs {
		d, err := geo.Distance(p.a, p.b)
		require.NoError(t, err)
		assert.False(t, math.IsNaN(d), "antipodal distance must be a number")
		assert.InDelta(t, halfCircumference, d, 100)
	}
}

func TestDistance_InvalidCoordinates(t *testing.T) {
	valid := geo.Coordinate{Lat: 24.0892, Lng: 38.0618}
	tests := []struct {
		name string
		bad  geo.Coordinate
	}{
		{"latitude too high", geo.Coordinate{Lat: 90.0001, Lng: 0}},
		{"latitude too low", geo.Coordinate{Lat: -91, Lng: 0}},
		{"longitude too high", geo.Coordinate{Lat: 0, Lng: 180.5}},
		{"longitude too low", geo.Coordinate{Lat: 0, Lng: -181}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := geo.Distance(valid, tt.bad)
			assert.True(t, errors.Is(err, geo.ErrInvalidCoordinate))

			_, err = geo.Distance(tt.bad, valid)
			assert.True(t, errors.Is(err, geo.ErrInvalidCoordinate))
		})
	}
}

func TestValidate_Boundaries(t *testing.T) {
	assert.NoError(t, geo.Coordinate{Lat: 90, Lng: 180}.Validate())
	assert.NoError(t, geo.Coordinate{Lat: -90, Lng: -180}.Validate())
	assert.Error(t, geo.Coordinate{Lat: 90.000001, Lng: 0}.Validate())
}
