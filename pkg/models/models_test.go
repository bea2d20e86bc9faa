package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundsOf(t *testing.T) {
	b := BoundsOf(
		Position{Lat: -15.79, Lon: -47.88},
		Position{Lat: -15.83, Lon: -48.05},
		Position{Lat: -15.77, Lon: -47.89},
	)

	assert.Equal(t, Position{Lat: -15.83, Lon: -48.05}, b.BottomLeft)
	assert.Equal(t, Position{Lat: -15.77, Lon: -47.88}, b.TopRight)
	assert.True(t, b.Contains(Position{Lat: -15.80, Lon: -47.95}))
	assert.False(t, b.Contains(Position{Lat: -15.76, Lon: -47.95}))
	assert.InDelta(t, -15.80, b.Center().Lat, 1e-9)
	assert.InDelta(t, -47.965, b.Center().Lon, 1e-9)
}

func TestBoundsOfSinglePoint(t *testing.T) {
	p := Position{Lat: 1, Lon: 2}
	b := BoundsOf(p)
	assert.Equal(t, p, b.Center())
	assert.True(t, b.Contains(p))
}
