package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mr1hm/zerostrike/internal/models"
)

func square() models.Ring {
	return models.Ring{{Lng: 0, Lat: 0}, {Lng: 10, Lat: 0}, {Lng: 10, Lat: 10}, {Lng: 0, Lat: 10}, {Lng: 0, Lat: 0}}
}

func TestPointInPolygon_Square(t *testing.T) {
	ring := square()

	assert.True(t, PointInPolygon(models.Point{Lng: 5, Lat: 5}, ring))
	assert.False(t, PointInPolygon(models.Point{Lng: 15, Lat: 5}, ring))
	assert.False(t, PointInPolygon(models.Point{Lng: -1, Lat: -1}, ring))
}

func TestPointInPolygon_OpenRing(t *testing.T) {
	ring := square()[:4]

	assert.True(t, PointInPolygon(models.Point{Lng: 5, Lat: 5}, ring))
	assert.False(t, PointInPolygon(models.Point{Lng: 5, Lat: 11}, ring))
}

func TestPointInPolygon_Degenerate(t *testing.T) {
	assert.False(t, PointInPolygon(models.Point{Lng: 0, Lat: 0}, nil))
	assert.False(t, PointInPolygon(models.Point{Lng: 0, Lat: 0}, models.Ring{{Lng: -1, Lat: -1}, {Lng: 1, Lat: 1}}))
}

func TestPointInPolygon_Concave(t *testing.T) {
	// U shape opening north
	ring := models.Ring{
		{Lng: 0, Lat: 0}, {Lng: 6, Lat: 0}, {Lng: 6, Lat: 6}, {Lng: 4, Lat: 6},
		{Lng: 4, Lat: 2}, {Lng: 2, Lat: 2}, {Lng: 2, Lat: 6}, {Lng: 0, Lat: 6}, {Lng: 0, Lat: 0},
	}

	assert.True(t, PointInPolygon(models.Point{Lng: 1, Lat: 4}, ring))
	assert.True(t, PointInPolygon(models.Point{Lng: 5, Lat: 4}, ring))
	assert.False(t, PointInPolygon(models.Point{Lng: 3, Lat: 4}, ring))
	assert.True(t, PointInPolygon(models.Point{Lng: 3, Lat: 1}, ring))
}

func TestPointInPolygon_CircleRing(t *testing.T) {
	center := models.Point{Lng: 23.85, Lat: 38.05}
	ring := CircleRing(center, 42, 64)

	assert.True(t, PointInPolygon(center, ring))
	assert.False(t, PointInPolygon(ProjectPoint(center, 45, 60), ring))
}
