package models

// Point is a WGS84 position in degrees.
type Point struct {
	Lng float64 `json:"lng" yaml:"lng"`
	Lat float64 `json:"lat" yaml:"lat"`
}

// Ring is a polygon boundary. Closed rings repeat the first vertex at the end.
type Ring []Point
