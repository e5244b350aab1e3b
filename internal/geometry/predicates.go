package geometry

import "github.com/mr1hm/zerostrike/internal/models"

// PointInPolygon is a ray-casting test against ring. The ring may be open or
// closed since every edge including the wraparound is visited. Points lying
// exactly on an edge may land on either side.
func PointInPolygon(p models.Point, ring models.Ring) bool {
	if len(ring) < 3 {
		return false
	}

	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i].Lng, ring[i].Lat
		xj, yj := ring[j].Lng, ring[j].Lat
		if (yi > p.Lat) != (yj > p.Lat) && p.Lng < (xj-xi)*(p.Lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}
