package risk

import (
	"fmt"
	"math"

	"github.com/mr1hm/zerostrike/internal/models"
)

type BBox struct {
	MinLng float64
	MinLat float64
	MaxLng float64
	MaxLat float64
}

func (b BBox) Contains(p models.Point) bool {
	return p.Lng >= b.MinLng && p.Lng <= b.MaxLng && p.Lat >= b.MinLat && p.Lat <= b.MaxLat
}

func (b BBox) Center() models.Point {
	return models.Point{Lng: (b.MinLng + b.MaxLng) / 2, Lat: (b.MinLat + b.MaxLat) / 2}
}

// Grid samples a bbox at cell centers, ResolutionDeg apart. Row 0 is the
// southernmost row.
type Grid struct {
	BBox          BBox
	ResolutionDeg float64
	Lats          []float64
	Lngs          []float64
}

func NewGrid(b BBox, resolutionDeg float64) Grid {
	rows := cellsAcross(b.MaxLat-b.MinLat, resolutionDeg)
	cols := cellsAcross(b.MaxLng-b.MinLng, resolutionDeg)

	g := Grid{
		BBox:          b,
		ResolutionDeg: resolutionDeg,
		Lats:          make([]float64, rows),
		Lngs:          make([]float64, cols),
	}
	for i := range g.Lats {
		g.Lats[i] = b.MinLat + resolutionDeg*(float64(i)+0.5)
	}
	for j := range g.Lngs {
		g.Lngs[j] = b.MinLng + resolutionDeg*(float64(j)+0.5)
	}
	return g
}

// cellsAcross tolerates spans that are an exact multiple of res but do not
// divide cleanly in floating point.
func cellsAcross(span, res float64) int {
	return max(1, int(math.Floor(span/res+1e-9)))
}

func (g Grid) Rows() int { return len(g.Lats) }
func (g Grid) Cols() int { return len(g.Lngs) }

func (g Grid) Center(row, col int) models.Point {
	return models.Point{Lng: g.Lngs[col], Lat: g.Lats[row]}
}

// CellRing is the closed square outline of a cell.
func (g Grid) CellRing(row, col int) models.Ring {
	c := g.Center(row, col)
	h := g.ResolutionDeg / 2
	return models.Ring{
		{Lng: c.Lng - h, Lat: c.Lat - h},
		{Lng: c.Lng + h, Lat: c.Lat - h},
		{Lng: c.Lng + h, Lat: c.Lat + h},
		{Lng: c.Lng - h, Lat: c.Lat + h},
		{Lng: c.Lng - h, Lat: c.Lat - h},
	}
}

func CellID(row, col int) string {
	return fmt.Sprintf("r%dc%d", row, col)
}
