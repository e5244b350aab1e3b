package risk

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/mr1hm/zerostrike/internal/geometry"
	"github.com/mr1hm/zerostrike/internal/models"
)

// Provider samples the raw grid inputs and the active storm cells at a
// point in time.
type Provider interface {
	Sample(ctx context.Context, g Grid, when time.Time) ([][]Cell, error)
	StormCells(ctx context.Context, b BBox, when time.Time) ([]StormCell, error)
}

// ValenciaBBox frames the Valencian interior and coast.
var ValenciaBBox = BBox{MinLng: -1.6, MinLat: 38.8, MaxLng: 0.2, MaxLat: 40.0}

// ValenciaLand is a coarse coastline that keeps grid cells off the sea.
var ValenciaLand = models.Ring{
	{Lng: -1.6, Lat: 38.8},
	{Lng: 0.05, Lat: 38.8},
	{Lng: -0.15, Lat: 38.97},
	{Lng: -0.23, Lat: 39.16},
	{Lng: -0.33, Lat: 39.45},
	{Lng: -0.2, Lat: 39.7},
	{Lng: 0.02, Lat: 40.0},
	{Lng: -1.6, Lat: 40.0},
	{Lng: -1.6, Lat: 38.8},
}

var (
	fireSeeds = []models.Point{
		{Lng: -0.72, Lat: 39.47}, // Chiva
		{Lng: -1.20, Lat: 39.57}, // Utiel
		{Lng: -0.50, Lat: 39.75}, // Serra Calderona
	}
	urbanCenters = []models.Point{
		{Lng: -0.38, Lat: 39.47}, // Valencia
		{Lng: -0.05, Lat: 39.99}, // Castelló de la Plana
		{Lng: -0.18, Lat: 38.97}, // Gandia
	}
)

// SyntheticProvider generates smooth, seeded fields with vegetation peaks
// around known fire-prone areas. The same seed, bbox and time always give
// the same sample.
type SyntheticProvider struct {
	seed int64
}

func NewSyntheticProvider(seed int64) *SyntheticProvider {
	return &SyntheticProvider{seed: seed}
}

func (p *SyntheticProvider) rng(b BBox, when time.Time) *rand.Rand {
	seed := p.seed + when.Unix() + int64(b.MinLat*100) + int64(b.MinLng*100)
	return rand.New(rand.NewSource(seed))
}

func (p *SyntheticProvider) Sample(ctx context.Context, g Grid, when time.Time) ([][]Cell, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rng := p.rng(g.BBox, when)
	uniform := func(spread float64) float64 {
		return (rng.Float64()*2 - 1) * spread
	}

	towns := urbanCentersIn(g.BBox)

	out := make([][]Cell, g.Rows())
	for r := range out {
		out[r] = make([]Cell, g.Cols())
		for c := range out[r] {
			pt := g.Center(r, c)
			bump := gaussianBump(pt, fireSeeds, 40)

			ndvi := clamp(0.6+0.25*wave(pt, 0.5)+uniform(0.08)+bump*0.25, 0, 1)
			dpd := clamp(5+20*ndvi+uniform(2), 0, 30)

			out[r][c] = Cell{
				NDVI:               ndvi,
				SlopeDeg:           clamp(math.Abs(20+15*wave(pt, 0.8)+uniform(4))+bump*15, 0, 60),
				FuelType:           clamp(0.4+0.5*ndvi+bump*0.2+uniform(0.07), 0, 1),
				CAPE:               clamp(800+1200*wave(pt, 0.6)+uniform(200), 0, 3000),
				DewpointDepression: dpd,
				CloudBaseKm:        clamp(1+(dpd/30)*3.5+uniform(0.3), 0.5, 5),
				LowLevelRH:         clamp(80-50*ndvi+uniform(5), 10, 100),
				PrecipEfficiency:   clamp(0.7-0.4*ndvi+uniform(0.05), 0.05, 0.9),
				Population:         proximity(pt, towns, 60),
				Infrastructure:     proximity(pt, towns, 40),
			}
		}
	}
	return out, nil
}

// StormCells spawns 5 to 10 cells in the southern third of the bbox, drifting
// south-west to west.
func (p *SyntheticProvider) StormCells(ctx context.Context, b BBox, when time.Time) ([]StormCell, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rng := p.rng(b, when)
	between := func(lo, hi float64) float64 {
		return lo + rng.Float64()*(hi-lo)
	}

	latMax := b.MinLat + (b.MaxLat-b.MinLat)/3
	cells := make([]StormCell, 5+rng.Intn(6))
	for i := range cells {
		cells[i] = StormCell{
			ID: fmt.Sprintf("cell-%d", i),
			Center: models.Point{
				Lng: between(b.MinLng+0.3, b.MaxLng-0.3),
				Lat: between(b.MinLat+0.1, latMax-0.1),
			},
			RadiusKm:   between(30, 80),
			SpeedKmh:   between(15, 60),
			BearingDeg: between(200, 280),
		}
	}
	return cells, nil
}

func wave(p models.Point, freq float64) float64 {
	return (math.Sin(p.Lat*freq) + math.Cos(p.Lng*freq)) / 2
}

func gaussianBump(p models.Point, centers []models.Point, sigmaKm float64) float64 {
	if len(centers) == 0 {
		return 0
	}
	var sum float64
	for _, c := range centers {
		d := geometry.HaversineKm(p, c)
		sum += math.Exp(-(d * d) / (2 * sigmaKm * sigmaKm))
	}
	return sum / float64(len(centers))
}

func proximity(p models.Point, centers []models.Point, scaleKm float64) float64 {
	var sum float64
	for _, c := range centers {
		sum += math.Exp(-geometry.HaversineKm(p, c) / scaleKm)
	}
	return clamp(sum/float64(len(centers)), 0, 1)
}

// urbanCentersIn falls back to the bbox center when no known town lies inside.
func urbanCentersIn(b BBox) []models.Point {
	var out []models.Point
	for _, c := range urbanCenters {
		if b.Contains(c) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		out = append(out, b.Center())
	}
	return out
}
