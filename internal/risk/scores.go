package risk

import "math"

// Cell carries the raw inputs sampled at one grid point.
type Cell struct {
	NDVI     float64 // vegetation index, 0..1
	SlopeDeg float64
	FuelType float64 // combustibility, 0..1

	CAPE               float64 // J/kg
	DewpointDepression float64 // °C
	CloudBaseKm        float64
	LowLevelRH         float64 // percent
	PrecipEfficiency   float64 // 0..1

	Population     float64 // proximity, 0..1
	Infrastructure float64 // density, 0..1
}

// FuelScore rates how much dry, steep, combustible vegetation a cell holds.
func (cfg Config) FuelScore(c Cell) float64 {
	score := cfg.FuelNDVIWeight*clamp(c.NDVI, 0, 1) +
		cfg.FuelSlopeWeight*clamp(c.SlopeDeg/40, 0, 1) +
		cfg.FuelTypeWeight*clamp(c.FuelType, 0, 1)
	return clamp(score, 0, 1)
}

// AtmosphericScore rates the potential for dry lightning: high instability,
// a deep dry layer, high cloud bases and little rain reaching the ground.
func (cfg Config) AtmosphericScore(c Cell) float64 {
	score := cfg.CAPEWeight*clamp((c.CAPE-500)/2000, 0, 1) +
		cfg.DewpointDepWeight*clamp(c.DewpointDepression/20, 0, 1) +
		cfg.CloudBaseWeight*clamp((c.CloudBaseKm-1)/3, 0, 1) +
		cfg.LowRHWeight*clamp((50-c.LowLevelRH)/40, 0, 1) +
		cfg.PrecipEfficiencyWeight*clamp((0.5-c.PrecipEfficiency)/0.5, 0, 1)
	return clamp(score, 0, 1)
}

func (cfg Config) ConsequenceScore(c Cell) float64 {
	score := cfg.PopulationWeight*clamp(c.Population, 0, 1) +
		cfg.InfrastructureWeight*clamp(c.Infrastructure, 0, 1)
	return clamp(score, 0, 1)
}

// Severity blends the three layer scores.
func (cfg Config) Severity(fuel, atmospheric, consequence float64) float64 {
	return cfg.FuelWeight*fuel + cfg.AtmosphericWeight*atmospheric + cfg.ConsequenceWeight*consequence
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
