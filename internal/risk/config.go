// Package risk scores a lat/lng grid for lightning-ignition severity and
// finds the cells that projected storm cells reach within the forecast
// horizon. Its output feeds the threat, land-risk and prediction collections.
package risk

// Config holds the layer weights, thresholds and routing limits of the engine.
type Config struct {
	ResolutionDeg   float64
	HorizonHours    int
	ThreatThreshold float64

	FuelWeight        float64
	AtmosphericWeight float64
	ConsequenceWeight float64

	FuelNDVIWeight  float64
	FuelSlopeWeight float64
	FuelTypeWeight  float64

	CAPEWeight             float64
	DewpointDepWeight      float64
	CloudBaseWeight        float64
	LowRHWeight            float64
	PrecipEfficiencyWeight float64

	PopulationWeight     float64
	InfrastructureWeight float64

	// Priority score cut-offs, highest first.
	PriorityCritical float64
	PriorityHigh     float64
	PriorityMedium   float64

	RoutingTopN       int
	RoutingDroneCount int
	RoutingSpeedKmh   float64
	RoutingRangeKm    float64
}

func DefaultConfig() Config {
	return Config{
		ResolutionDeg:   0.05,
		HorizonHours:    6,
		ThreatThreshold: 0.44,

		FuelWeight:        0.4,
		AtmosphericWeight: 0.4,
		ConsequenceWeight: 0.2,

		FuelNDVIWeight:  0.5,
		FuelSlopeWeight: 0.3,
		FuelTypeWeight:  0.2,

		CAPEWeight:             0.3,
		DewpointDepWeight:      0.25,
		CloudBaseWeight:        0.2,
		LowRHWeight:            0.2,
		PrecipEfficiencyWeight: 0.05,

		PopulationWeight:     0.6,
		InfrastructureWeight: 0.4,

		PriorityCritical: 0.485,
		PriorityHigh:     0.465,
		PriorityMedium:   0.448,

		RoutingTopN:       20,
		RoutingDroneCount: 5,
		RoutingSpeedKmh:   120,
		RoutingRangeKm:    200,
	}
}
