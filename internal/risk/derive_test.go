package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/zerostrike/internal/models"
)

func testHits() []Hit {
	storm := StormCell{ID: "cell-3", SpeedKmh: 24, BearingDeg: 220}
	ring := NewGrid(ValenciaBBox, 0.05).CellRing(13, 17)
	return []Hit{
		{CellID: "r13c17", Center: models.Point{Lng: -0.72501, Lat: 39.47499}, Ring: ring, Severity: 0.876, Fuel: 0.8, Atmospheric: 0.5,
			TimeToCollisionHours: 1, Storm: storm, PriorityScore: 0.876, Priority: models.ThreatLevelCritical},
		{CellID: "r14c3", Severity: 0.5, Fuel: 0.5, Atmospheric: 0.5, TimeToCollisionHours: 2, Storm: storm, Priority: models.ThreatLevelHigh},
		{CellID: "r2c2", Severity: 0.25, TimeToCollisionHours: 4, Storm: storm, Priority: models.ThreatLevelMedium},
		{CellID: "r1c1", Severity: 0.45, TimeToCollisionHours: 6, Storm: storm, Priority: models.ThreatLevelLow},
	}
}

func TestThreats(t *testing.T) {
	threats := Threats(testHits(), 3)
	require.Len(t, threats, 3)

	first := threats[0]
	assert.Equal(t, "STRK-001", first.ID)
	assert.Equal(t, -0.725, first.Lng)
	assert.Equal(t, 39.475, first.Lat)
	assert.Equal(t, 87.0, first.Probability)
	assert.Equal(t, 42.0, first.RadiusKm)
	assert.Equal(t, models.ThreatLevelCritical, first.Level)
	require.True(t, first.HasTrajectory())
	assert.Equal(t, 220.0, *first.Heading)
	assert.Equal(t, 24.0, *first.SpeedKmh)
	require.NotNil(t, first.EtaMin)
	assert.Equal(t, 60.0, *first.EtaMin)

	assert.Equal(t, models.ThreatLevelWarning, threats[1].Level)
	assert.Equal(t, 30.0, threats[1].RadiusKm)
	assert.Equal(t, 120.0, *threats[1].EtaMin)
	assert.Equal(t, models.ThreatLevelWatch, threats[2].Level)

	assert.Len(t, Threats(testHits(), MaxThreats), 4)
	assert.Empty(t, Threats(nil, MaxThreats))
}

func TestLandRisk(t *testing.T) {
	zones := LandRisk(testHits())

	// r2c2 is too weak to outline
	require.Len(t, zones, 3)
	assert.Equal(t, "LR-000", zones[0].ID)
	assert.Equal(t, "r13c17", zones[0].Name)
	assert.Equal(t, models.LandRiskCritical, zones[0].Level)
	assert.Len(t, zones[0].Geometry, 5)

	assert.Equal(t, models.LandRiskCritical, zones[1].Level)
	assert.Equal(t, "LR-003", zones[2].ID)
	assert.Equal(t, models.LandRiskNaturalFireZone, zones[2].Level)
}

func TestPredictions(t *testing.T) {
	preds := Predictions(testHits(), 2)
	require.Len(t, preds, 2)

	p := preds[0]
	assert.Equal(t, "STRK-001", p.ID)
	assert.Equal(t, "Zone C7", p.Zone)
	assert.Equal(t, "39.47°N 0.73°W", p.Coords)
	assert.Equal(t, 87.0, p.Prob)
	assert.Equal(t, "critical", p.Risk)
	assert.Equal(t, 60.0, p.EtaMin)
	assert.Equal(t, 20.0, p.Humidity)
	assert.Equal(t, "17 kn SW", p.Wind)
	assert.Equal(t, 41.0, p.Temp)
	assert.Equal(t, 95.0, p.Conf)
	assert.Equal(t, "DISPATCH", p.Recommendation)
	assert.Equal(t, "dispatching", p.Status)

	assert.Equal(t, "warning", preds[1].Risk)
	assert.Equal(t, "active", preds[1].Status)
}

func TestCompassPoint(t *testing.T) {
	assert.Equal(t, "N", compassPoint(0))
	assert.Equal(t, "N", compassPoint(355))
	assert.Equal(t, "E", compassPoint(90))
	assert.Equal(t, "SW", compassPoint(220))
	assert.Equal(t, "W", compassPoint(-90))
}
