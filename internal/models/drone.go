package models

type DroneStatus string

const (
	DroneStatusDeployed DroneStatus = "deployed"
	DroneStatusStandby  DroneStatus = "standby"
	DroneStatusWarning  DroneStatus = "warning"
	DroneStatusOffline  DroneStatus = "offline"
)

type Drone struct {
	ID      string      `json:"id" yaml:"id"`
	Lng     float64     `json:"lng" yaml:"lng"`
	Lat     float64     `json:"lat" yaml:"lat"`
	Status  DroneStatus `json:"status" yaml:"status"`
	Battery float64     `json:"battery" yaml:"battery"`
	Mission string      `json:"mission,omitempty" yaml:"mission,omitempty"`
}

func (d *Drone) Center() Point {
	return Point{Lng: d.Lng, Lat: d.Lat}
}

// Deployed drones are the only ones that project a coverage disk.
func (d *Drone) Deployed() bool {
	return d.Status == DroneStatusDeployed
}
