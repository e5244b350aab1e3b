package models

// Prediction is an ignition forecast row as produced by the prediction engine.
// The service passes these through untouched.
type Prediction struct {
	ID             string  `json:"id" yaml:"id"`
	Zone           string  `json:"zone" yaml:"zone"`
	Coords         string  `json:"coords" yaml:"coords"`
	Prob           float64 `json:"prob" yaml:"prob"`
	Risk           string  `json:"risk" yaml:"risk"`
	EtaMin         float64 `json:"etaMin" yaml:"etaMin"`
	Humidity       float64 `json:"humidity" yaml:"humidity"`
	Wind           string  `json:"wind" yaml:"wind"`
	Temp           float64 `json:"temp" yaml:"temp"`
	Conf           float64 `json:"conf" yaml:"conf"`
	Recommendation string  `json:"recommendation" yaml:"recommendation"`
	Status         string  `json:"status" yaml:"status"`
}
