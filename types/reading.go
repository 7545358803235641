package types

// Reading is one measurement pass. Temperatures are °C, humidity is %RH,
// voltage is volts. Fault fields report which parts degraded to zero.
type Reading struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	DewPoint    float64 `json:"dewpoint"`
	Voltage     float64 `json:"battery"`

	SensorFault  string `json:"sensor_fault,omitempty"`
	VoltageFault string `json:"voltage_fault,omitempty"`
	TSms         int64  `json:"ts_ms"`
}
