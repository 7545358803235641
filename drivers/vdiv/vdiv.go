// Package vdiv converts ADC samples taken across a resistor divider into
// supply voltage. The arithmetic mirrors the SAADC single-ended setup of the
// sensor board: integer millivolts first, then the divider ratio in float.
package vdiv

import "sensornode-go/types"

// Board defaults: 1000 Ω / 180 Ω divider, gain 1, 10-bit, 600 mV reference.
const (
	DefaultR1        = 1000
	DefaultR2        = 180
	DefaultGain      = 1.0
	DefaultPrecision = 10
	DefaultVrefMV    = 600
)

// Divider is an immutable conversion profile.
type Divider struct {
	cfg types.DividerConfig
}

// New fills zero fields with board defaults.
func New(cfg types.DividerConfig) Divider {
	if cfg.R1 <= 0 {
		cfg.R1 = DefaultR1
	}
	if cfg.R2 <= 0 {
		cfg.R2 = DefaultR2
	}
	if cfg.Gain <= 0 {
		cfg.Gain = DefaultGain
	}
	if cfg.Precision == 0 {
		cfg.Precision = DefaultPrecision
	}
	if cfg.VrefMV <= 0 {
		cfg.VrefMV = DefaultVrefMV
	}
	return Divider{cfg: cfg}
}

// Config returns the effective profile.
func (d Divider) Config() types.DividerConfig { return d.cfg }

// MilliVolts returns the voltage at the ADC pin, truncated to whole mV.
func (d Divider) MilliVolts(raw uint16) int32 {
	return (int32(raw) * d.cfg.VrefMV) >> d.cfg.Precision
}

// Volts returns the supply voltage in front of the divider. A zero sample is
// treated as no measurement and yields 0.
func (d Divider) Volts(raw uint16) float64 {
	if raw == 0 {
		return 0
	}
	u2 := float64(d.MilliVolts(raw)) / (d.cfg.Gain * 1000)
	return u2 * ((d.cfg.R1 + d.cfg.R2) / d.cfg.R2)
}

// Raw is the inverse of Volts (before truncation), handy for simulators.
func (d Divider) Raw(volts float64) uint16 {
	if volts <= 0 {
		return 0
	}
	u2 := volts * d.cfg.R2 / (d.cfg.R1 + d.cfg.R2)
	mv := u2 * d.cfg.Gain * 1000
	raw := mv * float64(int32(1)<<d.cfg.Precision) / float64(d.cfg.VrefMV)
	if raw > 0xFFFF {
		return 0xFFFF
	}
	return uint16(raw + 0.5)
}
