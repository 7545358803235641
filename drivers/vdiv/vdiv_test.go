package vdiv

import (
	"math"
	"testing"

	"sensornode-go/types"
)

func TestVoltsBoardDefaults(t *testing.T) {
	d := New(types.DividerConfig{})

	if got := d.MilliVolts(858); got != 502 {
		t.Fatalf("MilliVolts(858) = %d, want 502", got)
	}
	// 502 mV across 180 Ω of a 1180 Ω divider.
	if got := d.Volts(858); math.Abs(got-3.291) > 0.001 {
		t.Fatalf("Volts(858) = %.4f, want ~3.291", got)
	}
	if got := d.Volts(0); got != 0 {
		t.Fatalf("Volts(0) = %v, want 0", got)
	}
}

func TestRawInverse(t *testing.T) {
	d := New(types.DividerConfig{})
	for _, v := range []float64{2.0, 3.0, 3.3, 3.6} {
		back := d.Volts(d.Raw(v))
		if math.Abs(back-v) > 0.02 {
			t.Fatalf("Volts(Raw(%v)) = %v", v, back)
		}
	}
	if d.Raw(0) != 0 {
		t.Fatal("Raw(0) != 0")
	}
}

func TestCustomProfile(t *testing.T) {
	d := New(types.DividerConfig{R1: 100, R2: 100, Gain: 0.5, Precision: 12, VrefMV: 600})
	// 4096 full scale -> 600 mV at gain 0.5 -> 1.2 V at pin -> 2.4 V supply.
	if got := d.Volts(4096); math.Abs(got-2.4) > 1e-9 {
		t.Fatalf("Volts(4096) = %v, want 2.4", got)
	}
}
