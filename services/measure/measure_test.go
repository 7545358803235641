package measure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensornode-go/errcode"
	"sensornode-go/services/observer"
	"sensornode-go/services/scheduler"
	"sensornode-go/types"
)

type fixedSensor struct {
	t, h float64
	err  error
}

func (f fixedSensor) ReadTemperatureHumidity() (float64, float64, error) { return f.t, f.h, f.err }

// fakeADC completes from a goroutine, like the conversion interrupt.
type fakeADC struct {
	flag    *scheduler.Context
	raw     uint16
	silent  bool
	opened  int
	closed  int
	starts  int
	failErr error
}

func (a *fakeADC) Value() uint16 { return a.raw }

func (a *fakeADC) Open() error {
	a.opened++
	return nil
}

func (a *fakeADC) Close() error {
	a.closed++
	return nil
}

func (a *fakeADC) StartSample() error {
	a.starts++
	if a.failErr != nil {
		return a.failErr
	}
	if !a.silent {
		go a.flag.NotifySampleReady()
	}
	return nil
}

var boardADC = types.ADCConfig{SampleTimeout: 20 * time.Millisecond}

func TestTakeReadingHealthy(t *testing.T) {
	sctx := scheduler.NewContext()
	adc := &fakeADC{flag: sctx, raw: 858}
	src := New(fixedSensor{t: 25, h: 50}, adc, sctx, boardADC, nil)

	r, err := src.TakeReading(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25.0, r.Temperature)
	assert.Equal(t, 50.0, r.Humidity)
	assert.InDelta(t, 13.89, r.DewPoint, 0.05)
	assert.InDelta(t, 3.291, r.Voltage, 0.001)
	assert.Empty(t, r.SensorFault)
	assert.Empty(t, r.VoltageFault)
	assert.Equal(t, 1, adc.opened)
	assert.Equal(t, 1, adc.closed)
}

func TestZeroSampleYieldsZeroVoltage(t *testing.T) {
	sctx := scheduler.NewContext()
	rec := &observer.Recorder{}
	src := New(fixedSensor{t: 20, h: 40}, &fakeADC{flag: sctx}, sctx, boardADC, rec)

	r, err := src.TakeReading(context.Background())
	assert.Equal(t, errcode.ADCFault, errcode.Of(err))
	assert.Equal(t, 0.0, r.Voltage)
	assert.Equal(t, "adc_fault", r.VoltageFault)
	assert.Equal(t, 20.0, r.Temperature, "sensor fields survive an ADC fault")
	assert.Equal(t, 1, rec.Count(observer.KindFault))
	assert.Equal(t, 1, rec.Count(observer.KindReading))
}

func TestStalledADCTimesOut(t *testing.T) {
	sctx := scheduler.NewContext()
	adc := &fakeADC{flag: sctx, raw: 858, silent: true}
	src := New(fixedSensor{t: 20, h: 40}, adc, sctx, types.ADCConfig{SampleTimeout: 5 * time.Millisecond}, nil)

	start := time.Now()
	r, err := src.TakeReading(context.Background())
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, errors.Is(err, errcode.Timeout))
	assert.Equal(t, 0.0, r.Voltage)
	assert.Equal(t, 1, adc.closed, "adc is released after a timeout")
}

func TestStaleCompletionIgnored(t *testing.T) {
	sctx := scheduler.NewContext()
	sctx.NotifySampleReady() // left over from an earlier conversion
	adc := &fakeADC{flag: sctx, raw: 858, silent: true}
	src := New(fixedSensor{}, adc, sctx, types.ADCConfig{SampleTimeout: 2 * time.Millisecond}, nil)

	_, err := src.TakeReading(context.Background())
	assert.True(t, errors.Is(err, errcode.Timeout))
}

func TestSensorFaultDegradesToZero(t *testing.T) {
	sctx := scheduler.NewContext()
	src := New(fixedSensor{t: 99, h: 99, err: errors.New("nack")}, &fakeADC{flag: sctx, raw: 858}, sctx, boardADC, nil)

	r, err := src.TakeReading(context.Background())
	assert.Equal(t, errcode.SensorFault, errcode.Of(err))
	assert.Zero(t, r.Temperature)
	assert.Zero(t, r.Humidity)
	assert.Zero(t, r.DewPoint)
	assert.InDelta(t, 3.291, r.Voltage, 0.001)
}

func TestStartFailureAndMissingParts(t *testing.T) {
	sctx := scheduler.NewContext()
	src := New(nil, &fakeADC{flag: sctx, failErr: errors.New("busy")}, sctx, boardADC, nil)
	r, err := src.TakeReading(context.Background())
	require.Error(t, err)
	assert.Equal(t, "not_ready", r.SensorFault)
	assert.Equal(t, "adc_fault", r.VoltageFault)
}

type failingBus struct{}

func (failingBus) Tx(uint16, []byte, []byte) error { return errors.New("i2c: nack") }

// silentBus acknowledges everything and leaves read buffers zeroed.
type silentBus struct{}

func (silentBus) Tx(uint16, []byte, []byte) error { return nil }

// shtc3Bus answers measurement reads with fixed raw words and valid CRCs.
type shtc3Bus struct {
	temp, hum uint16
	writes    int
}

func (b *shtc3Bus) Tx(_ uint16, w, r []byte) error {
	b.writes++
	if len(r) == 6 {
		r[0], r[1] = byte(b.temp>>8), byte(b.temp)
		r[2] = sensirionCRC(r[0:2])
		r[3], r[4] = byte(b.hum>>8), byte(b.hum)
		r[5] = sensirionCRC(r[3:5])
	}
	return nil
}

func TestSensirionCRC(t *testing.T) {
	assert.Equal(t, byte(0x92), sensirionCRC([]byte{0xBE, 0xEF}))
}

func TestSHTC3PropagatesBusErrors(t *testing.T) {
	s := NewSHTC3(failingBus{})
	_, _, err := s.ReadTemperatureHumidity()
	assert.EqualError(t, err, "i2c: nack")
	assert.Error(t, s.Detect())
}

func TestSHTC3RejectsZeroedRead(t *testing.T) {
	s := NewSHTC3(silentBus{})
	assert.NoError(t, s.Detect())
	_, _, err := s.ReadTemperatureHumidity()
	assert.Equal(t, errcode.SensorFault, errcode.Of(err))

	sctx := scheduler.NewContext()
	src := New(s, &fakeADC{flag: sctx, raw: 858}, sctx, boardADC, nil)
	r, err := src.TakeReading(context.Background())
	require.Error(t, err)
	assert.Equal(t, "sensor_fault", r.SensorFault)
	assert.Zero(t, r.Temperature)
	assert.Zero(t, r.Humidity)
}

func TestSHTC3Reading(t *testing.T) {
	bus := &shtc3Bus{temp: 0x6666, hum: 0x8000}
	s := NewSHTC3(bus)
	tc, rh, err := s.ReadTemperatureHumidity()
	require.NoError(t, err)
	assert.InDelta(t, 24.998, tc, 0.001)
	assert.InDelta(t, 50.0, rh, 0.001)
	// wake, measure, sleep
	assert.Equal(t, 3, bus.writes)
}
