// Package measure takes one reading of temperature, humidity, dew point and
// supply voltage. Faults degrade the affected fields to zero; a reading is
// always produced.
package measure

import (
	"context"
	"errors"
	"runtime"
	"time"

	"sensornode-go/drivers/htu21d"
	"sensornode-go/drivers/vdiv"
	"sensornode-go/errcode"
	"sensornode-go/services/observer"
	"sensornode-go/types"
	"sensornode-go/x/timex"
)

// Sensor returns °C and %RH.
type Sensor interface {
	ReadTemperatureHumidity() (tempC, rh float64, err error)
}

// ADC starts a single conversion; completion is signalled through the
// sample-ready flag, after which Value holds the raw result.
type ADC interface {
	StartSample() error
	Value() uint16
}

// PowerCycled ADCs are opened before and closed after every sample.
type PowerCycled interface {
	Open() error
	Close() error
}

// SampleFlag is the loop side of the sample-ready flag (scheduler.Context).
type SampleFlag interface {
	ClearSampleReady()
	ConsumeSampleReady() bool
}

const DefaultSampleTimeout = 50 * time.Millisecond

var _ Sensor = (*htu21d.Device)(nil)

type Source struct {
	sensor  Sensor
	adc     ADC
	flag    SampleFlag
	div     vdiv.Divider
	timeout time.Duration
	obs     observer.Observer
}

func New(sensor Sensor, adc ADC, flag SampleFlag, cfg types.ADCConfig, obs observer.Observer) *Source {
	if cfg.SampleTimeout <= 0 {
		cfg.SampleTimeout = DefaultSampleTimeout
	}
	return &Source{
		sensor:  sensor,
		adc:     adc,
		flag:    flag,
		div:     vdiv.New(cfg.Divider),
		timeout: cfg.SampleTimeout,
		obs:     observer.OrNop(obs),
	}
}

// TakeReading blocks until both sensors answered or gave up. The returned
// error lists the faults; the reading is valid either way.
func (s *Source) TakeReading(ctx context.Context) (types.Reading, error) {
	r := types.Reading{TSms: timex.NowMs()}
	var errs []error

	if t, h, err := s.readSensor(); err != nil {
		r.SensorFault = string(errcode.Of(err))
		errs = append(errs, err)
		s.obs.Observe(observer.Event{Kind: observer.KindFault, Op: "measure.sensor", Err: err})
	} else {
		r.Temperature, r.Humidity = t, h
		r.DewPoint = htu21d.DewPoint(t, h)
	}

	if v, err := s.readVoltage(ctx); err != nil {
		r.VoltageFault = string(errcode.Of(err))
		errs = append(errs, err)
		s.obs.Observe(observer.Event{Kind: observer.KindFault, Op: "measure.adc", Err: err})
	} else {
		r.Voltage = v
	}

	s.obs.Observe(observer.Event{Kind: observer.KindReading, Reading: r})
	return r, errors.Join(errs...)
}

func (s *Source) readSensor() (float64, float64, error) {
	if s.sensor == nil {
		return 0, 0, errcode.New(errcode.NotReady, "measure.sensor", "no sensor")
	}
	t, h, err := s.sensor.ReadTemperatureHumidity()
	if err != nil {
		return 0, 0, errcode.Wrap(errcode.MapDriverErr(err), "measure.sensor", err)
	}
	return t, h, nil
}

func (s *Source) readVoltage(ctx context.Context) (float64, error) {
	if s.adc == nil {
		return 0, errcode.New(errcode.NotReady, "measure.adc", "no adc")
	}
	if pc, ok := s.adc.(PowerCycled); ok {
		if err := pc.Open(); err != nil {
			return 0, errcode.Wrap(errcode.ADCFault, "measure.adc.open", err)
		}
		defer pc.Close()
	}

	s.flag.ClearSampleReady()
	if err := s.adc.StartSample(); err != nil {
		return 0, errcode.Wrap(errcode.ADCFault, "measure.adc.start", err)
	}
	if err := s.waitSample(ctx); err != nil {
		return 0, err
	}
	raw := s.adc.Value()
	if raw == 0 {
		return 0, errcode.New(errcode.ADCFault, "measure.adc", "zero sample")
	}
	return s.div.Volts(raw), nil
}

// waitSample yields until the completion interrupt sets the flag, up to the
// configured timeout.
func (s *Source) waitSample(ctx context.Context) error {
	deadline := time.Now().Add(s.timeout)
	for !s.flag.ConsumeSampleReady() {
		if ctx.Err() != nil {
			return errcode.Wrap(errcode.Timeout, "measure.adc.wait", ctx.Err())
		}
		if !time.Now().Before(deadline) {
			return errcode.New(errcode.Timeout, "measure.adc.wait", "no sample within "+s.timeout.String())
		}
		runtime.Gosched()
	}
	return nil
}
