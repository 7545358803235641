// Package htu21d provides a driver for the HTU21D(F) temperature/humidity sensor.
// It exposes a two-phase measurement API:
//
//	d.TriggerHumidity()        // start a conversion (fast, no clock stretching)
//	raw, err := d.Collect()    // fetch when ready; returns ErrNotReady while busy
//
// For convenience, d.ReadTemperatureHumidity() performs both conversions with
// bounded polling. The sensor NACKs reads while converting, so a failed read
// during Collect is reported as ErrNotReady.
package htu21d

import (
	"errors"
	"math"
	"time"

	"tinygo.org/x/drivers"
)

// I2C address.
const Address = 0x40

// Commands (no-hold master variants; the bus is never stretched).
const (
	cmdTriggerTemp = 0xF3
	cmdTriggerHum  = 0xF5
	cmdReadUser    = 0xE7
	cmdSoftReset   = 0xFE

	statusMask    = 0x0003
	crcPolynomial = 0x31 // x^8 + x^5 + x^4 + 1
)

// Errors returned by the driver.
var (
	ErrTimeout  = errors.New("htu21d: timeout")
	ErrNotReady = errors.New("htu21d: not ready")
	ErrCRC      = errors.New("htu21d: crc mismatch")
)

// Kind tells which quantity a raw sample carries.
type Kind uint8

const (
	KindTemperature Kind = iota
	KindHumidity
)

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// Address defaults to 0x40 if zero.
	Address uint16
	// PollInterval is used between Collect() attempts. Default 5 ms.
	PollInterval time.Duration
	// CollectTimeout bounds each conversion wait. Default 100 ms
	// (datasheet max is 50 ms for 14-bit temperature).
	CollectTimeout time.Duration
}

// Device wraps an I2C connection to an HTU21D device.
type Device struct {
	bus     drivers.I2C
	Address uint16

	cfg     Config
	buf     [3]byte
	pending Kind
	sleep   func(time.Duration)
}

// New creates a new HTU21D connection. The I2C bus must already be configured.
// This function only creates the Device object; it does not touch the device.
func New(bus drivers.I2C) Device {
	return Device{
		bus:     bus,
		Address: Address,
		sleep:   time.Sleep,
	}
}

// Configure applies optional config and soft-resets the sensor.
func (d *Device) Configure(cfgs ...Config) error {
	c := Config{}
	if len(cfgs) > 0 {
		c = cfgs[0]
	}
	if c.Address != 0 {
		d.Address = c.Address
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Millisecond
	}
	if c.CollectTimeout <= 0 {
		c.CollectTimeout = 100 * time.Millisecond
	}
	d.cfg = c
	if d.sleep == nil {
		d.sleep = time.Sleep
	}
	if err := d.bus.Tx(d.Address, []byte{cmdSoftReset}, nil); err != nil {
		return err
	}
	// Datasheet: soft reset completes in < 15 ms.
	d.sleep(15 * time.Millisecond)
	return nil
}

// UserRegister reads the user register (resolution, heater, end-of-battery).
func (d *Device) UserRegister() (byte, error) {
	data := []byte{0}
	if err := d.bus.Tx(d.Address, []byte{cmdReadUser}, data); err != nil {
		return 0, err
	}
	return data[0], nil
}

// TriggerTemperature starts a temperature conversion.
func (d *Device) TriggerTemperature() error {
	d.pending = KindTemperature
	return d.bus.Tx(d.Address, []byte{cmdTriggerTemp}, nil)
}

// TriggerHumidity starts a humidity conversion.
func (d *Device) TriggerHumidity() error {
	d.pending = KindHumidity
	return d.bus.Tx(d.Address, []byte{cmdTriggerHum}, nil)
}

// Pending reports which conversion was last triggered.
func (d *Device) Pending() Kind { return d.pending }

// Collect attempts to read the pending conversion. It returns the raw
// 16-bit value with status bits cleared.
func (d *Device) Collect() (uint16, error) {
	data := d.buf[:]
	if err := d.bus.Tx(d.Address, nil, data); err != nil {
		return 0, ErrNotReady
	}
	if crc8(data[:2]) != data[2] {
		return 0, ErrCRC
	}
	raw := uint16(data[0])<<8 | uint16(data[1])
	return raw &^ statusMask, nil
}

// read performs trigger + bounded polling for one quantity.
func (d *Device) read(k Kind) (uint16, error) {
	if d.cfg.PollInterval == 0 {
		if err := d.Configure(); err != nil {
			return 0, err
		}
	}
	var err error
	if k == KindHumidity {
		err = d.TriggerHumidity()
	} else {
		err = d.TriggerTemperature()
	}
	if err != nil {
		return 0, err
	}
	var waited time.Duration
	for {
		d.sleep(d.cfg.PollInterval)
		waited += d.cfg.PollInterval
		raw, err := d.Collect()
		switch err {
		case nil:
			return raw, nil
		case ErrNotReady:
			if waited >= d.cfg.CollectTimeout {
				return 0, ErrTimeout
			}
		default:
			return 0, err
		}
	}
}

// ReadTemperatureHumidity returns °C and %RH, humidity first like the
// reference firmware so the temperature sample is the freshest.
func (d *Device) ReadTemperatureHumidity() (float64, float64, error) {
	hraw, err := d.read(KindHumidity)
	if err != nil {
		return 0, 0, err
	}
	traw, err := d.read(KindTemperature)
	if err != nil {
		return 0, 0, err
	}
	return Celsius(traw), RelHumidity(hraw), nil
}

// Celsius converts a raw temperature sample.
func Celsius(raw uint16) float64 {
	return -46.85 + 175.72*float64(raw)/65536
}

// RelHumidity converts a raw humidity sample, clamped to [0, 100].
func RelHumidity(raw uint16) float64 {
	rh := -6 + 125*float64(raw)/65536
	if rh < 0 {
		return 0
	}
	if rh > 100 {
		return 100
	}
	return rh
}

// Datasheet dew point constants.
const (
	dewA = 8.1332
	dewB = 1762.39
	dewC = 235.66
)

// DewPoint computes the dew point in °C from temperature (°C) and relative
// humidity (%RH) using the datasheet's partial pressure formula. A
// non-positive humidity has no defined dew point and returns 0.
func DewPoint(tempC, rh float64) float64 {
	if rh <= 0 {
		return 0
	}
	pp := math.Pow(10, dewA-dewB/(tempC+dewC))
	td := -(dewB/(math.Log10(rh*pp/100)-dewA) + dewC)
	if math.IsNaN(td) || math.IsInf(td, 0) {
		return 0
	}
	return td
}

func crc8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
