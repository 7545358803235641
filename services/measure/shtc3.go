package measure

import (
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/shtc3"

	"sensornode-go/errcode"
	"sensornode-go/x/mathx"
)

// SHTC3 adapts the Sensirion driver. The part is woken for each reading
// and put back to sleep afterwards.
type SHTC3 struct {
	bus *txRecorder
	dev shtc3.Device
}

func NewSHTC3(bus drivers.I2C) *SHTC3 {
	rec := &txRecorder{bus: bus}
	return &SHTC3{bus: rec, dev: shtc3.New(rec)}
}

// Detect wakes the part and puts it back to sleep, reporting whether it
// acknowledged.
func (s *SHTC3) Detect() error {
	s.bus.reset()
	_ = s.dev.WakeUp()
	_ = s.dev.Sleep()
	return s.bus.err
}

func (s *SHTC3) ReadTemperatureHumidity() (float64, float64, error) {
	s.bus.reset()
	_ = s.dev.WakeUp()
	if s.bus.err != nil {
		return 0, 0, s.bus.err
	}
	defer func() { _ = s.dev.Sleep() }()

	tmc, rhx100, err := s.dev.ReadTemperatureHumidity()
	if err == nil {
		err = s.bus.err
	}
	if err != nil {
		return 0, 0, err
	}
	// milli-°C and hundredths of a percent
	return float64(tmc) / 1000, mathx.Clamp(float64(rhx100)/100, 0, 100), nil
}

// txRecorder keeps the first bus error, which the driver discards. Six-byte
// measurement reads are also CRC-checked.
type txRecorder struct {
	bus drivers.I2C
	err error
}

func (r *txRecorder) reset() { r.err = nil }

func (r *txRecorder) Tx(addr uint16, w, rd []byte) error {
	err := r.bus.Tx(addr, w, rd)
	if err == nil && len(rd) == 6 {
		if sensirionCRC(rd[0:2]) != rd[2] || sensirionCRC(rd[3:5]) != rd[5] {
			err = errcode.New(errcode.SensorFault, "shtc3.read", "crc mismatch")
		}
	}
	if err != nil && r.err == nil {
		r.err = err
	}
	return err
}

// sensirionCRC is CRC-8 with polynomial 0x31 and init 0xFF.
func sensirionCRC(data []byte) byte {
	crc := byte(0xFF)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
