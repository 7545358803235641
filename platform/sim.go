// Package platform provides the board bindings: real peripherals on the
// RP2040 and simulated ones everywhere else.
package platform

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"sensornode-go/drivers/vdiv"
	"sensornode-go/errcode"
)

// HostCounter emulates the RTC: a free-running counter derived from the
// wall clock, scaled by Speed, with one compare alarm.
type HostCounter struct {
	rate  uint32
	width uint
	speed float64
	start time.Time

	mu      sync.Mutex
	alarm   *time.Timer
	handler func()
}

func NewHostCounter(rateHz uint32, width uint, speed float64) *HostCounter {
	if width == 0 || width > 32 {
		width = 32
	}
	if speed <= 0 {
		speed = 1
	}
	return &HostCounter{rate: rateHz, width: width, speed: speed, start: time.Now()}
}

func (c *HostCounter) mask() uint32 { return uint32(uint64(1)<<c.width - 1) }

func (c *HostCounter) Width() uint { return c.width }

func (c *HostCounter) Now() uint32 {
	el := float64(time.Since(c.start)) * c.speed
	ticks := uint64(el * float64(c.rate) / float64(time.Second))
	return uint32(ticks) & c.mask()
}

// SetCompare schedules the alarm for the next time the counter reaches v.
func (c *HostCounter) SetCompare(v uint32) {
	delta := uint64((v - c.Now()) & c.mask())
	if delta == 0 {
		delta = uint64(c.mask()) + 1
	}
	wall := time.Duration(float64(delta) * float64(time.Second) / float64(c.rate) / c.speed)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.alarm != nil {
		c.alarm.Stop()
	}
	c.alarm = time.AfterFunc(wall, c.fire)
}

func (c *HostCounter) fire() {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()
	if h != nil {
		h()
	}
}

func (c *HostCounter) OnAlarm(h func()) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

func (c *HostCounter) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.alarm != nil {
		c.alarm.Stop()
	}
}

// ChanIdler blocks until the scheduler context is kicked.
type ChanIdler struct {
	Kick <-chan struct{}
}

func (i ChanIdler) Idle(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-i.Kick:
	}
}

// SampleNotifier is the ADC completion interrupt target.
type SampleNotifier interface {
	NotifySampleReady()
}

// SimADC converts a simulated battery voltage through the divider. The
// battery drains a little on every sample.
type SimADC struct {
	Flag  SampleNotifier
	Div   vdiv.Divider
	Delay time.Duration
	Drain float64
	// Stuck suppresses completion, as a hung converter would.
	Stuck bool

	mu    sync.Mutex
	volts float64
	raw   atomic.Uint32
	open  bool
}

func NewSimADC(flag SampleNotifier, div vdiv.Divider, volts float64) *SimADC {
	return &SimADC{Flag: flag, Div: div, Delay: time.Millisecond, volts: volts}
}

func (a *SimADC) Open() error {
	a.mu.Lock()
	a.open = true
	a.mu.Unlock()
	return nil
}

func (a *SimADC) Close() error {
	a.mu.Lock()
	a.open = false
	a.mu.Unlock()
	return nil
}

func (a *SimADC) StartSample() error {
	a.mu.Lock()
	if !a.open {
		a.mu.Unlock()
		return errcode.New(errcode.NotReady, "simadc.start", "adc not open")
	}
	a.raw.Store(uint32(a.Div.Raw(a.volts)))
	a.volts -= a.Drain
	if a.volts < 0 {
		a.volts = 0
	}
	stuck := a.Stuck
	a.mu.Unlock()
	if !stuck {
		time.AfterFunc(a.Delay, a.Flag.NotifySampleReady)
	}
	return nil
}

func (a *SimADC) Value() uint16 { return uint16(a.raw.Load()) }

func (a *SimADC) Volts() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.volts
}

// SimSensor random-walks around a base temperature and humidity.
type SimSensor struct {
	mu   sync.Mutex
	t, h float64
	rng  *rand.Rand
	// FailEvery makes every n-th read fail; zero never fails.
	FailEvery int
	reads     int
}

func NewSimSensor(tempC, rh float64, seed int64) *SimSensor {
	return &SimSensor{t: tempC, h: rh, rng: rand.New(rand.NewSource(seed))}
}

func (s *SimSensor) ReadTemperatureHumidity() (float64, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.FailEvery > 0 && s.reads%s.FailEvery == 0 {
		return 0, 0, errcode.New(errcode.SensorFault, "simsensor", "no ack")
	}
	s.t += (s.rng.Float64() - 0.5) * 0.2
	s.h += (s.rng.Float64() - 0.5) * 0.5
	if s.h < 0 {
		s.h = 0
	} else if s.h > 100 {
		s.h = 100
	}
	return s.t, s.h, nil
}
