// Package waketimer drives the periodic wake alarm from a free-running
// hardware counter with a single compare register.
//
// The next deadline is always the previous deadline plus one period. The
// counter is only read when arming, so time spent in the handler never
// shifts later alarms.
package waketimer

import (
	"sync/atomic"
	"time"

	"sensornode-go/errcode"
	"sensornode-go/x/timex"
)

// Counter is the RTC peripheral: a free-running up-counter of Width bits
// and a compare register that raises the alarm interrupt on match.
type Counter interface {
	Now() uint32
	SetCompare(v uint32)
	Width() uint
}

// AlarmSource is a Counter that delivers the compare interrupt through a
// registered handler.
type AlarmSource interface {
	OnAlarm(handler func())
}

// Waker is told about every alarm, from interrupt context.
type Waker interface {
	NotifyWake()
}

type Config struct {
	InputHz   uint32
	Prescaler uint32
}

type Timer struct {
	counter Counter
	waker   Waker
	rate    uint32
	mask    uint64

	period   atomic.Uint64 // ticks; zero until armed
	deadline atomic.Uint64 // logical, never wraps
	lastFire atomic.Uint64
	fires    atomic.Uint64
}

func New(c Counter, cfg Config, w Waker) *Timer {
	width := c.Width()
	if width == 0 || width > 32 {
		width = 32
	}
	return &Timer{
		counter: c,
		waker:   w,
		rate:    timex.TickRate(cfg.InputHz, cfg.Prescaler),
		mask:    1<<width - 1,
	}
}

// Rate returns the counter frequency in Hz.
func (t *Timer) Rate() uint32 { return t.rate }

// Arm schedules the first alarm one period from now. Later alarms follow
// from Fire.
func (t *Timer) Arm(period time.Duration) error {
	ticks := timex.DurationToTicks(period, t.rate)
	if ticks == 0 {
		return errcode.New(errcode.InvalidParams, "waketimer.arm", "period shorter than one tick")
	}
	if ticks > t.mask {
		return errcode.New(errcode.InvalidParams, "waketimer.arm", "period exceeds counter range")
	}
	now := uint64(t.counter.Now())
	d := now + ticks
	t.lastFire.Store(now)
	t.deadline.Store(d)
	t.period.Store(ticks)
	t.counter.SetCompare(uint32(d & t.mask))
	return nil
}

// Fire is the compare-match interrupt handler.
func (t *Timer) Fire() {
	p := t.period.Load()
	if p == 0 {
		return
	}
	if t.waker != nil {
		t.waker.NotifyWake()
	}
	d := t.deadline.Add(p)
	t.lastFire.Store(d - p)
	t.fires.Add(1)
	t.counter.SetCompare(uint32(d & t.mask))
}

// SinceLastFire is the time elapsed since the last alarm (or since Arm).
func (t *Timer) SinceLastFire() time.Duration {
	last := t.lastFire.Load() & t.mask
	now := uint64(t.counter.Now())
	return timex.TicksToDuration((now-last)&t.mask, t.rate)
}

// Deadline returns the logical tick of the next alarm.
func (t *Timer) Deadline() uint64 { return t.deadline.Load() }

// Period returns the armed period in ticks.
func (t *Timer) Period() uint64 { return t.period.Load() }

func (t *Timer) Fires() uint64 { return t.fires.Load() }
