//go:build rp2040

package platform

import (
	"device/rp"
	"runtime/interrupt"
)

// The runtime owns alarm 0; the wake alarm uses alarm 1 of the 1 MHz
// system timer.
const wakeAlarm = 1

var wakeHandler func()

type timerCounter struct{}

func newTimerCounter() *timerCounter {
	rp.TIMER.INTE.SetBits(1 << wakeAlarm)
	intr := interrupt.New(rp.IRQ_TIMER_IRQ_1, func(interrupt.Interrupt) {
		rp.TIMER.INTR.Set(1 << wakeAlarm)
		if h := wakeHandler; h != nil {
			h()
		}
	})
	intr.Enable()
	return &timerCounter{}
}

func (*timerCounter) Now() uint32         { return rp.TIMER.TIMERAWL.Get() }
func (*timerCounter) SetCompare(v uint32) { rp.TIMER.ALARM1.Set(v) }
func (*timerCounter) Width() uint         { return 32 }
func (*timerCounter) OnAlarm(h func())    { wakeHandler = h }
