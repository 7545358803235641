package timex

import (
	"time"

	"sensornode-go/x/mathx"
)

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// TickRate returns the counter frequency produced by a prescaled clock:
// inputHz / (prescaler+1). A zero result is coerced to 1.
func TickRate(inputHz, prescaler uint32) uint32 {
	r := inputHz / (prescaler + 1)
	if r == 0 {
		return 1
	}
	return r
}

// DurationToTicks converts d to counter ticks at rateHz, rounding to nearest.
// Negative durations yield 0.
func DurationToTicks(d time.Duration, rateHz uint32) uint64 {
	if d <= 0 || rateHz == 0 {
		return 0
	}
	return mathx.RoundDiv(uint64(d)*uint64(rateHz), uint64(time.Second))
}

// TicksToDuration converts counter ticks at rateHz back to a duration.
func TicksToDuration(ticks uint64, rateHz uint32) time.Duration {
	if rateHz == 0 {
		return 0
	}
	return time.Duration(mathx.MulDiv(ticks, uint64(time.Second), uint64(rateHz)))
}
