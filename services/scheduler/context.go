package scheduler

import "sync/atomic"

// Context holds the flags shared between interrupt handlers and the main
// loop. Handlers only call the Notify methods; the loop consumes.
type Context struct {
	sleep       atomic.Bool
	sampleReady atomic.Bool
	work        atomic.Bool
	wakeGen     atomic.Uint32

	// armGen is the last wake generation the loop has accounted for.
	// Loop-owned.
	armGen uint32

	// kick wakes a host idler blocked in select. Nil on the MCU, where
	// the idler waits for an interrupt instead.
	kick chan struct{}
}

func NewContext() *Context {
	c := &Context{}
	if kickEnabled {
		c.kick = make(chan struct{}, 1)
	}
	return c
}

// NotifyWake is called by the wake alarm. It clears the sleep flag.
func (c *Context) NotifyWake() {
	c.sleep.Store(false)
	c.wakeGen.Add(1)
	c.signal()
}

// NotifySampleReady is called by the ADC completion interrupt.
func (c *Context) NotifySampleReady() {
	c.sampleReady.Store(true)
	c.signal()
}

// NotifyWork tells the loop that a collaborator has queued work.
func (c *Context) NotifyWork() {
	c.work.Store(true)
	c.signal()
}

func (c *Context) signal() {
	if c.kick == nil {
		return
	}
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

func (c *Context) Sleeping() bool { return c.sleep.Load() }

// ArmSleep sets the sleep flag. Only the session lifecycle calls it, after
// the session layer accepted or confirmed sleep. An alarm that fired since
// the loop last called AckWake is not overwritten: the flag stays clear,
// and the wake counts as accounted for.
func (c *Context) ArmSleep() {
	g := c.wakeGen.Load()
	if g != c.armGen {
		c.armGen = g
		return
	}
	c.sleep.Store(true)
	if now := c.wakeGen.Load(); now != g {
		c.armGen = now
		c.sleep.Store(false)
	}
}

// AckWake marks every alarm so far as handled. The loop calls it when it
// acts on a wake.
func (c *Context) AckWake() { c.armGen = c.wakeGen.Load() }

// ConsumeSampleReady reports and clears the sample-ready flag.
func (c *Context) ConsumeSampleReady() bool { return c.sampleReady.Swap(false) }

// ClearSampleReady drops a stale completion before a new conversion starts.
func (c *Context) ClearSampleReady() { c.sampleReady.Store(false) }

// ConsumeWork reports and clears the work flag.
func (c *Context) ConsumeWork() bool { return c.work.Swap(false) }

func (c *Context) WorkPending() bool { return c.work.Load() }

// Kick is signalled on every Notify call. It is nil on the MCU.
func (c *Context) Kick() <-chan struct{} { return c.kick }
