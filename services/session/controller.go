package session

import (
	"context"
	"time"

	"sensornode-go/errcode"
	"sensornode-go/services/observer"
	"sensornode-go/types"
	"sensornode-go/x/strconvx"
)

// Session is the sleepy pub/sub client. It owns SessionState; requests are
// fire-and-forget and an error only means the request was not accepted
// locally.
type Session interface {
	State() types.SessionState
	Connect(cfg types.ConnectConfig) error
	Sleep(d time.Duration) error
	Awake(timeout time.Duration) error
	Reconnect() error
}

// Link is the part of the mesh stack the lifecycle drives.
type Link interface {
	SetPollPeriod(d time.Duration) error
}

// SleepArmer sets the scheduler's sleep flag.
type SleepArmer interface {
	ArmSleep()
}

// Cycler performs one measurement and publish pass.
type Cycler interface {
	Cycle(ctx context.Context) error
}

type Controller struct {
	sess    Session
	link    Link
	flags   SleepArmer
	cycler  Cycler
	connect types.ConnectConfig
	policy  Policy
	obs     observer.Observer

	seenDrops uint32
}

type Options struct {
	Session  Session
	Link     Link
	Flags    SleepArmer
	Cycler   Cycler
	Connect  types.ConnectConfig
	Policy   Policy
	Observer observer.Observer
}

func NewController(o Options) *Controller {
	return &Controller{
		sess:    o.Session,
		link:    o.Link,
		flags:   o.Flags,
		cycler:  o.Cycler,
		connect: o.Connect,
		policy:  o.Policy,
		obs:     observer.OrNop(o.Observer),
	}
}

// State reports the session layer's current state.
func (c *Controller) State() types.SessionState { return c.sess.State() }

// Handle feeds one event through Advance and executes the resulting
// requests in order. A rejected session request stops the remaining ones;
// the lifecycle recovers on a later event.
func (c *Controller) Handle(ctx context.Context, ev Event) Transition {
	from := c.sess.State()
	tr := Advance(from, ev, c.policy)
	if len(tr.Requests) == 0 && tr.Next == from {
		return tr
	}
	c.obs.Observe(observer.Event{Kind: observer.KindState, Op: ev.Kind.String(), State: tr.Next, Detail: "from=" + from.String()})

	switch ev.Kind {
	case EvWoken:
		c.obs.Observe(observer.Event{Kind: observer.KindWake, State: tr.Next})
	case EvLost:
		c.obs.Observe(observer.Event{Kind: observer.KindReconnect, State: tr.Next})
	}

	for _, r := range tr.Requests {
		c.obs.Observe(observer.Event{Kind: observer.KindRequest, Op: r.Kind.String()})
		err := c.exec(ctx, r)
		if err == nil {
			continue
		}
		c.obs.Observe(observer.Event{Kind: observer.KindRequestFailed, Op: r.Kind.String(), Err: err})
		if aborts(r.Kind) {
			break
		}
	}
	return tr
}

// aborts reports whether a failure of k cancels the rest of the list. Poll
// period changes and the measurement pass are best-effort.
func aborts(k RequestKind) bool {
	switch k {
	case ReqSetPollPeriod, ReqMeasureAndPublish:
		return false
	}
	return true
}

func (c *Controller) exec(ctx context.Context, r Request) error {
	switch r.Kind {
	case ReqConnect:
		return c.sess.Connect(c.connect)
	case ReqSleep:
		return c.sess.Sleep(r.Duration)
	case ReqArmSleepFlag:
		// An alarm can fire between the confirmation being queued and this
		// request; the armer keeps such a wake instead of overwriting it.
		if c.flags != nil {
			c.flags.ArmSleep()
		}
		return nil
	case ReqSetPollPeriod:
		if c.link == nil {
			return nil
		}
		return c.link.SetPollPeriod(r.Duration)
	case ReqAwake:
		return c.sess.Awake(r.Duration)
	case ReqReconnect:
		return c.sess.Reconnect()
	case ReqMeasureAndPublish:
		if c.cycler == nil {
			return nil
		}
		return c.cycler.Cycle(ctx)
	}
	return errcode.New(errcode.Unsupported, "session.exec", r.Kind.String())
}

// Drain handles every queued event. It returns how many were handled.
func (c *Controller) Drain(ctx context.Context, q *Queue) int {
	if d := q.Dropped(); d != c.seenDrops {
		c.obs.Observe(observer.Event{Kind: observer.KindQueueDrop, Detail: "dropped=" + strconvx.FormatUint(uint64(d-c.seenDrops), 10)})
		c.seenDrops = d
	}
	n := 0
	for {
		ev, ok := q.Next()
		if !ok {
			return n
		}
		c.Handle(ctx, ev)
		n++
	}
}
