package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensornode-go/services/session"
	"sensornode-go/types"
)

// gateway is a session layer that defers every reaction to Process, the way
// a real stack delivers callbacks from its own tasklets.
type gateway struct {
	q       *session.Queue
	state   types.SessionState
	calls   []string
	pending []func()
}

func (g *gateway) later(f func()) { g.pending = append(g.pending, f) }

func (g *gateway) Process() {
	run := g.pending
	g.pending = nil
	for _, f := range run {
		f()
	}
}
func (g *gateway) Pending() bool             { return len(g.pending) > 0 }
func (g *gateway) State() types.SessionState { return g.state }

func (g *gateway) Connect(types.ConnectConfig) error {
	g.calls = append(g.calls, "connect")
	g.state = types.SessionConnecting
	g.later(func() { g.q.Post(session.Connected(types.CodeAccepted)) })
	return nil
}

func (g *gateway) Reconnect() error {
	g.calls = append(g.calls, "reconnect")
	g.state = types.SessionConnecting
	g.later(func() { g.q.Post(session.Connected(types.CodeAccepted)) })
	return nil
}

func (g *gateway) Sleep(time.Duration) error {
	g.calls = append(g.calls, "sleep")
	g.later(func() {
		g.state = types.SessionAsleep
		g.q.Post(session.Disconnected(types.DisconnectAsleep))
	})
	return nil
}

// Awake delivers nothing buffered and drops straight back to sleep.
func (g *gateway) Awake(time.Duration) error {
	g.calls = append(g.calls, "awake")
	g.state = types.SessionAwake
	g.later(func() {
		g.state = types.SessionAsleep
		g.q.Post(session.Disconnected(types.DisconnectAsleep))
	})
	return nil
}

type trace struct {
	sctx         *Context
	events       []string
	armedAtCycle []bool
}

func (tr *trace) Cycle(context.Context) error {
	tr.events = append(tr.events, "cycle")
	tr.armedAtCycle = append(tr.armedAtCycle, tr.sctx.Sleeping())
	return nil
}

// alarmIdler fires the wake alarm instead of waiting for it.
type alarmIdler struct {
	tr     *trace
	onIdle func()
}

func (a *alarmIdler) Idle(context.Context) {
	if a.onIdle != nil {
		a.onIdle()
		return
	}
	a.tr.events = append(a.tr.events, "alarm")
	a.tr.sctx.NotifyWake()
}

type rig struct {
	sched *Scheduler
	sctx  *Context
	gw    *gateway
	q     *session.Queue
	tr    *trace
	idler *alarmIdler
}

func newRig() *rig {
	sctx := NewContext()
	q := session.NewQueue(8, sctx)
	gw := &gateway{q: q}
	tr := &trace{sctx: sctx}
	idler := &alarmIdler{tr: tr}
	ctrl := session.NewController(session.Options{
		Session: gw,
		Flags:   sctx,
		Cycler:  tr,
		Policy: session.Policy{
			SleepPeriod: 60 * time.Second, SleepGuard: 10 * time.Second,
			AwakeTimeout: 2 * time.Second, ShortPoll: 10 * time.Millisecond, LongPoll: 60 * time.Second,
		},
	})
	s := New(Options{Context: sctx, Stack: gw, Idler: idler, Controller: ctrl, Queue: q})
	return &rig{sched: s, sctx: sctx, gw: gw, q: q, tr: tr, idler: idler}
}

func TestContextFlags(t *testing.T) {
	c := NewContext()
	assert.False(t, c.Sleeping())
	c.ArmSleep()
	assert.True(t, c.Sleeping())
	c.NotifyWake()
	assert.False(t, c.Sleeping())

	c.NotifySampleReady()
	assert.True(t, c.ConsumeSampleReady())
	assert.False(t, c.ConsumeSampleReady(), "second consume is a no-op")

	c.NotifyWork()
	assert.True(t, c.WorkPending())
	assert.True(t, c.ConsumeWork())
	assert.False(t, c.WorkPending())

	select {
	case <-c.Kick():
	default:
		t.Fatal("notify should kick the host idler")
	}
}

func TestArmSleepKeepsUnhandledWake(t *testing.T) {
	c := NewContext()
	c.ArmSleep()
	c.NotifyWake()
	c.AckWake()

	// The alarm lands after the loop last acted on a wake.
	c.NotifyWake()
	c.ArmSleep()
	assert.False(t, c.Sleeping(), "arming must not swallow the alarm")

	// That wake is now accounted for; the next arm sticks.
	c.ArmSleep()
	assert.True(t, c.Sleeping())
}

func TestAlarmBeforeSleepConfirmationStartsWake(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	r.q.Post(session.RoleChanged(true))
	for i := 0; i < 10 && r.sched.Stats().Wakes == 0; i++ {
		r.sched.Step(ctx)
	}
	require.Equal(t, uint64(1), r.sched.Stats().Wakes)
	require.True(t, r.gw.Pending(), "sleep confirmation should still be queued")

	// The alarm fires before the loop drains the confirmation.
	r.sctx.NotifyWake()
	spins := r.sched.Stats().IdleSpins
	r.sched.Step(ctx)

	assert.Equal(t, spins, r.sched.Stats().IdleSpins, "loop slept through the alarm")
	assert.Equal(t, uint64(2), r.sched.Stats().Wakes)
	assert.Equal(t, "awake", r.gw.calls[len(r.gw.calls)-1])
	assert.Equal(t, "cycle", r.tr.events[len(r.tr.events)-1])
}

func TestNoIdleWhileAwake(t *testing.T) {
	r := newRig()
	r.sched.Step(context.Background())
	assert.Zero(t, r.sched.Stats().IdleSpins)
	assert.Empty(t, r.tr.events)
}

func TestOnePublishPassPerAlarm(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	r.q.Post(session.RoleChanged(true))

	for i := 0; i < 60; i++ {
		r.sched.Step(ctx)
	}

	require.NotEmpty(t, r.tr.events)
	assert.Equal(t, "cycle", r.tr.events[0], "first pass runs on the first sleep confirmation")
	for i := 1; i < len(r.tr.events); i++ {
		assert.NotEqual(t, r.tr.events[i-1], r.tr.events[i], "alarms and passes must alternate: %v", r.tr.events)
	}
	for i, armed := range r.tr.armedAtCycle {
		assert.True(t, armed, "pass %d ran with the sleep flag clear", i)
	}
	st := r.sched.Stats()
	assert.Equal(t, uint64(60), st.Iterations)
	assert.Greater(t, st.Wakes, uint64(5))
	assert.Equal(t, []string{"connect", "sleep", "awake"}, r.gw.calls[:3])
}

func TestReconnectRightAfterIdleExit(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	r.q.Post(session.RoleChanged(true))
	for i := 0; i < 3; i++ {
		r.sched.Step(ctx)
	}
	require.True(t, r.sctx.Sleeping())
	require.Equal(t, types.SessionAsleep, r.gw.state)

	// The stack reports loss while the CPU is idle.
	r.idler.onIdle = func() {
		r.gw.state = types.SessionLost
		r.sctx.NotifyWork()
	}
	calls := len(r.gw.calls)
	r.sched.Step(ctx)

	assert.Equal(t, []string{"reconnect"}, r.gw.calls[calls:])
	assert.Equal(t, types.SessionConnecting, r.gw.state)
	assert.Equal(t, uint64(1), r.sched.Stats().Reconnects)

	// The flag is still set from before the loss; the next connack re-arms
	// it and the cycle resumes.
	r.idler.onIdle = nil
	for i := 0; i < 4; i++ {
		r.sched.Step(ctx)
	}
	assert.Contains(t, r.gw.calls[calls:], "sleep")
}

func TestIdleStopsOnContextDone(t *testing.T) {
	r := newRig()
	ctx, cancel := context.WithCancel(context.Background())
	r.sctx.ArmSleep()
	r.idler.onIdle = cancel
	r.sched.Step(ctx)
	assert.Equal(t, uint64(1), r.sched.Stats().IdleSpins)
	assert.ErrorIs(t, r.sched.Run(ctx), context.Canceled)
}

func TestRunPacesWhenIdleAwake(t *testing.T) {
	r := newRig()
	r.sched.pace = 5 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	err := r.sched.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	// Paced, not spinning.
	assert.Less(t, r.sched.Stats().Iterations, uint64(100))
}
