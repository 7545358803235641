// Package node assembles the duty-cycled sensor node from a validated
// configuration and a set of hardware collaborators.
package node

import (
	"context"
	"time"

	"sensornode-go/bus"
	"sensornode-go/errcode"
	"sensornode-go/services/config"
	"sensornode-go/services/measure"
	"sensornode-go/services/network"
	"sensornode-go/services/observer"
	"sensornode-go/services/publish"
	"sensornode-go/services/scheduler"
	"sensornode-go/services/session"
	"sensornode-go/services/waketimer"
	"sensornode-go/types"
)

// Session is the pub/sub client: lifecycle requests plus sends.
type Session interface {
	session.Session
	publish.Sender
}

// Hardware is what a board provides. Stack defaults to Session when the
// session also does cooperative protocol work; Drivers may be nil.
type Hardware struct {
	Counter waketimer.Counter
	Sensor  measure.Sensor
	ADC     measure.ADC
	Mesh    network.Mesh
	Session Session
	Stack   scheduler.Stack
	Drivers scheduler.Drivers
	Idler   scheduler.Idler
}

// Deps are created by the node before the board is built, so interrupt
// handlers and callbacks can be pointed at them.
type Deps struct {
	Context  *scheduler.Context
	Queue    *session.Queue
	Observer observer.Observer
}

type Builder func(cfg types.NodeConfig, d Deps) (Hardware, error)

type Options struct {
	Observer observer.Observer
	// Bus, when set, receives the configuration as retained messages and
	// every observer event.
	Bus      *bus.Bus
	QueueLen int
	// Pace is passed to the scheduler; see scheduler.Options.
	Pace time.Duration
}

type Node struct {
	cfg types.NodeConfig
	hw  Hardware
	obs observer.Observer

	sctx      *scheduler.Context
	queue     *session.Queue
	timer     *waketimer.Timer
	source    *measure.Source
	publisher *publish.Publisher
	ctrl      *session.Controller
	monitor   *network.JoinMonitor
	sched     *scheduler.Scheduler
}

func New(cfg types.NodeConfig, build Builder, o Options) (*Node, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	obs := observer.OrNop(o.Observer)
	if o.Bus != nil {
		conn := o.Bus.NewConnection("node")
		config.Publish(conn, cfg)
		obs = observer.Multi{obs, observer.Bus{Conn: conn}}
	}

	sctx := scheduler.NewContext()
	q := session.NewQueue(o.QueueLen, sctx)
	hw, err := build(cfg, Deps{Context: sctx, Queue: q, Observer: obs})
	if err != nil {
		return nil, errcode.Wrap(errcode.HardwareFailed, "node.build", err)
	}
	if hw.Counter == nil || hw.Mesh == nil || hw.Session == nil || hw.Idler == nil {
		return nil, errcode.New(errcode.InvalidParams, "node.build", "counter, mesh, session and idler are required")
	}

	n := &Node{cfg: cfg, hw: hw, obs: obs, sctx: sctx, queue: q}
	n.timer = waketimer.New(hw.Counter, waketimer.Config{InputHz: cfg.RTC.InputHz, Prescaler: cfg.RTC.Prescaler}, sctx)
	if a, ok := hw.Counter.(waketimer.AlarmSource); ok {
		a.OnAlarm(n.timer.Fire)
	}
	n.source = measure.New(hw.Sensor, hw.ADC, sctx, cfg.ADC, obs)
	n.publisher = publish.New(hw.Session, n.source, cfg.Connect.ClientID, cfg.Topics, obs)
	n.ctrl = session.NewController(session.Options{
		Session:  hw.Session,
		Link:     hw.Mesh,
		Flags:    sctx,
		Cycler:   n.publisher,
		Connect:  cfg.Connect,
		Policy:   session.PolicyFrom(cfg.Timing),
		Observer: obs,
	})
	n.monitor = network.NewJoinMonitor(hw.Mesh, q, obs)

	stack := hw.Stack
	if stack == nil {
		if st, ok := hw.Session.(scheduler.Stack); ok {
			stack = st
		}
	}
	n.sched = scheduler.New(scheduler.Options{
		Context:    sctx,
		Stack:      stack,
		Drivers:    hw.Drivers,
		Idler:      hw.Idler,
		Controller: n.ctrl,
		Queue:      q,
		Pace:       o.Pace,
	})
	return n, nil
}

// Start brings the mesh up and arms the wake alarm.
func (n *Node) Start() error {
	if nt, ok := n.hw.Mesh.(network.Notifier); ok {
		nt.OnStateChanged(n.monitor.OnStateChanged)
	}
	if err := network.Bringup(n.hw.Mesh, n.cfg.Network, n.cfg.Timing.ShortPoll); err != nil {
		return err
	}
	if err := n.timer.Arm(n.cfg.Timing.SleepPeriod); err != nil {
		return err
	}
	n.obs.Observe(observer.Event{Kind: observer.KindState, Op: "node.start", State: n.ctrl.State(), Detail: n.cfg.Device})
	return nil
}

// Run starts the node and runs the main loop until ctx is done.
func (n *Node) Run(ctx context.Context) error {
	if err := n.Start(); err != nil {
		return err
	}
	return n.sched.Run(ctx)
}

func (n *Node) Config() types.NodeConfig        { return n.cfg }
func (n *Node) Context() *scheduler.Context     { return n.sctx }
func (n *Node) Queue() *session.Queue           { return n.queue }
func (n *Node) Timer() *waketimer.Timer         { return n.timer }
func (n *Node) Source() *measure.Source         { return n.source }
func (n *Node) Publisher() *publish.Publisher   { return n.publisher }
func (n *Node) Controller() *session.Controller { return n.ctrl }
func (n *Node) Monitor() *network.JoinMonitor   { return n.monitor }
func (n *Node) Scheduler() *scheduler.Scheduler { return n.sched }
