package session

import (
	"sync"
	"sync/atomic"
	"time"

	"sensornode-go/errcode"
	"sensornode-go/types"
)

// SimMessage is one payload sent through a Sim gateway.
type SimMessage struct {
	Topic   types.TopicID
	QoS     types.QoS
	Payload string
}

// Sim is an in-process gateway. Every reaction is deferred to Process, so
// it behaves like a stack whose callbacks run from its own work queue.
type Sim struct {
	q    *Queue
	kick Kicker

	// ConnectCode is returned for every connect; CodeAccepted by default.
	ConnectCode types.ReturnCode
	// AfterFunc schedules the end of an awake window.
	AfterFunc func(d time.Duration, f func())

	state atomic.Uint32

	mu        sync.Mutex
	pending   []func()
	published []SimMessage
	connects  int
	port      uint16
	sleeps    []time.Duration
}

func NewSim(q *Queue, k Kicker) *Sim {
	return &Sim{
		q:    q,
		kick: k,
		AfterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

func (s *Sim) later(f func()) {
	s.mu.Lock()
	s.pending = append(s.pending, f)
	s.mu.Unlock()
	if s.kick != nil {
		s.kick.NotifyWork()
	}
}

func (s *Sim) Process() {
	s.mu.Lock()
	run := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, f := range run {
		f()
	}
}

func (s *Sim) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending) > 0
}

func (s *Sim) State() types.SessionState { return types.SessionState(s.state.Load()) }

func (s *Sim) set(st types.SessionState) { s.state.Store(uint32(st)) }

// Connect starts the client on cfg.ClientPort, then dials the gateway.
func (s *Sim) Connect(cfg types.ConnectConfig) error {
	if cfg.ClientPort == 0 {
		return errcode.New(errcode.InvalidParams, "sim.connect", "client port is zero")
	}
	s.mu.Lock()
	s.port = cfg.ClientPort
	s.mu.Unlock()
	return s.dial()
}

func (s *Sim) Reconnect() error { return s.dial() }

func (s *Sim) dial() error {
	s.mu.Lock()
	s.connects++
	s.mu.Unlock()
	s.set(types.SessionConnecting)
	code := s.ConnectCode
	s.later(func() {
		if code != types.CodeAccepted {
			s.set(types.SessionDisconnected)
		}
		s.q.Post(Connected(code))
	})
	return nil
}

func (s *Sim) Sleep(d time.Duration) error {
	if !s.live() {
		return errcode.New(errcode.NotConnected, "sim.sleep", s.State().String())
	}
	s.mu.Lock()
	s.sleeps = append(s.sleeps, d)
	s.mu.Unlock()
	s.later(s.confirmAsleep)
	return nil
}

func (s *Sim) Awake(timeout time.Duration) error {
	if !s.live() {
		return errcode.New(errcode.NotConnected, "sim.awake", s.State().String())
	}
	s.set(types.SessionAwake)
	s.AfterFunc(timeout, func() { s.later(s.confirmAsleep) })
	return nil
}

func (s *Sim) confirmAsleep() {
	if !s.live() {
		return
	}
	s.set(types.SessionAsleep)
	s.q.Post(Disconnected(types.DisconnectAsleep))
}

func (s *Sim) live() bool {
	switch s.State() {
	case types.SessionConnecting, types.SessionAwake, types.SessionAsleep:
		return true
	}
	return false
}

func (s *Sim) Publish(topic types.TopicID, qos types.QoS, payload []byte) error {
	if !s.live() {
		return errcode.New(errcode.NotConnected, "sim.publish", s.State().String())
	}
	s.mu.Lock()
	s.published = append(s.published, SimMessage{Topic: topic, QoS: qos, Payload: string(payload)})
	s.mu.Unlock()
	return nil
}

// Lose drops the session as a keep-alive failure would.
func (s *Sim) Lose() {
	s.later(func() {
		s.set(types.SessionLost)
		s.q.Post(Disconnected(types.DisconnectTimeout))
	})
}

func (s *Sim) Published() []SimMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SimMessage(nil), s.published...)
}

func (s *Sim) Connects() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connects
}

// ClientPort is the local port the client was started on.
func (s *Sim) ClientPort() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

func (s *Sim) Sleeps() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.sleeps...)
}
