//go:build !(rp2040 || rp2350)

// Package mqttsession runs the sleepy session lifecycle over an MQTT broker
// so the node can be exercised on a host. The broker connection stays open
// while the node is logically asleep; sleep and awake are announced on a
// retained status topic and acknowledged locally.
package mqttsession

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/eclipse/paho.mqtt.golang/packets"

	"sensornode-go/errcode"
	"sensornode-go/services/observer"
	"sensornode-go/services/session"
	"sensornode-go/types"
)

// Poster receives lifecycle events (session.Queue).
type Poster interface {
	Post(ev session.Event)
}

type Options struct {
	// Root is the topic prefix; defaults to sensornode/<client id>.
	Root     string
	Queue    Poster
	Kicker   session.Kicker
	Observer observer.Observer
	// OnMessage receives messages published to <root>/in/# while awake.
	OnMessage func(topic string, payload []byte)
	// NewClient is replaced in tests.
	NewClient func(*mqtt.ClientOptions) mqtt.Client
}

const inboxLen = 32

const (
	statusOnline = "online"
	statusAsleep = "asleep"
	statusAwake  = "awake"
	statusLost   = "lost"
)

// Session implements session.Session, publish.Sender and scheduler.Stack.
// Paho callbacks run on paho's goroutines; they only queue work that
// Process applies on the main loop.
type Session struct {
	opts  Options
	state atomic.Uint32
	inbox chan func()
	// dropped counts callbacks lost to a full inbox; reported counts
	// what Process has already observed.
	dropped  atomic.Uint32
	reported uint32

	cfg       types.ConnectConfig
	hasCfg    bool
	client    mqtt.Client
	awake     atomic.Bool
	awakeStop *time.Timer
}

func New(o Options) *Session {
	if o.NewClient == nil {
		o.NewClient = mqtt.NewClient
	}
	o.Observer = observer.OrNop(o.Observer)
	return &Session{opts: o, inbox: make(chan func(), inboxLen)}
}

func (s *Session) State() types.SessionState { return types.SessionState(s.state.Load()) }

func (s *Session) setState(st types.SessionState) { s.state.Store(uint32(st)) }

// deliver hands f to the main loop. Called from paho and timer goroutines
// and from the loop itself, so it never blocks: a full inbox drops f.
func (s *Session) deliver(f func()) {
	select {
	case s.inbox <- f:
	default:
		s.dropped.Add(1)
	}
	if s.opts.Kicker != nil {
		s.opts.Kicker.NotifyWork()
	}
}

// Process applies queued callbacks. It never blocks.
func (s *Session) Process() {
	if n := s.dropped.Load(); n != s.reported {
		s.reported = n
		s.opts.Observer.Observe(observer.Event{Kind: observer.KindQueueDrop, Op: "mqtt.inbox", Detail: "dropped=" + strconv.FormatUint(uint64(n), 10)})
	}
	for {
		select {
		case f := <-s.inbox:
			f()
		default:
			return
		}
	}
}

func (s *Session) Pending() bool { return len(s.inbox) > 0 }

func (s *Session) Dropped() uint32 { return s.dropped.Load() }

// ClientPort is the local port recorded at Connect. A TCP broker
// connection uses an ephemeral port, so it is only reported.
func (s *Session) ClientPort() uint16 { return s.cfg.ClientPort }

func (s *Session) root() string {
	if s.opts.Root != "" {
		return s.opts.Root
	}
	return "sensornode/" + s.cfg.ClientID
}

func (s *Session) topic(parts ...string) string {
	return s.root() + "/" + strings.Join(parts, "/")
}

func (s *Session) clientOptions(cfg types.ConnectConfig) *mqtt.ClientOptions {
	o := mqtt.NewClientOptions()
	o.AddBroker("tcp://" + net.JoinHostPort(cfg.Address, strconv.Itoa(int(cfg.Port))))
	o.SetClientID(cfg.ClientID)
	o.SetKeepAlive(cfg.KeepAlive)
	o.SetCleanSession(cfg.CleanSession)
	o.SetAutoReconnect(false)
	o.SetConnectTimeout(cfg.RetransmissionTimeout * time.Duration(int(cfg.RetransmissionCount)+1))
	o.SetWill(s.topic("status"), statusLost, 0, true)
	o.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.deliver(func() {
			s.opts.Observer.Observe(observer.Event{Kind: observer.KindFault, Op: "mqtt.lost", Err: err})
			s.setState(types.SessionLost)
			s.opts.Queue.Post(session.Disconnected(types.DisconnectTimeout))
		})
	})
	o.SetDefaultPublishHandler(func(_ mqtt.Client, m mqtt.Message) {
		if s.awake.Load() && s.opts.OnMessage != nil {
			s.opts.OnMessage(m.Topic(), m.Payload())
		}
	})
	return o
}

// Connect dials the broker in the background. The outcome arrives as a
// Connected event.
func (s *Session) Connect(cfg types.ConnectConfig) error {
	switch s.State() {
	case types.SessionDisconnected, types.SessionLost:
	default:
		return errcode.New(errcode.InvalidState, "mqtt.connect", "session is "+s.State().String())
	}
	s.cfg, s.hasCfg = cfg, true
	s.opts.Observer.Observe(observer.Event{Kind: observer.KindState, Op: "mqtt.start", Detail: "client_port=" + strconv.Itoa(int(cfg.ClientPort))})
	s.dial(0)
	return nil
}

// Reconnect drops the old connection and dials again after one
// retransmission timeout.
func (s *Session) Reconnect() error {
	if !s.hasCfg {
		return errcode.New(errcode.NotReady, "mqtt.reconnect", "never connected")
	}
	s.dial(s.cfg.RetransmissionTimeout)
	return nil
}

func (s *Session) dial(after time.Duration) {
	if s.client != nil {
		s.client.Disconnect(0)
	}
	s.stopAwake()
	s.setState(types.SessionConnecting)
	c := s.opts.NewClient(s.clientOptions(s.cfg))
	s.client = c

	go func() {
		if after > 0 {
			time.Sleep(after)
		}
		tok := c.Connect()
		tok.Wait()
		err := tok.Error()
		s.deliver(func() { s.connectDone(c, err) })
	}()
}

func (s *Session) connectDone(c mqtt.Client, err error) {
	if c != s.client {
		return // superseded by a newer dial
	}
	if err == nil {
		c.Publish(s.topic("status"), 0, true, statusOnline)
		c.Subscribe(s.topic("in", "#"), 0, nil)
		s.opts.Queue.Post(session.Connected(types.CodeAccepted))
		return
	}
	code := returnCode(err)
	s.opts.Observer.Observe(observer.Event{Kind: observer.KindFault, Op: "mqtt.connect", Detail: code.String(), Err: err})
	if code == types.CodeTimeout {
		s.setState(types.SessionLost)
	} else {
		s.setState(types.SessionDisconnected)
	}
	s.opts.Queue.Post(session.Connected(code))
}

// returnCode maps a paho connect error onto the gateway return codes.
// Anything that is not an explicit refusal counts as a timeout.
func returnCode(err error) types.ReturnCode {
	switch {
	case errors.Is(err, packets.ErrorRefusedServerUnavailable):
		return types.CodeRejectedCongestion
	case errors.Is(err, packets.ErrorRefusedBadProtocolVersion),
		errors.Is(err, packets.ErrorRefusedIDRejected),
		errors.Is(err, packets.ErrorRefusedBadUsernameOrPassword),
		errors.Is(err, packets.ErrorRefusedNotAuthorised):
		return types.CodeRejectedNotSupported
	default:
		return types.CodeTimeout
	}
}

func (s *Session) connected() error {
	switch s.State() {
	case types.SessionConnecting, types.SessionAwake, types.SessionAsleep:
		if s.client != nil {
			return nil
		}
	}
	return errcode.New(errcode.NotConnected, "mqtt", "session is "+s.State().String())
}

// Sleep announces dormancy. The broker has no sleep support, so the
// confirmation is generated locally.
func (s *Session) Sleep(d time.Duration) error {
	if err := s.connected(); err != nil {
		return err
	}
	s.stopAwake()
	s.client.Publish(s.topic("status"), 0, true, statusAsleep+" "+d.String())
	s.deliver(s.confirmAsleep)
	return nil
}

func (s *Session) confirmAsleep() {
	if s.State() == types.SessionLost || s.State() == types.SessionDisconnected {
		return
	}
	s.awake.Store(false)
	s.setState(types.SessionAsleep)
	s.opts.Queue.Post(session.Disconnected(types.DisconnectAsleep))
}

// Awake opens a receive window of the given length, then falls asleep
// again as the gateway would after flushing buffered messages.
func (s *Session) Awake(timeout time.Duration) error {
	if err := s.connected(); err != nil {
		return err
	}
	s.stopAwake()
	s.setState(types.SessionAwake)
	s.awake.Store(true)
	s.client.Publish(s.topic("status"), 0, true, statusAwake)
	s.awakeStop = time.AfterFunc(timeout, func() { s.deliver(s.confirmAsleep) })
	return nil
}

func (s *Session) stopAwake() {
	if s.awakeStop != nil {
		s.awakeStop.Stop()
		s.awakeStop = nil
	}
}

// Publish sends at QoS 0 without waiting for the token.
func (s *Session) Publish(topic types.TopicID, qos types.QoS, payload []byte) error {
	if err := s.connected(); err != nil {
		return err
	}
	// paho writes the packet from its own goroutine after we return.
	p := make([]byte, len(payload))
	copy(p, payload)
	s.client.Publish(s.topic(strconv.Itoa(int(topic))), byte(qos), false, p)
	return nil
}

// Close disconnects without touching lifecycle state.
func (s *Session) Close() {
	s.stopAwake()
	if s.client != nil {
		s.client.Publish(s.topic("status"), 0, true, "offline").WaitTimeout(time.Second)
		s.client.Disconnect(250)
	}
}
