// Package observer is the node's diagnostics sink. The core reports state
// changes, requests and faults here; the default sink discards them.
package observer

import (
	"sync"

	"sensornode-go/types"
)

type Kind uint8

const (
	KindState Kind = iota
	KindRequest
	KindRequestFailed
	KindReading
	KindPublish
	KindFault
	KindWake
	KindReconnect
	KindQueueDrop
)

func (k Kind) String() string {
	switch k {
	case KindState:
		return "state"
	case KindRequest:
		return "request"
	case KindRequestFailed:
		return "request_failed"
	case KindReading:
		return "reading"
	case KindPublish:
		return "publish"
	case KindFault:
		return "fault"
	case KindWake:
		return "wake"
	case KindReconnect:
		return "reconnect"
	case KindQueueDrop:
		return "queue_drop"
	default:
		return "unknown"
	}
}

// Event is one diagnostic record. Only the fields relevant to Kind are set.
type Event struct {
	Kind    Kind
	State   types.SessionState
	Op      string
	Detail  string
	Err     error
	Reading types.Reading
}

type Observer interface {
	Observe(Event)
}

// Func adapts a plain function.
type Func func(Event)

func (f Func) Observe(e Event) { f(e) }

// Nop discards everything.
type Nop struct{}

func (Nop) Observe(Event) {}

// OrNop returns o, or Nop when o is nil.
func OrNop(o Observer) Observer {
	if o == nil {
		return Nop{}
	}
	return o
}

// Multi fans an event out to every non-nil observer in order.
type Multi []Observer

func (m Multi) Observe(e Event) {
	for _, o := range m {
		if o != nil {
			o.Observe(e)
		}
	}
}

// Recorder keeps every event. Safe for use from timer goroutines in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Observe(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of what was recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many events of kind k were recorded.
func (r *Recorder) Count(k Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Ops returns the Op field of every event of kind k, in order.
func (r *Recorder) Ops(k Kind) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.Kind == k {
			out = append(out, e.Op)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = r.events[:0]
	r.mu.Unlock()
}
