package session

import (
	"sync/atomic"
)

// Kicker is told that new work is pending (scheduler.Context.NotifyWork).
type Kicker interface {
	NotifyWork()
}

// Queue carries events from collaborator callbacks to the main loop. Post
// never blocks; when full the oldest event is dropped.
type Queue struct {
	ch      chan Event
	kick    Kicker
	dropped atomic.Uint32
}

const DefaultQueueLen = 8

func NewQueue(n int, k Kicker) *Queue {
	if n <= 0 {
		n = DefaultQueueLen
	}
	return &Queue{ch: make(chan Event, n), kick: k}
}

// Post is safe from interrupt and goroutine context.
func (q *Queue) Post(ev Event) {
	for {
		select {
		case q.ch <- ev:
			if q.kick != nil {
				q.kick.NotifyWork()
			}
			return
		default:
		}
		select {
		case <-q.ch:
			q.dropped.Add(1)
		default:
		}
	}
}

// Next pops one event without blocking.
func (q *Queue) Next() (Event, bool) {
	select {
	case ev := <-q.ch:
		return ev, true
	default:
		return Event{}, false
	}
}

func (q *Queue) Pending() bool { return len(q.ch) > 0 }

func (q *Queue) Len() int { return len(q.ch) }

// Dropped counts events discarded by overflow.
func (q *Queue) Dropped() uint32 { return q.dropped.Load() }
