package session

import (
	"time"

	"sensornode-go/types"
)

// Policy is the timing the transition table needs.
type Policy struct {
	SleepPeriod  time.Duration
	SleepGuard   time.Duration
	AwakeTimeout time.Duration
	ShortPoll    time.Duration
	LongPoll     time.Duration
}

// PolicyFrom derives a Policy from node timing. A zero long poll falls back
// to the sleep period.
func PolicyFrom(t types.Timing) Policy {
	p := Policy{
		SleepPeriod:  t.SleepPeriod,
		SleepGuard:   t.SleepGuard,
		AwakeTimeout: t.AwakeTimeout,
		ShortPoll:    t.ShortPoll,
		LongPoll:     t.LongPoll,
	}
	if p.LongPoll <= 0 {
		p.LongPoll = p.SleepPeriod
	}
	return p
}

type Transition struct {
	Next     types.SessionState
	Requests []Request
}

// Advance is the session lifecycle table. It maps the state reported by the
// session layer and an event to the expected next state and the requests
// to issue, in order. Unlisted combinations leave the state unchanged and
// issue nothing.
func Advance(observed types.SessionState, ev Event, p Policy) Transition {
	stay := Transition{Next: observed}

	switch ev.Kind {
	case EvRoleChanged:
		if ev.Child && observed == types.SessionDisconnected {
			return Transition{
				Next:     types.SessionConnecting,
				Requests: []Request{{Kind: ReqConnect}},
			}
		}

	case EvConnected:
		// A connack may arrive after the session layer already marked itself
		// active, which this model reports as Awake.
		if ev.Code != types.CodeAccepted {
			return stay
		}
		if observed == types.SessionConnecting || observed == types.SessionAwake {
			return Transition{
				Next: types.SessionAsleep,
				Requests: []Request{
					{Kind: ReqSleep, Duration: p.SleepPeriod + p.SleepGuard},
					{Kind: ReqArmSleepFlag},
				},
			}
		}

	case EvWoken:
		if observed == types.SessionAsleep {
			return Transition{
				Next: types.SessionAwake,
				Requests: []Request{
					{Kind: ReqSetPollPeriod, Duration: p.ShortPoll},
					{Kind: ReqAwake, Duration: p.AwakeTimeout},
				},
			}
		}

	case EvLost:
		if observed == types.SessionLost {
			return Transition{
				Next:     types.SessionConnecting,
				Requests: []Request{{Kind: ReqReconnect}},
			}
		}

	case EvDisconnected:
		switch ev.Reason {
		case types.DisconnectAsleep:
			return Transition{
				Next: types.SessionAsleep,
				Requests: []Request{
					{Kind: ReqSetPollPeriod, Duration: p.LongPoll},
					{Kind: ReqArmSleepFlag},
					{Kind: ReqMeasureAndPublish},
				},
			}
		case types.DisconnectTimeout:
			return Transition{Next: types.SessionLost}
		default:
			return Transition{Next: types.SessionDisconnected}
		}
	}
	return stay
}
