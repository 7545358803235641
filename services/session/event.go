package session

import (
	"time"

	"sensornode-go/types"
)

type EventKind uint8

const (
	EvRoleChanged EventKind = iota
	EvConnected
	EvDisconnected
	EvWoken
	EvLost
)

func (k EventKind) String() string {
	switch k {
	case EvRoleChanged:
		return "role_changed"
	case EvConnected:
		return "connected"
	case EvDisconnected:
		return "disconnected"
	case EvWoken:
		return "woken"
	case EvLost:
		return "lost"
	default:
		return "unknown"
	}
}

// Event is a value type so it can be posted from interrupt context without
// allocating. Only the field matching Kind is meaningful.
type Event struct {
	Kind   EventKind
	Child  bool
	Code   types.ReturnCode
	Reason types.DisconnectReason
}

func RoleChanged(child bool) Event                { return Event{Kind: EvRoleChanged, Child: child} }
func Connected(code types.ReturnCode) Event       { return Event{Kind: EvConnected, Code: code} }
func Disconnected(r types.DisconnectReason) Event { return Event{Kind: EvDisconnected, Reason: r} }
func Woken() Event                                { return Event{Kind: EvWoken} }
func Lost() Event                                 { return Event{Kind: EvLost} }

type RequestKind uint8

const (
	ReqConnect RequestKind = iota
	ReqSleep
	ReqArmSleepFlag
	ReqSetPollPeriod
	ReqAwake
	ReqReconnect
	ReqMeasureAndPublish
)

func (k RequestKind) String() string {
	switch k {
	case ReqConnect:
		return "connect"
	case ReqSleep:
		return "sleep"
	case ReqArmSleepFlag:
		return "arm_sleep_flag"
	case ReqSetPollPeriod:
		return "set_poll_period"
	case ReqAwake:
		return "awake"
	case ReqReconnect:
		return "reconnect"
	case ReqMeasureAndPublish:
		return "measure_and_publish"
	default:
		return "unknown"
	}
}

// Request is a side effect the controller must carry out. Duration is the
// sleep length, poll period or awake timeout depending on Kind.
type Request struct {
	Kind     RequestKind
	Duration time.Duration
}
