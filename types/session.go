package types

// ---- Pub/sub session lifecycle (owned by the session collaborator) ----

// SessionState mirrors the sleepy pub/sub client's own state. The core reads
// it; only the collaborator changes it.
type SessionState uint8

const (
	SessionDisconnected SessionState = iota
	SessionConnecting
	SessionAwake
	SessionAsleep
	SessionLost
)

func (s SessionState) String() string {
	switch s {
	case SessionDisconnected:
		return "disconnected"
	case SessionConnecting:
		return "connecting"
	case SessionAwake:
		return "awake"
	case SessionAsleep:
		return "asleep"
	case SessionLost:
		return "lost"
	default:
		return "unknown"
	}
}

// ReturnCode is the gateway's answer to a connect request.
type ReturnCode uint8

const (
	CodeAccepted ReturnCode = iota
	CodeRejectedCongestion
	CodeRejectedTopicID
	CodeRejectedNotSupported
	CodeTimeout
)

func (c ReturnCode) String() string {
	switch c {
	case CodeAccepted:
		return "accepted"
	case CodeRejectedCongestion:
		return "rejected_congestion"
	case CodeRejectedTopicID:
		return "rejected_topic_id"
	case CodeRejectedNotSupported:
		return "rejected_not_supported"
	case CodeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// DisconnectReason tells why the session layer reported a disconnect.
type DisconnectReason uint8

const (
	// DisconnectServer: the gateway closed the session.
	DisconnectServer DisconnectReason = iota
	// DisconnectClient: the node asked to disconnect.
	DisconnectClient
	// DisconnectAsleep: the gateway acknowledged a sleep request; the node is dormant.
	DisconnectAsleep
	// DisconnectTimeout: keep-alive or retransmission gave up.
	DisconnectTimeout
)

func (r DisconnectReason) String() string {
	switch r {
	case DisconnectServer:
		return "server"
	case DisconnectClient:
		return "client"
	case DisconnectAsleep:
		return "asleep"
	case DisconnectTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// QoS is the pub/sub delivery level. Only QoS0 is used by the node.
type QoS int8

const (
	QoS0 QoS = 0
	QoS1 QoS = 1
	QoS2 QoS = 2
)

// TopicID is a pre-provisioned numeric topic identifier.
type TopicID uint16

// ---- Mesh network ----

// Role is the node's current role in the mesh.
type Role uint8

const (
	RoleDisabled Role = iota
	RoleDetached
	RoleChild
	RoleRouter
	RoleLeader
)

func (r Role) String() string {
	switch r {
	case RoleDisabled:
		return "disabled"
	case RoleDetached:
		return "detached"
	case RoleChild:
		return "child"
	case RoleRouter:
		return "router"
	case RoleLeader:
		return "leader"
	default:
		return "unknown"
	}
}
