// Package network brings the mesh interface up and turns role changes into
// session events.
package network

import (
	"time"

	"sensornode-go/errcode"
	"sensornode-go/services/observer"
	"sensornode-go/services/session"
	"sensornode-go/types"
)

// Mesh is the low-power mesh stack.
type Mesh interface {
	Configure(cfg types.NetworkConfig) error
	Role() types.Role
	SetPollPeriod(d time.Duration) error
	// SetSLAAC toggles stateless address autoconfiguration on the mesh
	// interface.
	SetSLAAC(enabled bool) error
	Up() error
}

// Notifier is a Mesh that reports state changes through a callback.
type Notifier interface {
	OnStateChanged(f func(ChangedFlags))
}

// ChangedFlags is the stack's state-changed bitmask.
type ChangedFlags uint32

const (
	ChangedRole ChangedFlags = 1 << iota
	ChangedPartition
	ChangedChildAdded
	ChangedChildRemoved
	ChangedNetData
)

// Poster accepts session events (session.Queue).
type Poster interface {
	Post(ev session.Event)
}

type JoinMonitor struct {
	mesh Mesh
	q    Poster
	obs  observer.Observer
}

func NewJoinMonitor(mesh Mesh, q Poster, obs observer.Observer) *JoinMonitor {
	return &JoinMonitor{mesh: mesh, q: q, obs: observer.OrNop(obs)}
}

// OnStateChanged is registered as the stack's state-changed callback. Only
// role changes matter; joining as a child is the connect trigger.
func (m *JoinMonitor) OnStateChanged(flags ChangedFlags) {
	if flags&ChangedRole == 0 {
		return
	}
	role := m.mesh.Role()
	m.obs.Observe(observer.Event{Kind: observer.KindState, Op: "mesh.role", Detail: role.String()})
	m.q.Post(session.RoleChanged(role == types.RoleChild))
}

// Bringup applies the static network parameters and the SLAAC setting,
// starts with the short poll period and brings the interface up.
func Bringup(mesh Mesh, cfg types.NetworkConfig, shortPoll time.Duration) error {
	if err := mesh.Configure(cfg); err != nil {
		return errcode.Wrap(errcode.HardwareFailed, "network.configure", err)
	}
	if err := mesh.SetSLAAC(cfg.SLAAC); err != nil {
		return errcode.Wrap(errcode.HardwareFailed, "network.slaac", err)
	}
	if err := mesh.SetPollPeriod(shortPoll); err != nil {
		return errcode.Wrap(errcode.HardwareFailed, "network.poll", err)
	}
	if err := mesh.Up(); err != nil {
		return errcode.Wrap(errcode.HardwareFailed, "network.up", err)
	}
	return nil
}

// SleepyEndDevice is the link mode of a battery node.
func SleepyEndDevice() types.LinkMode {
	return types.LinkMode{SecureDataRequests: true}
}
