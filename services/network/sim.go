package network

import (
	"sync"
	"time"

	"sensornode-go/errcode"
	"sensornode-go/types"
)

// SimMesh emulates the mesh stack on the host. After Up it attaches as a
// child once JoinDelay has passed.
type SimMesh struct {
	JoinDelay time.Duration

	mu       sync.Mutex
	cfg      types.NetworkConfig
	role     types.Role
	poll     time.Duration
	slaac    bool
	up       bool
	onChange func(ChangedFlags)
	join     *time.Timer
}

func NewSimMesh(joinDelay time.Duration) *SimMesh {
	return &SimMesh{JoinDelay: joinDelay, role: types.RoleDisabled}
}

// OnStateChanged registers the state-changed callback.
func (s *SimMesh) OnStateChanged(f func(ChangedFlags)) {
	s.mu.Lock()
	s.onChange = f
	s.mu.Unlock()
}

func (s *SimMesh) Configure(cfg types.NetworkConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.up {
		return errcode.New(errcode.InvalidState, "simmesh.configure", "interface is up")
	}
	s.cfg = cfg
	return nil
}

func (s *SimMesh) Config() types.NetworkConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *SimMesh) Role() types.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

func (s *SimMesh) SetPollPeriod(d time.Duration) error {
	if d <= 0 {
		return errcode.New(errcode.InvalidParams, "simmesh.poll", "poll period must be positive")
	}
	s.mu.Lock()
	s.poll = d
	s.mu.Unlock()
	return nil
}

func (s *SimMesh) PollPeriod() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.poll
}

func (s *SimMesh) SetSLAAC(enabled bool) error {
	s.mu.Lock()
	s.slaac = enabled
	s.mu.Unlock()
	return nil
}

func (s *SimMesh) SLAAC() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slaac
}

func (s *SimMesh) Up() error {
	s.mu.Lock()
	if s.cfg.Name == "" {
		s.mu.Unlock()
		return errcode.New(errcode.NotReady, "simmesh.up", "not configured")
	}
	s.up = true
	s.mu.Unlock()
	s.SetRole(types.RoleDetached)
	s.mu.Lock()
	s.join = time.AfterFunc(s.JoinDelay, func() { s.SetRole(types.RoleChild) })
	s.mu.Unlock()
	return nil
}

// SetRole changes the role and fires the callback, as a parent change or
// detach would.
func (s *SimMesh) SetRole(r types.Role) {
	s.mu.Lock()
	if s.role == r {
		s.mu.Unlock()
		return
	}
	s.role = r
	f := s.onChange
	s.mu.Unlock()
	if f != nil {
		f(ChangedRole)
	}
}

func (s *SimMesh) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.join != nil {
		s.join.Stop()
	}
	s.up = false
}
