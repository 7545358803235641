// Package heartbeat reports the main loop's counters at a fixed interval.
package heartbeat

import (
	"context"
	"time"

	"sensornode-go/bus"
	"sensornode-go/services/scheduler"
)

var topicConfigHeartbeat = bus.T("config", "heartbeat")

const DefaultInterval = 10 * time.Second

// Service ticks on Interval and hands the current Stats to Report. The
// interval can be changed at runtime through config/heartbeat, with either
// a time.Duration payload or {"interval": <seconds>}.
type Service struct {
	Stats    func() scheduler.Stats
	Report   func(scheduler.Stats)
	Interval time.Duration
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, ready chan<- struct{}) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)
	close(ready)

	iv := s.Interval
	if iv <= 0 {
		iv = DefaultInterval
	}
	tick := time.NewTicker(iv)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			s.report()
		case msg := <-cfgSub.Channel():
			if d, ok := interval(msg.Payload); ok {
				tick.Reset(d)
			}
		}
	}
}

func (s *Service) report() {
	if s.Stats == nil {
		return
	}
	st := s.Stats()
	if s.Report != nil {
		s.Report(st)
		return
	}
	println("[heartbeat] iterations", st.Iterations, "wakes", st.Wakes, "reconnects", st.Reconnects)
}

func interval(p any) (time.Duration, bool) {
	switch v := p.(type) {
	case time.Duration:
		return v, v > 0
	case map[string]any:
		if f, ok := v["interval"].(float64); ok && f > 0 {
			return time.Duration(f * float64(time.Second)), true
		}
	}
	return 0, false
}

// Start runs the service until ctx is done. It returns once the config
// subscription is in place.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	ready := make(chan struct{})
	go s.serviceLoop(ctx, conn, ready)
	<-ready
	return nil
}
