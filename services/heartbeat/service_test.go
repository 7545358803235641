package heartbeat

import (
	"context"
	"testing"
	"time"

	"sensornode-go/bus"
	"sensornode-go/services/scheduler"
)

func TestHeartbeatReports(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan scheduler.Stats, 4)
	s := &Service{
		Stats:    func() scheduler.Stats { return scheduler.Stats{Wakes: 3} },
		Report:   func(st scheduler.Stats) { got <- st },
		Interval: 5 * time.Millisecond,
	}
	b := bus.NewBus(4)
	if err := s.Start(ctx, b.NewConnection("hb")); err != nil {
		t.Fatal(err)
	}

	select {
	case st := <-got:
		if st.Wakes != 3 {
			t.Fatalf("wakes=%d", st.Wakes)
		}
	case <-time.After(time.Second):
		t.Fatal("no heartbeat")
	}
}

func TestHeartbeatIntervalFromBus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan scheduler.Stats, 16)
	s := &Service{
		Stats:    func() scheduler.Stats { return scheduler.Stats{} },
		Report:   func(st scheduler.Stats) { got <- st },
		Interval: time.Hour,
	}
	b := bus.NewBus(4)
	conn := b.NewConnection("hb")
	if err := s.Start(ctx, conn); err != nil {
		t.Fatal(err)
	}
	conn.Publish(conn.NewMessage(topicConfigHeartbeat, map[string]any{"interval": 0.005}, true))

	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatal("interval was not applied")
	}
}

func TestInterval(t *testing.T) {
	cases := []struct {
		in   any
		want time.Duration
		ok   bool
	}{
		{2 * time.Second, 2 * time.Second, true},
		{map[string]any{"interval": 1.5}, 1500 * time.Millisecond, true},
		{map[string]any{"interval": -1.0}, 0, false},
		{"10s", 0, false},
	}
	for _, c := range cases {
		got, ok := interval(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("interval(%v) = %v, %v", c.in, got, ok)
		}
	}
}
