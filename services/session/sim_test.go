package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensornode-go/errcode"
	"sensornode-go/types"
)

type simKicks int

func (k *simKicks) NotifyWork() { *k++ }

var simConnect = types.ConnectConfig{ClientPort: 10000}

func TestSimDefersReactions(t *testing.T) {
	var kicks simKicks
	q := NewQueue(0, &kicks)
	s := NewSim(q, &kicks)
	var windows []time.Duration
	s.AfterFunc = func(d time.Duration, f func()) {
		windows = append(windows, d)
		f()
	}

	require.NoError(t, s.Connect(simConnect))
	assert.Equal(t, types.SessionConnecting, s.State())
	assert.Equal(t, uint16(10000), s.ClientPort())
	assert.True(t, s.Pending())
	_, ok := q.Next()
	assert.False(t, ok, "nothing is posted before Process")

	s.Process()
	ev, ok := q.Next()
	require.True(t, ok)
	assert.Equal(t, Connected(types.CodeAccepted), ev)

	require.NoError(t, s.Sleep(70*time.Second))
	s.Process()
	assert.Equal(t, types.SessionAsleep, s.State())
	ev, _ = q.Next()
	assert.Equal(t, Disconnected(types.DisconnectAsleep), ev)

	require.NoError(t, s.Awake(2*time.Second))
	assert.Equal(t, types.SessionAwake, s.State())
	assert.Equal(t, []time.Duration{2 * time.Second}, windows)
	s.Process()
	assert.Equal(t, types.SessionAsleep, s.State())

	require.NoError(t, s.Publish(1, types.QoS0, []byte("x")))
	assert.Len(t, s.Published(), 1)
	assert.Greater(t, int(kicks), 0)
}

func TestSimRejectedConnect(t *testing.T) {
	q := NewQueue(0, nil)
	s := NewSim(q, nil)
	s.ConnectCode = types.CodeRejectedCongestion

	require.NoError(t, s.Connect(simConnect))
	s.Process()
	assert.Equal(t, types.SessionDisconnected, s.State())
	ev, _ := q.Next()
	assert.Equal(t, Connected(types.CodeRejectedCongestion), ev)

	assert.Equal(t, errcode.NotConnected, errcode.Of(s.Sleep(time.Second)))
	assert.Equal(t, errcode.NotConnected, errcode.Of(s.Publish(1, 0, nil)))
}

func TestSimLose(t *testing.T) {
	q := NewQueue(0, nil)
	s := NewSim(q, nil)
	require.NoError(t, s.Connect(simConnect))
	s.Process()
	q.Next()

	s.Lose()
	s.Process()
	assert.Equal(t, types.SessionLost, s.State())
	ev, _ := q.Next()
	assert.Equal(t, Disconnected(types.DisconnectTimeout), ev)

	require.NoError(t, s.Reconnect())
	assert.Equal(t, 2, s.Connects())
}

func TestSimRequiresClientPort(t *testing.T) {
	s := NewSim(NewQueue(0, nil), nil)
	err := s.Connect(types.ConnectConfig{})
	assert.Equal(t, errcode.InvalidParams, errcode.Of(err))
	assert.Zero(t, s.Connects())
}
