package observer

import "sensornode-go/bus"

// Bus republishes events on the in-process bus under node/event/<kind>.
// The last reading is also retained on node/reading.
type Bus struct {
	Conn *bus.Connection
}

var topicReading = bus.T("node", "reading")

func (b Bus) Observe(e Event) {
	if b.Conn == nil {
		return
	}
	b.Conn.Publish(b.Conn.NewMessage(bus.T("node", "event", e.Kind.String()), e, false))
	if e.Kind == KindReading {
		b.Conn.Publish(b.Conn.NewMessage(topicReading, e.Reading, true))
	}
}
