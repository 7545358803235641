package platform

import (
	"time"

	"sensornode-go/drivers/vdiv"
	"sensornode-go/services/network"
	"sensornode-go/services/node"
	"sensornode-go/services/session"
	"sensornode-go/types"
	"sensornode-go/x/timex"
)

// SimBoard builds a node out of simulated parts. NewSession replaces the
// in-process gateway, for example with an MQTT-backed session.
type SimBoard struct {
	Speed       float64
	JoinDelay   time.Duration
	Battery     float64
	Temperature float64
	Humidity    float64
	Seed        int64

	NewSession func(d node.Deps) (node.Session, error)
}

func DefaultSimBoard() SimBoard {
	return SimBoard{
		Speed:       1,
		JoinDelay:   500 * time.Millisecond,
		Battery:     3.3,
		Temperature: 21.5,
		Humidity:    45,
		Seed:        1,
	}
}

func (b SimBoard) Build(cfg types.NodeConfig, d node.Deps) (node.Hardware, error) {
	rate := timex.TickRate(cfg.RTC.InputHz, cfg.RTC.Prescaler)
	mesh := network.NewSimMesh(b.JoinDelay)

	var sess node.Session = session.NewSim(d.Queue, d.Context)
	if b.NewSession != nil {
		s, err := b.NewSession(d)
		if err != nil {
			return node.Hardware{}, err
		}
		sess = s
	}

	adc := NewSimADC(d.Context, vdiv.New(cfg.ADC.Divider), b.Battery)
	adc.Drain = 0.001
	return node.Hardware{
		Counter: NewHostCounter(rate, cfg.RTC.WidthBits, b.Speed),
		Sensor:  NewSimSensor(b.Temperature, b.Humidity, b.Seed),
		ADC:     adc,
		Mesh:    mesh,
		Session: sess,
		Idler:   ChanIdler{Kick: d.Context.Kick()},
	}, nil
}
