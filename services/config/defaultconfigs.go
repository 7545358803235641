package config

import (
	"time"

	"sensornode-go/services/network"
	"sensornode-go/types"
)

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Static provisioning: commissioning is out of scope, so every profile
// carries its mesh credentials and gateway address at build time.
// Key: device ID (same value set as NodeConfig.Device)
// -----------------------------------------------------------------------------

const DefaultDevice = "sensor2"

func sensor2() types.NodeConfig {
	return types.NodeConfig{
		Device: DefaultDevice,
		Network: types.NetworkConfig{
			Name:          "OTBR4444",
			PANID:         0x4444,
			ExtendedPANID: [8]byte{0x33, 0x33, 0x33, 0x33, 0x44, 0x44, 0x44, 0x44},
			Channel:       15,
			NetworkKey: [16]byte{
				0x33, 0x33, 0x44, 0x44, 0x33, 0x33, 0x44, 0x44,
				0x33, 0x33, 0x44, 0x44, 0x33, 0x33, 0x44, 0x44,
			},
			Mode:  network.SleepyEndDevice(),
			SLAAC: true,
		},
		Connect: types.ConnectConfig{
			// Gateway behind the border router's NAT64 prefix.
			Address:               "2018:ff9b::ac1c:168",
			Port:                  10000,
			ClientPort:            10000,
			ClientID:              "SENSOR2",
			KeepAlive:             120 * time.Second,
			CleanSession:          true,
			RetransmissionCount:   2,
			RetransmissionTimeout: 3 * time.Second,
		},
		Topics: types.Topics{
			Measurement: 1,
			Telemetry:   2,
		},
		Timing: types.Timing{
			SleepPeriod:  60 * time.Second,
			SleepGuard:   10 * time.Second,
			AwakeTimeout: 2000 * time.Millisecond,
			ShortPoll:    10 * time.Millisecond,
		},
		RTC: types.RTCConfig{
			InputHz:   32768,
			Prescaler: 4095,
			WidthBits: 24,
		},
		ADC: types.ADCConfig{
			SampleTimeout: 50 * time.Millisecond,
			Divider: types.DividerConfig{
				R1:        1000,
				R2:        180,
				Gain:      1,
				Precision: 10,
				VrefMV:    600,
			},
		},
	}
}

// sensorSim is the host simulator profile: a broker on localhost and a
// short period so a run shows several cycles quickly.
func sensorSim() types.NodeConfig {
	c := sensor2()
	c.Device = "sensor-sim"
	c.Connect.Address = "127.0.0.1"
	c.Connect.Port = 1883
	c.Connect.ClientID = "SENSOR-SIM"
	c.Timing.SleepPeriod = 10 * time.Second
	c.Timing.SleepGuard = 2 * time.Second
	return c
}

// sensor2Pico runs the node on an RP2040: 1 MHz system timer, 32-bit
// counter, and the 12-bit ADC scaled to 16 bits by the machine package.
func sensor2Pico() types.NodeConfig {
	c := sensor2()
	c.Device = "sensor2-pico"
	c.Connect.ClientID = "SENSOR2-PICO"
	c.RTC = types.RTCConfig{InputHz: 1_000_000, WidthBits: 32}
	c.ADC.Divider.Precision = 16
	c.ADC.Divider.VrefMV = 3300
	return c
}

var embeddedConfigs = map[string]func() types.NodeConfig{
	DefaultDevice:  sensor2,
	"sensor-sim":   sensorSim,
	"sensor2-pico": sensor2Pico,
}
