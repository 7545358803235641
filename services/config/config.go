package config

import (
	"net/netip"
	"strconv"
	"strings"
	"time"

	"sensornode-go/bus"
	"sensornode-go/errcode"
	"sensornode-go/types"
	"sensornode-go/x/mathx"
)

const configPrefix = "config"

// EmbeddedConfigLookup allows overriding how profiles are resolved.
var EmbeddedConfigLookup = func(device string) (types.NodeConfig, bool) {
	f, ok := embeddedConfigs[device]
	if !ok {
		return types.NodeConfig{}, false
	}
	return f(), true
}

// Default returns the compiled-in profile of the reference sensor board.
func Default() types.NodeConfig { return sensor2() }

// ForDevice resolves and validates the embedded profile for device.
func ForDevice(device string) (types.NodeConfig, error) {
	cfg, ok := EmbeddedConfigLookup(device)
	if !ok {
		return types.NodeConfig{}, errcode.New(errcode.InvalidConfig, "config.lookup", "no embedded config for device: "+device)
	}
	return cfg, Validate(cfg)
}

// Devices lists the embedded profile names.
func Devices() []string {
	out := make([]string, 0, len(embeddedConfigs))
	for k := range embeddedConfigs {
		out = append(out, k)
	}
	return out
}

// Validate checks the invariants the node relies on.
func Validate(c types.NodeConfig) error {
	fail := func(msg string) error {
		return errcode.New(errcode.InvalidConfig, "config.validate", msg)
	}
	if c.Network.Name == "" {
		return fail("network name is empty")
	}
	if !mathx.Between(c.Network.Channel, 11, 26) {
		return fail("channel " + strconv.Itoa(int(c.Network.Channel)) + " outside 11..26")
	}
	if _, err := ParseAddress(c.Connect.Address); err != nil {
		return err
	}
	if c.Connect.Port == 0 {
		return fail("gateway port is zero")
	}
	if c.Connect.ClientPort == 0 {
		return fail("client port is zero")
	}
	if c.Connect.ClientID == "" {
		return fail("client id is empty")
	}
	// The id is embedded verbatim in JSON payloads.
	if strings.ContainsAny(c.Connect.ClientID, "\"\\") {
		return fail("client id must not contain quotes or backslashes")
	}
	if c.Topics.Measurement == 0 || c.Topics.Telemetry == 0 {
		return fail("topic ids must be non-zero")
	}
	if c.Topics.Measurement == c.Topics.Telemetry {
		return fail("measurement and telemetry topics must differ")
	}
	if c.Timing.SleepPeriod <= 0 {
		return fail("sleep period must be positive")
	}
	if c.Timing.SleepGuard < 0 || c.Timing.AwakeTimeout <= 0 || c.Timing.ShortPoll <= 0 {
		return fail("guard, awake timeout and short poll must be positive")
	}
	if c.RTC.InputHz == 0 {
		return fail("rtc input frequency is zero")
	}
	if c.RTC.WidthBits == 0 || c.RTC.WidthBits > 32 {
		return fail("rtc width must be 1..32 bits")
	}
	if c.ADC.SampleTimeout <= 0 {
		return fail("adc sample timeout must be positive")
	}
	return nil
}

// ParseAddress parses the gateway address (IPv6 or IPv4 literal).
func ParseAddress(s string) (netip.Addr, error) {
	a, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, errcode.Wrap(errcode.InvalidConfig, "config.address", err)
	}
	return a, nil
}

// LongPoll returns the poll period used while dormant.
func LongPoll(t types.Timing) time.Duration {
	if t.LongPoll <= 0 {
		return t.SleepPeriod
	}
	return t.LongPoll
}

// Publish mirrors the effective configuration onto the bus as retained
// messages under config/<section>.
func Publish(conn *bus.Connection, c types.NodeConfig) {
	sections := []struct {
		key string
		val any
	}{
		{"device", c.Device},
		{"network", c.Network},
		{"connect", c.Connect},
		{"topics", c.Topics},
		{"timing", c.Timing},
		{"rtc", c.RTC},
		{"adc", c.ADC},
	}
	for _, s := range sections {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, s.key), s.val, true))
	}
}
