package config

import (
	"strconv"
	"time"

	"sensornode-go/errcode"
	"sensornode-go/types"
)

// Environment keys honoured by ApplyEnv.
const (
	EnvGatewayAddress = "SENSORNODE_GATEWAY_ADDRESS"
	EnvGatewayPort    = "SENSORNODE_GATEWAY_PORT"
	EnvClientID       = "SENSORNODE_CLIENT_ID"
	EnvSleepPeriod    = "SENSORNODE_SLEEP_PERIOD"
)

// ApplyEnv overrides gateway and timing fields from getenv (os.Getenv in
// production, a map lookup in tests) and re-validates.
func ApplyEnv(c types.NodeConfig, getenv func(string) string) (types.NodeConfig, error) {
	if v := getenv(EnvGatewayAddress); v != "" {
		c.Connect.Address = v
	}
	if v := getenv(EnvGatewayPort); v != "" {
		p, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return c, errcode.Wrap(errcode.InvalidConfig, "config.env."+EnvGatewayPort, err)
		}
		c.Connect.Port = uint16(p)
	}
	if v := getenv(EnvClientID); v != "" {
		c.Connect.ClientID = v
	}
	if v := getenv(EnvSleepPeriod); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return c, errcode.Wrap(errcode.InvalidConfig, "config.env."+EnvSleepPeriod, err)
		}
		c.Timing.SleepPeriod = d
	}
	return c, Validate(c)
}

func itoa(i int) string { return strconv.Itoa(i) }
