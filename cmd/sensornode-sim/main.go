// Command sensornode-sim runs the sensor node against simulated hardware
// on a host, optionally publishing through an MQTT broker.
package main

import (
	"fmt"
	"os"
)

var binVersion = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
