//go:build !rp2040

package platform

import (
	"sensornode-go/services/node"
	"sensornode-go/services/observer"
)

// Device is the embedded configuration profile for this build.
const Device = "sensor-sim"

func Board() node.Builder { return DefaultSimBoard().Build }

func Console() observer.Observer { return &observer.Console{} }
