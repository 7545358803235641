package main

import (
	"context"
	"time"

	"sensornode-go/platform"
	"sensornode-go/services/config"
	"sensornode-go/services/node"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot", platform.Device)

	cfg, err := config.ForDevice(platform.Device)
	if err != nil {
		halt("config", err)
	}
	n, err := node.New(cfg, platform.Board(), node.Options{
		Observer: platform.Console(),
		// Lets timer goroutines run while the loop polls awake.
		Pace: time.Millisecond,
	})
	if err != nil {
		halt("node", err)
	}
	if err := n.Run(context.Background()); err != nil {
		halt("run", err)
	}
}

func halt(op string, err error) {
	for {
		println("[main] fatal:", op, err.Error())
		time.Sleep(5 * time.Second)
	}
}
