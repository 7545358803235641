package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"sensornode-go/bus"
	"sensornode-go/platform"
	"sensornode-go/services/heartbeat"
	"sensornode-go/services/mqttsession"
	"sensornode-go/services/node"
	"sensornode-go/services/observer"
	"sensornode-go/services/scheduler"
	"sensornode-go/types"
)

type runFlags struct {
	broker    bool
	root      string
	speed     float64
	battery   float64
	duration  time.Duration
	pace      time.Duration
	heartbeat time.Duration
}

func newRunCommand(g *globalFlags) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Runs the node until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(g, f)
		},
	}
	fl := cmd.Flags()
	fl.BoolVar(&f.broker, "broker", false, "publish through the MQTT broker at the configured gateway address")
	fl.StringVar(&f.root, "topic-root", "", "MQTT topic prefix (default sensornode/<client id>)")
	fl.Float64Var(&f.speed, "speed", 1, "simulated clock speed-up")
	fl.Float64Var(&f.battery, "battery", 3.3, "initial simulated battery voltage")
	fl.DurationVar(&f.duration, "duration", 0, "stop after this long (0 runs until interrupted)")
	fl.DurationVar(&f.pace, "pace", 5*time.Millisecond, "main loop pacing while awake")
	fl.DurationVar(&f.heartbeat, "heartbeat", heartbeat.DefaultInterval, "loop counter report interval")
	return cmd
}

func runNode(g *globalFlags, f *runFlags) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	log := g.logger()
	obs := observer.Slog{L: log}

	board := platform.DefaultSimBoard()
	board.Speed = f.speed
	board.Battery = f.battery

	var closers []func()
	if f.broker {
		board.NewSession = func(d node.Deps) (node.Session, error) {
			s := mqttsession.New(mqttsession.Options{
				Root:     f.root,
				Queue:    d.Queue,
				Kicker:   d.Context,
				Observer: d.Observer,
				OnMessage: func(topic string, payload []byte) {
					log.Info("inbound", slog.String("topic", topic), slog.Int("bytes", len(payload)))
				},
			})
			closers = append(closers, s.Close)
			return s, nil
		}
	}

	b := bus.NewBus(4)
	n, err := node.New(cfg, board.Build, node.Options{Observer: obs, Bus: b, Pace: f.pace})
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range closers {
			c()
		}
	}()

	ctx, cancel := signalContext()
	defer cancel()
	if f.duration > 0 {
		var c context.CancelFunc
		ctx, c = context.WithTimeout(ctx, f.duration)
		defer c()
	}

	hb := &heartbeat.Service{
		Stats:    n.Scheduler().Stats,
		Interval: f.heartbeat,
		Report: func(st scheduler.Stats) {
			log.Info("heartbeat",
				slog.Uint64("iterations", st.Iterations),
				slog.Uint64("idle_spins", st.IdleSpins),
				slog.Uint64("wakes", st.Wakes),
			)
		},
	}
	if err := hb.Start(ctx, b.NewConnection("heartbeat")); err != nil {
		return err
	}

	log.Info("node starting",
		slog.String("device", cfg.Device),
		slog.String("client_id", cfg.Connect.ClientID),
		slog.Duration("sleep_period", cfg.Timing.SleepPeriod),
		slog.Bool("broker", f.broker),
	)
	err = n.Run(ctx)
	st := n.Scheduler().Stats()
	log.Info("node stopped",
		slog.Uint64("iterations", st.Iterations),
		slog.Uint64("wakes", st.Wakes),
		slog.Uint64("reconnects", st.Reconnects),
		slog.Uint64("timer_fires", n.Timer().Fires()),
	)
	logLastReading(log, b)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// logLastReading picks up the retained reading the node left on the bus.
func logLastReading(log *slog.Logger, b *bus.Bus) {
	conn := b.NewConnection("sim")
	defer conn.Disconnect()
	sub := conn.Subscribe(bus.T("node", "reading"))
	select {
	case m := <-sub.Channel():
		if r, ok := m.Payload.(types.Reading); ok {
			log.Info("last reading",
				slog.Float64("temperature", r.Temperature),
				slog.Float64("humidity", r.Humidity),
				slog.Float64("battery", r.Voltage),
			)
		}
	default:
	}
}
