package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sensornode-go/services/config"
	"sensornode-go/services/publish"
	"sensornode-go/types"
)

func newConfigCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspects device profiles",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "print",
		Short: "Prints the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			out, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "devices",
		Short: "Lists the embedded profiles",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(config.Devices(), "\n"))
		},
	})
	return cmd
}

func newPayloadCommand(g *globalFlags) *cobra.Command {
	var r types.Reading
	cmd := &cobra.Command{
		Use:   "payload",
		Short: "Prints the measurement and telemetry payloads for a reading",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			id := cfg.Connect.ClientID
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "topic %d: %s\n", cfg.Topics.Measurement, publish.AppendMeasurement(nil, id, r))
			fmt.Fprintf(w, "topic %d: %s\n", cfg.Topics.Telemetry, publish.AppendTelemetry(nil, id, r))
			return nil
		},
	}
	fl := cmd.Flags()
	fl.Float64Var(&r.Temperature, "temperature", 21.5, "temperature in °C")
	fl.Float64Var(&r.Humidity, "humidity", 45, "relative humidity in %")
	fl.Float64Var(&r.DewPoint, "dewpoint", 9.2, "dew point in °C")
	fl.Float64Var(&r.Voltage, "battery", 3.3, "battery voltage")
	return cmd
}
