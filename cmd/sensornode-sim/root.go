package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	dotenv "github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sensornode-go/services/config"
	"sensornode-go/types"
)

type globalFlags struct {
	configPath string
	envPath    string
	device     string
	uniqueID   bool
	verbose    bool
}

func newRootCommand() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "sensornode-sim",
		Short:         "Runs the duty-cycled sensor node on simulated hardware",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "YAML file overlaid on the device profile")
	pf.StringVar(&g.envPath, "env", ".env", "dotenv file with SENSORNODE_* overrides (ignored when missing)")
	pf.StringVarP(&g.device, "device", "d", "sensor-sim", "embedded profile used when no config file is given")
	pf.BoolVar(&g.uniqueID, "unique-id", false, "append a random suffix to the client id")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "log request traffic")

	root.AddCommand(newRunCommand(g))
	root.AddCommand(newConfigCommand(g))
	root.AddCommand(newPayloadCommand(g))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Prints the application's version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n", binVersion)
		},
	})
	return root
}

// loadConfig resolves file or profile, then .env and process environment.
func (g *globalFlags) loadConfig() (types.NodeConfig, error) {
	var (
		cfg types.NodeConfig
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadFile(g.configPath)
	} else {
		cfg, err = config.ForDevice(g.device)
	}
	if err != nil {
		return cfg, err
	}

	if g.envPath != "" {
		if err := dotenv.Load(g.envPath); err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to load %s: %w", g.envPath, err)
		}
	}
	if cfg, err = config.ApplyEnv(cfg, os.Getenv); err != nil {
		return cfg, err
	}

	if g.uniqueID {
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		cfg.Connect.ClientID += "-" + suffix
	}
	return cfg, config.Validate(cfg)
}

func (g *globalFlags) logger() *slog.Logger {
	level := slog.LevelInfo
	if g.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
