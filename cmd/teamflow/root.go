package main

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hupe1980/teamflow/config"
	"github.com/hupe1980/teamflow/logging"
)

// app carries the state shared by all subcommands.
type app struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "teamflow",
		Short:         "Teamflow runs a supervisor-routed team of AI agents",
		Long:          `Teamflow routes a conversation between a coordinator, a planner, a supervisor and a set of specialised workers, streaming every step as events.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.load()
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "teamflow.yaml", "Path to the configuration file")
	cmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Dotenv file loaded before the environment is read")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Override the log format (json, text)")

	cmd.AddCommand(newRunCmd(a), newServeCmd(a), newTeamCmd(a))

	return cmd
}

func (a *app) load() error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.Logger()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger.WithComponent("teamflow")

	return nil
}
