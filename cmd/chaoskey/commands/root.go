package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/TheusHen/chaoskey/chaoskey/session"
	"github.com/TheusHen/chaoskey/internal/config"
	"github.com/TheusHen/chaoskey/internal/logging"
)

var (
	configPath string
	logLevel   string

	cfg    config.Config
	logger zerolog.Logger
)

func Execute() error {
	root := &cobra.Command{
		Use:          "chaoskey",
		Short:        "Agree on a keystream by synchronizing Lorenz systems",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				loaded.LogLevel = logLevel
			}
			cfg = loaded
			logger = logging.New("chaoskey", cfg.LogLevel, nil)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	root.AddCommand(serveCmd(), sendCmd())
	return root.Execute()
}

func sessionConfig() session.Config {
	return session.Config{
		SyncTicks:      cfg.SyncTicks,
		Epsilon:        cfg.Epsilon,
		TickInterval:   cfg.TickInterval,
		BufferCapacity: cfg.BufferCapacity,
		Logger:         logger,
	}
}
