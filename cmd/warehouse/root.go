package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fekuna/omnipos-warehouse/config"
	"github.com/fekuna/omnipos-warehouse/internal/pkg/logger"
)

type rootOptions struct {
	envFile string
	cfg     *config.Config
	log     logger.ZapLogger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "warehouse",
		Short:         "Warehouse inventory and task board service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load(opts.envFile) // Missing file is fine
			opts.cfg = config.LoadEnv()
			opts.log = newLogger(opts.cfg)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.log != nil {
				_ = opts.log.Sync()
			}
		},
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newCreateAdminCommand(opts))
	return cmd
}

func newLogger(cfg *config.Config) logger.ZapLogger {
	logCfg := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.IsDevelopment() {
		logCfg.IsDevelopment = true
		logCfg.Encoding = cfg.Logger.Encoding
	}
	return logger.NewZapLogger(logCfg)
}
