package main

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/p-blackswan/protodocs/internal/config"
)

// cli carries state shared by every subcommand once PersistentPreRunE ran.
type cli struct {
	cfg    *config.Config
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "protodocs",
		Short:         "Render documentation for versioned DevTools protocol definitions",
		Long:          "protodocs serves or generates HTML reference pages for each protocol version and domain, with links to upstream docs and to implementation source.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = newLogger(cfg)
			return nil
		},
	}

	rootCmd.AddCommand(
		newServeCmd(c),
		newGenerateCmd(c),
		newIndexCmd(c),
	)
	return rootCmd
}

func newLogger(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var out io.Writer = os.Stdout
	if cfg.IsDevelopment() {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	if cfg.LogFile != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogFileMaxMB,
			MaxBackups: 3,
			Compress:   true,
		})
	}
	logger := zerolog.New(out).With().Timestamp().Caller().Logger()

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	log.Logger = logger
	return logger
}
