package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"image-enhancer/internal/config"
	"image-enhancer/internal/logging"
)

// env is the configuration and logger shared by all subcommands.
type env struct {
	cfg    config.Config
	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:           "enhance",
		Short:         "Resize, tone, sharpen and filter images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			debug, _ := cmd.Flags().GetBool("debug")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			opts := cfg.Logging(debug)
			opts.Output = cmd.ErrOrStderr()
			if cmd.Flags().Changed("log-level") {
				opts.Level, _ = cmd.Flags().GetString("log-level")
			}
			logger, err := logging.New(opts)
			if err != nil {
				return err
			}

			e.cfg = cfg
			e.logger = logger
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Path to a TOML configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level")

	rootCmd.AddCommand(
		newRenderCmd(e),
		newPresetsCmd(),
		newParamsCmd(),
	)
	return rootCmd
}
