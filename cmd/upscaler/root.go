package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"progressive-upscaler/internal/config"
	imageio "progressive-upscaler/internal/io"
)

// app carries state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	debug      bool

	cfg    *config.Config
	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          AppName,
		Short:        "Blur-aware progressive image upscaler",
		Version:      AppVersion,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = initLogger(a.debug, cfg.Log)
			a.logger.WithFields(logrus.Fields{
				"version":    AppVersion,
				"debug_mode": a.debug,
				"command":    cmd.Name(),
			}).Debug("Starting")
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML configuration file")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug mode with verbose logging")

	root.AddCommand(
		newUpscaleCmd(a),
		newAnalyzeCmd(a),
		newPlanCmd(a),
		newKernelsCmd(a),
		newFilterCmd(a),
	)
	return root
}

// loader reads inputs within the configured size limit.
func (a *app) loader() *imageio.ImageLoader {
	return imageio.NewImageLoader(a.logger).WithMaxSize(a.cfg.MaxFileSize)
}
