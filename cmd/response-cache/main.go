package main

import (
	"github.com/iTrooz/response-cache/internal/config"
	"github.com/iTrooz/response-cache/internal/proxy"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "response-cache [config]",
		Short: "Proxy that caches one upstream API response for a fixed time",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				configPath = args[0]
			}
			cmd.SilenceUsage = true

			cfg, err := loadConfig(configPath, logLevel)
			if err != nil {
				return err
			}

			server, err := proxy.New(cfg)
			if err != nil {
				return err
			}
			return server.Start()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "path to the YAML configuration file")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	return cmd
}

// loadConfig loads, validates and applies the logging part of the configuration
func loadConfig(path, logLevel string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := cfg.GetLogLevel() // checked by Validate
	logrus.SetLevel(level)

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		if out, err := cfg.YAML(); err == nil {
			logrus.Debugf("Effective configuration:\n%s", out)
		}
	}
	return cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Fatalf("%v", err)
	}
}
