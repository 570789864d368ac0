package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/influencersphere/internal/config"
	logpkg "github.com/kailas-cloud/influencersphere/internal/logger"
	"github.com/kailas-cloud/influencersphere/internal/metrics"
	"github.com/kailas-cloud/influencersphere/internal/version"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	env        string
	configPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "influencersphere",
		Short:         "Creator market search, scoring and alerting service",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "environment name (selects config/<env>.yaml)")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "explicit config file path")

	root.AddCommand(
		newServeCmd(opts),
		newEvaluateCmd(opts),
		newSeedCmd(opts),
	)
	return root
}

// bootstrap loads configuration, builds the logger and registers metrics.
func bootstrap(opts *rootOptions) (config.Config, *zap.Logger, error) {
	var (
		cfg config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load(opts.env)
	}
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logpkg.NewLogger(opts.env, logpkg.Options{
		Level:   cfg.Logging.Level,
		Service: cfg.App.AppID,
		Version: version.Version,
	})
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	// Register metrics explicitly (no init())
	metrics.Register()
	return cfg, logger, nil
}
