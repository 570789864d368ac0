package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/influencersphere/internal/domain/alert"
	"github.com/kailas-cloud/influencersphere/internal/usecase/alerting"
)

func newEvaluateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate",
		Short: "Run one alert evaluation cycle and print triggered alerts as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			return evaluateOnce(cmd.Context(), a.engine, cmd.OutOrStdout(), logger)
		},
	}
}

// evaluator is the slice of the alert engine evaluate needs (ISP).
type evaluator interface {
	EvaluateAll(ctx context.Context) (alerting.Evaluation, error)
}

func evaluateOnce(ctx context.Context, e evaluator, out io.Writer, logger *zap.Logger) error {
	ev, err := e.EvaluateAll(ctx)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	logger.Info("Evaluation finished",
		zap.Int("rules", ev.RulesEvaluated),
		zap.Int("profiles", ev.ProfilesScanned),
		zap.Int("alerts", len(ev.Alerts)),
	)

	alerts := ev.Alerts
	if alerts == nil {
		alerts = []alert.Triggered{}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(alerts); err != nil {
		return fmt.Errorf("write alerts: %w", err)
	}
	return nil
}
