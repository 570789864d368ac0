package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/influencersphere/internal/domain"
)

// seedFile is the YAML fixture layout: a list of raw scraped payloads.
type seedFile struct {
	Profiles []map[string]any `yaml:"profiles"`
}

// ingester is the slice of the ingestion service seed needs (ISP).
type ingester interface {
	Ingest(ctx context.Context, raw map[string]any) (string, error)
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var tenant string
	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Ingest raw creator payloads from a YAML fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			payloads, err := loadSeed(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if tenant == "" {
				tenant = cfg.App.ServiceTenant
			}
			ctx := domain.ContextWithTenant(cmd.Context(), tenant)
			return seed(ctx, a.ingestion, payloads, cmd.OutOrStdout(), logger)
		},
	}
	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant whose audit log records the ingestion (default: app.service_tenant)")
	return cmd
}

func loadSeed(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return f.Profiles, nil
}

// seed ingests every payload. Rejected payloads are reported and skipped.
func seed(ctx context.Context, in ingester, payloads []map[string]any, out io.Writer, logger *zap.Logger) error {
	var rejected int
	for i, raw := range payloads {
		id, err := in.Ingest(ctx, raw)
		if err != nil {
			rejected++
			logger.Warn("Seed payload rejected", zap.Int("index", i), zap.Error(err))
			continue
		}
		_, _ = fmt.Fprintln(out, id)
	}
	logger.Info("Seed finished",
		zap.Int("ingested", len(payloads)-rejected),
		zap.Int("rejected", rejected),
	)
	if rejected > 0 {
		return fmt.Errorf("seed: %d of %d payloads rejected", rejected, len(payloads))
	}
	return nil
}
