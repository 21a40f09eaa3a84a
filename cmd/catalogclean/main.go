package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/pushrelay/internal/catalog"
	"github.com/vovakirdan/pushrelay/internal/config"
	applog "github.com/vovakirdan/pushrelay/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		dryRun     bool
		overrides  config.Config
	)

	cmd := &cobra.Command{
		Use:           "catalogclean",
		Short:         "Delete every catalog owned by the configured API key",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Logs go to stderr; stdout carries only the result.
			bootLogger := applog.NewTo(os.Stderr, "info")
			cfg, _, err := config.LoadReadOnly(bootLogger, configPath)
			if err != nil {
				bootLogger.Error().Err(err).Msg("load config")
				return err
			}
			cfg.UpdateFrom(overrides)
			logger := applog.NewTo(os.Stderr, cfg.LogLevel)

			if cfg.Catalog.APIKey == "" {
				err := errors.New("catalog api key is required (--api-key or PUSHRELAY_CATALOG_API_KEY)")
				logger.Error().Err(err).Msg("invalid configuration")
				return err
			}

			client := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.APIKey)
			client.SetHTTPClient(&http.Client{Timeout: cfg.Catalog.Timeout})
			client.SetPageSize(cfg.Catalog.PageSize)

			cleaner := catalog.NewCleaner(client, logger)
			cleaner.SetConcurrency(cfg.Catalog.Concurrency)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			if dryRun {
				ids, err := cleaner.List(ctx)
				if err != nil {
					fmt.Fprintln(out, err)
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(out, id)
				}
				logger.Info().Int("catalogs", len(ids)).Msg("dry run, nothing deleted")
				return nil
			}

			return catalog.Run(ctx, cleaner, out)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	cmd.Flags().StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&overrides.Catalog.APIKey, "api-key", "", "recommendation service API key")
	cmd.Flags().StringVar(&overrides.Catalog.BaseURL, "base-url", "", "recommendation service API root")
	cmd.Flags().IntVar(&overrides.Catalog.Concurrency, "concurrency", 0, "max in-flight deletes (0 = unlimited)")
	cmd.Flags().IntVar(&overrides.Catalog.PageSize, "page-size", 0, "catalogs requested per list call")
	cmd.Flags().DurationVar(&overrides.Catalog.Timeout, "timeout", 0, "per-request HTTP timeout (0 = none)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list catalog ids without deleting")

	return cmd
}

