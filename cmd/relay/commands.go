package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vovakirdan/pushrelay/internal/app"
	"github.com/vovakirdan/pushrelay/internal/config"
	applog "github.com/vovakirdan/pushrelay/internal/log"
	"github.com/vovakirdan/pushrelay/internal/proto"
	"github.com/vovakirdan/pushrelay/internal/pubsub"
)

type rootOptions struct {
	configPath string
	overrides  config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "relay",
		Short:         "Relay Redis pub/sub events to websocket rooms",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&opts.overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.overrides.Redis.Addr, "redis-addr", "", "redis address")
	root.PersistentFlags().StringVar(&opts.overrides.Redis.Channel, "channel", "", "pub/sub channel")
	addServeFlags(root.Flags(), &opts.overrides)

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay server (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	addServeFlags(serve.Flags(), &opts.overrides)

	root.AddCommand(serve, newPublishCmd(opts))
	return root
}

func addServeFlags(fs *pflag.FlagSet, overrides *config.Config) {
	fs.StringVar(&overrides.Addr, "addr", "", "HTTP listen address")
	fs.DurationVar(&overrides.ReadHeaderTimeout, "read-header-timeout", 0, "HTTP read header timeout")
	fs.DurationVar(&overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")
	fs.IntVar(&overrides.WSRateLimit, "ws-rate-limit", 0, "inbound websocket frames per minute per connection")
}

// loadConfig resolves configuration: defaults < file < env < flags.
func loadConfig(opts *rootOptions) (config.Config, *zerolog.Logger, error) {
	bootLogger := applog.New("info")

	cfg, path, err := config.Load(bootLogger, opts.configPath)
	if err != nil {
		return cfg, bootLogger, err
	}
	cfg.UpdateFrom(opts.overrides)

	logger := applog.New(cfg.LogLevel)
	logger.Debug().Str("path", path).Msg("config loaded")
	return cfg, logger, nil
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(&cfg, logger)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr).Msg("starting pushrelay")
	if err := application.Run(ctx); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func newPublishCmd(opts *rootOptions) *cobra.Command {
	var (
		room  string
		event string
		data  string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish one event envelope to the pub/sub channel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}

			env := proto.Envelope{Room: proto.RoomName(room), Name: event}
			if data != "" {
				if !json.Valid([]byte(data)) {
					return errors.New("--data must be valid JSON")
				}
				env.Data = json.RawMessage(data)
			}

			client := pubsub.NewRedisClient(cfg.Redis)
			defer client.Close()

			receivers, err := pubsub.NewRedisPublisher(client).Publish(cmd.Context(), cfg.Redis.Channel, env)
			if err != nil {
				return err
			}

			logger.Debug().Str("room", room).Str("event", event).Msg("envelope published")
			fmt.Fprintf(cmd.OutOrStdout(), "published to %d subscriber(s)\n", receivers)
			return nil
		},
	}
	cmd.Flags().StringVar(&room, "room", "", "target room")
	cmd.Flags().StringVar(&event, "event", "", "event name")
	cmd.Flags().StringVar(&data, "data", "", "JSON payload")
	_ = cmd.MarkFlagRequired("room")
	_ = cmd.MarkFlagRequired("event")
	return cmd
}
