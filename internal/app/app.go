package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/pushrelay/internal/config"
	"github.com/vovakirdan/pushrelay/internal/core"
	"github.com/vovakirdan/pushrelay/internal/metrics"
	"github.com/vovakirdan/pushrelay/internal/pubsub"
	transporthttp "github.com/vovakirdan/pushrelay/internal/transport/http"
)

// App wires together core, pubsub and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	relay           *pubsub.Relay
	redis           *redis.Client
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	if cfg.Redis.Channel == "" {
		return nil, errors.New("redis channel is required")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewRelay(reg)

	hub := core.NewHub(core.WithObserver(m), core.WithLogger(logger))

	rdb := pubsub.NewRedisClient(cfg.Redis)
	subscriber := pubsub.NewRedisSubscriber(rdb)
	subscriber.SetPingInterval(cfg.Redis.PingInterval)
	relay := pubsub.NewRelay(subscriber, cfg.Redis.Channel, hub, m, logger)

	server := transporthttp.NewServer(hub, cfg, logger, reg)

	logger.Info().
		Str("redis_addr", cfg.Redis.Addr).
		Str("channel", cfg.Redis.Channel).
		Msg("relay configured")

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		relay:           relay,
		redis:           rdb,
		log:             logger,
	}, nil
}

// Run starts the hub, the pub/sub relay and the HTTP server, and blocks until
// context cancellation or a fatal relay/server error.
func (a *App) Run(ctx context.Context) error {
	defer a.cleanup()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.hub.Run(ctx)

	relayErr := make(chan error, 1)
	go func() {
		relayErr <- a.relay.Run(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	var runErr error
	select {
	case err := <-serverErr:
		return err
	case err := <-relayErr:
		if err != nil {
			a.log.Error().Err(err).Msg("relay stopped")
			runErr = fmt.Errorf("relay: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancelShutdown()

	a.log.Info().Msg("shutting down http server")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return errors.Join(runErr, err)
	}
	if err := <-serverErr; err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// cleanup closes the redis client.
func (a *App) cleanup() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close redis client")
		} else {
			a.log.Info().Msg("redis client closed")
		}
	}
}
