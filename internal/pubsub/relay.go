package pubsub

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/pushrelay/internal/core"
	"github.com/vovakirdan/pushrelay/internal/metrics"
	"github.com/vovakirdan/pushrelay/internal/proto"
)

// ErrSubscriptionLost is returned by Relay.Run when the subscription ends
// while the relay is still supposed to be running.
var ErrSubscriptionLost = errors.New("pubsub subscription lost")

// Subscription is an active channel subscription.
type Subscription interface {
	// Messages yields raw payloads and is closed when the subscription ends.
	Messages() <-chan []byte
	// Err reports why the subscription ended on its own, if known.
	Err() error
	Close() error
}

// Subscriber opens subscriptions on a pub/sub transport.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}

// Deliverer accepts validated deliveries; *core.Hub implements it.
type Deliverer interface {
	Deliver(d core.Delivery) error
}

// Relay pumps envelopes from one pub/sub channel into the hub.
type Relay struct {
	sub     Subscriber
	channel string
	hub     Deliverer
	metrics *metrics.Relay
	log     *zerolog.Logger
}

// NewRelay builds a relay for channel. m may be nil.
func NewRelay(sub Subscriber, channel string, hub Deliverer, m *metrics.Relay, logger *zerolog.Logger) *Relay {
	return &Relay{
		sub:     sub,
		channel: channel,
		hub:     hub,
		metrics: m,
		log:     logger,
	}
}

// Run subscribes once and forwards messages until ctx is cancelled.
// A subscription that ends on its own yields ErrSubscriptionLost.
func (r *Relay) Run(ctx context.Context) error {
	subscription, err := r.sub.Subscribe(ctx, r.channel)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer func() {
		if closeErr := subscription.Close(); closeErr != nil {
			r.log.Debug().Err(closeErr).Str("channel", r.channel).Msg("close subscription")
		}
	}()

	r.log.Info().Str("channel", r.channel).Msg("subscribed to pubsub channel")

	messages := subscription.Messages()
	for {
		select {
		case <-ctx.Done():
			return nil
		case payload, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				if cause := subscription.Err(); cause != nil {
					return fmt.Errorf("%w: %w", ErrSubscriptionLost, cause)
				}
				return ErrSubscriptionLost
			}
			r.handle(payload)
		}
	}
}

func (r *Relay) handle(payload []byte) {
	r.metrics.EnvelopeReceived()

	env, err := proto.ParseEnvelope(payload)
	switch {
	case errors.Is(err, proto.ErrEnvelopeMalformed):
		r.metrics.EnvelopeDropped(metrics.ReasonMalformed)
		r.log.Warn().Err(err).Int("bytes", len(payload)).Msg("dropping malformed envelope")
		return
	case errors.Is(err, proto.ErrEnvelopeIncomplete):
		r.metrics.EnvelopeDropped(metrics.ReasonIncomplete)
		r.log.Debug().Str("room", env.Room.String()).Str("event", env.Name).Msg("dropping envelope without room or name")
		return
	case err != nil:
		r.log.Warn().Err(err).Msg("dropping envelope")
		return
	}

	if err := r.hub.Deliver(core.Delivery{Room: env.Room.String(), Name: env.Name, Data: env.Data}); err != nil {
		r.metrics.EnvelopeDropped(metrics.ReasonHubStopped)
		r.log.Warn().Err(err).Str("room", env.Room.String()).Str("event", env.Name).Msg("deliver envelope")
	}
}
