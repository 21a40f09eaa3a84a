package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vovakirdan/pushrelay/internal/config"
	"github.com/vovakirdan/pushrelay/internal/proto"
)

// NewRedisClient builds a client for the relay channel.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 2 * time.Second,
	})
}

// DefaultPingInterval is how often a subscription checks its connection.
const DefaultPingInterval = 5 * time.Second

// RedisSubscriber implements Subscriber on top of Redis SUBSCRIBE.
type RedisSubscriber struct {
	client       *redis.Client
	pingInterval time.Duration
}

// NewRedisSubscriber wraps an existing client. The caller owns the client.
func NewRedisSubscriber(client *redis.Client) *RedisSubscriber {
	return &RedisSubscriber{client: client, pingInterval: DefaultPingInterval}
}

// SetPingInterval sets how often the subscription pings Redis. A failed ping
// ends the subscription. Zero or less disables the check.
func (s *RedisSubscriber) SetPingInterval(d time.Duration) {
	s.pingInterval = d
}

// Subscribe subscribes to channel and waits for the server confirmation, so a
// missing Redis fails here rather than silently later.
func (s *RedisSubscriber) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	ps := s.client.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe %q: %w", channel, err)
	}

	sub := &redisSubscription{
		ps:     ps,
		in:     ps.Channel(),
		out:    make(chan []byte),
		closed: make(chan struct{}),
	}
	go sub.pump()
	if s.pingInterval > 0 {
		go sub.watch(s.pingInterval)
	}
	return sub, nil
}

type redisSubscription struct {
	ps        *redis.PubSub
	in        <-chan *redis.Message
	out       chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

func (s *redisSubscription) Messages() <-chan []byte {
	return s.out
}

func (s *redisSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *redisSubscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		err = s.ps.Close()
	})
	return err
}

func (s *redisSubscription) pump() {
	defer close(s.out)
	for {
		select {
		case msg, ok := <-s.in:
			if !ok {
				return
			}
			select {
			case s.out <- []byte(msg.Payload):
			case <-s.closed:
				return
			}
		case <-s.closed:
			return
		}
	}
}

// watch pings on the subscription connection. go-redis reconnects silently,
// so without it a dead server would leave Messages open forever.
func (s *redisSubscription) watch(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.closed:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			err := s.ps.Ping(ctx)
			cancel()
			if err != nil {
				s.mu.Lock()
				s.err = fmt.Errorf("redis ping: %w", err)
				s.mu.Unlock()
				_ = s.Close()
				return
			}
		}
	}
}

// RedisPublisher publishes envelopes for the relay to fan out.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher wraps an existing client. The caller owns the client.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish validates env and publishes it on channel. It returns the number of
// relay processes that received the message.
func (p *RedisPublisher) Publish(ctx context.Context, channel string, env proto.Envelope) (int64, error) {
	if err := env.Validate(); err != nil {
		return 0, err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return 0, fmt.Errorf("marshal envelope: %w", err)
	}
	receivers, err := p.client.Publish(ctx, channel, data).Result()
	if err != nil {
		return 0, fmt.Errorf("redis publish %q: %w", channel, err)
	}
	return receivers, nil
}
