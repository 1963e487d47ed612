package chathub

import (
	"cinesocial/backend/internal/config"
	"cinesocial/backend/internal/logging"
	"cinesocial/backend/internal/models"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// Relay carries persisted messages to every hub instance, each of which
// delivers them to its own connections of the receiver.
type Relay interface {
	Publish(ctx context.Context, msg models.ChatMessage) error
	// Start begins delivering relayed messages and returns once subscribed.
	// Delivery stops when ctx is done.
	Start(ctx context.Context, deliver func(models.ChatMessage)) error
}

var errRelayNotStarted = errors.New("relay not started")

// LocalRelay is the single-instance relay: Publish delivers in-process.
type LocalRelay struct {
	mu      sync.RWMutex
	deliver func(models.ChatMessage)
}

func NewLocalRelay() *LocalRelay { return &LocalRelay{} }

func (r *LocalRelay) Publish(_ context.Context, msg models.ChatMessage) error {
	r.mu.RLock()
	deliver := r.deliver
	r.mu.RUnlock()

	if deliver == nil {
		return errRelayNotStarted
	}
	deliver(msg)
	return nil
}

func (r *LocalRelay) Start(ctx context.Context, deliver func(models.ChatMessage)) error {
	r.mu.Lock()
	r.deliver = deliver
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		r.deliver = nil
		r.mu.Unlock()
	}()
	return nil
}

// RedisRelay fans messages out over a Redis pub/sub channel shared by all instances.
type RedisRelay struct {
	rdb     *redis.Client
	channel string
}

func NewRedisRelay(rdb *redis.Client) *RedisRelay {
	return &RedisRelay{rdb: rdb, channel: config.ChatRelayChannel}
}

func (r *RedisRelay) Publish(ctx context.Context, msg models.ChatMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode relay message: %w", err)
	}
	if err := r.rdb.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", r.channel, err)
	}
	return nil
}

// Start subscribes and confirms the subscription before returning so that
// nothing published afterwards is missed.
func (r *RedisRelay) Start(ctx context.Context, deliver func(models.ChatMessage)) error {
	pubsub := r.rdb.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("subscribe to %s: %w", r.channel, err)
	}

	log := logging.With("relay")
	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var chatMsg models.ChatMessage
				if err := json.Unmarshal([]byte(msg.Payload), &chatMsg); err != nil {
					log.Error().Err(err).Msg("dropping undecodable relay message")
					continue
				}
				deliver(chatMsg)
			}
		}
	}()

	log.Info().Str("channel", r.channel).Msg("relay subscribed")
	return nil
}
