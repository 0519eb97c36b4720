package settings

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"alerting-destinations/internal/logging"
)

// RedisSource keeps a Registry in line with a Redis hash. Operators update the
// hash and publish the changed key on the channel; every instance then reloads
// the hash.
type RedisSource struct {
	rdb      *redis.Client
	key      string
	channel  string
	registry *Registry
	logger   *logging.Logger
}

func NewRedisSource(rdb *redis.Client, key, channel string, registry *Registry, logger *logging.Logger) *RedisSource {
	return &RedisSource{rdb: rdb, key: key, channel: channel, registry: registry, logger: logger}
}

// Load reads the whole hash into the registry.
func (s *RedisSource) Load(ctx context.Context) error {
	values, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	s.registry.Apply(values)
	return nil
}

// Watch reloads the registry on every change notice until ctx is done.
// ready, when not nil, is closed once the subscription is active.
func (s *RedisSource) Watch(ctx context.Context, ready chan<- struct{}) error {
	sub := s.rdb.Subscribe(ctx, s.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.channel, err)
	}
	if ready != nil {
		close(ready)
	}
	s.logger.Infof("Watching settings channel %s", s.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := s.Load(ctx); err != nil {
				s.logger.Errorf("Reload after change of %s failed: %v", msg.Payload, err)
				continue
			}
			s.logger.Infof("Settings reloaded after change of %s", msg.Payload)
		}
	}
}
