package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis publishes slot changes on one pub/sub channel per slot, so contexts
// in different processes see each other's writes.
type Redis struct {
	rdb    *redis.Client
	prefix string
	log    *zap.Logger

	mu   sync.Mutex
	subs map[*redis.PubSub]struct{}
}

func NewRedis(rdb *redis.Client, prefix string, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{rdb: rdb, prefix: prefix, log: logger, subs: make(map[*redis.PubSub]struct{})}
}

func (r *Redis) channel(key string) string {
	return fmt.Sprintf("%s:slot:%s", r.prefix, key)
}

func (r *Redis) Publish(ctx context.Context, ch Change) error {
	b, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	if err := r.rdb.Publish(ctx, r.channel(ch.Key), b).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ch.Key, err)
	}
	return nil
}

func (r *Redis) Subscribe(key string, h Handler) (func(), error) {
	ctx := context.Background()
	ps := r.rdb.Subscribe(ctx, r.channel(key))
	// Wait for the subscription to be confirmed so no publish after this
	// call returns can be missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", key, err)
	}

	r.mu.Lock()
	r.subs[ps] = struct{}{}
	r.mu.Unlock()

	msgs := ps.Channel()
	go func() {
		for msg := range msgs {
			var ch Change
			if err := json.Unmarshal([]byte(msg.Payload), &ch); err != nil {
				r.log.Warn("dropping malformed change", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			h(ch)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, ps)
			r.mu.Unlock()
			_ = ps.Close()
		})
	}, nil
}

// Close ends every subscription opened through r. The client itself is left open.
func (r *Redis) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ps := range r.subs {
		_ = ps.Close()
		delete(r.subs, ps)
	}
	return nil
}
