package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smehta-dev/storefront-backend/pkg/redis"
)

// RedisPersister stores one serialized cart state per session key.
type RedisPersister struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPersister wraps the shared redis client. A zero TTL keeps carts
// until explicitly deleted.
func NewRedisPersister(client *redis.Client, ttl time.Duration) (*RedisPersister, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisPersister{client: client, ttl: ttl}, nil
}

func (r *RedisPersister) Load(ctx context.Context, sessionID string) (State, bool, error) {
	payload, err := r.client.Get(ctx, r.client.CartKey(sessionID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return State{}, false, nil
		}
		return State{}, false, fmt.Errorf("load cart: %w", err)
	}
	state, err := DecodeState([]byte(payload))
	if err != nil {
		return State{}, false, err
	}
	return state, true, nil
}

func (r *RedisPersister) Save(ctx context.Context, sessionID string, state State) error {
	payload, err := EncodeState(state)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.client.CartKey(sessionID), string(payload), r.ttl); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (r *RedisPersister) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.client.CartKey(sessionID)); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
