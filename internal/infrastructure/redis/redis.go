package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/credit-market/internal/oauth"
	goredis "github.com/redis/go-redis/v9"
)

const stateKeyPrefix = "oauth:state:"

func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// StateStore keeps OAuth states in Redis so any server instance can finish
// a flow another one started.
type StateStore struct {
	client *goredis.Client
}

func NewStateStore(client *goredis.Client) *StateStore {
	return &StateStore{client: client}
}

func (s *StateStore) Save(ctx context.Context, state string, provider oauth.Provider, ttl time.Duration) error {
	if err := s.client.Set(ctx, stateKeyPrefix+state, string(provider), ttl).Err(); err != nil {
		return fmt.Errorf("set oauth state: %w", err)
	}
	return nil
}

func (s *StateStore) Consume(ctx context.Context, state string) (oauth.Provider, error) {
	val, err := s.client.GetDel(ctx, stateKeyPrefix+state).Result()
	if errors.Is(err, goredis.Nil) {
		return "", oauth.ErrInvalidState
	}
	if err != nil {
		return "", fmt.Errorf("getdel oauth state: %w", err)
	}
	return oauth.Provider(val), nil
}

// Ping is used by the readiness checker.
func (s *StateStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
