package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const currentRoundKey = "baaji:current"

// RoundCache guarda a rodada aberta no Redis por alguns segundos para
// aliviar o Postgres na consulta mais frequente da API
type RoundCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRoundCache(c *redis.Client, ttl time.Duration) *RoundCache {
	return &RoundCache{Client: c, TTL: ttl}
}

func (c *RoundCache) Get(ctx context.Context, dst any) (bool, error) {
	b, err := c.Client.Get(ctx, currentRoundKey).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *RoundCache) Set(ctx context.Context, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, currentRoundKey, b, c.TTL).Err()
}

func (c *RoundCache) Invalidate(ctx context.Context) error {
	return c.Client.Del(ctx, currentRoundKey).Err()
}
