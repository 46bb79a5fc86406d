package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store guarda rascunhos por usuário no Redis. O TTL faz o rascunho não
// confirmado expirar sozinho; cancelar apaga a chave.
type Store struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewStore(c *redis.Client, ttl time.Duration) *Store {
	return &Store{Client: c, TTL: ttl}
}

func key(userID int64) string { return fmt.Sprintf("draft:user:%d", userID) }

func (s *Store) Get(ctx context.Context, userID int64) (*Draft, error) {
	b, err := s.Client.Get(ctx, key(userID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNoDraft
	}
	if err != nil {
		return nil, err
	}
	var d Draft
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) Save(ctx context.Context, d *Draft) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, key(d.UserID), b, s.TTL).Err()
}

func (s *Store) Delete(ctx context.Context, userID int64) error {
	return s.Client.Del(ctx, key(userID)).Err()
}
