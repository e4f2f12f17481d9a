// File: services/session/store.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"concierge/models"

	"github.com/go-redis/redis/v8"
)

// Store persists conversation state per (domain, user). Values are JSON
// with only primitive/collection/ISO-string leaves.
type Store interface {
	Get(ctx context.Context, userID string, domain models.Domain) (*models.Session, error)
	Set(ctx context.Context, userID string, domain models.Domain, sess *models.Session, ttl time.Duration) error
	Clear(ctx context.Context, userID string, domain models.Domain) error
}

// RedisStore keeps sessions in Redis under
// <prefix>:<domain>:user:<user_id>.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "dlg"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(userID string, domain models.Domain) string {
	return fmt.Sprintf("%s:%s:user:%s", s.prefix, domain, userID)
}

func (s *RedisStore) Get(ctx context.Context, userID string, domain models.Domain) (*models.Session, error) {
	data, err := s.client.Get(ctx, s.key(userID, domain)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("failed to parse dialog session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Set(ctx context.Context, userID string, domain models.Domain, sess *models.Session, ttl time.Duration) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal dialog session: %w", err)
	}
	return s.client.Set(ctx, s.key(userID, domain), b, ttl).Err()
}

func (s *RedisStore) Clear(ctx context.Context, userID string, domain models.Domain) error {
	return s.client.Del(ctx, s.key(userID, domain)).Err()
}
