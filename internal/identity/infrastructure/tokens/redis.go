// Package tokens stores single-use verification and reset tokens.
package tokens

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/consulta/internal/identity/application"
	"github.com/felixgeelhaar/consulta/internal/identity/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces token keys in Redis.
const DefaultPrefix = "consulta:token:"

// RedisStore keeps tokens in Redis with a native TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a store on an existing client.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// NewRedisStoreFromURL parses a redis:// URL and pings the server.
func NewRedisStoreFromURL(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(client, ""), nil
}

func (s *RedisStore) key(purpose application.TokenPurpose, token string) string {
	return s.prefix + string(purpose) + ":" + token
}

// Issue stores a new random token for the account.
func (s *RedisStore) Issue(ctx context.Context, purpose application.TokenPurpose, accountID uuid.UUID, ttl time.Duration) (string, error) {
	token := rand.Text()
	if err := s.client.Set(ctx, s.key(purpose, token), accountID.String(), ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Consume atomically reads and deletes the token.
func (s *RedisStore) Consume(ctx context.Context, purpose application.TokenPurpose, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, domain.ErrInvalidToken
	}
	val, err := s.client.GetDel(ctx, s.key(purpose, token)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, domain.ErrInvalidToken
	}
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidToken
	}
	return id, nil
}

// Close releases the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ application.TokenStore = (*RedisStore)(nil)
