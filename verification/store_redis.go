package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ CodeStore = &RedisStore{}

// RedisStore keeps verification codes in Redis, leaning on key TTLs for
// expiry so no sweeper is needed.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func codeKey(email string) string {
	return fmt.Sprintf("verification:code:%s", email)
}

func (s *RedisStore) Put(ctx context.Context, email string, code string, ttl time.Duration) error {
	err := s.client.Set(ctx, codeKey(email), code, ttl).Err()
	if err != nil {
		return NewFailedToStoreError(fmt.Sprintf("Failed to store verification code for %q", email), err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, email string) (string, error) {
	code, err := s.client.Get(ctx, codeKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", NewCodeNotFoundError(email)
		}
		return "", NewFailedToCheckError(fmt.Sprintf("Failed to read verification code for %q", email), err)
	}
	return code, nil
}

func (s *RedisStore) Delete(ctx context.Context, email string) error {
	err := s.client.Del(ctx, codeKey(email)).Err()
	if err != nil {
		return NewFailedToStoreError(fmt.Sprintf("Failed to delete verification code for %q", email), err)
	}
	return nil
}
