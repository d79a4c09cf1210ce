package live

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/tahfidz-portal/pkg/helpers"
)

// sessionRecord is what the live auth subsystem keeps per client.
type sessionRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionCache stores one session record per key with expiry.
type SessionCache interface {
	Load(ctx context.Context, key string, dest *sessionRecord) (bool, error)
	Save(ctx context.Context, key string, rec sessionRecord, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
}

// RedisSessions keeps session records in redis.
type RedisSessions struct {
	rdb *redis.Client
}

func NewRedisSessions(rdb *redis.Client) *RedisSessions {
	return &RedisSessions{rdb: rdb}
}

func (s *RedisSessions) Load(ctx context.Context, key string, dest *sessionRecord) (bool, error) {
	return helpers.RedisGetJSON(ctx, s.rdb, key, dest)
}

func (s *RedisSessions) Save(ctx context.Context, key string, rec sessionRecord, ttl time.Duration) error {
	return helpers.RedisSetJSON(ctx, s.rdb, key, rec, ttl)
}

func (s *RedisSessions) Delete(ctx context.Context, key string) (bool, error) {
	return helpers.RedisDel(ctx, s.rdb, key)
}

var _ SessionCache = (*RedisSessions)(nil)
