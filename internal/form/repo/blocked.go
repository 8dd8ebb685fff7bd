package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	errx "github.com/Formflow-core-poc-v1/server/internal/core/error"
)

// RedisBlockedFlag mirrors the per-conversation blocked flag into Redis so
// the chat input shell (a separate process) can disable composition while a
// form episode is pending. The TTL caps how long a crashed process can leave
// a conversation looking blocked.
type RedisBlockedFlag struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisBlockedFlag(rdb redis.Cmdable, ttl time.Duration) *RedisBlockedFlag {
	return &RedisBlockedFlag{rdb: rdb, ttl: ttl}
}

func (r *RedisBlockedFlag) blockedKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:blocked", conversationID)
}

// SetBlocked publishes or clears the flag.
func (r *RedisBlockedFlag) SetBlocked(ctx context.Context, conversationID string, blocked bool) error {
	key := r.blockedKey(conversationID)
	if blocked {
		if err := r.rdb.Set(ctx, key, "1", r.ttl).Err(); err != nil {
			return errx.WrapRedis(err)
		}
		return nil
	}
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}

// Blocked reads the flag back, for shells polling instead of subscribing.
func (r *RedisBlockedFlag) Blocked(ctx context.Context, conversationID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, r.blockedKey(conversationID)).Result()
	if err != nil {
		return false, errx.WrapRedis(err)
	}
	return n > 0, nil
}
