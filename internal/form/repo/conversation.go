package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"

	errx "github.com/Formflow-core-poc-v1/server/internal/core/error"
	logx "github.com/Formflow-core-poc-v1/server/pkg/logger"
)

// RedisConversationTransport appends synthesized form messages to the
// conversation history the agent reads from. Messages are stored as
// eino schema messages so the downstream agent loop can consume them
// unchanged.
type RedisConversationTransport struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisConversationTransport(rdb redis.Cmdable, ttl time.Duration) *RedisConversationTransport {
	return &RedisConversationTransport{rdb: rdb, ttl: ttl}
}

func (r *RedisConversationTransport) conversationKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:messages", conversationID)
}

// SubmitText appends a user-authored message to the conversation, as if the
// user had typed it, and touches the conversation TTL.
func (r *RedisConversationTransport) SubmitText(ctx context.Context, conversationID, text string) error {
	return r.addMessage(ctx, conversationID, schema.UserMessage(text))
}

func (r *RedisConversationTransport) addMessage(ctx context.Context, conversationID string, message *schema.Message) error {
	b, err := json.Marshal(message)
	if err != nil {
		logx.Error().Err(err).Str("conversationID", conversationID).Msg("failed to marshal message")
		return fmt.Errorf("marshal message: %w", err)
	}
	key := r.conversationKey(conversationID)

	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push message to redis")
		return errx.WrapRedis(err)
	}
	if r.ttl > 0 {
		if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
			return errx.WrapRedis(err)
		} else if !ok {
			logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on conversation key")
		}
	}
	return nil
}

// LoadHistory retrieves the stored conversation messages, newest last.
func (r *RedisConversationTransport) LoadHistory(ctx context.Context, conversationID string) ([]*schema.Message, error) {
	key := r.conversationKey(conversationID)

	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []*schema.Message{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load conversation history from redis")
		return nil, errx.WrapRedis(err)
	}

	msgs := make([]*schema.Message, 0, len(rows))
	for i, s := range rows {
		var m schema.Message
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			logx.Error().Err(err).Str("conversationID", conversationID).Int("index", i).Msg("failed to unmarshal message")
			return nil, fmt.Errorf("unmarshal message at index %d: %w", i, err)
		}
		msgs = append(msgs, &m)
	}
	return msgs, nil
}
