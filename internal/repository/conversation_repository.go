// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"mindcare-go/internal/model"
)

// ErrNotFound 表示记录不存在，屏蔽底层存储的错误类型。
var ErrNotFound = errors.New("record not found")

// ConversationRepository 定义了对话日志的操作接口。日志只追加，不修改也不删除单条消息。
type ConversationRepository interface {
	GetOrCreateConversationID(ctx context.Context, userID uint) (string, error)
	AppendMessages(ctx context.Context, conversationID string, messages ...model.ChatMessage) error
	// GetConversationHistory 按追加顺序返回最近 limit 条消息，limit <= 0 返回全部。
	GetConversationHistory(ctx context.Context, conversationID string, limit int64) ([]model.ChatMessage, error)
	CountMessages(ctx context.Context, conversationID string) (int64, error)
	GetAllUserConversationMappings(ctx context.Context) (map[uint]string, error)
}

type redisConversationRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewConversationRepository 创建一个基于 Redis 列表的 ConversationRepository。
func NewConversationRepository(redisClient *redis.Client, ttl time.Duration) ConversationRepository {
	return &redisConversationRepository{redisClient: redisClient, ttl: ttl}
}

func userConversationKey(userID uint) string {
	return fmt.Sprintf("user:%d:current_conversation", userID)
}

func messagesKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:messages", conversationID)
}

// GetOrCreateConversationID 获取或创建用户当前的对话ID。
func (r *redisConversationRepository) GetOrCreateConversationID(ctx context.Context, userID uint) (string, error) {
	userKey := userConversationKey(userID)
	convID, err := r.redisClient.Get(ctx, userKey).Result()
	if err == nil {
		// 活跃用户每次访问都续期，映射与日志一起过期
		_, err = r.redisClient.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Expire(ctx, userKey, r.ttl)
			pipe.Expire(ctx, messagesKey(convID), r.ttl)
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("failed to refresh conversation ttl: %w", err)
		}
		return convID, nil
	}
	if err != redis.Nil {
		return "", fmt.Errorf("failed to get conversation id: %w", err)
	}

	convID = model.NewMessageID()
	// SETNX 防止同一用户的并发请求各自创建对话
	ok, err := r.redisClient.SetNX(ctx, userKey, convID, r.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to set conversation id: %w", err)
	}
	if !ok {
		return r.redisClient.Get(ctx, userKey).Result()
	}
	return convID, nil
}

// AppendMessages 在一个事务中按顺序追加消息并刷新过期时间。
func (r *redisConversationRepository) AppendMessages(ctx context.Context, conversationID string, messages ...model.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(messages))
	for _, m := range messages {
		b, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
		values = append(values, b)
	}

	key := messagesKey(conversationID)
	_, err := r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append messages: %w", err)
	}
	return nil
}

// GetConversationHistory 从 Redis 获取对话历史记录。
func (r *redisConversationRepository) GetConversationHistory(ctx context.Context, conversationID string, limit int64) ([]model.ChatMessage, error) {
	start := int64(0)
	if limit > 0 {
		start = -limit
	}
	raw, err := r.redisClient.LRange(ctx, messagesKey(conversationID), start, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}
	messages := make([]model.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var m model.ChatMessage
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal conversation history: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// CountMessages 返回对话日志的长度。
func (r *redisConversationRepository) CountMessages(ctx context.Context, conversationID string) (int64, error) {
	n, err := r.redisClient.LLen(ctx, messagesKey(conversationID)).Result()
	if err != nil && err != redis.Nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return n, nil
}

// GetAllUserConversationMappings 扫描 user:*:current_conversation 返回 map[userID]conversationID。
func (r *redisConversationRepository) GetAllUserConversationMappings(ctx context.Context) (map[uint]string, error) {
	result := make(map[uint]string)
	iter := r.redisClient.Scan(ctx, 0, "user:*:current_conversation", 100).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		var uid uint
		if _, err := fmt.Sscanf(k, "user:%d:current_conversation", &uid); err != nil {
			continue
		}
		convID, err := r.redisClient.Get(ctx, k).Result()
		if err != nil {
			continue
		}
		result[uid] = convID
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan user conversation keys: %w", err)
	}
	return result, nil
}
