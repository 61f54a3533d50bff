package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"mindcare-go/internal/model"
)

// AssessmentRepository 保存每个对话至多一个进行中的评估会话。
type AssessmentRepository interface {
	// Get 在没有进行中的评估时返回 (nil, nil)。
	Get(ctx context.Context, conversationID string) (*model.AssessmentSession, error)
	Save(ctx context.Context, conversationID string, session *model.AssessmentSession) error
	Delete(ctx context.Context, conversationID string) error
}

type redisAssessmentRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewAssessmentRepository 创建一个基于 Redis 的 AssessmentRepository。
func NewAssessmentRepository(redisClient *redis.Client, ttl time.Duration) AssessmentRepository {
	return &redisAssessmentRepository{redisClient: redisClient, ttl: ttl}
}

func assessmentKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:assessment", conversationID)
}

func (r *redisAssessmentRepository) Get(ctx context.Context, conversationID string) (*model.AssessmentSession, error) {
	data, err := r.redisClient.Get(ctx, assessmentKey(conversationID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment session: %w", err)
	}
	var s model.AssessmentSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assessment session: %w", err)
	}
	if !s.Active {
		return nil, nil
	}
	return &s, nil
}

func (r *redisAssessmentRepository) Save(ctx context.Context, conversationID string, session *model.AssessmentSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal assessment session: %w", err)
	}
	if err := r.redisClient.Set(ctx, assessmentKey(conversationID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save assessment session: %w", err)
	}
	return nil
}

func (r *redisAssessmentRepository) Delete(ctx context.Context, conversationID string) error {
	if err := r.redisClient.Del(ctx, assessmentKey(conversationID)).Err(); err != nil {
		return fmt.Errorf("failed to delete assessment session: %w", err)
	}
	return nil
}
