package service

import (
	"context"
	"strings"

	"mindcare-go/internal/knowledge"
	"mindcare-go/internal/model"
)

const (
	defaultSearchSize = 20
	maxSearchSize     = 100
)

// PlanSearcher 是计划检索的后端，生产环境由 es.PlanIndex 实现。
type PlanSearcher interface {
	SearchPlans(ctx context.Context, topic, query string, size int) ([]model.PlanSearchResult, error)
}

// PlanSearchService 供管理端检索已归档的计划。
type PlanSearchService interface {
	Search(ctx context.Context, topic, query string, size int) ([]model.PlanSearchResult, error)
}

type planSearchService struct {
	searcher PlanSearcher
}

// NewPlanSearchService 创建一个新的 PlanSearchService。
func NewPlanSearchService(searcher PlanSearcher) PlanSearchService {
	return &planSearchService{searcher: searcher}
}

// Search 校正参数后检索，未知话题直接返回空结果。
func (s *planSearchService) Search(ctx context.Context, topic, query string, size int) ([]model.PlanSearchResult, error) {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if _, ok := knowledge.TopicByID(topic); !ok && topic != "" {
		return []model.PlanSearchResult{}, nil
	}
	if size <= 0 {
		size = defaultSearchSize
	}
	if size > maxSearchSize {
		size = maxSearchSize
	}
	return s.searcher.SearchPlans(ctx, topic, strings.TrimSpace(query), size)
}
