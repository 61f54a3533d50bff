package model

import "time"

// PlanDocument 定义了存储在 Elasticsearch 中的计划归档文档。
type PlanDocument struct {
	DocumentID      string    `json:"document_id"` // userID + 生成时间，重复投递时覆盖同一文档
	UserID          uint      `json:"user_id"`
	Username        string    `json:"username"`
	Topic           string    `json:"topic"`
	Issue           string    `json:"issue"`
	Severity        string    `json:"severity"`
	PlanDuration    string    `json:"plan_duration"`
	Recommendations []string  `json:"recommendations"`
	Content         string    `json:"content"` // Markdown 正文
	ObjectName      string    `json:"object_name"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// PlanSearchResult 定义了返回给管理端的搜索结果结构。
type PlanSearchResult struct {
	PlanDocument
	Score float64 `json:"score"`
}
