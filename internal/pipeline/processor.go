// Package pipeline 定义了计划归档的处理流程：Kafka 任务 -> MinIO 对象 -> Elasticsearch 文档。
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mindcare-go/internal/model"
	"mindcare-go/internal/plan"
	"mindcare-go/pkg/log"
	"mindcare-go/pkg/tasks"
)

// ObjectStore 是归档所需的对象存储能力。
type ObjectStore interface {
	PutObject(ctx context.Context, objectName string, data []byte, contentType string) error
}

// PlanIndexer 是归档所需的检索索引能力。
type PlanIndexer interface {
	IndexPlan(ctx context.Context, doc model.PlanDocument) error
}

// PlanArchiver 封装了计划归档的所有依赖和逻辑。
type PlanArchiver struct {
	store   ObjectStore
	indexer PlanIndexer
}

// NewPlanArchiver 创建一个新的 PlanArchiver 实例。
func NewPlanArchiver(store ObjectStore, indexer PlanIndexer) *PlanArchiver {
	return &PlanArchiver{store: store, indexer: indexer}
}

// CurrentPlanObject 是用户最新计划 Markdown 的对象名，导出链接指向它。
func CurrentPlanObject(userID uint) string {
	return fmt.Sprintf("progress/%d/current-plan.md", userID)
}

// HistoryObject 是某次计划 JSON 快照的对象名。
func HistoryObject(userID uint, at time.Time) string {
	return fmt.Sprintf("progress/%d/history/%s.json", userID, at.UTC().Format("20060102T150405.000Z"))
}

// Process 归档一次生成的计划。重复投递是幂等的：对象与文档均按确定的名字覆盖。
func (a *PlanArchiver) Process(ctx context.Context, task tasks.PlanArchiveTask) error {
	log.Infof("[PlanArchiver] 开始归档计划, UserID: %d, Topic: %s", task.UserID, task.Topic)

	snapshot, err := json.MarshalIndent(task, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化计划快照失败: %w", err)
	}
	historyName := HistoryObject(task.UserID, task.GeneratedAt)
	if err := a.store.PutObject(ctx, historyName, snapshot, "application/json"); err != nil {
		log.Errorf("[PlanArchiver] 上传计划快照失败, Object: %s, Error: %v", historyName, err)
		return fmt.Errorf("上传计划快照失败: %w", err)
	}

	markdown := plan.Markdown(task.Plan)
	currentName := CurrentPlanObject(task.UserID)
	if err := a.store.PutObject(ctx, currentName, []byte(markdown), "text/markdown; charset=utf-8"); err != nil {
		log.Errorf("[PlanArchiver] 上传计划文档失败, Object: %s, Error: %v", currentName, err)
		return fmt.Errorf("上传计划文档失败: %w", err)
	}

	titles := make([]string, 0, len(task.Plan.Recommendations))
	for _, r := range task.Plan.Recommendations {
		titles = append(titles, r.Title)
	}
	doc := model.PlanDocument{
		DocumentID:      task.Key(),
		UserID:          task.UserID,
		Username:        task.Username,
		Topic:           task.Topic,
		Issue:           task.Plan.Issue,
		Severity:        task.Plan.Severity,
		PlanDuration:    task.Plan.PlanDuration,
		Recommendations: titles,
		Content:         markdown,
		ObjectName:      historyName,
		GeneratedAt:     task.GeneratedAt,
	}
	if err := a.indexer.IndexPlan(ctx, doc); err != nil {
		log.Errorf("[PlanArchiver] 索引计划失败, DocumentID: %s, Error: %v", doc.DocumentID, err)
		return fmt.Errorf("索引计划失败: %w", err)
	}

	log.Infof("[PlanArchiver] 计划归档完成, DocumentID: %s", doc.DocumentID)
	return nil
}
