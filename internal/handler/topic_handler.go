package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"mindcare-go/internal/knowledge"
	"mindcare-go/internal/plan"
)

// TopicHandler 提供只读的话题目录与计划预览。
type TopicHandler struct{}

func NewTopicHandler() *TopicHandler {
	return &TopicHandler{}
}

// ListTopics 按目录顺序返回全部话题及是否有专属问卷。
func (h *TopicHandler) ListTopics(c *gin.Context) {
	topics := knowledge.Topics()
	data := make([]gin.H, 0, len(topics))
	for i, t := range topics {
		data = append(data, gin.H{
			"number":       i + 1,
			"id":           t.ID,
			"name":         t.Name,
			"description":  t.Description,
			"hasQuestions": knowledge.HasQuestions(t.ID),
		})
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": data})
}

// PreviewPlan 返回话题对应的计划。目录外的 ID 返回通用计划，与评估完成时一致。
func (h *TopicHandler) PreviewPlan(c *gin.Context) {
	p := plan.Build(c.Param("id"), nil)
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": p})
}

// ListQuickActions 返回可用的快捷操作。
func (h *TopicHandler) ListQuickActions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": knowledge.QuickActions()})
}
