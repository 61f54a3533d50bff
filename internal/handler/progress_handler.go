package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"mindcare-go/internal/middleware"
	"mindcare-go/internal/service"
	"mindcare-go/pkg/log"
)

// ProgressHandler 暴露用户保存的进度记录。
type ProgressHandler struct {
	progressService service.ProgressService
}

func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// GetProgress 返回最近一次评估保存的记录。
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "无法获取用户信息", "data": nil})
		return
	}
	rec, err := h.progressService.Get(c.Request.Context(), user.ID)
	if errors.Is(err, service.ErrNoProgress) {
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "尚未完成任何评估", "data": nil})
		return
	}
	if err != nil {
		log.Errorf("GetProgress: failed for user %d, error: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "获取进度失败", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": rec})
}

// ExportPlan 返回归档计划文档的限时下载链接。
func (h *ProgressHandler) ExportPlan(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "无法获取用户信息", "data": nil})
		return
	}
	url, err := h.progressService.ExportURL(c.Request.Context(), user.ID)
	if errors.Is(err, service.ErrNoProgress) {
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "尚未完成任何评估", "data": nil})
		return
	}
	if err != nil {
		log.Errorf("ExportPlan: failed for user %d, error: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "生成下载链接失败", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{"url": url}})
}
