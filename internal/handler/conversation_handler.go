package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"mindcare-go/internal/middleware"
	"mindcare-go/internal/model"
	"mindcare-go/internal/service"
	"mindcare-go/pkg/log"
)

// ConversationHandler 以 REST 方式暴露对话操作。返回的 Turn 由客户端按 delayMs 自行播放。
type ConversationHandler struct {
	chatService service.ChatService
}

// NewConversationHandler 创建一个新的 ConversationHandler。
func NewConversationHandler(chatService service.ChatService) *ConversationHandler {
	return &ConversationHandler{chatService: chatService}
}

// MessageRequest 是发送消息和提交答案的请求体。
type MessageRequest struct {
	Text string `json:"text"`
}

// Open 打开当前对话，新对话会追加欢迎语。
func (h *ConversationHandler) Open(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "无法获取用户信息", "data": nil})
		return
	}
	turn, err := h.chatService.OpenConversation(c.Request.Context(), user)
	h.respondTurn(c, turn, err)
}

// SendMessage 发送一条自由文本。
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	h.withText(c, h.chatService.SendMessage)
}

// SubmitAnswer 提交问题控件的答案。
func (h *ConversationHandler) SubmitAnswer(c *gin.Context) {
	h.withText(c, h.chatService.SubmitAnswer)
}

func (h *ConversationHandler) withText(c *gin.Context, fn func(ctx context.Context, user *model.User, text string) (*model.Turn, error)) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载", "data": nil})
		return
	}
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "无法获取用户信息", "data": nil})
		return
	}
	turn, err := fn(c.Request.Context(), user, req.Text)
	h.respondTurn(c, turn, err)
}

// QuickAction 执行快捷操作。
func (h *ConversationHandler) QuickAction(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "无法获取用户信息", "data": nil})
		return
	}
	turn, err := h.chatService.QuickAction(c.Request.Context(), user, c.Param("action"))
	h.respondTurn(c, turn, err)
}

// GetConversations 处理获取用户对话历史的请求。
func (h *ConversationHandler) GetConversations(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "无法获取用户信息", "data": nil})
		return
	}
	history, err := h.chatService.History(c.Request.Context(), user)
	if err != nil {
		log.Errorf("GetConversations: failed for user %d, error: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to retrieve conversation history", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": history})
}

// GetAssessment 返回进行中的评估，没有时 data 为 null。
func (h *ConversationHandler) GetAssessment(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "无法获取用户信息", "data": nil})
		return
	}
	session, err := h.chatService.CurrentAssessment(c.Request.Context(), user)
	if err != nil {
		log.Errorf("GetAssessment: failed for user %d, error: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "Failed to load assessment", "data": nil})
		return
	}
	if session == nil {
		c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": nil})
		return
	}
	current, _ := session.Descriptor()
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{
		"topic":    session.Topic,
		"current":  current,
		"answered": len(session.Answers),
		"total":    len(session.Questions),
	}})
}

// respondTurn 把服务层错误映射为响应。空白输入静默忽略，返回 204。
func (h *ConversationHandler) respondTurn(c *gin.Context, turn *model.Turn, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": turn})
	case errors.Is(err, service.ErrEmptyMessage):
		c.Status(http.StatusNoContent)
	case errors.Is(err, service.ErrUnknownQuickAction):
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": err.Error(), "data": nil})
	default:
		log.Errorf("chat turn failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "对话服务暂时不可用，请稍后重试", "data": nil})
	}
}
