// Package model 包含了应用的数据模型定义。
package model

import (
	"time"

	"github.com/google/uuid"
)

// 消息发送方角色。
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatMessage 代表对话日志中的单条消息，追加后不再修改。
type ChatMessage struct {
	ID        string              `json:"id"`
	Role      string              `json:"role"` // "user"、"assistant" 或 "system"
	Content   string              `json:"content"`
	Timestamp time.Time           `json:"timestamp"`
	Question  *QuestionDescriptor `json:"question,omitempty"` // 仅评估问题消息携带
}

// IsQuestion 判断消息是否内嵌了评估问题控件。
func (m ChatMessage) IsQuestion() bool {
	return m.Question != nil
}

// NewChatMessage 创建一条带有时间有序 ID 的消息。
func NewChatMessage(role, content string, question *QuestionDescriptor, at time.Time) ChatMessage {
	return ChatMessage{
		ID:        NewMessageID(),
		Role:      role,
		Content:   content,
		Timestamp: at,
		Question:  question,
	}
}

// NewMessageID 使用 UUID v7 生成按时间单调递增的消息 ID。
func NewMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}
