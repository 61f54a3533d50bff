package model

import (
	"encoding/json"
	"time"
)

// 回合步骤类型。
const (
	StepMessage      = "message"
	StepNotification = "notification"
)

// TurnStep 是一次机器人回合中的一个有序步骤。
// Delay 只影响传输层的节奏，不影响日志顺序。
type TurnStep struct {
	Kind         string        `json:"type"`
	Delay        time.Duration `json:"-"`
	Message      *ChatMessage  `json:"message,omitempty"`
	Notification string        `json:"notification,omitempty"`
}

// MarshalJSON 以毫秒输出延迟。
func (s TurnStep) MarshalJSON() ([]byte, error) {
	type alias TurnStep
	return json.Marshal(struct {
		alias
		DelayMs int64 `json:"delayMs"`
	}{alias: alias(s), DelayMs: s.Delay.Milliseconds()})
}

// Turn 是一次用户动作产生的全部结果。
type Turn struct {
	UserMessage *ChatMessage   `json:"userMessage,omitempty"`
	Steps       []TurnStep     `json:"steps"`
	Plan        *GeneratedPlan `json:"plan,omitempty"`
}

// Messages 按顺序返回本回合追加到日志中的全部消息。
func (t *Turn) Messages() []ChatMessage {
	var msgs []ChatMessage
	if t.UserMessage != nil {
		msgs = append(msgs, *t.UserMessage)
	}
	for _, s := range t.Steps {
		if s.Message != nil {
			msgs = append(msgs, *s.Message)
		}
	}
	return msgs
}
