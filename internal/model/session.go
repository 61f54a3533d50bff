package model

import "time"

// AssessmentSession 记录一次进行中的评估：当前话题、问题游标和已收集的答案。
// 游标在会话活跃期间始终是 Questions 的合法下标。
type AssessmentSession struct {
	Topic     string            `json:"topic"`
	Questions []Question        `json:"questions"`
	Cursor    int               `json:"cursor"`
	Answers   map[string]string `json:"answers"`
	Active    bool              `json:"active"`
	StartedAt time.Time         `json:"startedAt"`
}

// CurrentQuestion 返回游标指向的问题。
func (s *AssessmentSession) CurrentQuestion() (Question, bool) {
	if s == nil || !s.Active || s.Cursor < 0 || s.Cursor >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.Cursor], true
}

// Descriptor 为当前问题生成下发给客户端的描述。
func (s *AssessmentSession) Descriptor() (*QuestionDescriptor, bool) {
	q, ok := s.CurrentQuestion()
	if !ok {
		return nil, false
	}
	return &QuestionDescriptor{
		Question: q,
		Number:   s.Cursor + 1,
		Total:    len(s.Questions),
		Topic:    s.Topic,
	}, true
}

// IsLast 判断游标是否位于最后一个问题。
func (s *AssessmentSession) IsLast() bool {
	return s.Cursor == len(s.Questions)-1
}
