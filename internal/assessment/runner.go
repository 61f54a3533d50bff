// Package assessment 驱动话题问卷：开始后逐题记录答案，最后一题作答后交给计划生成器。
//
// 状态只有两种：未激活，以及等待第 cursor 题作答。
// 未激活时提交答案是空操作；没有超时、跳过或取消。
package assessment

import (
	"time"

	"mindcare-go/internal/knowledge"
	"mindcare-go/internal/model"
	"mindcare-go/internal/plan"
)

// Outcome 是一次提交答案的结果。
type Outcome struct {
	// Recorded 为 false 表示会话未激活，本次提交被忽略。
	Recorded bool
	// Next 是下一道题，完成时为 nil。
	Next *model.QuestionDescriptor
	// Completed 为 true 时 Plan、Topic 和 Answers 有效，会话已清除。
	Completed bool
	Topic     string
	Answers   map[string]string
	Plan      *model.GeneratedPlan
}

// Runner 持有至多一个活跃会话。非并发安全，调用方按会话串行调用。
type Runner struct {
	session *model.AssessmentSession
	build   plan.Builder
	now     func() time.Time
}

// NewRunner 以已有会话（可为 nil）恢复一个 Runner。build 为 nil 时使用 plan.Build。
func NewRunner(session *model.AssessmentSession, build plan.Builder) *Runner {
	if build == nil {
		build = plan.Build
	}
	if session != nil && !session.Active {
		session = nil
	}
	return &Runner{session: session, build: build, now: time.Now}
}

// Active 判断当前是否有进行中的评估。
func (r *Runner) Active() bool {
	return r.session != nil
}

// Session 返回当前会话，未激活时为 nil。
func (r *Runner) Session() *model.AssessmentSession {
	return r.session
}

// Start 为话题开始新的评估并返回第一题。已有会话会被替换。
func (r *Runner) Start(topicID string) *model.QuestionDescriptor {
	r.session = &model.AssessmentSession{
		Topic:     topicID,
		Questions: knowledge.Questions(topicID),
		Cursor:    0,
		Answers:   map[string]string{},
		Active:    true,
		StartedAt: r.now(),
	}
	d, _ := r.session.Descriptor()
	return d
}

// Submit 记录当前题目的答案并前进。最后一题作答后清除会话并调用计划生成器一次。
func (r *Runner) Submit(answer string) Outcome {
	q, ok := r.session.CurrentQuestion()
	if !ok {
		return Outcome{}
	}
	r.session.Answers[q.ID] = answer

	if !r.session.IsLast() {
		r.session.Cursor++
		next, _ := r.session.Descriptor()
		return Outcome{Recorded: true, Next: next}
	}

	topic, answers := r.session.Topic, r.session.Answers
	r.session = nil
	p := r.build(topic, answers)
	return Outcome{
		Recorded:  true,
		Completed: true,
		Topic:     topic,
		Answers:   answers,
		Plan:      &p,
	}
}
