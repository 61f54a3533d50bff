// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"mindcare-go/internal/assessment"
	"mindcare-go/internal/config"
	"mindcare-go/internal/knowledge"
	"mindcare-go/internal/model"
	"mindcare-go/internal/plan"
	"mindcare-go/internal/repository"
	"mindcare-go/internal/responder"
	"mindcare-go/pkg/log"
)

var (
	// ErrEmptyMessage 表示空白输入，调用方应静默忽略。
	ErrEmptyMessage = errors.New("empty message")
	// ErrUnknownQuickAction 表示未定义的快捷操作。
	ErrUnknownQuickAction = errors.New("unknown quick action")
)

// ChatService 定义了聊天操作的接口。
// 每个方法返回一个 Turn：本次追加到日志的全部消息按顺序列在其中，Delay 只供传输层控制节奏。
type ChatService interface {
	OpenConversation(ctx context.Context, user *model.User) (*model.Turn, error)
	SendMessage(ctx context.Context, user *model.User, text string) (*model.Turn, error)
	SubmitAnswer(ctx context.Context, user *model.User, answer string) (*model.Turn, error)
	QuickAction(ctx context.Context, user *model.User, action string) (*model.Turn, error)
	History(ctx context.Context, user *model.User) ([]model.ChatMessage, error)
	CurrentAssessment(ctx context.Context, user *model.User) (*model.AssessmentSession, error)
}

type chatService struct {
	conversationRepo repository.ConversationRepository
	assessmentRepo   repository.AssessmentRepository
	responder        *responder.Responder
	progress         ProgressRecorder
	build            plan.Builder
	pacing           config.ChatConfig
	now              func() time.Time

	locks sync.Map // conversationID -> *sync.Mutex
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(
	conversationRepo repository.ConversationRepository,
	assessmentRepo repository.AssessmentRepository,
	resp *responder.Responder,
	progress ProgressRecorder,
	pacing config.ChatConfig,
) ChatService {
	return &chatService{
		conversationRepo: conversationRepo,
		assessmentRepo:   assessmentRepo,
		responder:        resp,
		progress:         progress,
		build:            plan.Build,
		pacing:           pacing,
		now:              time.Now,
	}
}

// lock 串行化同一对话的回合，保证日志顺序与用户动作顺序一致。
func (s *chatService) lock(conversationID string) func() {
	v, _ := s.locks.LoadOrStore(conversationID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// OpenConversation 获取用户当前对话；日志为空时追加欢迎语。
func (s *chatService) OpenConversation(ctx context.Context, user *model.User) (*model.Turn, error) {
	convID, err := s.conversationRepo.GetOrCreateConversationID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create conversation ID: %w", err)
	}
	defer s.lock(convID)()

	n, err := s.conversationRepo.CountMessages(ctx, convID)
	if err != nil {
		return nil, err
	}
	t := s.newTurn()
	if n == 0 {
		t.say(0, knowledge.Welcome(user.Name()), nil)
	}
	return s.commit(ctx, convID, t)
}

// SendMessage 处理一条自由文本：评估进行中时作为答案提交，否则交给关键词应答器。
func (s *chatService) SendMessage(ctx context.Context, user *model.User, text string) (*model.Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	convID, err := s.conversationRepo.GetOrCreateConversationID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create conversation ID: %w", err)
	}
	defer s.lock(convID)()

	session, err := s.assessmentRepo.Get(ctx, convID)
	if err != nil {
		return nil, err
	}
	t := s.newTurn()
	t.echo(text)

	runner := assessment.NewRunner(session, s.build)
	if runner.Active() {
		s.answer(convID, user, runner, text, t)
		return s.commit(ctx, convID, t)
	}

	reply := s.responder.Respond(text)
	switch reply.Kind {
	case responder.KindMenu:
		t.say(s.pacing.ReplyDelay, reply.Text, nil)
		t.say(s.pacing.MenuDelay, knowledge.TopicMenu(), nil)
	case responder.KindTopic:
		t.say(s.pacing.ReplyDelay, reply.Text, nil)
		first := runner.Start(reply.Topic.ID)
		session := runner.Session()
		t.after(func(ctx context.Context) error {
			if err := s.assessmentRepo.Save(ctx, convID, session); err != nil {
				return err
			}
			log.Infow("assessment started", "conversation", convID, "topic", session.Topic)
			return nil
		})
		t.say(s.pacing.QuestionDelay, first.Prompt, first)
	default:
		t.say(s.pacing.ReplyDelay, reply.Text, nil)
	}
	return s.commit(ctx, convID, t)
}

// SubmitAnswer 处理问题控件的作答。没有进行中的评估时只追加回显的用户消息。
func (s *chatService) SubmitAnswer(ctx context.Context, user *model.User, answer string) (*model.Turn, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, ErrEmptyMessage
	}
	convID, err := s.conversationRepo.GetOrCreateConversationID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create conversation ID: %w", err)
	}
	defer s.lock(convID)()

	session, err := s.assessmentRepo.Get(ctx, convID)
	if err != nil {
		return nil, err
	}
	t := s.newTurn()
	t.echo(answer)
	s.answer(convID, user, assessment.NewRunner(session, s.build), answer, t)
	return s.commit(ctx, convID, t)
}

// answer 把答案交给评估状态机，并把结果写入回合。会话与进度在消息落盘后才保存。
func (s *chatService) answer(convID string, user *model.User, runner *assessment.Runner, text string, t *turnBuilder) {
	out := runner.Submit(text)
	switch {
	case !out.Recorded:
		return
	case !out.Completed:
		session := runner.Session()
		t.after(func(ctx context.Context) error {
			return s.assessmentRepo.Save(ctx, convID, session)
		})
		t.say(s.pacing.QuestionDelay, out.Next.Prompt, out.Next)
		return
	}

	t.say(s.pacing.AnalyzingDelay, knowledge.CompletionThanks, nil)
	t.say(s.pacing.PlanDelay, plan.Summary(*out.Plan), nil)
	t.notify(knowledge.PlanCreated)
	t.turn.Plan = out.Plan
	t.after(func(ctx context.Context) error {
		if err := s.assessmentRepo.Delete(ctx, convID); err != nil {
			return err
		}
		log.Infow("assessment completed", "conversation", convID, "topic", out.Topic, "answers", len(out.Answers))
		if s.progress != nil {
			if _, err := s.progress.Record(ctx, user, out.Topic, *out.Plan, out.Answers); err != nil {
				log.Errorf("[ChatService] 保存进度失败, UserID: %d, Error: %v", user.ID, err)
			}
		}
		return nil
	})
}

// QuickAction 追加快捷操作对应的固定消息，不回显用户消息。
func (s *chatService) QuickAction(ctx context.Context, user *model.User, action string) (*model.Turn, error) {
	text, ok := knowledge.QuickActionText(action)
	if !ok {
		return nil, ErrUnknownQuickAction
	}
	convID, err := s.conversationRepo.GetOrCreateConversationID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create conversation ID: %w", err)
	}
	defer s.lock(convID)()

	t := s.newTurn()
	t.say(0, text, nil)
	return s.commit(ctx, convID, t)
}

// History 返回当前对话最近的消息。
func (s *chatService) History(ctx context.Context, user *model.User) ([]model.ChatMessage, error) {
	convID, err := s.conversationRepo.GetOrCreateConversationID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.conversationRepo.GetConversationHistory(ctx, convID, s.pacing.HistoryLimit)
}

// CurrentAssessment 返回进行中的评估，没有时返回 nil。
func (s *chatService) CurrentAssessment(ctx context.Context, user *model.User) (*model.AssessmentSession, error) {
	convID, err := s.conversationRepo.GetOrCreateConversationID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.assessmentRepo.Get(ctx, convID)
}

// commit 一次性按顺序追加回合中的全部消息，成功后再执行会话与进度的写入。
// 追加失败时评估状态保持不变，用户重发即可回答同一题。
func (s *chatService) commit(ctx context.Context, convID string, t *turnBuilder) (*model.Turn, error) {
	if err := s.conversationRepo.AppendMessages(ctx, convID, t.turn.Messages()...); err != nil {
		return nil, err
	}
	for _, fn := range t.pending {
		if err := fn(ctx); err != nil {
			return nil, fmt.Errorf("failed to persist assessment: %w", err)
		}
	}
	return &t.turn, nil
}

func (s *chatService) newTurn() *turnBuilder {
	return &turnBuilder{now: s.now, turn: model.Turn{Steps: []model.TurnStep{}}}
}

// turnBuilder 收集一个回合的消息，时间戳取追加时的当前时间，Delay 只记录在步骤上。
type turnBuilder struct {
	now     func() time.Time
	turn    model.Turn
	pending []func(context.Context) error
}

func (b *turnBuilder) after(fn func(context.Context) error) {
	b.pending = append(b.pending, fn)
}

func (b *turnBuilder) echo(text string) {
	m := model.NewChatMessage(model.RoleUser, text, nil, b.now())
	b.turn.UserMessage = &m
}

func (b *turnBuilder) say(delay time.Duration, text string, q *model.QuestionDescriptor) {
	m := model.NewChatMessage(model.RoleAssistant, text, q, b.now())
	b.turn.Steps = append(b.turn.Steps, model.TurnStep{Kind: model.StepMessage, Delay: delay, Message: &m})
}

func (b *turnBuilder) notify(text string) {
	b.turn.Steps = append(b.turn.Steps, model.TurnStep{Kind: model.StepNotification, Notification: text})
}
