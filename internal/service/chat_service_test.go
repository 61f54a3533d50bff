package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mindcare-go/internal/config"
	"mindcare-go/internal/knowledge"
	"mindcare-go/internal/model"
	"mindcare-go/internal/repository/memory"
	"mindcare-go/internal/responder"
)

type chatFixture struct {
	svc      ChatService
	convs    *memory.ConversationStore
	sessions *memory.AssessmentStore
	progress ProgressService
	user     *model.User
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	convs := memory.NewConversationStore()
	sessions := memory.NewAssessmentStore()
	progress := NewProgressService(memory.NewProgressStore(), nil, nil, time.Hour)
	svc := NewChatService(convs, sessions, responder.New(responder.NewPicker(7)), progress, config.DefaultChatConfig())
	return &chatFixture{
		svc:      svc,
		convs:    convs,
		sessions: sessions,
		progress: progress,
		user:     &model.User{ID: 1, Username: "alice", DisplayName: "Alice"},
	}
}

func (f *chatFixture) history(t *testing.T) []model.ChatMessage {
	t.Helper()
	h, err := f.svc.History(context.Background(), f.user)
	require.NoError(t, err)
	return h
}

func (f *chatFixture) send(t *testing.T, text string) *model.Turn {
	t.Helper()
	turn, err := f.svc.SendMessage(context.Background(), f.user, text)
	require.NoError(t, err)
	return turn
}

func TestChatService_OpenConversationWelcomesOnce(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	turn, err := f.svc.OpenConversation(ctx, f.user)
	require.NoError(t, err)
	require.Len(t, turn.Steps, 1)
	assert.Equal(t, knowledge.Welcome("Alice"), turn.Steps[0].Message.Content)

	turn, err = f.svc.OpenConversation(ctx, f.user)
	require.NoError(t, err)
	assert.Empty(t, turn.Steps)
	assert.Len(t, f.history(t), 1)
}

func TestChatService_KeywordReply(t *testing.T) {
	f := newChatFixture(t)

	turn := f.send(t, "I feel anxious")
	require.NotNil(t, turn.UserMessage)
	assert.Equal(t, "I feel anxious", turn.UserMessage.Content)
	require.Len(t, turn.Steps, 1)
	assert.Contains(t, knowledge.Pool(knowledge.CategoryAnxiety), turn.Steps[0].Message.Content)
	assert.Equal(t, time.Second, turn.Steps[0].Delay)

	h := f.history(t)
	require.Len(t, h, 2)
	assert.Equal(t, model.RoleUser, h[0].Role)
	assert.Equal(t, model.RoleAssistant, h[1].Role)

	session, err := f.svc.CurrentAssessment(context.Background(), f.user)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestChatService_TriggerShowsMenu(t *testing.T) {
	f := newChatFixture(t)

	turn := f.send(t, "Can you help me?")
	require.Len(t, turn.Steps, 2)
	assert.Equal(t, knowledge.AssessmentInvite, turn.Steps[0].Message.Content)
	assert.Equal(t, knowledge.TopicMenu(), turn.Steps[1].Message.Content)
	assert.Equal(t, 500*time.Millisecond, turn.Steps[1].Delay)
}

func TestChatService_TopicNumberStartsAssessment(t *testing.T) {
	f := newChatFixture(t)

	turn := f.send(t, "1")
	require.Len(t, turn.Steps, 2)
	assert.Equal(t, knowledge.TopicSelected("Anxiety Disorders"), turn.Steps[0].Message.Content)

	q := turn.Steps[1].Message
	require.True(t, q.IsQuestion())
	assert.Equal(t, 1, q.Question.Number)
	assert.Equal(t, 10, q.Question.Total)
	assert.Equal(t, "anxiety", q.Question.Topic)
	assert.Equal(t, knowledge.Questions("anxiety")[0].Prompt, q.Content)

	session, err := f.svc.CurrentAssessment(context.Background(), f.user)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, 0, session.Cursor)
}

func TestChatService_CompleteStressAssessment(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	f.send(t, "3")
	var last *model.Turn
	for i := 0; i < 10; i++ {
		last = f.send(t, fmt.Sprintf("answer %d", i))
		if i < 9 {
			require.Len(t, last.Steps, 1)
			assert.Equal(t, i+2, last.Steps[0].Message.Question.Number)
		}
	}

	require.NotNil(t, last.Plan)
	assert.Equal(t, "6-week", last.Plan.PlanDuration)
	require.Len(t, last.Plan.Recommendations, 4)
	require.Len(t, last.Steps, 3)
	assert.Equal(t, knowledge.CompletionThanks, last.Steps[0].Message.Content)
	assert.Equal(t, 1500*time.Millisecond, last.Steps[0].Delay)
	assert.Contains(t, last.Steps[1].Message.Content, "6-week therapy plan for Stress Management")
	assert.Equal(t, model.StepNotification, last.Steps[2].Kind)
	assert.Equal(t, knowledge.PlanCreated, last.Steps[2].Notification)

	session, err := f.svc.CurrentAssessment(ctx, f.user)
	require.NoError(t, err)
	assert.Nil(t, session)

	rec, err := f.progress.Get(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "stress", rec.Topic)
	assert.Len(t, rec.AssessmentAnswers, 10)
	assert.Empty(t, rec.CompletedTherapies)

	// 完成后自由文本回到关键词应答
	turn := f.send(t, "hello")
	assert.Contains(t, knowledge.Pool(knowledge.CategoryGreeting), turn.Steps[0].Message.Content)
}

func TestChatService_SubmitAnswerWhileInactive(t *testing.T) {
	f := newChatFixture(t)

	before := len(f.history(t))
	turn, err := f.svc.SubmitAnswer(context.Background(), f.user, "Daily")
	require.NoError(t, err)
	assert.Empty(t, turn.Steps)
	assert.Len(t, f.history(t), before+1)

	session, err := f.svc.CurrentAssessment(context.Background(), f.user)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestChatService_SubmitAnswerAdvances(t *testing.T) {
	f := newChatFixture(t)
	f.send(t, "depression")

	turn, err := f.svc.SubmitAnswer(context.Background(), f.user, "7")
	require.NoError(t, err)
	require.Len(t, turn.Steps, 1)
	assert.Equal(t, 2, turn.Steps[0].Message.Question.Number)

	session, err := f.svc.CurrentAssessment(context.Background(), f.user)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "7", session.Answers[knowledge.Questions("depression")[0].ID])
}

func TestChatService_BlankInputIgnored(t *testing.T) {
	f := newChatFixture(t)

	_, err := f.svc.SendMessage(context.Background(), f.user, "   \n")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	_, err = f.svc.SubmitAnswer(context.Background(), f.user, "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, f.history(t))
}

func TestChatService_QuickActions(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	turn, err := f.svc.QuickAction(ctx, f.user, knowledge.ActionBreathing)
	require.NoError(t, err)
	assert.Nil(t, turn.UserMessage)
	require.Len(t, turn.Steps, 1)
	assert.Zero(t, turn.Steps[0].Delay)

	turn, err = f.svc.QuickAction(ctx, f.user, knowledge.ActionMenu)
	require.NoError(t, err)
	assert.Equal(t, knowledge.TopicMenu(), turn.Steps[0].Message.Content)

	_, err = f.svc.QuickAction(ctx, f.user, "dance")
	assert.ErrorIs(t, err, ErrUnknownQuickAction)
	assert.Len(t, f.history(t), 2)
}

func TestChatService_TimestampsFollowLogOrder(t *testing.T) {
	f := newChatFixture(t)
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	calls := 0
	f.svc.(*chatService).now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Millisecond)
	}

	turn := f.send(t, "2")
	assert.Equal(t, base.Add(time.Millisecond), turn.UserMessage.Timestamp)
	assert.Equal(t, base.Add(2*time.Millisecond), turn.Steps[0].Message.Timestamp)
	assert.Equal(t, base.Add(3*time.Millisecond), turn.Steps[1].Message.Timestamp)
	assert.Equal(t, time.Second, turn.Steps[0].Delay)
	assert.Equal(t, time.Second, turn.Steps[1].Delay)

	f.send(t, "x")
	_, err := f.svc.QuickAction(context.Background(), f.user, knowledge.ActionBreathing)
	require.NoError(t, err)

	h := f.history(t)
	for i := 1; i < len(h); i++ {
		assert.False(t, h[i].Timestamp.Before(h[i-1].Timestamp), "message %d stamped before %d", i, i-1)
	}
}

type flakyConversations struct {
	*memory.ConversationStore
	fail bool
}

func (f *flakyConversations) AppendMessages(ctx context.Context, conversationID string, messages ...model.ChatMessage) error {
	if f.fail {
		return errors.New("redis unavailable")
	}
	return f.ConversationStore.AppendMessages(ctx, conversationID, messages...)
}

func TestChatService_FailedAppendKeepsSession(t *testing.T) {
	convs := &flakyConversations{ConversationStore: memory.NewConversationStore()}
	progress := NewProgressService(memory.NewProgressStore(), nil, nil, time.Hour)
	svc := NewChatService(convs, memory.NewAssessmentStore(), responder.New(responder.NewPicker(7)), progress, config.DefaultChatConfig())
	user := &model.User{ID: 1, Username: "alice"}
	ctx := context.Background()

	// 选择话题时追加失败，不应留下评估会话
	convs.fail = true
	_, err := svc.SendMessage(ctx, user, "3")
	require.Error(t, err)
	session, err := svc.CurrentAssessment(ctx, user)
	require.NoError(t, err)
	assert.Nil(t, session)

	convs.fail = false
	_, err = svc.SendMessage(ctx, user, "3")
	require.NoError(t, err)

	convs.fail = true
	_, err = svc.SendMessage(ctx, user, "answer one")
	require.Error(t, err)
	session, err = svc.CurrentAssessment(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, 0, session.Cursor)
	assert.Empty(t, session.Answers)
	h, err := svc.History(ctx, user)
	require.NoError(t, err)
	assert.Len(t, h, 3)

	// 重发后回答的仍是第一题
	convs.fail = false
	turn, err := svc.SendMessage(ctx, user, "answer one")
	require.NoError(t, err)
	require.Len(t, turn.Steps, 1)
	assert.Equal(t, 2, turn.Steps[0].Message.Question.Number)

	// 最后一题追加失败时不应记录进度
	for i := 2; i <= 9; i++ {
		_, err = svc.SendMessage(ctx, user, fmt.Sprintf("answer %d", i))
		require.NoError(t, err)
	}
	convs.fail = true
	_, err = svc.SendMessage(ctx, user, "last")
	require.Error(t, err)
	_, err = progress.Get(ctx, user.ID)
	assert.Error(t, err)
	session, err = svc.CurrentAssessment(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, 9, session.Cursor)
}

func TestChatService_ConcurrentTurnsDoNotInterleave(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.SendMessage(ctx, f.user, fmt.Sprintf("msg %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	h := f.history(t)
	require.Len(t, h, 40)
	for i := 0; i < len(h); i += 2 {
		assert.Equal(t, model.RoleUser, h[i].Role)
		assert.Equal(t, model.RoleAssistant, h[i+1].Role)
	}
}
