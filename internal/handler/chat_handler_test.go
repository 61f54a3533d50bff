package handler

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"mindcare-go/internal/config"
	"mindcare-go/internal/knowledge"
	"mindcare-go/internal/model"
	"mindcare-go/internal/repository/memory"
	"mindcare-go/internal/responder"
	"mindcare-go/internal/service"
	"mindcare-go/pkg/token"
)

type chanWriter chan serverFrame

func (w chanWriter) WriteJSON(v interface{}) error {
	w <- v.(serverFrame)
	return nil
}

func (w chanWriter) next(t *testing.T) serverFrame {
	t.Helper()
	select {
	case f := <-w:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return serverFrame{}
	}
}

func (w chanWriter) none(t *testing.T) {
	t.Helper()
	select {
	case f := <-w:
		t.Fatalf("unexpected frame %+v", f)
	case <-time.After(50 * time.Millisecond):
	}
}

func botStep(content string, delay time.Duration) model.TurnStep {
	m := model.NewChatMessage(model.RoleAssistant, content, nil, time.Now())
	return model.TurnStep{Kind: model.StepMessage, Delay: delay, Message: &m}
}

func userTurn(text string, steps ...model.TurnStep) *model.Turn {
	m := model.NewChatMessage(model.RoleUser, text, nil, time.Now())
	return &model.Turn{UserMessage: &m, Steps: steps}
}

func TestParseFrame(t *testing.T) {
	assert.Equal(t, clientFrame{Type: frameMessage, Text: "hello"}, parseFrame([]byte("hello")))
	assert.Equal(t, clientFrame{Type: frameAnswer, Text: "Often"}, parseFrame([]byte(`{"type":"answer","text":"Often"}`)))
	assert.Equal(t, clientFrame{Type: frameAction, Action: "breathing"}, parseFrame([]byte(` {"type":"action","action":"breathing"}`)))
	// 不合法或缺少 type 的 JSON 按普通文本处理
	assert.Equal(t, clientFrame{Type: frameMessage, Text: `{"text":"x"}`}, parseFrame([]byte(`{"text":"x"}`)))
	assert.Equal(t, clientFrame{Type: frameMessage, Text: "{oops"}, parseFrame([]byte("{oops")))
}

func TestServe_PlaysStepsAndFlushesOnInput(t *testing.T) {
	defer goleak.VerifyNone(t)

	out := make(chanWriter, 16)
	in := make(chan clientFrame)
	turns := map[string]*model.Turn{
		"slow": userTurn("slow", botStep("first", time.Hour), botStep("second", time.Hour)),
		"fast": userTurn("fast", botStep("third", 0)),
	}
	dispatch := func(_ context.Context, f clientFrame) (*model.Turn, error) {
		if f.Text == "" {
			return nil, service.ErrEmptyMessage
		}
		return turns[f.Text], nil
	}

	done := make(chan error, 1)
	go func() {
		done <- serve(context.Background(), in, out, dispatch, &model.Turn{Steps: []model.TurnStep{botStep("welcome", 0)}})
	}()

	assert.Equal(t, "welcome", out.next(t).Message.Content)
	assert.Equal(t, "completion", out.next(t).Type)

	in <- clientFrame{Type: frameMessage, Text: "slow"}
	assert.Equal(t, "slow", out.next(t).Message.Content)
	out.none(t)

	// 新输入先把上一回合剩余的步骤全部下发
	in <- clientFrame{Type: frameMessage, Text: "fast"}
	assert.Equal(t, "first", out.next(t).Message.Content)
	assert.Equal(t, "second", out.next(t).Message.Content)
	assert.Equal(t, "completion", out.next(t).Type)
	assert.Equal(t, "fast", out.next(t).Message.Content)
	assert.Equal(t, "third", out.next(t).Message.Content)
	assert.Equal(t, "completion", out.next(t).Type)

	in <- clientFrame{Type: frameMessage}
	out.none(t)

	close(in)
	require.NoError(t, <-done)
}

func TestServe_NotificationCarriesPlan(t *testing.T) {
	defer goleak.VerifyNone(t)

	out := make(chanWriter, 8)
	in := make(chan clientFrame)
	p := &model.GeneratedPlan{Issue: "Stress", PlanDuration: "6-week"}
	turn := userTurn("done", botStep("thanks", 0), model.TurnStep{Kind: model.StepNotification, Notification: knowledge.PlanCreated})
	turn.Plan = p

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, in, out, func(context.Context, clientFrame) (*model.Turn, error) { return turn, nil }, nil)
	}()

	in <- clientFrame{Type: frameAnswer, Text: "done"}
	assert.Equal(t, "done", out.next(t).Message.Content)
	assert.Equal(t, "thanks", out.next(t).Message.Content)
	n := out.next(t)
	assert.Equal(t, "notification", n.Type)
	assert.Equal(t, knowledge.PlanCreated, n.Notification)
	assert.Same(t, p, n.Plan)
	assert.Equal(t, "completion", out.next(t).Type)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestServe_UnknownActionKeepsConnection(t *testing.T) {
	defer goleak.VerifyNone(t)

	out := make(chanWriter, 8)
	in := make(chan clientFrame)
	done := make(chan error, 1)
	go func() {
		done <- serve(context.Background(), in, out, func(context.Context, clientFrame) (*model.Turn, error) {
			return nil, service.ErrUnknownQuickAction
		}, nil)
	}()

	in <- clientFrame{Type: frameAction, Action: "dance"}
	f := out.next(t)
	assert.Equal(t, "error", f.Type)
	assert.NotEmpty(t, f.Error)

	close(in)
	require.NoError(t, <-done)
}

func TestServe_ServiceErrorKeepsConnection(t *testing.T) {
	defer goleak.VerifyNone(t)

	out := make(chanWriter, 8)
	in := make(chan clientFrame)
	done := make(chan error, 1)
	calls := 0
	go func() {
		done <- serve(context.Background(), in, out, func(context.Context, clientFrame) (*model.Turn, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("redis unavailable")
			}
			return userTurn("again"), nil
		}, nil)
	}()

	in <- clientFrame{Type: frameMessage, Text: "hello"}
	f := out.next(t)
	assert.Equal(t, "error", f.Type)
	assert.NotContains(t, f.Error, "redis")

	in <- clientFrame{Type: frameMessage, Text: "again"}
	f = out.next(t)
	assert.Equal(t, "message", f.Type)
	require.NotNil(t, f.Message)
	assert.Equal(t, "again", f.Message.Content)

	close(in)
	require.NoError(t, <-done)
}

func newWebSocketServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwt := token.NewJWTManager("test-secret", 1, 1)
	users := service.NewUserService(memory.NewUserStore(), jwt)
	_, err := users.Register("alice", "secret", "Alice")
	require.NoError(t, err)
	access, _, err := users.Login("alice", "secret")
	require.NoError(t, err)

	chat := service.NewChatService(
		memory.NewConversationStore(),
		memory.NewAssessmentStore(),
		responder.New(responder.NewPicker(1)),
		nil,
		config.ChatConfig{HistoryLimit: 200},
	)
	r := gin.New()
	r.GET("/chat/:token", NewChatHandler(chat, users, jwt).Handle)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, access
}

func readFrame(t *testing.T, conn *websocket.Conn) serverFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f serverFrame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestChatHandler_WebSocket(t *testing.T) {
	srv, access := newWebSocketServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat/" + access

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	welcome := readFrame(t, conn)
	require.Equal(t, "message", welcome.Type)
	assert.Equal(t, knowledge.Welcome("Alice"), welcome.Message.Content)
	assert.Equal(t, "completion", readFrame(t, conn).Type)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("1")))
	echo := readFrame(t, conn)
	assert.Equal(t, model.RoleUser, echo.Message.Role)
	assert.Equal(t, "1", echo.Message.Content)
	confirm := readFrame(t, conn)
	assert.Equal(t, model.RoleAssistant, confirm.Message.Role)
	question := readFrame(t, conn)
	require.NotNil(t, question.Message.Question)
	assert.Equal(t, "completion", readFrame(t, conn).Type)

	require.NoError(t, conn.WriteJSON(clientFrame{Type: frameAction, Action: "no-such-action"}))
	assert.Equal(t, "error", readFrame(t, conn).Type)
}

func TestChatHandler_RejectsBadToken(t *testing.T) {
	srv, _ := newWebSocketServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat/not-a-token"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}
