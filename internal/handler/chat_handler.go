package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"mindcare-go/internal/middleware"
	"mindcare-go/internal/model"
	"mindcare-go/internal/service"
	"mindcare-go/pkg/log"
	"mindcare-go/pkg/token"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// 客户端帧类型。纯文本帧等同于 message。
const (
	frameMessage = "message"
	frameAnswer  = "answer"
	frameAction  = "action"
)

// clientFrame 是客户端发来的一帧。
type clientFrame struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Action string `json:"action"`
}

func parseFrame(data []byte) clientFrame {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var f clientFrame
		if err := json.Unmarshal([]byte(trimmed), &f); err == nil && f.Type != "" {
			return f
		}
	}
	return clientFrame{Type: frameMessage, Text: string(data)}
}

// serverFrame 是下发给客户端的一帧。
type serverFrame struct {
	Type         string               `json:"type"` // message | notification | completion | error
	Message      *model.ChatMessage   `json:"message,omitempty"`
	Notification string               `json:"notification,omitempty"`
	Plan         *model.GeneratedPlan `json:"plan,omitempty"`
	Status       string               `json:"status,omitempty"`
	Error        string               `json:"error,omitempty"`
	Timestamp    int64                `json:"timestamp"`
}

type frameWriter interface {
	WriteJSON(v interface{}) error
}

type dispatchFunc func(ctx context.Context, f clientFrame) (*model.Turn, error)

// ChatHandler 负责处理 WebSocket 聊天连接，并按步骤延迟播放每个回合。
type ChatHandler struct {
	chatService service.ChatService
	users       middleware.UserLookup
	jwtManager  *token.JWTManager
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService, users middleware.UserLookup, jwtManager *token.JWTManager) *ChatHandler {
	return &ChatHandler{chatService: chatService, users: users, jwtManager: jwtManager}
}

// Handle 处理一个传入的 WebSocket 连接。token 通过路径传入。
func (h *ChatHandler) Handle(c *gin.Context) {
	claims, err := h.jwtManager.VerifyToken(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效的 token", "data": nil})
		return
	}
	user, err := h.users.GetProfile(claims.Username)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "用户不存在", "data": nil})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	log.Infof("WebSocket 连接已建立，用户: %s", user.Username)

	ctx, cancel := context.WithCancel(c.Request.Context())
	in := make(chan clientFrame)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(in)
		readFrames(ctx, conn, in)
	}()

	first, err := h.chatService.OpenConversation(ctx, user)
	if err != nil {
		log.Errorf("打开对话失败: %v", err)
	} else {
		err = serve(ctx, in, conn, h.dispatcher(user), first)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Warnf("WebSocket 会话结束: %v", err)
		}
	}

	cancel()
	_ = conn.Close()
	wg.Wait()
	log.Infof("WebSocket 连接已关闭，用户: %s", user.Username)
}

func (h *ChatHandler) dispatcher(user *model.User) dispatchFunc {
	return func(ctx context.Context, f clientFrame) (*model.Turn, error) {
		switch f.Type {
		case frameAnswer:
			return h.chatService.SubmitAnswer(ctx, user, f.Text)
		case frameAction:
			return h.chatService.QuickAction(ctx, user, f.Action)
		default:
			return h.chatService.SendMessage(ctx, user, f.Text)
		}
	}
}

// readFrames 持续读取客户端帧直到连接关闭或 ctx 取消。
func readFrames(ctx context.Context, conn *websocket.Conn, in chan<- clientFrame) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnf("从 WebSocket 读取消息失败: %v", err)
			}
			return
		}
		select {
		case in <- parseFrame(data):
		case <-ctx.Done():
			return
		}
	}
}

// serve 是单个连接的写循环：处理输入、播放回合。
// 新输入到来时，上一回合尚未下发的步骤立即全部下发，日志顺序因此始终与下发顺序一致。
func serve(ctx context.Context, in <-chan clientFrame, out frameWriter, dispatch dispatchFunc, first *model.Turn) error {
	p := &turnPlayer{out: out}
	defer p.stop()
	if first != nil {
		if err := p.start(first); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-in:
			if !ok {
				return nil
			}
			if err := p.flush(); err != nil {
				return err
			}
			turn, err := dispatch(ctx, f)
			switch {
			case errors.Is(err, service.ErrEmptyMessage):
				continue
			case errors.Is(err, service.ErrUnknownQuickAction):
				if werr := p.write(serverFrame{Type: "error", Error: err.Error()}); werr != nil {
					return werr
				}
				continue
			case err != nil:
				log.Errorf("[ChatHandler] 处理消息失败: %v", err)
				if werr := p.write(serverFrame{Type: "error", Error: "对话服务暂时不可用，请稍后重试"}); werr != nil {
					return werr
				}
				continue
			}
			if err := p.start(turn); err != nil {
				return err
			}
		case <-p.ready():
			if err := p.step(); err != nil {
				return err
			}
		}
	}
}

// turnPlayer 按延迟逐步下发一个回合。
type turnPlayer struct {
	out     frameWriter
	pending []model.TurnStep
	plan    *model.GeneratedPlan
	active  bool
	timer   *time.Timer
}

func (p *turnPlayer) write(f serverFrame) error {
	f.Timestamp = time.Now().UnixMilli()
	return p.out.WriteJSON(f)
}

func (p *turnPlayer) start(turn *model.Turn) error {
	if turn.UserMessage != nil {
		if err := p.write(serverFrame{Type: "message", Message: turn.UserMessage}); err != nil {
			return err
		}
	}
	p.pending = turn.Steps
	p.plan = turn.Plan
	p.active = true
	return p.arm()
}

// arm 为下一步设定计时器；没有剩余步骤时下发 completion。
func (p *turnPlayer) arm() error {
	p.stop()
	if len(p.pending) > 0 {
		p.timer = time.NewTimer(p.pending[0].Delay)
		return nil
	}
	if !p.active {
		return nil
	}
	p.active = false
	return p.write(serverFrame{Type: "completion", Status: "finished"})
}

func (p *turnPlayer) ready() <-chan time.Time {
	if p.timer == nil {
		return nil
	}
	return p.timer.C
}

func (p *turnPlayer) step() error {
	p.timer = nil
	s := p.pending[0]
	p.pending = p.pending[1:]
	if err := p.emit(s); err != nil {
		return err
	}
	return p.arm()
}

func (p *turnPlayer) emit(s model.TurnStep) error {
	if s.Kind == model.StepNotification {
		return p.write(serverFrame{Type: "notification", Notification: s.Notification, Plan: p.plan})
	}
	return p.write(serverFrame{Type: "message", Message: s.Message})
}

// flush 取消计时并立即下发剩余步骤。
func (p *turnPlayer) flush() error {
	p.stop()
	for len(p.pending) > 0 {
		s := p.pending[0]
		p.pending = p.pending[1:]
		if err := p.emit(s); err != nil {
			return err
		}
	}
	return p.arm()
}

func (p *turnPlayer) stop() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}
