// Package memory 提供了 repository 接口的进程内实现，供命令行离线模式和测试使用。
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"mindcare-go/internal/model"
	"mindcare-go/internal/repository"
)

// ConversationStore 是 repository.ConversationRepository 的内存实现。
type ConversationStore struct {
	mu       sync.RWMutex
	current  map[uint]string
	messages map[string][]model.ChatMessage
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		current:  make(map[uint]string),
		messages: make(map[string][]model.ChatMessage),
	}
}

var _ repository.ConversationRepository = (*ConversationStore)(nil)

func (s *ConversationStore) GetOrCreateConversationID(_ context.Context, userID uint) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.current[userID]; ok {
		return id, nil
	}
	id := model.NewMessageID()
	s.current[userID] = id
	return id, nil
}

func (s *ConversationStore) AppendMessages(_ context.Context, conversationID string, messages ...model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[conversationID] = append(s.messages[conversationID], messages...)
	return nil
}

func (s *ConversationStore) GetConversationHistory(_ context.Context, conversationID string, limit int64) ([]model.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.messages[conversationID]
	if limit > 0 && int64(len(all)) > limit {
		all = all[int64(len(all))-limit:]
	}
	out := make([]model.ChatMessage, len(all))
	copy(out, all)
	return out, nil
}

func (s *ConversationStore) CountMessages(_ context.Context, conversationID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.messages[conversationID])), nil
}

func (s *ConversationStore) GetAllUserConversationMappings(_ context.Context) (map[uint]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uint]string, len(s.current))
	for k, v := range s.current {
		out[k] = v
	}
	return out, nil
}

// AssessmentStore 是 repository.AssessmentRepository 的内存实现。
// 会话以 JSON 形式保存，读出的是独立副本。
type AssessmentStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
}

func NewAssessmentStore() *AssessmentStore {
	return &AssessmentStore{sessions: make(map[string][]byte)}
}

var _ repository.AssessmentRepository = (*AssessmentStore)(nil)

func (s *AssessmentStore) Get(_ context.Context, conversationID string) (*model.AssessmentSession, error) {
	s.mu.Lock()
	data, ok := s.sessions[conversationID]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var sess model.AssessmentSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	if !sess.Active {
		return nil, nil
	}
	return &sess, nil
}

func (s *AssessmentStore) Save(_ context.Context, conversationID string, session *model.AssessmentSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[conversationID] = data
	s.mu.Unlock()
	return nil
}

func (s *AssessmentStore) Delete(_ context.Context, conversationID string) error {
	s.mu.Lock()
	delete(s.sessions, conversationID)
	s.mu.Unlock()
	return nil
}

// ProgressStore 是 repository.ProgressRepository 的内存实现。
type ProgressStore struct {
	mu     sync.RWMutex
	nextID uint
	rows   map[uint]model.UserProgress
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{rows: make(map[uint]model.UserProgress)}
}

var _ repository.ProgressRepository = (*ProgressStore)(nil)

func (s *ProgressStore) Save(_ context.Context, progress *model.UserProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.rows[progress.UserID]; ok {
		progress.ID = old.ID
	} else {
		s.nextID++
		progress.ID = s.nextID
	}
	progress.UpdatedAt = time.Now()
	s.rows[progress.UserID] = *progress
	return nil
}

func (s *ProgressStore) FindByUserID(_ context.Context, userID uint) (*model.UserProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.rows[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

// UserStore 是 repository.UserRepository 的内存实现。
type UserStore struct {
	mu     sync.RWMutex
	nextID uint
	users  map[uint]model.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uint]model.User)}
}

var _ repository.UserRepository = (*UserStore)(nil)

func (s *UserStore) Create(user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return fmt.Errorf("duplicate username %q", user.Username)
		}
	}
	s.nextID++
	user.ID = s.nextID
	if user.Role == "" {
		user.Role = "USER"
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) FindByUsername(username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *UserStore) FindByID(userID uint) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) Update(user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) FindWithPagination(offset, limit int) ([]model.User, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return []model.User{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}
