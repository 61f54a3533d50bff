package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"mindcare-go/internal/model"
	"mindcare-go/internal/repository"
)

// UserListResponse 定义了用户列表 API 的响应结构。
type UserListResponse struct {
	Content       []UserDetailResponse `json:"content"`
	TotalElements int64                `json:"totalElements"`
	TotalPages    int                  `json:"totalPages"`
	Size          int                  `json:"size"`
	Number        int                  `json:"number"`
}

// UserDetailResponse 定义了用户列表项的详细结构。
type UserDetailResponse struct {
	UserID      uint            `json:"userId"`
	Username    string          `json:"username"`
	DisplayName string          `json:"displayName"`
	Role        string          `json:"role"`
	Topic       string          `json:"topic,omitempty"` // 最近一次评估的话题
	CreatedAt   model.LocalTime `json:"createdAt"`
}

// ConversationEntry 是管理端查看的一条对话记录。
type ConversationEntry struct {
	Username  string          `json:"username"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Question  bool            `json:"question"`
	Timestamp model.LocalTime `json:"timestamp"`
}

// AdminService 接口定义了所有管理员相关的业务操作。
type AdminService interface {
	ListUsers(ctx context.Context, page, size int) (*UserListResponse, error)
	GetAllConversations(ctx context.Context, userID *uint, startTime, endTime *time.Time) ([]ConversationEntry, error)
}

type adminService struct {
	userRepo         repository.UserRepository
	progressRepo     repository.ProgressRepository
	conversationRepo repository.ConversationRepository
}

// NewAdminService 创建一个新的 AdminService 实例。
func NewAdminService(userRepo repository.UserRepository, progressRepo repository.ProgressRepository, conversationRepo repository.ConversationRepository) AdminService {
	return &adminService{
		userRepo:         userRepo,
		progressRepo:     progressRepo,
		conversationRepo: conversationRepo,
	}
}

// ListUsers 分页列出用户，并附上各自最近一次评估的话题。
func (s *adminService) ListUsers(ctx context.Context, page, size int) (*UserListResponse, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	users, total, err := s.userRepo.FindWithPagination((page-1)*size, size)
	if err != nil {
		return nil, err
	}

	content := make([]UserDetailResponse, 0, len(users))
	for _, u := range users {
		item := UserDetailResponse{
			UserID:      u.ID,
			Username:    u.Username,
			DisplayName: u.DisplayName,
			Role:        u.Role,
			CreatedAt:   model.LocalTime(u.CreatedAt),
		}
		if p, err := s.progressRepo.FindByUserID(ctx, u.ID); err == nil {
			item.Topic = p.Topic
		}
		content = append(content, item)
	}

	totalPages := 0
	if total > 0 {
		totalPages = (int(total) + size - 1) / size
	}
	return &UserListResponse{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Size:          size,
		Number:        page,
	}, nil
}

// GetAllConversations 返回全部或指定用户的对话记录，可按时间过滤。
func (s *adminService) GetAllConversations(ctx context.Context, userID *uint, startTime, endTime *time.Time) ([]ConversationEntry, error) {
	if userID != nil {
		user, err := s.userRepo.FindByID(*userID)
		if err != nil {
			return nil, errors.New("user not found")
		}
		return s.conversationsForUser(ctx, user, startTime, endTime)
	}

	mappings, err := s.conversationRepo.GetAllUserConversationMappings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user conversation mappings from redis: %w", err)
	}
	uids := make([]uint, 0, len(mappings))
	for uid := range mappings {
		uids = append(uids, uid)
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })

	all := []ConversationEntry{}
	for _, uid := range uids {
		user, err := s.userRepo.FindByID(uid)
		if err != nil {
			continue
		}
		entries, err := s.conversationsForUser(ctx, user, startTime, endTime)
		if err != nil {
			continue
		}
		all = append(all, entries...)
	}
	return all, nil
}

func (s *adminService) conversationsForUser(ctx context.Context, user *model.User, startTime, endTime *time.Time) ([]ConversationEntry, error) {
	conversationID, err := s.conversationRepo.GetOrCreateConversationID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation id: %w", err)
	}
	history, err := s.conversationRepo.GetConversationHistory(ctx, conversationID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}

	entries := []ConversationEntry{}
	for _, msg := range history {
		if startTime != nil && msg.Timestamp.Before(*startTime) {
			continue
		}
		if endTime != nil && msg.Timestamp.After(*endTime) {
			continue
		}
		entries = append(entries, ConversationEntry{
			Username:  user.Username,
			Role:      msg.Role,
			Content:   msg.Content,
			Question:  msg.IsQuestion(),
			Timestamp: model.LocalTime(msg.Timestamp),
		})
	}
	return entries, nil
}
