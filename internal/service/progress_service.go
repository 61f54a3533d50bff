package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mindcare-go/internal/model"
	"mindcare-go/internal/pipeline"
	"mindcare-go/internal/repository"
	"mindcare-go/pkg/log"
	"mindcare-go/pkg/tasks"
)

// ErrNoProgress 表示用户还没有完成过任何评估。
var ErrNoProgress = errors.New("no saved progress")

// ProgressRecorder 在评估完成时保存进度记录。
type ProgressRecorder interface {
	Record(ctx context.Context, user *model.User, topic string, plan model.GeneratedPlan, answers map[string]string) (*model.ProgressRecord, error)
}

// ProgressService 定义了进度记录的读写操作。
type ProgressService interface {
	ProgressRecorder
	Get(ctx context.Context, userID uint) (*model.ProgressRecord, error)
	ExportURL(ctx context.Context, userID uint) (string, error)
}

// TaskPublisher 发布计划归档任务，生产环境由 kafka.ProducePlanArchiveTask 实现。
type TaskPublisher func(ctx context.Context, task tasks.PlanArchiveTask) error

// URLSigner 为归档对象生成下载链接。
type URLSigner interface {
	PresignedGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

type progressService struct {
	repo    repository.ProgressRepository
	publish TaskPublisher
	signer  URLSigner
	expiry  time.Duration
	now     func() time.Time
}

// NewProgressService 创建一个新的 ProgressService。publish 与 signer 可为 nil（离线模式）。
func NewProgressService(repo repository.ProgressRepository, publish TaskPublisher, signer URLSigner, expiry time.Duration) ProgressService {
	return &progressService{repo: repo, publish: publish, signer: signer, expiry: expiry, now: time.Now}
}

// Record 整体覆盖用户的进度记录（后写者胜），然后发布归档任务。
// 归档任务发布失败只记录日志，不影响本次保存。
func (s *progressService) Record(ctx context.Context, user *model.User, topic string, plan model.GeneratedPlan, answers map[string]string) (*model.ProgressRecord, error) {
	rec := model.ProgressRecord{
		UserID:             user.ID,
		Topic:              topic,
		CurrentPlan:        plan,
		StartDate:          s.now().UTC(),
		CompletedTherapies: []string{},
		AssessmentAnswers:  answers,
	}
	row, err := model.NewUserProgress(rec)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}

	if s.publish != nil {
		task := tasks.PlanArchiveTask{
			UserID:      user.ID,
			Username:    user.Username,
			Topic:       topic,
			Plan:        plan,
			Answers:     answers,
			GeneratedAt: rec.StartDate,
		}
		if err := s.publish(ctx, task); err != nil {
			log.Errorf("[ProgressService] 发布计划归档任务失败, UserID: %d, Error: %v", user.ID, err)
		}
	}
	return &rec, nil
}

// Get 读取用户的进度记录。
func (s *progressService) Get(ctx context.Context, userID uint) (*model.ProgressRecord, error) {
	row, err := s.repo.FindByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoProgress
	}
	if err != nil {
		return nil, err
	}
	return row.Record()
}

// ExportURL 返回用户最新计划文档的限时下载链接。
func (s *progressService) ExportURL(ctx context.Context, userID uint) (string, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return "", err
	}
	if s.signer == nil {
		return "", errors.New("object storage not configured")
	}
	return s.signer.PresignedGetURL(ctx, pipeline.CurrentPlanObject(userID), s.expiry)
}
