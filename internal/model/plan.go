package model

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// GeneratedPlan 是评估完成后生成的治疗计划，内容完全由话题决定。
type GeneratedPlan struct {
	Issue            string     `json:"issue"`
	Severity         string     `json:"severity"`
	PlanDuration     string     `json:"planDuration"`
	Recommendations  []Activity `json:"recommendations"`
	DailyGoals       []string   `json:"dailyGoals"`
	WeeklyGoals      []string   `json:"weeklyGoals"`
	ExpectedOutcomes []string   `json:"expectedOutcomes"`
}

// ProgressRecord 是每个用户唯一的进度记录，每次生成计划时整体覆盖。
type ProgressRecord struct {
	UserID             uint              `json:"userId"`
	Topic              string            `json:"topic"`
	CurrentPlan        GeneratedPlan     `json:"currentPlan"`
	StartDate          time.Time         `json:"startDate"`
	CompletedTherapies []string          `json:"completedTherapies"`
	AssessmentAnswers  map[string]string `json:"assessmentAnswers"`
}

// UserProgress 对应 user_progress 表，user_id 唯一。
type UserProgress struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	UserID             uint           `gorm:"uniqueIndex;not null" json:"userId"`
	Topic              string         `gorm:"type:varchar(64);not null" json:"topic"`
	CurrentPlan        datatypes.JSON `gorm:"type:json;not null" json:"currentPlan"`
	StartDate          time.Time      `gorm:"not null" json:"startDate"`
	CompletedTherapies datatypes.JSON `gorm:"type:json" json:"completedTherapies"`
	AssessmentAnswers  datatypes.JSON `gorm:"type:json" json:"assessmentAnswers"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// NewUserProgress 将进度记录编码为数据库行。
func NewUserProgress(rec ProgressRecord) (*UserProgress, error) {
	plan, err := json.Marshal(rec.CurrentPlan)
	if err != nil {
		return nil, fmt.Errorf("marshal plan: %w", err)
	}
	completed := rec.CompletedTherapies
	if completed == nil {
		completed = []string{}
	}
	therapies, err := json.Marshal(completed)
	if err != nil {
		return nil, fmt.Errorf("marshal completed therapies: %w", err)
	}
	answers, err := json.Marshal(rec.AssessmentAnswers)
	if err != nil {
		return nil, fmt.Errorf("marshal answers: %w", err)
	}
	return &UserProgress{
		UserID:             rec.UserID,
		Topic:              rec.Topic,
		CurrentPlan:        datatypes.JSON(plan),
		StartDate:          rec.StartDate,
		CompletedTherapies: datatypes.JSON(therapies),
		AssessmentAnswers:  datatypes.JSON(answers),
	}, nil
}

// Record 将数据库行解码为进度记录。
func (p *UserProgress) Record() (*ProgressRecord, error) {
	rec := &ProgressRecord{
		UserID:             p.UserID,
		Topic:              p.Topic,
		StartDate:          p.StartDate,
		CompletedTherapies: []string{},
		AssessmentAnswers:  map[string]string{},
	}
	if err := json.Unmarshal(p.CurrentPlan, &rec.CurrentPlan); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w", err)
	}
	if len(p.CompletedTherapies) > 0 {
		if err := json.Unmarshal(p.CompletedTherapies, &rec.CompletedTherapies); err != nil {
			return nil, fmt.Errorf("unmarshal completed therapies: %w", err)
		}
	}
	if len(p.AssessmentAnswers) > 0 {
		if err := json.Unmarshal(p.AssessmentAnswers, &rec.AssessmentAnswers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
	}
	return rec, nil
}
