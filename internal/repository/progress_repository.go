package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"mindcare-go/internal/model"
)

// ProgressRepository 保存每个用户唯一的进度记录，写入即整体覆盖（后写者胜）。
type ProgressRepository interface {
	Save(ctx context.Context, progress *model.UserProgress) error
	FindByUserID(ctx context.Context, userID uint) (*model.UserProgress, error)
}

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository 创建一个新的 ProgressRepository 实例。
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

// Save 以 user_id 为冲突键插入或覆盖进度记录。
func (r *progressRepository) Save(ctx context.Context, progress *model.UserProgress) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"topic", "current_plan", "start_date", "completed_therapies", "assessment_answers", "updated_at",
		}),
	}).Create(progress).Error
}

// FindByUserID 返回用户的进度记录，不存在时返回 ErrNotFound。
func (r *progressRepository) FindByUserID(ctx context.Context, userID uint) (*model.UserProgress, error) {
	var p model.UserProgress
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}
