package model

import "time"

// User 对应 users 表，是对话的身份来源。
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Password    string    `gorm:"type:varchar(255);not null" json:"-"`
	DisplayName string    `gorm:"type:varchar(100)" json:"displayName"`
	Role        string    `gorm:"type:varchar(16);not null;default:USER" json:"role"` // USER 或 ADMIN
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// Name 返回用于问候语的名称，未设置昵称时退回用户名。
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
