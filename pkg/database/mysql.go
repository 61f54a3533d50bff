// Package database 管理 MySQL 与 Redis 的全局连接。
package database

import (
	"time"

	"mindcare-go/internal/model"
	"mindcare-go/pkg/log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitMySQL 初始化 MySQL 连接并迁移用户与进度表。
func InitMySQL(dsn string) {
	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("failed to connect database", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(DB); err != nil {
		log.Fatal("failed to migrate schema", err)
	}
	log.Info("MySQL database connected successfully")
}

// Migrate 创建或更新 users 与 user_progress 表。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.User{}, &model.UserProgress{})
}
