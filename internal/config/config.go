// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Log           LogConfig           `mapstructure:"log"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Chat          ChatConfig          `mapstructure:"chat"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig 存储 JWT 相关的配置。
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
	RefreshTokenExpireDays int    `mapstructure:"refresh_token_expire_days"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// KafkaConfig 存储 Kafka 相关的配置。
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// ElasticsearchConfig 存储 Elasticsearch 相关的配置。
type ElasticsearchConfig struct {
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// MinIOConfig 存储 MinIO 对象存储的配置。
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// ChatConfig 控制对话节奏与历史保存。
type ChatConfig struct {
	ReplyDelay      time.Duration `mapstructure:"reply_delay"`
	QuestionDelay   time.Duration `mapstructure:"question_delay"`
	MenuDelay       time.Duration `mapstructure:"menu_delay"`
	AnalyzingDelay  time.Duration `mapstructure:"analyzing_delay"`
	PlanDelay       time.Duration `mapstructure:"plan_delay"`
	HistoryTTL      time.Duration `mapstructure:"history_ttl"`
	HistoryLimit    int64         `mapstructure:"history_limit"`
	ResponseSeed    int64         `mapstructure:"response_seed"` // 0 表示按时间取种子
	ExportURLExpiry time.Duration `mapstructure:"export_url_expiry"`
}

// DefaultChatConfig 返回与网页版一致的默认节奏。
func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		ReplyDelay:      time.Second,
		QuestionDelay:   time.Second,
		MenuDelay:       500 * time.Millisecond,
		AnalyzingDelay:  1500 * time.Millisecond,
		PlanDelay:       2 * time.Second,
		HistoryTTL:      7 * 24 * time.Hour,
		HistoryLimit:    200,
		ExportURLExpiry: time.Hour,
	}
}

// Init 初始化配置加载：先读取 .env，再读取 YAML 文件，最后用 MINDCARE_ 前缀的环境变量覆盖。
func Init(configPath string) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("MINDCARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		panic(fmt.Errorf("读取配置文件失败: %w", err))
	}

	if err := v.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("无法将配置解析到结构体中: %w", err))
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultChatConfig()
	v.SetDefault("server.port", "8081")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("kafka.topic", "mindcare-plans")
	v.SetDefault("kafka.group_id", "mindcare-plan-archiver")
	v.SetDefault("elasticsearch.index_name", "mindcare_plans")
	v.SetDefault("chat.reply_delay", d.ReplyDelay)
	v.SetDefault("chat.question_delay", d.QuestionDelay)
	v.SetDefault("chat.menu_delay", d.MenuDelay)
	v.SetDefault("chat.analyzing_delay", d.AnalyzingDelay)
	v.SetDefault("chat.plan_delay", d.PlanDelay)
	v.SetDefault("chat.history_ttl", d.HistoryTTL)
	v.SetDefault("chat.history_limit", d.HistoryLimit)
	v.SetDefault("chat.export_url_expiry", d.ExportURLExpiry)
}
