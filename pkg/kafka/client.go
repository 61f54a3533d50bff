// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"mindcare-go/internal/config"
	"mindcare-go/pkg/log"
	"mindcare-go/pkg/tasks"
)

// maxAttempts 是同一任务处理失败后放弃重试的阈值。
const maxAttempts = 3

// TaskProcessor 处理一条计划归档任务，消费者与具体的归档实现解耦。
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.PlanArchiveTask) error
}

var producer *kafka.Writer

// InitProducer 初始化 Kafka 生产者。
func InitProducer(cfg config.KafkaConfig) {
	producer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.Hash{},
	}
	log.Info("Kafka 生产者初始化成功")
}

// ProducePlanArchiveTask 发送一个计划归档任务到 Kafka，同一用户的任务落在同一分区。
func ProducePlanArchiveTask(ctx context.Context, task tasks.PlanArchiveTask) error {
	if producer == nil {
		return fmt.Errorf("kafka producer not initialized")
	}
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(task.UserID), 10)),
		Value: taskBytes,
	})
}

// CloseProducer 刷新并关闭生产者。
func CloseProducer() {
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		log.Errorf("关闭 Kafka 生产者失败: %v", err)
	}
}

// AttemptCounter 记录任务失败次数。
type AttemptCounter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string)
}

type redisAttempts struct {
	rdb *redis.Client
}

// NewRedisAttemptCounter 使用 Redis 计数失败次数，计数保留 24 小时。
func NewRedisAttemptCounter(rdb *redis.Client) AttemptCounter {
	return &redisAttempts{rdb: rdb}
}

func attemptsKey(key string) string {
	return fmt.Sprintf("kafka:attempts:%s", key)
}

func (a *redisAttempts) Incr(ctx context.Context, key string) (int64, error) {
	n, err := a.rdb.Incr(ctx, attemptsKey(key)).Result()
	if err != nil {
		return 0, err
	}
	_ = a.rdb.Expire(ctx, attemptsKey(key), 24*time.Hour).Err()
	return n, nil
}

func (a *redisAttempts) Reset(ctx context.Context, key string) {
	_ = a.rdb.Del(ctx, attemptsKey(key)).Err()
}

// StartConsumer 启动一个 Kafka 消费者来处理计划归档任务，ctx 取消时退出。
func StartConsumer(ctx context.Context, cfg config.KafkaConfig, processor TaskProcessor, attempts AttemptCounter) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Brokers},
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})

	log.Infof("Kafka 消费者已启动，正在监听主题 '%s'", cfg.Topic)

	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Error("从 Kafka 读取消息失败", err)
			}
			break
		}

		log.Infof("收到 Kafka 消息: offset %d", m.Offset)
		if handleMessage(ctx, m.Value, processor, attempts) {
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
			}
		}
	}

	if err := r.Close(); err != nil {
		log.Errorf("关闭 Kafka 消费者失败: %v", err)
	}
}

// handleMessage 处理一条消息并返回是否应提交 offset。
// 格式错误、处理成功或失败次数达到阈值时提交；其余失败不提交，交给 Kafka 重投。
func handleMessage(ctx context.Context, value []byte, processor TaskProcessor, attempts AttemptCounter) bool {
	var task tasks.PlanArchiveTask
	if err := json.Unmarshal(value, &task); err != nil {
		log.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(value))
		return true
	}

	key := task.Key()
	log.Infof("开始处理计划归档任务: key=%s, topic=%s", key, task.Topic)
	if err := processor.Process(ctx, task); err != nil {
		log.Errorf("处理计划归档任务失败: key=%s, Error: %v", key, err)
		n, incErr := attempts.Incr(ctx, key)
		if incErr != nil {
			// Redis 异常时保守处理：不提交 offset
			return false
		}
		if n >= maxAttempts {
			log.Errorf("计划归档任务多次失败(>=%d)，提交 offset 终止重试: key=%s", maxAttempts, key)
			return true
		}
		return false
	}

	log.Infof("计划归档任务处理成功: key=%s", key)
	attempts.Reset(ctx, key)
	return true
}
