// Package kafka 提供了与 Kafka 消息队列交互的功能：发布问答审计事件并消费落库。
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"chatbot-go/internal/config"
	"chatbot-go/pkg/database"
	"chatbot-go/pkg/log"
	"chatbot-go/pkg/tasks"
)

// maxAttempts 是同一条记录处理失败后允许的重试次数上限。
const maxAttempts = 3

// RecordProcessor 处理一条审计记录，使消费者与具体的落库实现解耦。
type RecordProcessor interface {
	Process(ctx context.Context, record tasks.ExchangeRecord) error
}

// Producer 发布问答审计事件。
type Producer struct {
	writer *kafka.Writer
}

// NewProducer 初始化 Kafka 生产者。
func NewProducer(cfg config.KafkaConfig) *Producer {
	p := &Producer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(strings.Split(cfg.Brokers, ",")...),
			Topic:    cfg.Topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
	log.Info("Kafka 生产者初始化成功")
	return p
}

// PublishExchange 发送一条审计记录，以对话 ID 作为 key 保证同一对话内有序。
func (p *Producer) PublishExchange(ctx context.Context, record tasks.ExchangeRecord) error {
	b, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(record.ConversationID),
		Value: b,
	})
}

// Close 刷新并关闭生产者。
func (p *Producer) Close() error {
	return p.writer.Close()
}

// StartConsumer 启动一个 Kafka 消费者处理审计记录，ctx 取消时退出。
func StartConsumer(ctx context.Context, cfg config.KafkaConfig, processor RecordProcessor) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(cfg.Brokers, ","),
		Topic:    cfg.Topic,
		GroupID:  "chatbot-go-consumer",
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	defer func() {
		if err := r.Close(); err != nil {
			log.Errorf("关闭 Kafka 消费者失败: %v", err)
		}
	}()

	log.Infof("Kafka 消费者已启动，正在监听主题 '%s'", cfg.Topic)

	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Error("从 Kafka 读取消息失败", err)
			}
			return
		}

		var record tasks.ExchangeRecord
		if err := json.Unmarshal(m.Value, &record); err != nil {
			log.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(m.Value))
			// 消息格式错误，直接提交，避免阻塞队列
			commit(ctx, r, m)
			continue
		}

		if err := processor.Process(ctx, record); err != nil {
			log.Errorf("处理审计记录失败: conversation=%s, offset=%d, error: %v", record.ConversationID, m.Offset, err)
			if giveUp(ctx, m) {
				log.Errorf("审计记录多次失败(>=%d)，提交 offset 终止重试: offset=%d", maxAttempts, m.Offset)
				commit(ctx, r, m)
			}
			// 未达上限时不提交 offset，让 Kafka 重投
			continue
		}

		clearAttempts(ctx, m)
		commit(ctx, r, m)
	}
}

func attemptsKey(m kafka.Message) string {
	return fmt.Sprintf("kafka:attempts:%s:%d:%d", m.Topic, m.Partition, m.Offset)
}

// giveUp 使用 Redis 计数失败次数；未配置 Redis 时不重试。
func giveUp(ctx context.Context, m kafka.Message) bool {
	if database.RDB == nil {
		return true
	}
	key := attemptsKey(m)
	attempts, err := database.RDB.Incr(ctx, key).Result()
	if err != nil {
		// Redis 异常时保守处理：不提交 offset，让 Kafka 重试
		return false
	}
	_ = database.RDB.Expire(ctx, key, 24*time.Hour).Err()
	return attempts >= maxAttempts
}

func clearAttempts(ctx context.Context, m kafka.Message) {
	if database.RDB != nil {
		_ = database.RDB.Del(ctx, attemptsKey(m)).Err()
	}
}

func commit(ctx context.Context, r *kafka.Reader, m kafka.Message) {
	if err := r.CommitMessages(ctx, m); err != nil {
		log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
	}
}
