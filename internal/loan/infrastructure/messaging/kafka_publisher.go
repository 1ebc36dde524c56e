// Package messaging 领域事件的 Kafka 发布实现
package messaging

import (
	"context"

	"github.com/wyfcoding/creditsea/internal/loan/domain"
	"github.com/wyfcoding/creditsea/pkg/logger"
	"github.com/wyfcoding/creditsea/pkg/mq"
)

// KafkaEventPublisher 将领域事件投递到 Kafka
type KafkaEventPublisher struct {
	producer *mq.KafkaProducer
}

// NewKafkaEventPublisher 创建 Kafka 事件发布器
func NewKafkaEventPublisher(producer *mq.KafkaProducer) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	return p.producer.SendMessage(ctx, topic, key, event)
}

// LoggingEventPublisher 未接入消息队列时的降级实现，仅记录事件
type LoggingEventPublisher struct{}

func (LoggingEventPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	logger.Info(ctx, "domain event published", "topic", topic, "key", key)
	return nil
}

var (
	_ domain.EventPublisher = (*KafkaEventPublisher)(nil)
	_ domain.EventPublisher = LoggingEventPublisher{}
)
