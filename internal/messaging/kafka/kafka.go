package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/storefront/internal/messaging"
	"github.com/d60-Lab/storefront/pkg/logger"
)

// messageWriter *kafkaGo.Writer 中用到的部分
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

type kafkaPublisher struct {
	prefix    string
	newWriter func(topic string) messageWriter

	mu      sync.Mutex
	writers map[string]messageWriter
}

// NewPublisher 创建 Kafka 事件发布器，每个主题复用一个 writer
func NewPublisher(brokers []string, topicPrefix string, writeTimeout time.Duration) messaging.Publisher {
	return newPublisher(topicPrefix, func(topic string) messageWriter {
		return &kafkaGo.Writer{
			Addr:                   kafkaGo.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafkaGo.Hash{},
			WriteTimeout:           writeTimeout,
			AllowAutoTopicCreation: true,
		}
	})
}

func newPublisher(topicPrefix string, newWriter func(topic string) messageWriter) *kafkaPublisher {
	return &kafkaPublisher{
		prefix:    topicPrefix,
		newWriter: newWriter,
		writers:   make(map[string]messageWriter),
	}
}

func (k *kafkaPublisher) topic(suffix string) string {
	if k.prefix == "" {
		return suffix
	}
	return k.prefix + "." + suffix
}

func (k *kafkaPublisher) writer(topic string) messageWriter {
	k.mu.Lock()
	defer k.mu.Unlock()
	w, ok := k.writers[topic]
	if !ok {
		w = k.newWriter(topic)
		k.writers[topic] = w
	}
	return w
}

// message 以订单ID为 key，保证同一订单的事件落在同一分区
func message(key string, event any) (kafkaGo.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafkaGo.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	return kafkaGo.Message{Key: []byte(key), Value: payload}, nil
}

func (k *kafkaPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	msg, err := message(key, event)
	if err != nil {
		return err
	}

	full := k.topic(topic)
	if err := k.writer(full).WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", full, err)
	}
	logger.Debug("event published", zap.String("topic", full), zap.String("key", key))
	return nil
}

func (k *kafkaPublisher) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	var first error
	for topic, w := range k.writers {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
		delete(k.writers, topic)
	}
	return first
}
