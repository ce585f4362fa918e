package messaging

import (
	"context"
	"sync"
	"time"
)

// 事件主题后缀，完整主题为 <prefix>.<suffix>
const (
	TopicOrderPlaced        = "placed"
	TopicOrderStatusChanged = "status_changed"
)

// OrderPlaced 下单成功事件
type OrderPlaced struct {
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      string    `json:"user_id"`
	TotalPrice  string    `json:"total_price"`
	ItemCount   int       `json:"item_count"`
	PlacedAt    time.Time `json:"placed_at"`
}

// OrderStatusChanged 订单状态变更事件（用于通知客户）
type OrderStatusChanged struct {
	OrderID        string    `json:"order_id"`
	OrderNumber    string    `json:"order_number"`
	UserID         string    `json:"user_id"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	TrackingNumber string    `json:"tracking_number,omitempty"`
	ChangedAt      time.Time `json:"changed_at"`
}

// Publisher 订单事件发布
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
	Close() error
}

// NopPublisher 未启用消息队列时使用
type NopPublisher struct{}

func (NopPublisher) PublishEvent(context.Context, string, string, any) error { return nil }
func (NopPublisher) Close() error                                          { return nil }

// Message 内存发布器记录的一条消息
type Message struct {
	Topic string
	Key   string
	Event any
}

// MemoryPublisher 进程内记录已发布事件，测试用
type MemoryPublisher struct {
	mu   sync.Mutex
	msgs []Message
}

func (m *MemoryPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, Message{Topic: topic, Key: key, Event: event})
	return nil
}

func (m *MemoryPublisher) Close() error { return nil }

// Messages 已发布消息的副本
func (m *MemoryPublisher) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.msgs...)
}
