package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/storefront/internal/messaging"
	"github.com/d60-Lab/storefront/pkg/logger"
)

type eventJob struct {
	topic string
	key   string
	event any
	enqAt time.Time
}

// EventDispatcher 本地异步事件发布队列；事务提交后入队，失败只记日志
type EventDispatcher struct {
	pub     messaging.Publisher
	ch      chan eventJob
	timeout time.Duration

	wg        sync.WaitGroup
	stopOnce  sync.Once
	published atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

func NewEventDispatcher(pub messaging.Publisher, queueSize int, timeout time.Duration) *EventDispatcher {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &EventDispatcher{pub: pub, ch: make(chan eventJob, queueSize), timeout: timeout}
}

// Start 启动 worker，返回停止函数；停止时先排空队列
func (d *EventDispatcher) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 2
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for {
				select {
				case job := <-d.ch:
					d.publish(job)
				case <-stopCh:
					for {
						select {
						case job := <-d.ch:
							d.publish(job)
						default:
							return
						}
					}
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		d.stopOnce.Do(func() { close(stopCh) })
		done := make(chan struct{})
		go func() {
			d.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (d *EventDispatcher) publish(job eventJob) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.pub.PublishEvent(ctx, job.topic, job.key, job.event); err != nil {
		d.failed.Add(1)
		logger.Warn("publish event failed",
			zap.String("topic", job.topic),
			zap.String("key", job.key),
			zap.Duration("queued", time.Since(job.enqAt)),
			zap.Error(err),
		)
		return
	}
	d.published.Add(1)
}

// Enqueue 非阻塞入队，队列满时丢弃
func (d *EventDispatcher) Enqueue(topic, key string, event any) {
	if d == nil {
		return
	}
	select {
	case d.ch <- eventJob{topic: topic, key: key, event: event, enqAt: time.Now()}:
	default:
		d.dropped.Add(1)
		logger.Warn("event queue full, drop", zap.String("topic", topic), zap.String("key", key))
	}
}

// QueueLen 当前队列长度（采样值）
func (d *EventDispatcher) QueueLen() int { return len(d.ch) }

// Stats 已发布 / 失败 / 丢弃数量
func (d *EventDispatcher) Stats() (published, failed, dropped int64) {
	return d.published.Load(), d.failed.Load(), d.dropped.Load()
}
