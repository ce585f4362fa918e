package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/storefront/config"
	"github.com/d60-Lab/storefront/internal/messaging"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/repository"
	"github.com/d60-Lab/storefront/internal/storage"
	"github.com/d60-Lab/storefront/pkg/logger"
)

// 付款凭证存放子目录
const PaymentProofDir = "payments"

// ProofUpload 上传的付款凭证
type ProofUpload struct {
	OrderID     string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// PaymentService 付款凭证服务
type PaymentService interface {
	UploadProof(ctx context.Context, userID string, in ProofUpload) (string, error)
	BankDetails() config.PaymentConfig
	// OpenProof 读取付款凭证，只有订单本人或管理员可以访问
	OpenProof(ctx context.Context, p *Principal, relPath string) (io.ReadSeekCloser, error)
}

type paymentService struct {
	orders repository.OrderRepository
	store  storage.Store
	cfg    config.PaymentConfig
	events *EventDispatcher
	// restamp 为 false 时不覆盖已有的 paid_at
	restamp bool
	now     func() time.Time
}

func NewPaymentService(orders repository.OrderRepository, store storage.Store, cfg config.PaymentConfig, restampOnRepeat bool, events *EventDispatcher) PaymentService {
	return &paymentService{orders: orders, store: store, cfg: cfg, events: events, restamp: restampOnRepeat, now: time.Now}
}

func (s *paymentService) BankDetails() config.PaymentConfig { return s.cfg }

var errTooLarge = errors.New("upload exceeds size limit")

func (s *paymentService) UploadProof(ctx context.Context, userID string, in ProofUpload) (string, error) {
	if in.Body == nil || strings.TrimSpace(in.OrderID) == "" {
		return "", invalid(ErrInvalidPaymentProof, "File and order ID are required")
	}
	order, err := s.orders.GetForUser(ctx, in.OrderID, userID)
	if err != nil {
		return "", notFound(err, ErrOrderNotFound)
	}
	if !strings.HasPrefix(strings.ToLower(in.ContentType), "image/") {
		return "", invalid(ErrInvalidPaymentProof, "Only image files are allowed")
	}
	if in.Size > s.cfg.MaxUploadBytes {
		return "", invalid(ErrInvalidPaymentProof, "File size must be less than %dMB", s.cfg.MaxUploadBytes>>20)
	}

	name := uuid.NewString() + "." + proofExtension(in.FileName, in.ContentType)
	body := &limitReader{r: in.Body, n: s.cfg.MaxUploadBytes}
	rel, err := s.store.Save(ctx, PaymentProofDir, name, body)
	if err != nil {
		if errors.Is(err, errTooLarge) {
			return "", invalid(ErrInvalidPaymentProof, "File size must be less than %dMB", s.cfg.MaxUploadBytes>>20)
		}
		return "", fmt.Errorf("store payment proof: %w", err)
	}

	updates := map[string]interface{}{"payment_proof": rel}
	verified := s.cfg.AutoVerify
	if verified {
		updates["status"] = model.OrderStatusPaymentVerified
		if s.restamp || order.PaidAt == nil {
			updates["paid_at"] = s.now()
		}
	}
	if err := s.orders.Update(ctx, order.ID, updates); err != nil {
		if delErr := s.store.Delete(ctx, rel); delErr != nil {
			logger.Warn("remove orphaned payment proof failed", zap.String("path", rel), zap.Error(delErr))
		}
		return "", err
	}

	logger.Info("payment proof uploaded",
		zap.String("order_id", order.ID),
		zap.String("path", rel),
		zap.Bool("auto_verified", verified),
	)
	if verified && order.Status != model.OrderStatusPaymentVerified {
		s.events.Enqueue(messaging.TopicOrderStatusChanged, order.ID, messaging.OrderStatusChanged{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			UserID:      order.UserID,
			From:        string(order.Status),
			To:          string(model.OrderStatusPaymentVerified),
			ChangedAt:   s.now(),
		})
	}
	return rel, nil
}

func (s *paymentService) OpenProof(ctx context.Context, p *Principal, relPath string) (io.ReadSeekCloser, error) {
	if p == nil {
		return nil, ErrUnauthorized
	}
	order, err := s.orders.GetByPaymentProof(ctx, relPath)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	// 别人的凭证同样按不存在处理
	if order.UserID != p.UserID && !p.IsAdmin() {
		return nil, ErrOrderNotFound
	}
	f, err := s.store.Open(ctx, relPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return f, nil
}

// proofExtension 取文件名后缀，缺失时用 MIME 子类型
func proofExtension(fileName, contentType string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if !safeExt(ext) {
		ext = strings.ToLower(strings.TrimPrefix(contentType, "image/"))
		if i := strings.IndexAny(ext, ";+"); i >= 0 {
			ext = ext[:i]
		}
	}
	if !safeExt(ext) {
		return "img"
	}
	return ext
}

func safeExt(ext string) bool {
	if ext == "" || len(ext) > 10 {
		return false
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// limitReader 超过 n 字节时返回 errTooLarge
type limitReader struct {
	r io.Reader
	n int64
}

func (l *limitReader) Read(p []byte) (int, error) {
	if l.n < 0 {
		return 0, errTooLarge
	}
	if int64(len(p)) > l.n+1 {
		p = p[:l.n+1]
	}
	n, err := l.r.Read(p)
	l.n -= int64(n)
	if l.n < 0 {
		return n, errTooLarge
	}
	return n, err
}
