package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/storefront/config"
	"github.com/d60-Lab/storefront/internal/messaging"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/repository"
	"github.com/d60-Lab/storefront/pkg/logger"
)

// PlaceOrderInput 下单参数
type PlaceOrderInput struct {
	AddressID     string
	PaymentMethod string
	Notes         string
}

// OrderService 顾客订单服务
type OrderService interface {
	PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (*model.Order, error)
	ListForUser(ctx context.Context, userID string, status model.OrderStatus) ([]*model.Order, error)
	GetForUser(ctx context.Context, id, userID string) (*model.Order, error)
}

type orderService struct {
	orders    repository.OrderRepository
	carts     repository.CartRepository
	addresses repository.AddressRepository
	pricing   config.Pricing
	events    *EventDispatcher
	now       func() time.Time
}

func NewOrderService(
	orders repository.OrderRepository,
	carts repository.CartRepository,
	addresses repository.AddressRepository,
	pricing config.Pricing,
	events *EventDispatcher,
) OrderService {
	return &orderService{
		orders:    orders,
		carts:     carts,
		addresses: addresses,
		pricing:   pricing,
		events:    events,
		now:       time.Now,
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (*model.Order, error) {
	if strings.TrimSpace(in.AddressID) == "" {
		return nil, invalid(ErrInvalidInput, "Delivery address is required")
	}
	method, err := normalizePaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, err
	}

	lines, err := s.carts.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, invalid(ErrCartEmpty, "Cart is empty")
	}
	for _, line := range lines {
		p := line.Product
		if p == nil || !p.IsActive {
			name := "product"
			if p != nil {
				name = p.Name
			}
			return nil, invalid(ErrProductUnavailable, "Product %q is no longer available", name)
		}
		if p.Stock < line.Quantity {
			return nil, invalid(ErrInsufficientStock, "Insufficient stock for %q", p.Name)
		}
	}

	addr, err := s.addresses.GetForUser(ctx, in.AddressID, userID)
	if err != nil {
		return nil, notFound(err, ErrAddressNotFound)
	}

	totals := ComputeTotals(s.pricing, CartSubtotal(lines))
	order := &model.Order{
		OrderNumber:     NewOrderNumber(s.now()),
		UserID:          userID,
		AddressID:       addr.ID,
		Status:          model.OrderStatusPending,
		Subtotal:        totals.Subtotal,
		TaxAmount:       totals.TaxAmount,
		ShippingFee:     totals.ShippingFee,
		TotalPrice:      totals.Total,
		PaymentMethod:   method,
		DeliveryAddress: addr.Snapshot(),
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		order.Notes = &notes
	}
	order.Items = make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		order.Items = append(order.Items, model.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Product.Price,
			Total:     line.LineTotal(),
		})
	}

	if err := s.orders.PlaceOrder(ctx, order); err != nil {
		var conflict *repository.StockConflictError
		if errors.As(err, &conflict) {
			name := conflict.ProductID
			for _, line := range lines {
				if line.ProductID == conflict.ProductID {
					name = line.Product.Name
					break
				}
			}
			return nil, invalid(ErrInsufficientStock, "Insufficient stock for %q", name)
		}
		return nil, fmt.Errorf("place order: %w", err)
	}

	placed, err := s.orders.GetByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	logger.Info("order placed",
		zap.String("order_id", placed.ID),
		zap.String("order_number", placed.OrderNumber),
		zap.String("user_id", userID),
		zap.String("total", placed.TotalPrice.StringFixed(2)),
	)
	s.events.Enqueue(messaging.TopicOrderPlaced, placed.ID, messaging.OrderPlaced{
		OrderID:     placed.ID,
		OrderNumber: placed.OrderNumber,
		UserID:      userID,
		TotalPrice:  placed.TotalPrice.StringFixed(2),
		ItemCount:   placed.ItemCount(),
		PlacedAt:    placed.CreatedAt,
	})
	return placed, nil
}

func (s *orderService) ListForUser(ctx context.Context, userID string, status model.OrderStatus) ([]*model.Order, error) {
	if status != "" && !status.Valid() {
		return nil, invalid(ErrInvalidStatus, "Invalid status")
	}
	return s.orders.ListByUser(ctx, userID, status)
}

func (s *orderService) GetForUser(ctx context.Context, id, userID string) (*model.Order, error) {
	o, err := s.orders.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	return o, nil
}

func normalizePaymentMethod(m string) (string, error) {
	m = strings.ToUpper(strings.TrimSpace(m))
	if m == "" {
		return model.PaymentBankTransfer, nil
	}
	for _, v := range model.PaymentMethods {
		if m == v {
			return m, nil
		}
	}
	return "", invalid(ErrInvalidPaymentMethod, "Unsupported payment method %q", m)
}

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderNumber ORD-<毫秒时间戳后 8 位>-<4 位随机大写 base36>
func NewOrderNumber(now time.Time) string {
	ms := now.UnixMilli() % 100_000_000
	var b [4]byte
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(base36))))
		if err != nil {
			b[i] = base36[now.UnixNano()%36]
			continue
		}
		b[i] = base36[n.Int64()]
	}
	return fmt.Sprintf("ORD-%08d-%s", ms, string(b[:]))
}
