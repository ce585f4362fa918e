package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/d60-Lab/storefront/internal/model"
)

// StockConflictError 事务内扣减库存失败（并发下单抢走了库存）
type StockConflictError struct {
	ProductID string
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("stock changed for product %s", e.ProductID)
}

// OrderFilter 后台订单过滤条件
type OrderFilter struct {
	Status model.OrderStatus
	Search string // 订单号、用户名、邮箱
	Offset int
	Limit  int
}

// OrderAmount 订单金额与时间（月度统计用）
type OrderAmount struct {
	CreatedAt  time.Time
	TotalPrice decimal.Decimal
}

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// PlaceOrder 在一个事务内：写订单、写明细并扣库存、清空用户购物车
	PlaceOrder(ctx context.Context, order *model.Order) error

	// GetByID 根据订单ID查询订单（含明细、地址、用户）
	GetByID(ctx context.Context, id string) (*model.Order, error)

	// GetForUser 查询属于该用户的订单
	GetForUser(ctx context.Context, id, userID string) (*model.Order, error)

	// GetByPaymentProof 根据付款凭证路径查询订单
	GetByPaymentProof(ctx context.Context, proof string) (*model.Order, error)

	// ListByUser 根据用户ID查询订单列表，status 为空表示全部
	ListByUser(ctx context.Context, userID string, status model.OrderStatus) ([]*model.Order, error)

	// List 后台订单列表
	List(ctx context.Context, f OrderFilter) ([]*model.Order, int64, error)

	// Update 更新订单字段
	Update(ctx context.Context, id string, updates map[string]interface{}) error

	// Count 统计订单数量，status 为空表示全部
	Count(ctx context.Context, status model.OrderStatus) (int64, error)

	// CountByStatus 各状态订单数量
	CountByStatus(ctx context.Context) (map[model.OrderStatus]int64, error)

	// Revenue 指定状态订单的总金额，statuses 为空表示全部
	Revenue(ctx context.Context, statuses []model.OrderStatus) (decimal.Decimal, error)

	// AmountsSince 指定时间之后的订单金额
	AmountsSince(ctx context.Context, since time.Time) ([]OrderAmount, error)
}
