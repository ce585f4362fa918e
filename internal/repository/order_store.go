package repository

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/storefront/internal/model"
)

// GormOrderRepository 订单仓储实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

// PlaceOrder 下单事务；任何一步失败整体回滚
func (r *GormOrderRepository) PlaceOrder(ctx context.Context, order *model.Order) error {
	items := order.Items
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
			if err := tx.Omit(clause.Associations).Create(&items[i]).Error; err != nil {
				return err
			}

			// 条件扣减：库存不足时影响行数为 0
			res := tx.Model(&model.Product{}).
				Where("id = ? AND stock >= ?", items[i].ProductID, items[i].Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", items[i].Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &StockConflictError{ProductID: items[i].ProductID}
			}
		}

		return tx.Where("user_id = ?", order.UserID).Delete(&model.CartItem{}).Error
	})
}

func (r *GormOrderRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product").
		Preload("Address").
		Preload("User")
}

// GetByID 根据订单ID查询订单
func (r *GormOrderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	if err := r.withDetails(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GetForUser 查询属于该用户的订单
func (r *GormOrderRepository) GetForUser(ctx context.Context, id, userID string) (*model.Order, error) {
	var order model.Order
	if err := r.withDetails(ctx).Where("id = ? AND user_id = ?", id, userID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) GetByPaymentProof(ctx context.Context, proof string) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).Where("payment_proof = ?", proof).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUser 根据用户ID查询订单列表
func (r *GormOrderRepository) ListByUser(ctx context.Context, userID string, status model.OrderStatus) ([]*model.Order, error) {
	var orders []*model.Order
	q := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormOrderRepository) filtered(ctx context.Context, f OrderFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Order{})
	if f.Status != "" {
		q = q.Where("orders.status = ?", f.Status)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Joins("LEFT JOIN users ON users.id = orders.user_id").
			Where("(LOWER(orders.order_number) LIKE ? OR LOWER(users.name) LIKE ? OR LOWER(users.email) LIKE ?)", like, like, like)
	}
	return q
}

// List 后台订单列表
func (r *GormOrderRepository) List(ctx context.Context, f OrderFilter) ([]*model.Order, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []*model.Order
	q := r.filtered(ctx, f).
		Preload("User").
		Preload("Items").
		Preload("Items.Product").
		Order("orders.created_at DESC")
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}
	if err := q.Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Update 更新订单字段
func (r *GormOrderRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(updates).Error
}

// Count 统计订单数量
func (r *GormOrderRepository) Count(ctx context.Context, status model.OrderStatus) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Order{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&count).Error
	return count, err
}

// CountByStatus 各状态订单数量
func (r *GormOrderRepository) CountByStatus(ctx context.Context) (map[model.OrderStatus]int64, error) {
	var rows []struct {
		Status model.OrderStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[model.OrderStatus]int64, len(model.OrderStatuses))
	for _, s := range model.OrderStatuses {
		out[s] = 0
	}
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// Revenue 指定状态订单的总金额
func (r *GormOrderRepository) Revenue(ctx context.Context, statuses []model.OrderStatus) (decimal.Decimal, error) {
	var row struct {
		Total decimal.NullDecimal
	}
	q := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("SUM(total_price) AS total")
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	err := q.Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !row.Total.Valid {
		return decimal.Zero, nil
	}
	return row.Total.Decimal.Round(2), nil
}

// AmountsSince 指定时间之后的订单金额
func (r *GormOrderRepository) AmountsSince(ctx context.Context, since time.Time) ([]OrderAmount, error) {
	var rows []OrderAmount
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("created_at, total_price").
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Scan(&rows).Error
	return rows, err
}
