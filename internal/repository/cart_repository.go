package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/storefront/internal/model"
)

// CartRepository 购物车仓储
type CartRepository interface {
	List(ctx context.Context, userID string) ([]*model.CartItem, error)
	// GetForUser 只返回属于该用户的购物车行
	GetForUser(ctx context.Context, id, userID string) (*model.CartItem, error)
	// Add 首次加入创建，重复加入累加数量
	Add(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error)
	SetQuantity(ctx context.Context, id string, quantity int) (*model.CartItem, error)
	Delete(ctx context.Context, id, userID string) error
	Count(ctx context.Context, userID string) (int64, error)
}

type cartRepository struct{ db *gorm.DB }

func NewCartRepository(db *gorm.DB) CartRepository { return &cartRepository{db: db} }

func (r *cartRepository) List(ctx context.Context, userID string) ([]*model.CartItem, error) {
	var res []*model.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&res).Error
	return res, err
}

func (r *cartRepository) GetForUser(ctx context.Context, id, userID string) (*model.CartItem, error) {
	var c model.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id = ? AND user_id = ?", id, userID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cartRepository) Add(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error) {
	line := &model.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + ?", quantity),
			"updated_at": time.Now(),
		}),
	}).Create(line).Error
	if err != nil {
		return nil, err
	}

	var out model.CartItem
	err = r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *cartRepository) SetQuantity(ctx context.Context, id string, quantity int) (*model.CartItem, error) {
	if err := r.db.WithContext(ctx).Model(&model.CartItem{}).Where("id = ?", id).Update("quantity", quantity).Error; err != nil {
		return nil, err
	}
	var out model.CartItem
	if err := r.db.WithContext(ctx).Preload("Product").Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *cartRepository) Delete(ctx context.Context, id, userID string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *cartRepository) Count(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.CartItem{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
